// catdump lists and extracts files from X4 catalog archives. Handy for
// checking what a game install actually ships before blaming the analyzer
// for a bad extraction.
//
// Usage:
//
//	catdump -gamedir /path/to/X4 -list 'libraries/*.xml'
//	catdump -gamedir /path/to/X4 -extract libraries/wares.xml > wares.xml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Zillatron27/x4-production-analyzer/internal/gamedata"
)

func main() {
	gameDir := flag.String("gamedir", "", "X4 installation directory")
	list := flag.String("list", "", "glob pattern of files to list")
	extract := flag.String("extract", "", "file to extract to stdout")
	base := flag.Bool("base", false, "with -extract, skip extension diffs and read the base game file")
	flag.Parse()

	if *gameDir == "" {
		fmt.Fprintln(os.Stderr, "catdump: -gamedir is required")
		os.Exit(2)
	}

	catalog, err := gamedata.NewCatalogReader(*gameDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catdump: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *list != "":
		for _, name := range catalog.ListFiles(*list) {
			fmt.Println(name)
		}
	case *extract != "":
		read := catalog.ReadFile
		if *base {
			read = catalog.ReadBaseFile
		}
		data, err := read(*extract)
		if err != nil {
			fmt.Fprintf(os.Stderr, "catdump: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
	default:
		fmt.Fprintln(os.Stderr, "catdump: nothing to do, pass -list or -extract")
		os.Exit(2)
	}
}
