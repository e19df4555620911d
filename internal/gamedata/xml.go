package gamedata

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// SecureDecoder returns an XML decoder hardened for untrusted input.
// Go's decoder never fetches external resources on its own, but documents
// that even declare a DOCTYPE are rejected by CheckDirective below, and the
// entity table is left empty so only the five predefined entities resolve.
func SecureDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.Strict = true
	d.CharsetReader = charsetReader
	return d
}

// CheckDirective rejects DOCTYPE declarations. Save and definition files
// never legitimately carry one, and a DOCTYPE is the vehicle for external
// entity and external DTD tricks.
func CheckDirective(dir xml.Directive) error {
	s := strings.TrimSpace(string(dir))
	if len(s) >= 7 && strings.EqualFold(s[:7], "DOCTYPE") {
		return ErrExternalEntity
	}
	return nil
}

// charsetReader handles documents that declare a non-UTF-8 encoding in the
// XML prolog. X4 files are UTF-8 in practice; this covers the odd tool that
// re-saved one as latin-1.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
