package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// gameDirCandidates are the usual install locations, checked in order.
func gameDirCandidates() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".steam", "steam", "steamapps", "common", "X4 Foundations"),
		filepath.Join(home, ".local", "share", "Steam", "steamapps", "common", "X4 Foundations"),
		`C:\Program Files (x86)\Steam\steamapps\common\X4 Foundations`,
		`C:\Program Files\Epic Games\X4Foundations`,
		filepath.Join(home, "Library", "Application Support", "Steam", "steamapps", "common", "X4 Foundations"),
	}
}

// DetectGameDir returns the first install directory that actually carries
// catalog files, or empty when nothing is found.
func DetectGameDir() string {
	for _, dir := range gameDirCandidates() {
		if _, err := os.Stat(filepath.Join(dir, "01.cat")); err == nil {
			return dir
		}
	}
	return ""
}

// DetectSaveDir returns the newest per-player save directory under the
// Egosoft documents tree, or empty when there is none.
func DetectSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	roots := []string{
		filepath.Join(home, "Documents", "Egosoft", "X4"),
		filepath.Join(home, ".config", "EgoSoft", "X4"),
	}
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		var candidates []string
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			saveDir := filepath.Join(root, e.Name(), "save")
			if _, err := os.Stat(saveDir); err == nil {
				candidates = append(candidates, saveDir)
			}
		}
		if len(candidates) > 0 {
			sort.Strings(candidates)
			return candidates[len(candidates)-1]
		}
	}
	return ""
}

// LatestSave picks the most recently written save file in a directory.
// Quicksaves and autosaves count; compressed and plain saves both match.
func LatestSave(saveDir string) (string, error) {
	entries, err := os.ReadDir(saveDir)
	if err != nil {
		return "", err
	}
	var best string
	var bestMod int64
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".xml.gz") && !strings.HasSuffix(name, ".xml") {
			continue
		}
		if !strings.HasPrefix(name, "save") && !strings.HasPrefix(name, "quicksave") && !strings.HasPrefix(name, "autosave") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestMod {
			best = filepath.Join(saveDir, e.Name())
			bestMod = mod
		}
	}
	if best == "" {
		return "", os.ErrNotExist
	}
	return best, nil
}
