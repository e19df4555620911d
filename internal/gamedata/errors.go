package gamedata

import (
	"errors"
	"fmt"
)

// ErrUnavailable means no usable game definition files were found. Callers
// switch the analysis engine into storage-estimate mode instead of failing.
var ErrUnavailable = errors.New("game definitions unavailable")

// ErrExternalEntity means a document tried to pull in an external entity or
// DTD. Such documents are rejected unconditionally.
var ErrExternalEntity = errors.New("external entity or DTD resolution rejected")

// ParseFailure reports a definition file that was present but malformed.
// Recoverable per file: the loader skips the file's contributions and keeps
// going, degrading to ErrUnavailable only when every source fails.
type ParseFailure struct {
	Path string
	Err  error
}

func (p *ParseFailure) Error() string {
	return fmt.Sprintf("parse %s: %v", p.Path, p.Err)
}

func (p *ParseFailure) Unwrap() error { return p.Err }
