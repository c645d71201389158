package converter

import "fmt"

// The conversion pipeline reports failures through a small set of error
// types so callers can branch on kind instead of message text. All of them
// are local to one file's conversion and are absorbed into per-file results
// by ConvertBatch.

// ConfigurationError reports settings outside the enumerated ranges. It is
// raised at settings construction time, before any I/O happens.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s setting: %s", e.Setting, e.Reason)
}

// ValidationError reports an input that failed the cheap PDF sanity check.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid PDF file %s: %s", e.Path, e.Reason)
}

// OpenError reports a document that could not be parsed, or one that is
// encrypted. Encrypted input is categorically rejected, there is no password
// flow.
type OpenError struct {
	Path      string
	Encrypted bool
	Err       error
}

func (e *OpenError) Error() string {
	if e.Encrypted {
		return fmt.Sprintf("cannot open %s: PDF is password protected", e.Path)
	}
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// PageRenderError reports a page that failed to rasterize or encode. Page is
// 1-based. The conversion of the whole document aborts; silently skipping a
// page would corrupt the output without the caller noticing.
type PageRenderError struct {
	Page int
	Err  error
}

func (e *PageRenderError) Error() string {
	return fmt.Sprintf("failed to process page %d: %v", e.Page, e.Err)
}

func (e *PageRenderError) Unwrap() error { return e.Err }

// ReassemblyError reports that the output PDF could not be constructed or
// written.
type ReassemblyError struct {
	Err error
}

func (e *ReassemblyError) Error() string {
	return fmt.Sprintf("failed to create output PDF: %v", e.Err)
}

func (e *ReassemblyError) Unwrap() error { return e.Err }
