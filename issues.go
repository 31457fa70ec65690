package docskema

import (
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeDanglingRef             = "dangling_ref"
	CodeDuplicateClass          = "duplicate_class"
	CodeSkippedDef              = "skipped_def"
	CodeUnsupportedRef          = "unsupported_ref"
	CodeInvalidInput            = "invalid_input"
	CodeRequiredWithoutProperty = "required_without_property"
)

// Issue is a single non-fatal finding from import or export.
type Issue struct {
	Path    string // JSON Pointer into the offending document (for example: /properties/total).
	Code    string // One of the codes listed above.
	Message string
}

// Issues is a collection of findings that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Diag carries the non-fatal warnings produced during import or export.
// Nothing in the designer fails hard on degenerate input; warnings are the
// only signal a host gets.
type Diag interface {
	HasWarnings() bool
	Warnings() Issues
}

type simpleDiag struct{ iss Issues }

func (d *simpleDiag) HasWarnings() bool { return len(d.iss) > 0 }
func (d *simpleDiag) Warnings() Issues  { return append(Issues(nil), d.iss...) }

func (d *simpleDiag) warnf(path, code, format string, a ...any) {
	d.iss = append(d.iss, Issue{Path: path, Code: code, Message: fmt.Sprintf(format, a...)})
}
