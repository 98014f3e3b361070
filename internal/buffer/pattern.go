package buffer

import (
	"regexp"

	"github.com/wagiedev/expectr-go/internal/errors"
)

// Compile turns an expect pattern into a regular expression. Strings match
// verbatim; a *regexp.Regexp is used as-is. Any other type fails with a
// PatternTypeError.
func Compile(pattern any) (*regexp.Regexp, error) {
	switch p := pattern.(type) {
	case string:
		return regexp.MustCompile(regexp.QuoteMeta(p)), nil
	case *regexp.Regexp:
		if p == nil {
			return nil, &errors.PatternTypeError{Value: pattern}
		}

		return p, nil
	default:
		return nil, &errors.PatternTypeError{Value: pattern}
	}
}

// Describe renders a pattern for error messages.
func Describe(pattern any) string {
	switch p := pattern.(type) {
	case string:
		return p
	case *regexp.Regexp:
		if p != nil {
			return "/" + p.String() + "/"
		}
	}

	return ""
}
