package assetgate

import (
	"regexp"
	"strings"
)

// Rejection reasons returned by SanitizeFileName, in evaluation order.
const (
	ReasonRequired          = "filename required"
	ReasonPathSeparator     = "path separators not allowed"
	ReasonPathTraversal     = "path traversal not allowed"
	ReasonWhitespace        = "whitespace not allowed"
	ReasonInvalidCharacters = "invalid characters"
)

var validFileNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,255}$`)

// SanitizeFileName validates a client supplied filename.
// It checks, in order, that the name:
//   - is not empty or whitespace only
//   - does not contain / or \
//   - does not contain ".."
//   - has no leading or trailing whitespace
//   - starts with an ASCII letter or digit followed by at most 255 of [A-Za-z0-9._-]
//
// On success the input is returned unchanged. On failure the error is a
// *SanitizeError wrapping ErrInvalidInput.
func SanitizeFileName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", &SanitizeError{Reason: ReasonRequired}
	}

	if strings.ContainsAny(name, `/\`) {
		return "", &SanitizeError{Reason: ReasonPathSeparator}
	}

	if strings.Contains(name, "..") {
		return "", &SanitizeError{Reason: ReasonPathTraversal}
	}

	if strings.TrimSpace(name) != name {
		return "", &SanitizeError{Reason: ReasonWhitespace}
	}

	if !validFileNameRegex.MatchString(name) {
		return "", &SanitizeError{Reason: ReasonInvalidCharacters}
	}

	return name, nil
}
