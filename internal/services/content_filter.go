package services

import (
	"regexp"

	"brocante/internal/apperrors"
)

// Violation labels reported by the content filter.
const (
	ViolationEmail  = "email address detected"
	ViolationPhone  = "phone number detected"
	ViolationURL    = "URL detected"
	ViolationHandle = "social media handle detected"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	// French phone numbers: national 0X XX XX XX XX and +33 / 00 33 prefixes,
	// with spaces, dots or dashes as separators.
	frPhonePattern = regexp.MustCompile(`(?:(?:\+|00)33[\s.-]?|0)[1-9](?:[\s.-]?\d{2}){4}`)
	// Loose international phone shape; deliberately broad.
	intlPhonePattern = regexp.MustCompile(`\+?\d{1,4}[\s.-]?\(?\d{1,4}\)?[\s.-]?\d{1,4}[\s.-]?\d{1,9}`)
	urlPattern       = regexp.MustCompile(`https?://[^\s]+`)
	handlePattern    = regexp.MustCompile(`@[a-zA-Z0-9_]{1,30}`)
)

// contentDetector produces zero or one label for a given text.
type contentDetector struct {
	label string
	match func(text string) bool
}

// ContentFilter rejects free text that leaks personal contact information,
// keeping buyer/seller communication on-platform. It holds no state and
// performs no I/O.
type ContentFilter struct {
	detectors []contentDetector
}

// NewContentFilter creates a ContentFilter with the standard detector set.
func NewContentFilter() *ContentFilter {
	return &ContentFilter{
		detectors: []contentDetector{
			{ViolationEmail, emailPattern.MatchString},
			// Both phone shapes feed a single label.
			{ViolationPhone, func(text string) bool {
				return frPhonePattern.MatchString(text) || intlPhonePattern.MatchString(text)
			}},
			{ViolationURL, urlPattern.MatchString},
			{ViolationHandle, handlePattern.MatchString},
		},
	}
}

// DetectViolations returns one label per detector category that matches.
// Categories are independent: a URL that also looks like a handle yields both
// labels, and repeated matches of one category still yield a single label.
func (f *ContentFilter) DetectViolations(text string) []string {
	var violations []string
	for _, d := range f.detectors {
		if d.match(text) {
			violations = append(violations, d.label)
		}
	}
	return violations
}

// Validate returns a ContentViolationError carrying the field name and all
// detected labels, or nil when the text is clean.
func (f *ContentFilter) Validate(text, fieldName string) error {
	violations := f.DetectViolations(text)
	if len(violations) > 0 {
		return &apperrors.ContentViolationError{Field: fieldName, Violations: violations}
	}
	return nil
}
