package schema

import (
	"net/url"
	"regexp"
)

// Format patterns. date-time, date, and time are RFC 3339 subsets;
// email is a permissive RFC 5321-ish pattern.
var (
	dateTimePattern = regexp.MustCompile(`(?i)^(\d{4})-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])T([01][0-9]|2[0-3]):([0-5][0-9]):([0-5][0-9]|60)(\.[0-9]+)?(Z|[+-]([01][0-9]|2[0-3]):([0-5][0-9]))$`)
	datePattern     = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])-(0[1-9]|[12][0-9]|3[01])$`)
	timePattern     = regexp.MustCompile(`(?i)^([01][0-9]|2[0-3]):([0-5][0-9]):([0-5][0-9]|60)(\.[0-9]+)?(Z|[+-]([01][0-9]|2[0-3]):([0-5][0-9]))$`)
	colorHexPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3,4}|([0-9A-Fa-f]{2}){3,4})$`)
	emailPattern    = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)
	uriPattern      = regexp.MustCompile(`^(([^:/?#]+?):)?(\/\/([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?`)
)

// checkFormat validates value against the named format keyword. The
// bool result is true if value violates the format; an unrecognized
// format name is always accepted.
func checkFormat(format, value string) (message string, bad bool) {
	switch format {
	case "date-time":
		if !dateTimePattern.MatchString(value) {
			return "String is not a valid RFC 3339 date-time.", true
		}
	case "date":
		if !datePattern.MatchString(value) {
			return "String is not a valid RFC 3339 date.", true
		}
	case "time":
		if !timePattern.MatchString(value) {
			return "String is not a valid RFC 3339 time.", true
		}
	case "color-hex":
		if !colorHexPattern.MatchString(value) {
			return "String is not a hex color.", true
		}
	case "email":
		if !emailPattern.MatchString(value) {
			return "String is not an e-mail address.", true
		}
	case "uri":
		if !validURI(value, true) {
			return "String is not a URI.", true
		}
	case "uri-reference":
		if !validURI(value, false) {
			return "String is not a URI or a relative reference.", true
		}
	}
	return "", false
}

// validURI extracts the scheme component with uriPattern and, when
// requireScheme is true, requires it to be present, in addition to
// value parsing as a URI at all.
func validURI(value string, requireScheme bool) bool {
	m := uriPattern.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	if requireScheme && m[2] == "" {
		return false
	}
	_, err := url.Parse(value)
	return err == nil
}
