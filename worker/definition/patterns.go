package definition

import "regexp"

// forbiddenPatterns are host-language code markers that must never appear
// in a string-valued definition field (layer 3, pattern scan). A hit on
// any of these means the definition is not purely declarative.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\beval\s*\(`),
	regexp.MustCompile(`(?i)\bexec\s*\(`),
	regexp.MustCompile(`(?i)\bos\.system\b`),
	regexp.MustCompile(`(?i)\bsubprocess\b`),
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`(?i)\bimport\s+`),
	regexp.MustCompile(`(?i)\blambda\b`),
	regexp.MustCompile(`(?i)\bfunction\s*\(`),
	regexp.MustCompile(`(?i)\bclass\s+\w+`),
	regexp.MustCompile("`"),
}

// scanForbidden reports the first forbidden pattern matched in s, or ""
// if s is clean.
func scanForbidden(s string) string {
	for _, p := range forbiddenPatterns {
		if p.MatchString(s) {
			return p.String()
		}
	}
	return ""
}
