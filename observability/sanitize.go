package observability

import "fmt"

// DefaultTruncateLimit is the default string-field length sanitised before
// outputs are emitted, per spec §4.E.
const DefaultTruncateLimit = 2000

const truncateSuffix = "...[truncated]"

// Sanitizer truncates long string fields in execution outputs before they
// are passed to spans, recording the pre-truncation length in Metadata.
type Sanitizer struct {
	Limit int
}

// NewSanitizer returns a Sanitizer using DefaultTruncateLimit.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{Limit: DefaultTruncateLimit}
}

// SanitizeResult is the sanitised value paired with the truncation metadata
// recorded for any field that was cut.
type SanitizeResult struct {
	Value    any
	Metadata map[string]int // field path -> pre-truncation length, only for truncated fields
}

// Sanitize walks v (maps, slices, and scalars) truncating any string longer
// than s.Limit, element-wise for composite values, and recording the
// pre-truncation length of each truncated field.
func (s *Sanitizer) Sanitize(v any) SanitizeResult {
	meta := make(map[string]int)
	out := s.walk(v, "", meta)
	return SanitizeResult{Value: out, Metadata: meta}
}

func (s *Sanitizer) walk(v any, path string, meta map[string]int) any {
	switch t := v.(type) {
	case string:
		if len(t) > s.Limit {
			meta[path] = len(t)
			return t[:s.Limit] + truncateSuffix
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = s.walk(vv, joinPath(path, k), meta)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = s.walk(vv, fmt.Sprintf("%s[%d]", path, i), meta)
		}
		return out
	default:
		return v
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
