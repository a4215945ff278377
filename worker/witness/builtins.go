package witness

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// builtins returns the platform's built-in witnesses, covering file-size,
// search-rate-limit, workspace path-traversal, and network-denial checks
// for sandboxed workers, per spec §4.J.
func builtins() map[string]Witness {
	return map[string]Witness{
		"file_size":       FileSize,
		"path_traversal":  PathTraversal,
		"network_denial":  NetworkDenial,
		"search_rate_limit": newSearchRateLimiter().Witness,
	}
}

// FileSize warns when action["content"]'s byte length exceeds value (an
// int or float64 byte limit).
func FileSize(_ context.Context, action map[string]any, value any) ([]Warning, error) {
	content, _ := action["content"].(string)
	limit := toInt(value)
	if limit <= 0 || len(content) <= limit {
		return nil, nil
	}
	return []Warning{{Message: fmt.Sprintf("content size %d exceeds limit %d", len(content), limit)}}, nil
}

// PathTraversal warns when action["path"] escapes the workspace root via
// ".." segments or an absolute path outside it.
func PathTraversal(_ context.Context, action map[string]any, value any) ([]Warning, error) {
	path, _ := action["path"].(string)
	if path == "" {
		return nil, nil
	}
	root, _ := value.(string)
	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") {
		return []Warning{{Message: fmt.Sprintf("path %q escapes workspace via parent traversal", path)}}, nil
	}
	if root != "" && filepath.IsAbs(clean) && !strings.HasPrefix(clean, filepath.Clean(root)) {
		return []Warning{{Message: fmt.Sprintf("path %q is outside workspace %q", path, root)}}, nil
	}
	return nil, nil
}

// NetworkDenial warns whenever action describes a network call at all;
// value is ignored — sandboxed workers get zero network budget.
func NetworkDenial(_ context.Context, action map[string]any, _ any) ([]Warning, error) {
	if _, ok := action["host"]; ok {
		return []Warning{{Message: "network access denied for sandboxed worker"}}, nil
	}
	if t, _ := action["type"].(string); t == "network_call" {
		return []Warning{{Message: "network access denied for sandboxed worker"}}, nil
	}
	return nil, nil
}

// searchRateLimiter tracks search-type action counts within a sliding
// one-minute window, per worker journey (keyed by action["journey_id"]).
type searchRateLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
}

func newSearchRateLimiter() *searchRateLimiter {
	return &searchRateLimiter{history: make(map[string][]time.Time)}
}

// Witness warns when the calling journey has issued more than value
// search-type actions in the trailing minute.
func (l *searchRateLimiter) Witness(_ context.Context, action map[string]any, value any) ([]Warning, error) {
	t, _ := action["type"].(string)
	if t != "search" {
		return nil, nil
	}
	limit := toInt(value)
	journey, _ := action["journey_id"].(string)

	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-time.Minute)
	kept := l.history[journey][:0]
	for _, ts := range l.history[journey] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	l.history[journey] = kept

	if limit > 0 && len(kept) > limit {
		return []Warning{{Message: fmt.Sprintf("search rate %d exceeds limit %d per minute", len(kept), limit)}}, nil
	}
	return nil, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
