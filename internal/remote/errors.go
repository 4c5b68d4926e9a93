package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotFound     = errors.New("remote: not found")
	ErrUnauthorized = errors.New("remote: unauthorized")
)

// StatusError is returned for every non-2xx backend response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error: status=%d body=%s", e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Retryable reports whether repeating the same GET may succeed.
func (e *StatusError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// Message extracts the human readable part of a backend error body. The
// backend answers either {"detail": "..."}, {"error": "..."} or a map of
// field name to list of messages.
func (e *StatusError) Message() string {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal([]byte(e.Body), &flat); err != nil || len(flat) == 0 {
		if body := strings.TrimSpace(e.Body); body != "" {
			return body
		}
		return http.StatusText(e.Status)
	}
	for _, key := range []string{"detail", "error", "message"} {
		var s string
		if raw, ok := flat[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}

	var parts []string
	for field, raw := range flat {
		var msgs []string
		if json.Unmarshal(raw, &msgs) == nil && len(msgs) > 0 {
			parts = append(parts, field+": "+strings.Join(msgs, " "))
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(e.Body)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
