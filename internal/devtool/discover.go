package devtool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Target describes one debuggable page listed by the host's HTTP discovery
// endpoint.
type Target struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Type                 string `json:"type"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Selector decides whether a discovered target is the one to attach to.
type Selector func(Target) bool

// Any matches every target. Attachment picks the first listed page.
func Any() Selector {
	return func(Target) bool { return true }
}

// TitleContains matches targets whose title contains the given substring.
func TitleContains(s string) Selector {
	return func(t Target) bool { return strings.Contains(t.Title, s) }
}

// URLContains matches targets whose URL contains the given substring.
func URLContains(s string) Selector {
	return func(t Target) bool { return strings.Contains(t.URL, s) }
}

// ListTargets fetches the host's discovery listing from endpoint, the base
// HTTP URL of the debug server.
func ListTargets(ctx context.Context, endpoint string) ([]Target, error) {
	url := strings.TrimRight(endpoint, "/") + "/json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Code: ErrCodeTransport, Message: "build discovery request", Err: err}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &Error{Code: ErrCodeTransport, Message: "fetch " + url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Code:    ErrCodeTransport,
			Message: fmt.Sprintf("discovery returned %s", resp.Status),
		}
	}

	var targets []Target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, &Error{Code: ErrCodeTransport, Message: "decode discovery listing", Err: err}
	}
	return targets, nil
}

// SelectTarget returns the first attachable target the selector accepts.
// Targets without a debugger URL cannot be attached to and are skipped.
func SelectTarget(targets []Target, sel Selector) (Target, error) {
	for _, t := range targets {
		if t.WebSocketDebuggerURL == "" {
			continue
		}
		if sel == nil || sel(t) {
			return t, nil
		}
	}
	return Target{}, &Error{
		Code:    ErrCodeNoTargetFound,
		Message: fmt.Sprintf("no attachable target among %d listed", len(targets)),
	}
}
