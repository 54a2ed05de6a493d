// Package api defines the backend contract the console consumes: the typed
// snapshot/alert models and an HTTP client for the workflow service. The
// client is deliberately fail-soft: triage must keep working against a
// degraded backend, so list calls return empty results and control calls
// swallow errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is used when no override is configured.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to the fraud workflow backend.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient builds a client for the given base URL. A nil logger disables
// logging.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.base }

// HTTPClient exposes the underlying client for the stream manager, which
// needs requests without the list-call timeout.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: c.http.Transport}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Alerts fetches the triage queue. Any failure yields an empty list, not an
// error; the alerts page renders its empty state instead.
func (c *Client) Alerts(ctx context.Context) []Alert {
	var out struct {
		Alerts []Alert `json:"alerts"`
	}
	if err := c.getJSON(ctx, "/api/alerts", &out); err != nil {
		c.log.Debug("alert fetch failed", zap.Error(err))
		return nil
	}
	return out.Alerts
}

// StartSession asks the backend to open a workflow session for an alert.
func (c *Client) StartSession(ctx context.Context, alert Alert) (string, error) {
	payload := map[string]any{"alert_id": alert.AlertID, "alert": alert}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.postJSON(ctx, "/api/start", payload, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("backend returned empty session id")
	}
	return out.SessionID, nil
}

// UserReply forwards an analyst chat reply into the running session. Empty
// text and missing session ids are no-ops; failures are swallowed.
func (c *Client) UserReply(ctx context.Context, sessionID, text string) {
	if sessionID == "" || strings.TrimSpace(text) == "" {
		return
	}
	if err := c.postJSON(ctx, "/api/user_reply/"+url.PathEscape(sessionID), map[string]string{"text": text}, nil); err != nil {
		c.log.Debug("user reply failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// EndSession tells the backend the analyst is done. Best-effort: the backend
// times sessions out on its own.
func (c *Client) EndSession(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := c.postJSON(ctx, "/api/end/"+url.PathEscape(sessionID), nil, nil); err != nil {
		c.log.Debug("end session failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// Finalize asks the running session to skip remaining dialogue and produce
// its policy decision now. Best-effort.
func (c *Client) Finalize(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := c.postJSON(ctx, "/api/finalize/"+url.PathEscape(sessionID), nil, nil); err != nil {
		c.log.Debug("finalize failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// Health reports whether the backend answers its health probe.
func (c *Client) Health(ctx context.Context) bool {
	var out struct {
		OK bool `json:"ok"`
	}
	if err := c.getJSON(ctx, "/api/health", &out); err != nil {
		return false
	}
	return out.OK
}

// CaseSummary fetches the contextual memory summary bound to a case.
// Optional enrichment: an error degrades the memory panel only.
func (c *Client) CaseSummary(ctx context.Context, caseID string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.getJSON(ctx, "/api/mem0/summary/"+url.PathEscape(caseID), &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// CaseMemories fetches stored memory items for a case.
func (c *Client) CaseMemories(ctx context.Context, caseID string, limit int) ([]CaseMemory, error) {
	if limit <= 0 {
		limit = 10
	}
	var out struct {
		Items []CaseMemory `json:"items"`
	}
	path := fmt.Sprintf("/api/mem0/memories/%s?limit=%d", url.PathEscape(caseID), limit)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GraphSearch runs a free-text search over the case graph memory.
func (c *Client) GraphSearch(ctx context.Context, caseID, query string, limit int) ([]GraphResult, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("query", query)
	if caseID != "" {
		q.Set("case_id", caseID)
	}
	q.Set("limit", fmt.Sprint(limit))
	var out struct {
		Results []GraphResult `json:"results"`
	}
	if err := c.getJSON(ctx, "/api/mem0/graph/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GraphAdd stores a free-text observation into the case graph memory.
func (c *Client) GraphAdd(ctx context.Context, caseID, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return c.postJSON(ctx, "/api/mem0/graph/add/"+url.PathEscape(caseID), map[string]string{"content": content}, nil)
}

// GraphClear wipes graph memory for a case.
func (c *Client) GraphClear(ctx context.Context, caseID string) error {
	return c.postJSON(ctx, "/api/mem0/graph/clear/"+url.PathEscape(caseID), nil, nil)
}

// RAGSearch queries the policy/SOP retrieval endpoint.
func (c *Client) RAGSearch(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 5
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("top_k", fmt.Sprint(topK))
	var out struct {
		Results []string `json:"results"`
	}
	if err := c.getJSON(ctx, "/api/rag?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// StreamURL returns the SSE endpoint for a session.
func (c *Client) StreamURL(sessionID string) string {
	return c.base + "/api/stream/" + url.PathEscape(sessionID)
}
