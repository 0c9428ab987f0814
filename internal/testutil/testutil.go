// Package testutil holds the small helpers the HTTP handler tests share.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// NewTestRequest builds a JSON request the way the frontend sends one.
func NewTestRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewTestRequestWithJSON marshals data into the request body.
func NewTestRequestWithJSON(t *testing.T, method, path string, data interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}
	return NewTestRequest(method, path, &buf)
}

// AssertStatus fails the test when the recorded status differs. The body is
// included because it usually names the reason.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d. Body: %s", want, rr.Code, rr.Body.String())
	}
}

// DecodeJSON parses the recorded response body into a map.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body %q: %v", rr.Body.String(), err)
	}
	return body
}
