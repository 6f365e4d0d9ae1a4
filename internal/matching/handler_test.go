package matching_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"swipehire/matching-service/internal/domain"
	"swipehire/matching-service/internal/matching"
)

func newServer(t *testing.T) (*fixture, *httptest.Server) {
	t.Helper()
	f := newFixture(t)
	mux := http.NewServeMux()
	matching.NewHandler(f.engine, f.vis).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string, userID int64, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if userID != 0 {
		req.Header.Set("x-user-id", fmt.Sprint(userID))
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return resp, decoded
}

func TestHandler_MissingUserHeader(t *testing.T) {
	_, srv := newServer(t)

	resp, _ := doRequest(t, srv, http.MethodGet, "/credits", 0, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandler_SwipeLifecycleOverHTTP(t *testing.T) {
	f, srv := newServer(t)

	resp, body := doRequest(t, srv, http.MethodPost, "/swipes", f.seekerUserID,
		fmt.Sprintf(`{"targetId":%d,"targetType":"job","direction":"right"}`, f.jobID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seeker swipe status = %d", resp.StatusCode)
	}
	if got := string(body["outcome"]); got != `"recorded"` {
		t.Errorf("seeker swipe outcome = %s, want \"recorded\"", got)
	}

	resp, body = doRequest(t, srv, http.MethodPost, "/swipes", f.giverUserID,
		fmt.Sprintf(`{"targetId":%d,"targetType":"job_seeker","direction":"right","scopeJobId":%d}`, f.seekerID, f.jobID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recruiter swipe status = %d", resp.StatusCode)
	}
	if got := string(body["outcome"]); got != `"match_created"` {
		t.Fatalf("recruiter swipe outcome = %s, want \"match_created\"", got)
	}

	var match domain.Match
	if err := json.Unmarshal(body["match"], &match); err != nil {
		t.Fatalf("decoding match: %v", err)
	}

	resp, body = doRequest(t, srv, http.MethodPost,
		fmt.Sprintf("/matches/%d/status", match.ID), f.giverUserID, `{"newStatus":"contacted"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status update status = %d (%v)", resp.StatusCode, body)
	}
	if got := string(body["status"]); got != `"contacted"` {
		t.Errorf("updated status = %s, want \"contacted\"", got)
	}

	resp, body = doRequest(t, srv, http.MethodGet, "/credits", f.giverUserID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("credits status = %d", resp.StatusCode)
	}
	if got := string(body["balance"]); got != "90" {
		t.Errorf("balance = %s, want 90", got)
	}
}

func TestHandler_BadRequests(t *testing.T) {
	f, srv := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid direction", http.MethodPost, "/swipes", `{"targetId":1,"targetType":"job","direction":"up"}`, http.StatusBadRequest},
		{"invalid target type", http.MethodPost, "/swipes", `{"targetId":1,"targetType":"company","direction":"left"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/swipes", `{`, http.StatusBadRequest},
		{"swipe via GET", http.MethodGet, "/swipes", "", http.StatusMethodNotAllowed},
		{"unknown match", http.MethodGet, "/matches/424242", "", http.StatusNotFound},
		{"non-numeric match id", http.MethodGet, "/matches/abc", "", http.StatusNotFound},
		{"status without body", http.MethodPost, "/matches/1/status", `{}`, http.StatusBadRequest},
		{"bad limit type ignored, bad jobId rejected", http.MethodGet, "/queue/candidates?jobId=abc", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doRequest(t, srv, tt.method, tt.path, f.seekerUserID, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHandler_QueueFiltersFromQueryString(t *testing.T) {
	f, srv := newServer(t)

	req, _ := http.NewRequest(http.MethodGet,
		srv.URL+fmt.Sprintf("/queue/candidates?jobId=%d&skills=go,sql&minExperience=3", f.jobID), nil)
	req.Header.Set("x-user-id", fmt.Sprint(f.giverUserID))
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var candidates []domain.SeekerProfile
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		t.Fatalf("decoding queue: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != f.seekerID {
		t.Errorf("filtered queue = %+v, want only the seeded seeker", candidates)
	}
}
