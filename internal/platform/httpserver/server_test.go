package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	issueservice "civicpulse/contexts/civic-reporting/issue-service"
	issuehttp "civicpulse/contexts/civic-reporting/issue-service/transport/http"
	engagementledger "civicpulse/contexts/community-engagement/engagement-ledger"
	ledgerhttp "civicpulse/contexts/community-engagement/engagement-ledger/transport/http"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ledger := engagementledger.NewInMemoryModule(nil)
	issues := issueservice.NewInMemoryModule(ledger, nil)
	return New(issues, ledger, nil, ":0", 0)
}

func doJSON(t *testing.T, handler http.Handler, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func createIssue(t *testing.T, handler http.Handler, reporterID string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/issues", reporterID, "", issuehttp.CreateIssueRequest{
		Title:       "Overflowing bin at the park entrance",
		Description: "Garbage has not been collected in a week.",
		Category:    "sanitation",
		Latitude:    12.9716,
		Longitude:   77.5946,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create issue status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[issuehttp.IssueResponse](t, rec)
	if resp.IssueID == "" || resp.Status != "submitted" {
		t.Fatalf("unexpected create response: %+v", resp)
	}
	if resp.Department != "Sanitation Department" {
		t.Fatalf("sanitation issue routed to %q", resp.Department)
	}
	return resp.IssueID
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	rec := doJSON(t, server.Handler(), http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestCreateIssueRequiresUserHeader(t *testing.T) {
	server := newTestServer(t)
	rec := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/issues", "", "", issuehttp.CreateIssueRequest{})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestVoteEndpointRoundTrip(t *testing.T) {
	server := newTestServer(t)
	handler := server.Handler()
	issueID := createIssue(t, handler, "reporter-1")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/issues/"+issueID+"/votes", "voter-1", "", ledgerhttp.CastVoteRequest{
		VoteType: "upvote",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("vote status = %d, body %s", rec.Code, rec.Body.String())
	}
	vote := decode[ledgerhttp.VoteResponse](t, rec)
	if !vote.Applied || vote.UrgencyScore != 2 {
		t.Fatalf("unexpected vote response: %+v", vote)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/issues/"+issueID+"/votes", "voter-1", "", ledgerhttp.CastVoteRequest{
		VoteType: "downvote",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad vote type status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/issues/nope/votes", "voter-1", "", ledgerhttp.CastVoteRequest{
		VoteType: "upvote",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown issue status = %d, want 404", rec.Code)
	}
}

func TestStatusEndpointRoleAndTransitions(t *testing.T) {
	server := newTestServer(t)
	handler := server.Handler()
	issueID := createIssue(t, handler, "reporter-1")
	path := "/api/v1/issues/" + issueID + "/status"

	rec := doJSON(t, handler, http.MethodPatch, path, "citizen-1", "citizen", issuehttp.UpdateStatusRequest{To: "acknowledged"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("citizen status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPatch, path, "staff-1", "staff", issuehttp.UpdateStatusRequest{To: "in_progress"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("staff advance status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Backward moves violate the forward-only ordering.
	rec = doJSON(t, handler, http.MethodPatch, path, "staff-1", "staff", issuehttp.UpdateStatusRequest{To: "acknowledged"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("backward status = %d, want 400", rec.Code)
	}

	// A stale caller view of the current status is a conflict.
	rec = doJSON(t, handler, http.MethodPatch, path, "staff-1", "staff", issuehttp.UpdateStatusRequest{From: "acknowledged", To: "resolved"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("stale from status = %d, want 409", rec.Code)
	}
}

func TestCommentEndpoints(t *testing.T) {
	server := newTestServer(t)
	handler := server.Handler()
	issueID := createIssue(t, handler, "reporter-1")
	path := "/api/v1/issues/" + issueID + "/comments"

	rec := doJSON(t, handler, http.MethodPost, path, "user-1", "", ledgerhttp.CreateCommentRequest{Text: "first"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, http.MethodPost, path, "user-2", "", ledgerhttp.CreateCommentRequest{Text: "second"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("comment status = %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, path, "user-2", "", ledgerhttp.CreateCommentRequest{Text: "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank comment status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, path+"?order=newest", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decode[ledgerhttp.CommentListResponse](t, rec)
	if len(list.Items) != 2 || list.Items[0].Text != "second" {
		t.Fatalf("newest-first list broken: %+v", list.Items)
	}
}

func TestTrendingAndStatsEndpoints(t *testing.T) {
	server := newTestServer(t)
	handler := server.Handler()
	issueID := createIssue(t, handler, "reporter-1")

	doJSON(t, handler, http.MethodPost, "/api/v1/issues/"+issueID+"/votes", "voter-1", "", ledgerhttp.CastVoteRequest{VoteType: "upvote"})

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/feed/trending?window_hours=12&limit=5", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trending status = %d", rec.Code)
	}
	trending := decode[ledgerhttp.TrendingResponse](t, rec)
	if trending.WindowHours != 12 || len(trending.Items) != 1 || trending.Items[0].WindowUpvotes != 1 {
		t.Fatalf("unexpected trending response: %+v", trending)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/users/reporter-1/stats", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	stats := decode[ledgerhttp.UserStatsResponse](t, rec)
	if stats.Karma != 12 || stats.IssuesReported != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/users/nobody/stats", "", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user status = %d, want 404", rec.Code)
	}
}

func TestNearbyEndpointValidation(t *testing.T) {
	server := newTestServer(t)
	handler := server.Handler()
	createIssue(t, handler, "reporter-1")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/issues/nearby?lat=12.9716&lon=77.5946", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("nearby status = %d, body %s", rec.Code, rec.Body.String())
	}
	nearby := decode[issuehttp.NearbyListResponse](t, rec)
	if len(nearby.Items) != 1 {
		t.Fatalf("expected one nearby issue, got %+v", nearby.Items)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/issues/nearby?lat=abc&lon=1", "", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad lat status = %d, want 400", rec.Code)
	}
}
