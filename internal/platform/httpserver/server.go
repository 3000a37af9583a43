package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	issueservice "civicpulse/contexts/civic-reporting/issue-service"
	issueerrors "civicpulse/contexts/civic-reporting/issue-service/domain/errors"
	issuehttp "civicpulse/contexts/civic-reporting/issue-service/transport/http"
	engagementledger "civicpulse/contexts/community-engagement/engagement-ledger"
	ledgererrors "civicpulse/contexts/community-engagement/engagement-ledger/domain/errors"
	ledgerhttp "civicpulse/contexts/community-engagement/engagement-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	addr           string
	issues         issueservice.Module
	ledger         engagementledger.Module
	trendingWindow time.Duration
}

func New(
	issues issueservice.Module,
	ledger engagementledger.Module,
	logger *slog.Logger,
	addr string,
	trendingWindow time.Duration,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		addr:           addr,
		issues:         issues,
		ledger:         ledger,
		trendingWindow: trendingWindow,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/v1/issues", s.handleCreateIssue)
	s.mux.HandleFunc("GET /api/v1/issues", s.handleListIssues)
	s.mux.HandleFunc("GET /api/v1/issues/nearby", s.handleNearbyIssues)
	s.mux.HandleFunc("GET /api/v1/issues/{issue_id}", s.handleGetIssue)
	s.mux.HandleFunc("PATCH /api/v1/issues/{issue_id}/status", s.handleUpdateStatus)

	s.mux.HandleFunc("POST /api/v1/issues/{issue_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/v1/issues/{issue_id}/comments", s.handleCreateComment)
	s.mux.HandleFunc("GET /api/v1/issues/{issue_id}/comments", s.handleListComments)
	s.mux.HandleFunc("GET /api/v1/issues/{issue_id}/engagement", s.handleGetEngagement)

	s.mux.HandleFunc("GET /api/v1/feed/trending", s.handleTrendingFeed)
	s.mux.HandleFunc("GET /api/v1/karma/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /api/v1/users/{user_id}/stats", s.handleUserStats)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req issuehttp.CreateIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	resp, err := s.issues.Handler.CreateIssueHandler(r.Context(), userID, req)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseOptionalInt(w, query.Get("limit"), "limit")
	if !ok {
		return
	}
	resp, err := s.issues.Handler.ListIssuesHandler(
		r.Context(),
		query.Get("category"),
		query.Get("status"),
		query.Get("reporter_id"),
		limit,
	)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNearbyIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	latitude, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_lat", "lat must be a number")
		return
	}
	longitude, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_lon", "lon must be a number")
		return
	}
	radius := 0.0
	if raw := query.Get("radius_km"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeIssueError(w, http.StatusBadRequest, "invalid_radius", "radius_km must be a number")
			return
		}
	}
	limit, ok := parseOptionalInt(w, query.Get("limit"), "limit")
	if !ok {
		return
	}
	resp, err := s.issues.Handler.NearbyHandler(r.Context(), latitude, longitude, radius, limit)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	resp, err := s.issues.Handler.GetIssueHandler(r.Context(), r.PathValue("issue_id"))
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req issuehttp.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIssueError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	err := s.issues.Handler.UpdateStatusHandler(
		r.Context(),
		r.PathValue("issue_id"),
		userID,
		r.Header.Get("X-User-Role"),
		req,
	)
	if err != nil {
		writeIssueDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CastVoteHandler(r.Context(), r.PathValue("issue_id"), userID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CreateCommentHandler(r.Context(), r.PathValue("issue_id"), userID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	newestFirst := strings.EqualFold(r.URL.Query().Get("order"), "newest")
	resp, err := s.ledger.Handler.ListCommentsHandler(r.Context(), r.PathValue("issue_id"), newestFirst)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEngagement(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.EngagementHandler(r.Context(), r.PathValue("issue_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrendingFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	windowHours, ok := parseOptionalInt(w, query.Get("window_hours"), "window_hours")
	if !ok {
		return
	}
	limit, ok := parseOptionalInt(w, query.Get("limit"), "limit")
	if !ok {
		return
	}
	window := s.trendingWindow
	if windowHours > 0 {
		window = time.Duration(windowHours) * time.Hour
	}
	resp, err := s.ledger.Handler.TrendingHandler(r.Context(), window, limit)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseOptionalInt(w, r.URL.Query().Get("limit"), "limit")
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.LeaderboardHandler(r.Context(), limit)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.UserStatsHandler(r.Context(), r.PathValue("user_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeIssueDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, issueerrors.ErrInvalidIssueInput):
		writeIssueError(w, http.StatusBadRequest, "invalid_issue", err.Error())
	case errors.Is(err, issueerrors.ErrIssueNotFound):
		writeIssueError(w, http.StatusNotFound, "issue_not_found", err.Error())
	case errors.Is(err, issueerrors.ErrForbidden):
		writeIssueError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		// Gateway calls surface ledger sentinels unchanged.
		writeLedgerDomainError(w, err)
	}
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidVoteInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_vote", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidInput):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrEmptyComment):
		writeLedgerError(w, http.StatusBadRequest, "empty_comment", err.Error())
	case errors.Is(err, ledgererrors.ErrIssueNotFound):
		writeLedgerError(w, http.StatusNotFound, "issue_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrCommentNotFound):
		writeLedgerError(w, http.StatusNotFound, "comment_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrUserNotFound):
		writeLedgerError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrIssueTerminal):
		writeLedgerError(w, http.StatusConflict, "issue_terminal", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidTransition):
		writeLedgerError(w, http.StatusBadRequest, "invalid_transition", err.Error())
	case errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIssueError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, issuehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "unauthorized", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func parseOptionalInt(w http.ResponseWriter, raw string, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		writeLedgerError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return value, true
}
