// HTTP handlers for the matching service.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	POST /swipes                  → record a swipe intent
//	POST /swipes/reset            → reset left swipes (un-skip)
//	GET  /queue/candidates        → recruiter's candidate queue
//	GET  /queue/jobs              → seeker's job queue
//	GET  /matches                 → caller's matches
//	GET  /matches/{id}            → one match
//	POST /matches/{id}/status     → match status transition
//	GET  /jobs/{id}/matches       → matched applicants for one job
//	GET  /credits                 → balance + ledger history
package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"swipehire/matching-service/internal/domain"
	"swipehire/matching-service/internal/store"
)

// Handler holds the engine and visibility filter behind the HTTP surface.
type Handler struct {
	engine     *Engine
	visibility *Visibility
}

// NewHandler returns a configured Handler.
func NewHandler(engine *Engine, visibility *Visibility) *Handler {
	return &Handler{engine: engine, visibility: visibility}
}

// RegisterRoutes mounts all matching-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swipes", h.handleSwipes)
	mux.HandleFunc("/swipes/reset", h.handleResetSkips)
	mux.HandleFunc("/queue/candidates", h.handleCandidateQueue)
	mux.HandleFunc("/queue/jobs", h.handleJobQueue)
	mux.HandleFunc("/matches", h.handleMatches)
	mux.HandleFunc("/matches/", h.handleMatchAction)
	mux.HandleFunc("/jobs/", h.handleJobMatches)
	mux.HandleFunc("/credits", h.handleCredits)
}

// ─── Swipes ──────────────────────────────────────────────────────────────────

func (h *Handler) handleSwipes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body struct {
		TargetID   int64  `json:"targetId"`
		TargetType string `json:"targetType"`
		Direction  string `json:"direction"`
		ScopeJobID *int64 `json:"scopeJobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	targetType, err := domain.ParseTargetType(body.TargetType)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	direction, err := domain.ParseDirection(body.Direction)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.engine.RecordSwipe(r.Context(), SwipeIntent{
		ActorUserID: userID,
		TargetID:    body.TargetID,
		TargetType:  targetType,
		Direction:   direction,
		ScopeJobID:  body.ScopeJobID,
	})
	if err != nil {
		writeError(w, "recordSwipe", err)
		return
	}
	jsonOK(w, outcome)
}

func (h *Handler) handleResetSkips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var body struct {
		TargetType string `json:"targetType"`
		ScopeJobID *int64 `json:"scopeJobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	targetType, err := domain.ParseTargetType(body.TargetType)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.visibility.ResetSkips(r.Context(), userID, targetType, body.ScopeJobID)
	if err != nil {
		writeError(w, "resetSkips", err)
		return
	}
	jsonOK(w, map[string]int64{"reset": count})
}

// ─── Queues ──────────────────────────────────────────────────────────────────

func (h *Handler) handleCandidateQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := domain.CandidateFilters{
		Skills:    SplitSkills(q.Get("skills")),
		Location:  q.Get("location"),
		Education: q.Get("education"),
	}
	if raw := q.Get("minExperience"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "minExperience must be an integer", http.StatusBadRequest)
			return
		}
		filters.MinExperience = &n
	}
	scopeJobID, err := optionalID(q.Get("jobId"))
	if err != nil {
		jsonError(w, "jobId must be an integer", http.StatusBadRequest)
		return
	}

	candidates, err := h.visibility.CandidateQueue(r.Context(), userID, scopeJobID, filters, intParam(q.Get("limit")))
	if err != nil {
		writeError(w, "candidateQueue", err)
		return
	}
	jsonOK(w, candidates)
}

func (h *Handler) handleJobQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filters := domain.JobFilters{
		Keywords:  q.Get("keywords"),
		Location:  q.Get("location"),
		JobType:   q.Get("jobType"),
		MinSalary: q.Get("minSalary"),
		MaxSalary: q.Get("maxSalary"),
	}

	jobs, err := h.visibility.JobQueue(r.Context(), userID, filters, intParam(q.Get("limit")))
	if err != nil {
		writeError(w, "jobQueue", err)
		return
	}
	jsonOK(w, jobs)
}

// ─── Matches ─────────────────────────────────────────────────────────────────

func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	matches, err := h.engine.ListMatches(r.Context(), userID)
	if err != nil {
		writeError(w, "listMatches", err)
		return
	}
	jsonOK(w, matches)
}

// handleMatchAction handles GET /matches/{id} and POST /matches/{id}/status.
func (h *Handler) handleMatchAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	matchID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		jsonError(w, "invalid match id", http.StatusNotFound)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		match, err := h.engine.GetMatch(r.Context(), userID, matchID)
		if err != nil {
			writeError(w, "getMatch", err)
			return
		}
		jsonOK(w, match)

	case len(parts) == 3 && parts[2] == "status" && r.Method == http.MethodPost:
		var body struct {
			NewStatus string `json:"newStatus"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewStatus == "" {
			jsonError(w, "body must contain newStatus", http.StatusBadRequest)
			return
		}
		match, err := h.engine.UpdateMatchStatus(r.Context(), userID, matchID, body.NewStatus)
		if err != nil {
			writeError(w, "updateMatchStatus", err)
			return
		}
		jsonOK(w, match)

	default:
		jsonError(w, fmt.Sprintf("unknown match action %q", r.URL.Path), http.StatusNotFound)
	}
}

// handleJobMatches handles GET /jobs/{id}/matches.
func (h *Handler) handleJobMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "matches" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	jobID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		jsonError(w, "invalid job id", http.StatusNotFound)
		return
	}

	matches, err := h.engine.MatchesForJob(r.Context(), userID, jobID)
	if err != nil {
		writeError(w, "matchesForJob", err)
		return
	}
	jsonOK(w, matches)
}

// ─── Credits ─────────────────────────────────────────────────────────────────

func (h *Handler) handleCredits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	summary, err := h.engine.CreditSummary(r.Context(), userID)
	if err != nil {
		writeError(w, "creditSummary", err)
		return
	}
	jsonOK(w, summary)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// callerID extracts and parses the x-user-id header; on failure it writes
// the error response and returns ok=false.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("x-user-id")
	if raw == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		jsonError(w, "invalid x-user-id header", http.StatusUnauthorized)
		return 0, false
	}
	return id, true
}

func optionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func intParam(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}

// writeError maps domain errors to HTTP responses.
func writeError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	default:
		log.Printf("[matching] %s error: %v", op, err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
