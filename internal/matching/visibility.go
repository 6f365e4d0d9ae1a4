package matching

import (
	"context"
	"fmt"
	"strings"

	"swipehire/matching-service/internal/domain"
	"swipehire/matching-service/internal/store"
)

// Queue size bounds. Callers that pass no limit get DefaultQueueLimit;
// nothing may request more than MaxQueueLimit in one call.
const (
	DefaultQueueLimit = 10
	MaxQueueLimit     = 100
)

// Visibility computes the unseen-target queues and resets skip history. It
// never writes match or ledger state; DeleteLeftSwipes is its only
// mutation.
type Visibility struct {
	store store.Store
}

// NewVisibility returns a Visibility over the given store.
func NewVisibility(st store.Store) *Visibility {
	return &Visibility{store: st}
}

// CandidateQueue returns the recruiter's queue of undecided candidates,
// optionally scoped to one of the recruiter's jobs.
func (v *Visibility) CandidateQueue(ctx context.Context, viewerUserID int64, scopeJobID *int64, filters domain.CandidateFilters, limit int) ([]domain.SeekerProfile, error) {
	giver, err := v.store.GetGiverByUserID(ctx, viewerUserID)
	if err != nil {
		return nil, err
	}
	if scopeJobID != nil {
		job, err := v.store.GetJob(ctx, *scopeJobID)
		if err != nil {
			return nil, err
		}
		if job.JobGiverID != giver.ID {
			return nil, &ValidationError{Msg: fmt.Sprintf("job %d does not belong to the viewer", job.ID)}
		}
	}
	filters.Skills = NormalizeSkills(filters.Skills)
	return v.store.ListCandidates(ctx, store.CandidateQuery{
		ViewerUserID: viewerUserID,
		ScopeJobID:   scopeJobID,
		Filters:      filters,
		Limit:        clampLimit(limit),
	})
}

// JobQueue returns the seeker's queue of undecided active jobs.
func (v *Visibility) JobQueue(ctx context.Context, viewerUserID int64, filters domain.JobFilters, limit int) ([]domain.JobCard, error) {
	if _, err := v.store.GetSeekerByUserID(ctx, viewerUserID); err != nil {
		return nil, err
	}
	return v.store.ListJobs(ctx, store.JobQuery{
		ViewerUserID: viewerUserID,
		Filters:      filters,
		Limit:        clampLimit(limit),
	})
}

// ResetSkips deletes the viewer's left swipes against targetType, scoped to
// scopeJobID when given, excluding any target already matched with the
// viewer. Returns the number of removed records; 0 is a normal result.
func (v *Visibility) ResetSkips(ctx context.Context, viewerUserID int64, targetType domain.TargetType, scopeJobID *int64) (int64, error) {
	if targetType == domain.TargetJob && scopeJobID != nil {
		return 0, &ValidationError{Msg: "scopeJobId is only valid when resetting job_seeker swipes"}
	}
	return v.store.DeleteLeftSwipes(ctx, viewerUserID, targetType, scopeJobID)
}

// NormalizeSkills trims whitespace and drops empty entries, so both
// comma-separated query strings and JSON arrays filter identically.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitSkills parses a comma-separated skill list from a query parameter.
func SplitSkills(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return NormalizeSkills(strings.Split(raw, ","))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueueLimit
	}
	if limit > MaxQueueLimit {
		return MaxQueueLimit
	}
	return limit
}
