// Package store owns the persistence contracts of the matching core: swipe
// history, matches, the credit ledger and the read-only profile/job
// directory. Two implementations exist: Postgres (production) and Memory
// (unit tests and local development).
package store

import (
	"context"
	"errors"

	"swipehire/matching-service/internal/domain"
)

// Sentinel errors shared by all implementations.
var (
	// ErrNotFound is returned when a referenced account, profile, job,
	// match or ledger row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientCredits is returned by Ledger.ApplyDelta when a debit
	// would take the balance below zero. The conditional update that
	// produces it is the sufficient-funds check; callers must not pre-check
	// the balance separately.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrDuplicateMatch is returned by InsertMatch when a match already
	// exists for the (seeker, giver, job) triple. Backed by a uniqueness
	// constraint so two concurrent reciprocal swipes cannot both commit.
	ErrDuplicateMatch = errors.New("match already exists")
)

// CandidateQuery selects the recruiter's unseen-candidate queue.
type CandidateQuery struct {
	ViewerUserID int64
	ScopeJobID   *int64
	Filters      domain.CandidateFilters
	Limit        int
}

// JobQuery selects the seeker's unseen-job queue.
type JobQuery struct {
	ViewerUserID int64
	Filters      domain.JobFilters
	Limit        int
}

// SwipeStore is the append-only swipe history. Rows are never updated;
// DeleteLeftSwipes is the single deletion path and only removes left swipes
// whose target has no match with the actor.
type SwipeStore interface {
	InsertSwipe(ctx context.Context, s domain.Swipe) (domain.Swipe, error)
	HasRightSwipe(ctx context.Context, actorUserID int64, targetType domain.TargetType, targetID int64, scopeJobID *int64) (bool, error)
	DeleteLeftSwipes(ctx context.Context, actorUserID int64, targetType domain.TargetType, scopeJobID *int64) (int64, error)
}

// MatchStore persists confirmed matches. InsertMatch must be called inside
// the credit-moving transaction; it reports ErrDuplicateMatch on the
// uniqueness backstop.
type MatchStore interface {
	InsertMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error)
	GetMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error)
	GetMatchByID(ctx context.Context, id int64) (domain.Match, error)
	UpdateMatchStatus(ctx context.Context, id int64, status domain.MatchStatus) (domain.Match, error)
	ListMatchesForSeeker(ctx context.Context, seekerID int64) ([]domain.Match, error)
	ListMatchesForGiver(ctx context.Context, giverID int64) ([]domain.Match, error)
	ListMatchesForJob(ctx context.Context, jobID int64) ([]domain.Match, error)
}

// Ledger is the per-account credit balance plus its append-only transaction
// log. ApplyDelta performs the balance change and the log append as one
// unit; every mutator of credits (match transfer, purchase, redemption,
// refund) must go through it.
type Ledger interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ApplyDelta(ctx context.Context, userID, amount int64, txType, description string) error
	ListTransactions(ctx context.Context, userID int64, limit int) ([]domain.CreditTransaction, error)
}

// Directory provides the read-only lookups the engine needs to resolve
// reciprocity: job → owning recruiter, and profile id ↔ user id mapping.
type Directory interface {
	GetAccount(ctx context.Context, userID int64) (domain.Account, error)
	GetJob(ctx context.Context, id int64) (domain.Job, error)
	GetSeekerByID(ctx context.Context, id int64) (domain.SeekerProfile, error)
	GetSeekerByUserID(ctx context.Context, userID int64) (domain.SeekerProfile, error)
	GetGiverByID(ctx context.Context, id int64) (domain.GiverProfile, error)
	GetGiverByUserID(ctx context.Context, userID int64) (domain.GiverProfile, error)
}

// QueueStore computes the visibility queues. Exclusion rules: any target the
// viewer has already swiped (left or right, scoped to the job when a scope
// is given) and any target already matched with the viewer (scoped when a
// scope is given, across all jobs otherwise).
type QueueStore interface {
	ListCandidates(ctx context.Context, q CandidateQuery) ([]domain.SeekerProfile, error)
	ListJobs(ctx context.Context, q JobQuery) ([]domain.JobCard, error)
}

// Store is the full persistence contract. WithinTx runs fn against a
// transaction-bound view of the store and commits only if fn returns nil;
// any error rolls the whole unit back. Nested calls reuse the open
// transaction.
type Store interface {
	SwipeStore
	MatchStore
	Ledger
	Directory
	QueueStore
	WithinTx(ctx context.Context, fn func(Store) error) error
}
