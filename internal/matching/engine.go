// Package matching contains the business logic of the swipe marketplace:
// the match engine (swipe intake, reciprocity, the credit-moving unit) and
// the visibility filter (queue computation and skip reset). It is
// transport-agnostic; the HTTP handlers in this package delegate to it.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"swipehire/matching-service/internal/domain"
	"swipehire/matching-service/internal/events"
	"swipehire/matching-service/internal/store"
)

// DefaultMatchCost is the number of credits moved from recruiter to seeker
// when a match forms, unless overridden by configuration.
const DefaultMatchCost int64 = 10

// DefaultJobPostCost is the posting fee charged by the external job-posting
// flow; carried here so both costs come from one injected configuration.
const DefaultJobPostCost int64 = 1

// Costs are the credit prices the engine reads at call time. The storage of
// these settings belongs to the platform-settings collaborator; the engine
// only consumes the injected values.
type Costs struct {
	Match   int64
	JobPost int64
}

// OutcomeKind classifies what a recorded swipe led to.
type OutcomeKind string

const (
	// OutcomeRecorded — swipe stored, no match formed (left swipe, no
	// reciprocal right-swipe yet, or unscoped recruiter swipe).
	OutcomeRecorded OutcomeKind = "recorded"
	// OutcomeMatchCreated — reciprocal interest found, match inserted and
	// credits transferred.
	OutcomeMatchCreated OutcomeKind = "match_created"
	// OutcomeAlreadyMatched — the pairing was already matched; nothing
	// changed.
	OutcomeAlreadyMatched OutcomeKind = "already_matched"
	// OutcomeInsufficientCredits — reciprocal interest found but the
	// recruiter cannot cover the match cost; the swipe stays recorded.
	OutcomeInsufficientCredits OutcomeKind = "insufficient_credits"
)

// SwipeIntent is one swipe decision submitted by the UI layer.
type SwipeIntent struct {
	ActorUserID int64
	TargetID    int64
	TargetType  domain.TargetType
	Direction   domain.Direction
	ScopeJobID  *int64
}

// SwipeOutcome is the result of RecordSwipe.
type SwipeOutcome struct {
	Kind  OutcomeKind   `json:"outcome"`
	Swipe domain.Swipe  `json:"swipe"`
	Match *domain.Match `json:"match,omitempty"`
}

// Engine turns swipe intents into swipe history, matches and credit
// transfers.
type Engine struct {
	store  store.Store
	events events.Publisher
	costs  Costs
}

// NewEngine returns a configured Engine. events may be nil (no publishing).
func NewEngine(st store.Store, pub events.Publisher, costs Costs) *Engine {
	if costs.Match <= 0 {
		costs.Match = DefaultMatchCost
	}
	if costs.JobPost <= 0 {
		costs.JobPost = DefaultJobPostCost
	}
	return &Engine{store: st, events: pub, costs: costs}
}

// pairing is a resolved (seeker, giver, job) triple for a right-swipe.
// matchable is false for recruiter swipes without a job scope, which are
// recorded but can never form a match.
type pairing struct {
	seekerID     int64
	seekerUserID int64
	giverID      int64
	giverUserID  int64
	jobID        int64
	matchable    bool
}

// RecordSwipe persists the swipe and, for right swipes, checks reciprocity
// and runs the credit-moving unit. The swipe insert commits before any match
// work and is never rolled back: a user's decision history survives a failed
// match side-effect.
func (e *Engine) RecordSwipe(ctx context.Context, intent SwipeIntent) (SwipeOutcome, error) {
	pair, err := e.resolvePairing(ctx, intent)
	if err != nil {
		return SwipeOutcome{}, err
	}

	swipe, err := e.store.InsertSwipe(ctx, domain.Swipe{
		ActorUserID: intent.ActorUserID,
		TargetID:    intent.TargetID,
		TargetType:  intent.TargetType,
		Direction:   intent.Direction,
		ScopeJobID:  intent.ScopeJobID,
	})
	if err != nil {
		return SwipeOutcome{}, err
	}

	outcome := SwipeOutcome{Kind: OutcomeRecorded, Swipe: swipe}
	if intent.Direction == domain.DirectionLeft || !pair.matchable {
		return outcome, nil
	}

	reciprocal, err := e.hasReciprocalSwipe(ctx, intent, pair)
	if err != nil {
		return SwipeOutcome{}, err
	}
	if !reciprocal {
		return outcome, nil
	}

	match, kind, err := e.createMatch(ctx, pair)
	if err != nil {
		return SwipeOutcome{}, err
	}
	outcome.Kind = kind
	outcome.Match = match

	if kind == OutcomeMatchCreated {
		e.publish(ctx, events.MatchCreated, map[string]any{
			"type":        events.MatchCreated,
			"matchId":     match.ID,
			"jobId":       match.JobID,
			"jobSeekerId": match.JobSeekerID,
			"jobGiverId":  match.JobGiverID,
		})
	}
	return outcome, nil
}

// resolvePairing validates the intent against the directory and maps it to
// the (seeker, giver, job) triple a match would be keyed on. All failures
// here happen before any write.
func (e *Engine) resolvePairing(ctx context.Context, intent SwipeIntent) (pairing, error) {
	switch intent.Direction {
	case domain.DirectionLeft, domain.DirectionRight:
	default:
		return pairing{}, &ValidationError{Msg: fmt.Sprintf("unknown swipe direction %q", intent.Direction)}
	}
	switch intent.TargetType {
	case domain.TargetJob:
		if intent.ScopeJobID != nil {
			return pairing{}, &ValidationError{Msg: "scopeJobId is only valid when swiping on a job_seeker"}
		}
		seeker, err := e.store.GetSeekerByUserID(ctx, intent.ActorUserID)
		if err != nil {
			return pairing{}, err
		}
		job, err := e.store.GetJob(ctx, intent.TargetID)
		if err != nil {
			return pairing{}, err
		}
		giver, err := e.store.GetGiverByID(ctx, job.JobGiverID)
		if err != nil {
			return pairing{}, err
		}
		return pairing{
			seekerID:     seeker.ID,
			seekerUserID: intent.ActorUserID,
			giverID:      giver.ID,
			giverUserID:  giver.UserID,
			jobID:        job.ID,
			matchable:    true,
		}, nil

	case domain.TargetJobSeeker:
		giver, err := e.store.GetGiverByUserID(ctx, intent.ActorUserID)
		if err != nil {
			return pairing{}, err
		}
		seeker, err := e.store.GetSeekerByID(ctx, intent.TargetID)
		if err != nil {
			return pairing{}, err
		}
		pair := pairing{
			seekerID:     seeker.ID,
			seekerUserID: seeker.UserID,
			giverID:      giver.ID,
			giverUserID:  intent.ActorUserID,
		}
		// A recruiter swipe is only match-eligible when scoped to one of
		// the recruiter's own jobs. Unscoped swipes are recorded and
		// nothing more.
		if intent.ScopeJobID == nil {
			return pair, nil
		}
		job, err := e.store.GetJob(ctx, *intent.ScopeJobID)
		if err != nil {
			return pairing{}, err
		}
		if job.JobGiverID != giver.ID {
			return pairing{}, &ValidationError{Msg: fmt.Sprintf("job %d does not belong to the swiping recruiter", job.ID)}
		}
		pair.jobID = job.ID
		pair.matchable = true
		return pair, nil
	}
	return pairing{}, &ValidationError{Msg: fmt.Sprintf("unknown target type %q", intent.TargetType)}
}

// hasReciprocalSwipe checks whether the other side of the pairing already
// right-swiped on the same (seeker, giver, job) combination.
func (e *Engine) hasReciprocalSwipe(ctx context.Context, intent SwipeIntent, pair pairing) (bool, error) {
	if intent.TargetType == domain.TargetJob {
		// The seeker swiped on a job: look for the recruiter's right-swipe
		// on this seeker scoped to this exact job.
		return e.store.HasRightSwipe(ctx, pair.giverUserID, domain.TargetJobSeeker, pair.seekerID, &pair.jobID)
	}
	// The recruiter swiped on a seeker: look for the seeker's right-swipe
	// on the scoped job.
	return e.store.HasRightSwipe(ctx, pair.seekerUserID, domain.TargetJob, pair.jobID, nil)
}

// createMatch runs the single failure-atomic unit: duplicate check, debit,
// credit, both ledger entries and the match insert. The uniqueness
// constraint on matches is the backstop against concurrent reciprocal
// swipes; a violation is treated as "already matched", never surfaced as an
// error.
func (e *Engine) createMatch(ctx context.Context, pair pairing) (*domain.Match, OutcomeKind, error) {
	cost := e.costs.Match
	var (
		match domain.Match
		kind  OutcomeKind
	)
	err := e.store.WithinTx(ctx, func(tx store.Store) error {
		existing, err := tx.GetMatch(ctx, pair.seekerID, pair.giverID, pair.jobID)
		if err == nil {
			match = existing
			kind = OutcomeAlreadyMatched
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.ApplyDelta(ctx, pair.giverUserID, -cost, domain.TxTypeMatch,
			fmt.Sprintf("%d credits used for match", cost)); err != nil {
			return err
		}
		if err := tx.ApplyDelta(ctx, pair.seekerUserID, cost, domain.TxTypeMatch,
			"Match credit"); err != nil {
			return err
		}

		created, err := tx.InsertMatch(ctx, pair.seekerID, pair.giverID, pair.jobID)
		if err != nil {
			return err
		}
		match = created
		kind = OutcomeMatchCreated
		return nil
	})
	switch {
	case err == nil:
		return &match, kind, nil
	case errors.Is(err, store.ErrInsufficientCredits):
		return nil, OutcomeInsufficientCredits, nil
	case errors.Is(err, store.ErrDuplicateMatch):
		// Lost the race against the reciprocal swipe; the unit rolled
		// back, so fetch what the winner committed.
		existing, ferr := e.store.GetMatch(ctx, pair.seekerID, pair.giverID, pair.jobID)
		if ferr != nil {
			return nil, "", ferr
		}
		return &existing, OutcomeAlreadyMatched, nil
	default:
		return nil, "", err
	}
}

// UpdateMatchStatus applies a status transition on behalf of either side of
// the match. Unknown ids and matches the caller is not part of both report
// ErrNotFound.
func (e *Engine) UpdateMatchStatus(ctx context.Context, userID, matchID int64, newStatusStr string) (domain.Match, error) {
	newStatus, err := domain.ParseMatchStatus(newStatusStr)
	if err != nil {
		return domain.Match{}, &ValidationError{Msg: err.Error()}
	}

	match, err := e.matchForUser(ctx, userID, matchID)
	if err != nil {
		return domain.Match{}, err
	}

	if !domain.IsTransitionAllowed(match.Status, newStatus) {
		return domain.Match{}, &ValidationError{
			Msg: fmt.Sprintf("transition %s → %s is not allowed", match.Status, newStatus),
		}
	}

	updated, err := e.store.UpdateMatchStatus(ctx, matchID, newStatus)
	if err != nil {
		return domain.Match{}, err
	}

	e.publish(ctx, events.MatchStatusChanged, map[string]any{
		"type":    events.MatchStatusChanged,
		"matchId": updated.ID,
		"from":    string(match.Status),
		"to":      string(updated.Status),
	})
	return updated, nil
}

// GetMatch returns one match, validating that the caller is a party to it.
func (e *Engine) GetMatch(ctx context.Context, userID, matchID int64) (domain.Match, error) {
	return e.matchForUser(ctx, userID, matchID)
}

func (e *Engine) matchForUser(ctx context.Context, userID, matchID int64) (domain.Match, error) {
	match, err := e.store.GetMatchByID(ctx, matchID)
	if err != nil {
		return domain.Match{}, err
	}
	if seeker, err := e.store.GetSeekerByUserID(ctx, userID); err == nil && seeker.ID == match.JobSeekerID {
		return match, nil
	}
	if giver, err := e.store.GetGiverByUserID(ctx, userID); err == nil && giver.ID == match.JobGiverID {
		return match, nil
	}
	return domain.Match{}, store.ErrNotFound
}

// ListMatches returns the caller's matches, newest first, resolving the
// caller's side from their account role.
func (e *Engine) ListMatches(ctx context.Context, userID int64) ([]domain.Match, error) {
	account, err := e.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch account.Role {
	case domain.RoleJobSeeker:
		seeker, err := e.store.GetSeekerByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return e.store.ListMatchesForSeeker(ctx, seeker.ID)
	case domain.RoleJobGiver:
		giver, err := e.store.GetGiverByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return e.store.ListMatchesForGiver(ctx, giver.ID)
	}
	return nil, &ValidationError{Msg: fmt.Sprintf("unknown account role %q", account.Role)}
}

// MatchesForJob returns the matched applicants for one of the caller's jobs.
func (e *Engine) MatchesForJob(ctx context.Context, userID, jobID int64) ([]domain.Match, error) {
	giver, err := e.store.GetGiverByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.JobGiverID != giver.ID {
		return nil, store.ErrNotFound
	}
	return e.store.ListMatchesForJob(ctx, jobID)
}

// CreditSummary is the caller's balance plus recent ledger history.
type CreditSummary struct {
	Balance      int64                      `json:"balance"`
	Transactions []domain.CreditTransaction `json:"transactions"`
}

// CreditSummary returns the caller's current balance and most recent
// transactions.
func (e *Engine) CreditSummary(ctx context.Context, userID int64) (CreditSummary, error) {
	balance, err := e.store.GetBalance(ctx, userID)
	if err != nil {
		return CreditSummary{}, err
	}
	txs, err := e.store.ListTransactions(ctx, userID, 50)
	if err != nil {
		return CreditSummary{}, err
	}
	return CreditSummary{Balance: balance, Transactions: txs}, nil
}

// publish sends an event if a publisher is configured; failures are logged
// and swallowed.
func (e *Engine) publish(ctx context.Context, channel string, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(ctx, channel, payload); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}
