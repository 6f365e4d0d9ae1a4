package matching_test

import (
	"context"
	"errors"
	"testing"

	"swipehire/matching-service/internal/domain"
	"swipehire/matching-service/internal/matching"
	"swipehire/matching-service/internal/store"
)

// ── Test fixture ───────────────────────────────────────────────────────────
//
// One seeker (user 101), one recruiter (user 201) with one active job. The
// recruiter starts with 100 credits unless a test says otherwise.

type fixture struct {
	st     *store.Memory
	engine *matching.Engine
	vis    *matching.Visibility

	seekerUserID int64
	giverUserID  int64
	seekerID     int64
	giverID      int64
	jobID        int64
}

const matchCost int64 = 10

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()

	f := &fixture{
		st:           st,
		engine:       matching.NewEngine(st, nil, matching.Costs{Match: matchCost}),
		vis:          matching.NewVisibility(st),
		seekerUserID: 101,
		giverUserID:  201,
	}

	st.AddAccount(f.seekerUserID, domain.RoleJobSeeker, true)
	st.AddAccount(f.giverUserID, domain.RoleJobGiver, true)
	f.seekerID = st.AddSeeker(domain.SeekerProfile{
		UserID:     f.seekerUserID,
		FullName:   "Asha Verma",
		Skills:     []string{"go", "sql"},
		Experience: 4,
		Education:  "B.Tech Computer Science",
		Location:   "Bengaluru",
	})
	f.giverID = st.AddGiver(domain.GiverProfile{
		UserID:      f.giverUserID,
		CompanyName: "Acme Hiring",
		Location:    "Mumbai",
	})
	f.jobID = st.AddJob(domain.Job{
		JobGiverID: f.giverID,
		Title:      "Backend Engineer",
		Active:     true,
	})

	f.fund(t, f.giverUserID, 100)
	return f
}

func (f *fixture) fund(t *testing.T, userID, amount int64) {
	t.Helper()
	if err := f.st.ApplyDelta(context.Background(), userID, amount, domain.TxTypePurchase, "Credit purchase"); err != nil {
		t.Fatalf("funding account %d: %v", userID, err)
	}
}

func (f *fixture) seekerSwipesJob(t *testing.T, direction domain.Direction) matching.SwipeOutcome {
	t.Helper()
	out, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.seekerUserID,
		TargetID:    f.jobID,
		TargetType:  domain.TargetJob,
		Direction:   direction,
	})
	if err != nil {
		t.Fatalf("seeker swipe: %v", err)
	}
	return out
}

func (f *fixture) giverSwipesSeeker(t *testing.T, direction domain.Direction, scopeJobID *int64) matching.SwipeOutcome {
	t.Helper()
	out, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.giverUserID,
		TargetID:    f.seekerID,
		TargetType:  domain.TargetJobSeeker,
		Direction:   direction,
		ScopeJobID:  scopeJobID,
	})
	if err != nil {
		t.Fatalf("recruiter swipe: %v", err)
	}
	return out
}

func (f *fixture) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	b, err := f.st.GetBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("balance of %d: %v", userID, err)
	}
	return b
}

// assertConservation checks the ledger invariant: balance equals the sum of
// all transaction amounts, for every given account.
func assertConservation(t *testing.T, st *store.Memory, userIDs ...int64) {
	t.Helper()
	ctx := context.Background()
	for _, id := range userIDs {
		balance, err := st.GetBalance(ctx, id)
		if err != nil {
			t.Fatalf("balance of %d: %v", id, err)
		}
		txs, err := st.ListTransactions(ctx, id, 1000)
		if err != nil {
			t.Fatalf("transactions of %d: %v", id, err)
		}
		var sum int64
		for _, tx := range txs {
			sum += tx.Amount
		}
		if balance != sum {
			t.Errorf("ledger conservation broken for user %d: balance=%d, sum(transactions)=%d", id, balance, sum)
		}
	}
}

func matchCount(t *testing.T, st *store.Memory, jobID int64) int {
	t.Helper()
	matches, err := st.ListMatchesForJob(context.Background(), jobID)
	if err != nil {
		t.Fatalf("listing matches: %v", err)
	}
	return len(matches)
}

// ── RecordSwipe ────────────────────────────────────────────────────────────

func TestRecordSwipe_LeftSwipeOnlyRecorded(t *testing.T) {
	f := newFixture(t)

	out := f.seekerSwipesJob(t, domain.DirectionLeft)
	if out.Kind != matching.OutcomeRecorded {
		t.Fatalf("outcome = %s, want %s", out.Kind, matching.OutcomeRecorded)
	}
	if out.Match != nil {
		t.Error("left swipe must not produce a match")
	}
	if out.Swipe.ID == 0 {
		t.Error("swipe was not persisted")
	}
}

func TestRecordSwipe_RightSwipeWithoutReciprocal(t *testing.T) {
	f := newFixture(t)

	out := f.seekerSwipesJob(t, domain.DirectionRight)
	if out.Kind != matching.OutcomeRecorded {
		t.Fatalf("outcome = %s, want %s", out.Kind, matching.OutcomeRecorded)
	}
	if got := f.balance(t, f.giverUserID); got != 100 {
		t.Errorf("recruiter balance = %d, want 100 (no credit movement without a match)", got)
	}

	// The recruiter still sees the seeker as a candidate for the job.
	candidates, err := f.vis.CandidateQueue(context.Background(), f.giverUserID, &f.jobID, domain.CandidateFilters{}, 10)
	if err != nil {
		t.Fatalf("candidate queue: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != f.seekerID {
		t.Errorf("candidate queue = %v, want the seeker still listed", candidates)
	}
}

func TestRecordSwipe_ReciprocalRightSwipesCreateMatch(t *testing.T) {
	f := newFixture(t)

	f.seekerSwipesJob(t, domain.DirectionRight)
	out := f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)

	if out.Kind != matching.OutcomeMatchCreated {
		t.Fatalf("outcome = %s, want %s", out.Kind, matching.OutcomeMatchCreated)
	}
	if out.Match == nil {
		t.Fatal("MatchCreated outcome must carry the match")
	}
	if out.Match.Status != domain.StatusActive {
		t.Errorf("new match status = %s, want active", out.Match.Status)
	}
	if out.Match.JobSeekerID != f.seekerID || out.Match.JobGiverID != f.giverID || out.Match.JobID != f.jobID {
		t.Errorf("match triple = (%d,%d,%d), want (%d,%d,%d)",
			out.Match.JobSeekerID, out.Match.JobGiverID, out.Match.JobID,
			f.seekerID, f.giverID, f.jobID)
	}

	if got := f.balance(t, f.giverUserID); got != 100-matchCost {
		t.Errorf("recruiter balance = %d, want %d", got, 100-matchCost)
	}
	if got := f.balance(t, f.seekerUserID); got != matchCost {
		t.Errorf("seeker balance = %d, want %d", got, matchCost)
	}
	if n := matchCount(t, f.st, f.jobID); n != 1 {
		t.Errorf("match count = %d, want 1", n)
	}
	assertConservation(t, f.st, f.seekerUserID, f.giverUserID)
}

func TestRecordSwipe_MatchAtomicity(t *testing.T) {
	f := newFixture(t)

	f.seekerSwipesJob(t, domain.DirectionRight)
	f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)

	ctx := context.Background()
	var debits, credits int
	giverTxs, _ := f.st.ListTransactions(ctx, f.giverUserID, 1000)
	for _, tx := range giverTxs {
		if tx.Type == domain.TxTypeMatch && tx.Amount == -matchCost {
			debits++
		}
	}
	seekerTxs, _ := f.st.ListTransactions(ctx, f.seekerUserID, 1000)
	for _, tx := range seekerTxs {
		if tx.Type == domain.TxTypeMatch && tx.Amount == matchCost {
			credits++
		}
	}
	if debits != 1 || credits != 1 {
		t.Errorf("match transactions = %d debits, %d credits; want exactly 1 of each", debits, credits)
	}
}

func TestRecordSwipe_RepeatedRightSwipeIsIdempotent(t *testing.T) {
	f := newFixture(t)

	f.seekerSwipesJob(t, domain.DirectionRight)
	f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)

	for i := 0; i < 2; i++ {
		out := f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)
		if out.Kind != matching.OutcomeAlreadyMatched {
			t.Fatalf("repeat swipe %d: outcome = %s, want %s", i+1, out.Kind, matching.OutcomeAlreadyMatched)
		}
		if out.Match == nil {
			t.Fatal("AlreadyMatched outcome must carry the existing match")
		}
	}

	if got := f.balance(t, f.giverUserID); got != 100-matchCost {
		t.Errorf("recruiter balance = %d, want %d (no duplicate debit)", got, 100-matchCost)
	}
	if got := f.balance(t, f.seekerUserID); got != matchCost {
		t.Errorf("seeker balance = %d, want %d (no duplicate credit)", got, matchCost)
	}
	if n := matchCount(t, f.st, f.jobID); n != 1 {
		t.Errorf("match count = %d, want 1", n)
	}
	assertConservation(t, f.st, f.seekerUserID, f.giverUserID)
}

func TestRecordSwipe_InsufficientCredits(t *testing.T) {
	f := newFixture(t)
	// Drain the recruiter down to 5 credits, below the match cost.
	if err := f.st.ApplyDelta(context.Background(), f.giverUserID, -95, domain.TxTypeRedemption, "drain"); err != nil {
		t.Fatalf("draining account: %v", err)
	}

	f.seekerSwipesJob(t, domain.DirectionRight)
	out := f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)

	if out.Kind != matching.OutcomeInsufficientCredits {
		t.Fatalf("outcome = %s, want %s", out.Kind, matching.OutcomeInsufficientCredits)
	}
	if out.Match != nil {
		t.Error("no match may be created on insufficient credits")
	}
	if n := matchCount(t, f.st, f.jobID); n != 0 {
		t.Errorf("match count = %d, want 0", n)
	}

	// The whole credit-moving unit rolled back: no partial movement.
	if got := f.balance(t, f.giverUserID); got != 5 {
		t.Errorf("recruiter balance = %d, want 5", got)
	}
	if got := f.balance(t, f.seekerUserID); got != 0 {
		t.Errorf("seeker balance = %d, want 0", got)
	}
	assertConservation(t, f.st, f.seekerUserID, f.giverUserID)

	// The swipe itself stays recorded: the seeker no longer appears in the
	// recruiter's queue for this job.
	candidates, err := f.vis.CandidateQueue(context.Background(), f.giverUserID, &f.jobID, domain.CandidateFilters{}, 10)
	if err != nil {
		t.Fatalf("candidate queue: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("candidate queue = %v, want empty (right-swipe exclusion applies regardless of match outcome)", candidates)
	}
}

func TestRecordSwipe_InsufficientCreditsThenFundedRetry(t *testing.T) {
	f := newFixture(t)
	if err := f.st.ApplyDelta(context.Background(), f.giverUserID, -95, domain.TxTypeRedemption, "drain"); err != nil {
		t.Fatalf("draining account: %v", err)
	}

	f.seekerSwipesJob(t, domain.DirectionRight)
	f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)

	f.fund(t, f.giverUserID, 50)
	out := f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)
	if out.Kind != matching.OutcomeMatchCreated {
		t.Fatalf("outcome after funding = %s, want %s", out.Kind, matching.OutcomeMatchCreated)
	}
	if got := f.balance(t, f.giverUserID); got != 5+50-matchCost {
		t.Errorf("recruiter balance = %d, want %d", got, 5+50-matchCost)
	}
	assertConservation(t, f.st, f.seekerUserID, f.giverUserID)
}

// staleDuplicateStore simulates a concurrent reciprocal swipe committing
// between the engine's in-transaction duplicate check and its match insert:
// inside the unit the duplicate check misses, so the insert has to hit the
// uniqueness backstop and the unit rolls back.
type staleDuplicateStore struct {
	store.Store
}

func (s *staleDuplicateStore) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx store.Store) error {
		return fn(missedDuplicateCheck{tx})
	})
}

type missedDuplicateCheck struct {
	store.Store
}

func (missedDuplicateCheck) GetMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	return domain.Match{}, store.ErrNotFound
}

func TestRecordSwipe_DuplicateInsertLoserGetsAlreadyMatched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seekerSwipesJob(t, domain.DirectionRight)
	winner := f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)
	if winner.Kind != matching.OutcomeMatchCreated {
		t.Fatalf("winner outcome = %s", winner.Kind)
	}

	racer := matching.NewEngine(&staleDuplicateStore{Store: f.st}, nil, matching.Costs{Match: matchCost})
	out, err := racer.RecordSwipe(ctx, matching.SwipeIntent{
		ActorUserID: f.giverUserID,
		TargetID:    f.seekerID,
		TargetType:  domain.TargetJobSeeker,
		Direction:   domain.DirectionRight,
		ScopeJobID:  &f.jobID,
	})
	if err != nil {
		t.Fatalf("loser swipe: %v", err)
	}
	if out.Kind != matching.OutcomeAlreadyMatched {
		t.Fatalf("loser outcome = %s, want %s", out.Kind, matching.OutcomeAlreadyMatched)
	}
	if out.Match == nil || out.Match.ID != winner.Match.ID {
		t.Errorf("loser match = %v, want the winner's match %d", out.Match, winner.Match.ID)
	}

	// The loser's unit rolled back entirely: no second debit or credit.
	if got := f.balance(t, f.giverUserID); got != 100-matchCost {
		t.Errorf("recruiter balance = %d, want %d", got, 100-matchCost)
	}
	if got := f.balance(t, f.seekerUserID); got != matchCost {
		t.Errorf("seeker balance = %d, want %d", got, matchCost)
	}
	if n := matchCount(t, f.st, f.jobID); n != 1 {
		t.Errorf("match count = %d, want 1", n)
	}
	giverTxs, _ := f.st.ListTransactions(ctx, f.giverUserID, 1000)
	var matchTxs int
	for _, tx := range giverTxs {
		if tx.Type == domain.TxTypeMatch {
			matchTxs++
		}
	}
	if matchTxs != 1 {
		t.Errorf("recruiter match transactions = %d, want 1", matchTxs)
	}
	assertConservation(t, f.st, f.seekerUserID, f.giverUserID)
}

func TestRecordSwipe_UnknownDirectionRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.seekerUserID,
		TargetID:    f.jobID,
		TargetType:  domain.TargetJob,
		Direction:   domain.Direction("up"),
	})
	var ve *matching.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError for unknown direction", err)
	}

	// Rejected before any write: the job is still undecided in the queue.
	queue, err := f.vis.JobQueue(context.Background(), f.seekerUserID, domain.JobFilters{}, 10)
	if err != nil {
		t.Fatalf("job queue: %v", err)
	}
	if len(queue) != 1 {
		t.Errorf("job queue = %v, want the job still listed", queue)
	}
}

func TestRecordSwipe_UnscopedRecruiterSwipeNeverMatches(t *testing.T) {
	f := newFixture(t)

	f.seekerSwipesJob(t, domain.DirectionRight)
	out := f.giverSwipesSeeker(t, domain.DirectionRight, nil)

	if out.Kind != matching.OutcomeRecorded {
		t.Fatalf("outcome = %s, want %s (unscoped recruiter swipes are not match-eligible)", out.Kind, matching.OutcomeRecorded)
	}
	if n := matchCount(t, f.st, f.jobID); n != 0 {
		t.Errorf("match count = %d, want 0", n)
	}
	if got := f.balance(t, f.giverUserID); got != 100 {
		t.Errorf("recruiter balance = %d, want 100", got)
	}
}

func TestRecordSwipe_ReciprocityRequiresExactJobScope(t *testing.T) {
	f := newFixture(t)
	otherJobID := f.st.AddJob(domain.Job{JobGiverID: f.giverID, Title: "Frontend Engineer", Active: true})

	// The recruiter right-swiped the seeker for the other job only.
	f.giverSwipesSeeker(t, domain.DirectionRight, &otherJobID)

	out := f.seekerSwipesJob(t, domain.DirectionRight)
	if out.Kind != matching.OutcomeRecorded {
		t.Fatalf("outcome = %s, want %s (reciprocity is per job, not per pair)", out.Kind, matching.OutcomeRecorded)
	}
	if n := matchCount(t, f.st, f.jobID); n != 0 {
		t.Errorf("match count for job %d = %d, want 0", f.jobID, n)
	}
}

func TestRecordSwipe_ScopeJobNotOwnedByRecruiter(t *testing.T) {
	f := newFixture(t)
	otherGiverUserID := int64(301)
	f.st.AddAccount(otherGiverUserID, domain.RoleJobGiver, true)
	otherGiverID := f.st.AddGiver(domain.GiverProfile{UserID: otherGiverUserID, CompanyName: "Rival Corp"})
	foreignJobID := f.st.AddJob(domain.Job{JobGiverID: otherGiverID, Title: "Analyst", Active: true})

	_, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.giverUserID,
		TargetID:    f.seekerID,
		TargetType:  domain.TargetJobSeeker,
		Direction:   domain.DirectionRight,
		ScopeJobID:  &foreignJobID,
	})
	var ve *matching.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError for foreign scope job", err)
	}
}

func TestRecordSwipe_SeekerSwipeWithScopeRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.seekerUserID,
		TargetID:    f.jobID,
		TargetType:  domain.TargetJob,
		Direction:   domain.DirectionRight,
		ScopeJobID:  &f.jobID,
	})
	var ve *matching.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError for scoped job swipe", err)
	}
}

func TestRecordSwipe_UnknownTargetJob(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.seekerUserID,
		TargetID:    9999,
		TargetType:  domain.TargetJob,
		Direction:   domain.DirectionRight,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordSwipe_ValidationHappensBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.RecordSwipe(context.Background(), matching.SwipeIntent{
		ActorUserID: f.seekerUserID,
		TargetID:    9999,
		TargetType:  domain.TargetJob,
		Direction:   domain.DirectionLeft,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// A rejected intent must not leave a swipe behind: the job queue reset
	// count doubles as a swipe-history probe.
	count, err := f.vis.ResetSkips(context.Background(), f.seekerUserID, domain.TargetJob, nil)
	if err != nil {
		t.Fatalf("resetSkips: %v", err)
	}
	if count != 0 {
		t.Errorf("reset removed %d swipes, want 0 (nothing should have been written)", count)
	}
}

// ── Match status updates ───────────────────────────────────────────────────

func matchedFixture(t *testing.T) (*fixture, domain.Match) {
	t.Helper()
	f := newFixture(t)
	f.seekerSwipesJob(t, domain.DirectionRight)
	out := f.giverSwipesSeeker(t, domain.DirectionRight, &f.jobID)
	if out.Kind != matching.OutcomeMatchCreated {
		t.Fatalf("fixture match: outcome = %s", out.Kind)
	}
	return f, *out.Match
}

func TestUpdateMatchStatus_AllowedTransition(t *testing.T) {
	f, match := matchedFixture(t)

	updated, err := f.engine.UpdateMatchStatus(context.Background(), f.giverUserID, match.ID, "contacted")
	if err != nil {
		t.Fatalf("updateMatchStatus: %v", err)
	}
	if updated.Status != domain.StatusContacted {
		t.Errorf("status = %s, want contacted", updated.Status)
	}
}

func TestUpdateMatchStatus_SeekerMayUpdateToo(t *testing.T) {
	f, match := matchedFixture(t)

	if _, err := f.engine.UpdateMatchStatus(context.Background(), f.seekerUserID, match.ID, "contacted"); err != nil {
		t.Fatalf("seeker-side update: %v", err)
	}
}

func TestUpdateMatchStatus_ForbiddenTransition(t *testing.T) {
	f, match := matchedFixture(t)

	_, err := f.engine.UpdateMatchStatus(context.Background(), f.giverUserID, match.ID, "hired")
	var ve *matching.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError (active → hired skips levels)", err)
	}
}

func TestUpdateMatchStatus_UnknownStatus(t *testing.T) {
	f, match := matchedFixture(t)

	_, err := f.engine.UpdateMatchStatus(context.Background(), f.giverUserID, match.ID, "ghosted")
	var ve *matching.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestUpdateMatchStatus_StrangerGetsNotFound(t *testing.T) {
	f, match := matchedFixture(t)
	strangerID := int64(999)
	f.st.AddAccount(strangerID, domain.RoleJobSeeker, true)
	f.st.AddSeeker(domain.SeekerProfile{UserID: strangerID, FullName: "Someone Else"})

	_, err := f.engine.UpdateMatchStatus(context.Background(), strangerID, match.ID, "contacted")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for non-party caller", err)
	}
}

// ── Listings and credit summary ────────────────────────────────────────────

func TestListMatches_RoleAware(t *testing.T) {
	f, match := matchedFixture(t)
	ctx := context.Background()

	seekerMatches, err := f.engine.ListMatches(ctx, f.seekerUserID)
	if err != nil {
		t.Fatalf("seeker matches: %v", err)
	}
	giverMatches, err := f.engine.ListMatches(ctx, f.giverUserID)
	if err != nil {
		t.Fatalf("recruiter matches: %v", err)
	}
	if len(seekerMatches) != 1 || seekerMatches[0].ID != match.ID {
		t.Errorf("seeker matches = %v, want the one match", seekerMatches)
	}
	if len(giverMatches) != 1 || giverMatches[0].ID != match.ID {
		t.Errorf("recruiter matches = %v, want the one match", giverMatches)
	}
}

func TestMatchesForJob_OwnershipRequired(t *testing.T) {
	f, match := matchedFixture(t)
	ctx := context.Background()

	matches, err := f.engine.MatchesForJob(ctx, f.giverUserID, f.jobID)
	if err != nil {
		t.Fatalf("matchesForJob: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != match.ID {
		t.Errorf("matches = %v, want the one match", matches)
	}

	otherGiverUserID := int64(301)
	f.st.AddAccount(otherGiverUserID, domain.RoleJobGiver, true)
	f.st.AddGiver(domain.GiverProfile{UserID: otherGiverUserID, CompanyName: "Rival Corp"})
	if _, err := f.engine.MatchesForJob(ctx, otherGiverUserID, f.jobID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for foreign job", err)
	}
}

func TestCreditSummary(t *testing.T) {
	f, _ := matchedFixture(t)

	summary, err := f.engine.CreditSummary(context.Background(), f.giverUserID)
	if err != nil {
		t.Fatalf("creditSummary: %v", err)
	}
	if summary.Balance != 100-matchCost {
		t.Errorf("balance = %d, want %d", summary.Balance, 100-matchCost)
	}
	// Funding purchase + match debit.
	if len(summary.Transactions) != 2 {
		t.Errorf("transaction count = %d, want 2", len(summary.Transactions))
	}
}
