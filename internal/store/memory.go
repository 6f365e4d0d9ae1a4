package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"swipehire/matching-service/internal/domain"
)

// Memory is an in-memory implementation of Store used for unit testing the
// engine and visibility semantics without a running database, and for local
// development. It honours the same contracts as the Postgres implementation,
// including the uniqueness backstop on matches and snapshot rollback in
// WithinTx.
//
// Locking: every exported *Memory method takes the mutex; WithinTx holds it
// for the whole unit and passes fn a memTx view whose methods run on the
// already-locked state. Concurrent callers outside the unit block until it
// commits or rolls back, mirroring row-lock behaviour in Postgres.
type Memory struct {
	mu sync.Mutex

	accounts map[int64]*domain.Account // keyed by user id
	seekers  []domain.SeekerProfile
	givers   []domain.GiverProfile
	jobs     []domain.Job
	swipes   []domain.Swipe
	matches  []domain.Match
	txLog    []domain.CreditTransaction

	nextID map[string]int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[int64]*domain.Account),
		nextID:   make(map[string]int64),
	}
}

func (m *Memory) next(kind string) int64 {
	m.nextID[kind]++
	return m.nextID[kind]
}

// WithinTx snapshots the full state, runs fn against an unlocked view, and
// restores the snapshot when fn fails. The mutex is held for the duration,
// so nothing else observes intermediate state.
func (m *Memory) WithinTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	err := fn(memTx{m})
	if err != nil {
		m.restore(snapshot)
	}
	return err
}

// memTx is the view WithinTx hands to fn: same state, no locking. Valid only
// while WithinTx holds the mutex.
type memTx struct {
	m *Memory
}

// WithinTx on the view reuses the open unit.
func (t memTx) WithinTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

type memSnapshot struct {
	accounts map[int64]domain.Account
	swipes   []domain.Swipe
	matches  []domain.Match
	txLog    []domain.CreditTransaction
	nextID   map[string]int64
}

func (m *Memory) snapshot() memSnapshot {
	s := memSnapshot{
		accounts: make(map[int64]domain.Account, len(m.accounts)),
		swipes:   append([]domain.Swipe(nil), m.swipes...),
		matches:  append([]domain.Match(nil), m.matches...),
		txLog:    append([]domain.CreditTransaction(nil), m.txLog...),
		nextID:   make(map[string]int64, len(m.nextID)),
	}
	for id, a := range m.accounts {
		s.accounts[id] = *a
	}
	for k, v := range m.nextID {
		s.nextID[k] = v
	}
	return s
}

func (m *Memory) restore(s memSnapshot) {
	m.accounts = make(map[int64]*domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		acc := a
		m.accounts[id] = &acc
	}
	m.swipes = s.swipes
	m.matches = s.matches
	m.txLog = s.txLog
	m.nextID = s.nextID
}

// ─── Seed helpers (tests and local development) ──────────────────────────────

// AddAccount registers a ledger account with an opening balance of zero.
func (m *Memory) AddAccount(userID int64, role domain.Role, profileComplete bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[userID] = &domain.Account{
		UserID:          userID,
		Role:            role,
		ProfileComplete: profileComplete,
		CreatedAt:       time.Now(),
	}
}

// AddSeeker registers a job-seeker profile and returns its id.
func (m *Memory) AddSeeker(p domain.SeekerProfile) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.next("seeker")
	m.seekers = append(m.seekers, p)
	return p.ID
}

// AddGiver registers a recruiter profile and returns its id.
func (m *Memory) AddGiver(p domain.GiverProfile) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.next("giver")
	m.givers = append(m.givers, p)
	return p.ID
}

// AddJob registers a job posting and returns its id.
func (m *Memory) AddJob(j domain.Job) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = m.next("job")
	j.CreatedAt = time.Now()
	m.jobs = append(m.jobs, j)
	return j.ID
}

// ─── SwipeStore ──────────────────────────────────────────────────────────────

func (m *Memory) InsertSwipe(ctx context.Context, s domain.Swipe) (domain.Swipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertSwipe(s)
}

func (t memTx) InsertSwipe(ctx context.Context, s domain.Swipe) (domain.Swipe, error) {
	return t.m.insertSwipe(s)
}

func (m *Memory) insertSwipe(s domain.Swipe) (domain.Swipe, error) {
	s.ID = m.next("swipe")
	s.CreatedAt = time.Now()
	m.swipes = append(m.swipes, s)
	return s, nil
}

func (m *Memory) HasRightSwipe(ctx context.Context, actorUserID int64, targetType domain.TargetType, targetID int64, scopeJobID *int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasRightSwipe(actorUserID, targetType, targetID, scopeJobID)
}

func (t memTx) HasRightSwipe(ctx context.Context, actorUserID int64, targetType domain.TargetType, targetID int64, scopeJobID *int64) (bool, error) {
	return t.m.hasRightSwipe(actorUserID, targetType, targetID, scopeJobID)
}

func (m *Memory) hasRightSwipe(actorUserID int64, targetType domain.TargetType, targetID int64, scopeJobID *int64) (bool, error) {
	for _, s := range m.swipes {
		if s.ActorUserID != actorUserID || s.TargetType != targetType ||
			s.TargetID != targetID || s.Direction != domain.DirectionRight {
			continue
		}
		if scopeJobID != nil && (s.ScopeJobID == nil || *s.ScopeJobID != *scopeJobID) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (m *Memory) DeleteLeftSwipes(ctx context.Context, actorUserID int64, targetType domain.TargetType, scopeJobID *int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLeftSwipes(actorUserID, targetType, scopeJobID)
}

func (t memTx) DeleteLeftSwipes(ctx context.Context, actorUserID int64, targetType domain.TargetType, scopeJobID *int64) (int64, error) {
	return t.m.deleteLeftSwipes(actorUserID, targetType, scopeJobID)
}

func (m *Memory) deleteLeftSwipes(actorUserID int64, targetType domain.TargetType, scopeJobID *int64) (int64, error) {
	kept := m.swipes[:0]
	var removed int64
	for _, s := range m.swipes {
		del := s.ActorUserID == actorUserID &&
			s.TargetType == targetType &&
			s.Direction == domain.DirectionLeft
		if del && scopeJobID != nil {
			del = s.ScopeJobID != nil && *s.ScopeJobID == *scopeJobID
		}
		if del && m.targetMatchedWith(actorUserID, targetType, s.TargetID, scopeJobID) {
			del = false
		}
		if del {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.swipes = kept
	return removed, nil
}

// targetMatchedWith reports whether the viewer already has a match involving
// the given swipe target. Callers hold the lock.
func (m *Memory) targetMatchedWith(viewerUserID int64, targetType domain.TargetType, targetID int64, scopeJobID *int64) bool {
	for _, match := range m.matches {
		switch targetType {
		case domain.TargetJobSeeker:
			if match.JobSeekerID != targetID {
				continue
			}
			g, ok := m.giverByID(match.JobGiverID)
			if !ok || g.UserID != viewerUserID {
				continue
			}
			if scopeJobID != nil && match.JobID != *scopeJobID {
				continue
			}
			return true
		case domain.TargetJob:
			if match.JobID != targetID {
				continue
			}
			s, ok := m.seekerByID(match.JobSeekerID)
			if !ok || s.UserID != viewerUserID {
				continue
			}
			return true
		}
	}
	return false
}

// ─── MatchStore ──────────────────────────────────────────────────────────────

func (m *Memory) InsertMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertMatch(seekerID, giverID, jobID)
}

func (t memTx) InsertMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	return t.m.insertMatch(seekerID, giverID, jobID)
}

func (m *Memory) insertMatch(seekerID, giverID, jobID int64) (domain.Match, error) {
	for _, match := range m.matches {
		if match.JobSeekerID == seekerID && match.JobGiverID == giverID && match.JobID == jobID {
			return domain.Match{}, ErrDuplicateMatch
		}
	}
	now := time.Now()
	match := domain.Match{
		ID:          m.next("match"),
		JobSeekerID: seekerID,
		JobGiverID:  giverID,
		JobID:       jobID,
		Status:      domain.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.matches = append(m.matches, match)
	return match, nil
}

func (m *Memory) GetMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getMatch(seekerID, giverID, jobID)
}

func (t memTx) GetMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	return t.m.getMatch(seekerID, giverID, jobID)
}

func (m *Memory) getMatch(seekerID, giverID, jobID int64) (domain.Match, error) {
	for _, match := range m.matches {
		if match.JobSeekerID == seekerID && match.JobGiverID == giverID && match.JobID == jobID {
			return match, nil
		}
	}
	return domain.Match{}, ErrNotFound
}

func (m *Memory) GetMatchByID(ctx context.Context, id int64) (domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getMatchByID(id)
}

func (t memTx) GetMatchByID(ctx context.Context, id int64) (domain.Match, error) {
	return t.m.getMatchByID(id)
}

func (m *Memory) getMatchByID(id int64) (domain.Match, error) {
	for _, match := range m.matches {
		if match.ID == id {
			return match, nil
		}
	}
	return domain.Match{}, ErrNotFound
}

func (m *Memory) UpdateMatchStatus(ctx context.Context, id int64, status domain.MatchStatus) (domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateMatchStatus(id, status)
}

func (t memTx) UpdateMatchStatus(ctx context.Context, id int64, status domain.MatchStatus) (domain.Match, error) {
	return t.m.updateMatchStatus(id, status)
}

func (m *Memory) updateMatchStatus(id int64, status domain.MatchStatus) (domain.Match, error) {
	for i := range m.matches {
		if m.matches[i].ID == id {
			m.matches[i].Status = status
			m.matches[i].UpdatedAt = time.Now()
			return m.matches[i], nil
		}
	}
	return domain.Match{}, ErrNotFound
}

func (m *Memory) listMatches(keep func(domain.Match) bool) []domain.Match {
	out := make([]domain.Match, 0)
	for i := len(m.matches) - 1; i >= 0; i-- { // newest first
		if keep(m.matches[i]) {
			out = append(out, m.matches[i])
		}
	}
	return out
}

func (m *Memory) ListMatchesForSeeker(ctx context.Context, seekerID int64) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listMatches(func(mm domain.Match) bool { return mm.JobSeekerID == seekerID }), nil
}

func (t memTx) ListMatchesForSeeker(ctx context.Context, seekerID int64) ([]domain.Match, error) {
	return t.m.listMatches(func(mm domain.Match) bool { return mm.JobSeekerID == seekerID }), nil
}

func (m *Memory) ListMatchesForGiver(ctx context.Context, giverID int64) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listMatches(func(mm domain.Match) bool { return mm.JobGiverID == giverID }), nil
}

func (t memTx) ListMatchesForGiver(ctx context.Context, giverID int64) ([]domain.Match, error) {
	return t.m.listMatches(func(mm domain.Match) bool { return mm.JobGiverID == giverID }), nil
}

func (m *Memory) ListMatchesForJob(ctx context.Context, jobID int64) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listMatches(func(mm domain.Match) bool { return mm.JobID == jobID }), nil
}

func (t memTx) ListMatchesForJob(ctx context.Context, jobID int64) ([]domain.Match, error) {
	return t.m.listMatches(func(mm domain.Match) bool { return mm.JobID == jobID }), nil
}

// ─── Ledger ──────────────────────────────────────────────────────────────────

func (m *Memory) GetBalance(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getBalance(userID)
}

func (t memTx) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return t.m.getBalance(userID)
}

func (m *Memory) getBalance(userID int64) (int64, error) {
	a, ok := m.accounts[userID]
	if !ok {
		return 0, ErrNotFound
	}
	return a.Credits, nil
}

func (m *Memory) ApplyDelta(ctx context.Context, userID, amount int64, txType, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyDelta(userID, amount, txType, description)
}

func (t memTx) ApplyDelta(ctx context.Context, userID, amount int64, txType, description string) error {
	return t.m.applyDelta(userID, amount, txType, description)
}

func (m *Memory) applyDelta(userID, amount int64, txType, description string) error {
	a, ok := m.accounts[userID]
	if !ok {
		return ErrNotFound
	}
	if a.Credits+amount < 0 {
		return ErrInsufficientCredits
	}
	a.Credits += amount
	m.txLog = append(m.txLog, domain.CreditTransaction{
		ID:          m.next("tx"),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (m *Memory) ListTransactions(ctx context.Context, userID int64, limit int) ([]domain.CreditTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listTransactions(userID, limit)
}

func (t memTx) ListTransactions(ctx context.Context, userID int64, limit int) ([]domain.CreditTransaction, error) {
	return t.m.listTransactions(userID, limit)
}

func (m *Memory) listTransactions(userID int64, limit int) ([]domain.CreditTransaction, error) {
	out := make([]domain.CreditTransaction, 0)
	for i := len(m.txLog) - 1; i >= 0 && len(out) < limit; i-- {
		if m.txLog[i].UserID == userID {
			out = append(out, m.txLog[i])
		}
	}
	return out, nil
}

// ─── Directory ───────────────────────────────────────────────────────────────

func (m *Memory) GetAccount(ctx context.Context, userID int64) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getAccount(userID)
}

func (t memTx) GetAccount(ctx context.Context, userID int64) (domain.Account, error) {
	return t.m.getAccount(userID)
}

func (m *Memory) getAccount(userID int64) (domain.Account, error) {
	a, ok := m.accounts[userID]
	if !ok {
		return domain.Account{}, ErrNotFound
	}
	return *a, nil
}

func (m *Memory) seekerByID(id int64) (domain.SeekerProfile, bool) {
	for _, s := range m.seekers {
		if s.ID == id {
			return s, true
		}
	}
	return domain.SeekerProfile{}, false
}

func (m *Memory) giverByID(id int64) (domain.GiverProfile, bool) {
	for _, g := range m.givers {
		if g.ID == id {
			return g, true
		}
	}
	return domain.GiverProfile{}, false
}

func (m *Memory) jobByID(id int64) (domain.Job, bool) {
	for _, j := range m.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return domain.Job{}, false
}

func (m *Memory) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getJob(id)
}

func (t memTx) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	return t.m.getJob(id)
}

func (m *Memory) getJob(id int64) (domain.Job, error) {
	if j, ok := m.jobByID(id); ok {
		return j, nil
	}
	return domain.Job{}, ErrNotFound
}

func (m *Memory) GetSeekerByID(ctx context.Context, id int64) (domain.SeekerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSeekerByID(id)
}

func (t memTx) GetSeekerByID(ctx context.Context, id int64) (domain.SeekerProfile, error) {
	return t.m.getSeekerByID(id)
}

func (m *Memory) getSeekerByID(id int64) (domain.SeekerProfile, error) {
	if s, ok := m.seekerByID(id); ok {
		return s, nil
	}
	return domain.SeekerProfile{}, ErrNotFound
}

func (m *Memory) GetSeekerByUserID(ctx context.Context, userID int64) (domain.SeekerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSeekerByUserID(userID)
}

func (t memTx) GetSeekerByUserID(ctx context.Context, userID int64) (domain.SeekerProfile, error) {
	return t.m.getSeekerByUserID(userID)
}

func (m *Memory) getSeekerByUserID(userID int64) (domain.SeekerProfile, error) {
	for _, s := range m.seekers {
		if s.UserID == userID {
			return s, nil
		}
	}
	return domain.SeekerProfile{}, ErrNotFound
}

func (m *Memory) GetGiverByID(ctx context.Context, id int64) (domain.GiverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getGiverByID(id)
}

func (t memTx) GetGiverByID(ctx context.Context, id int64) (domain.GiverProfile, error) {
	return t.m.getGiverByID(id)
}

func (m *Memory) getGiverByID(id int64) (domain.GiverProfile, error) {
	if g, ok := m.giverByID(id); ok {
		return g, nil
	}
	return domain.GiverProfile{}, ErrNotFound
}

func (m *Memory) GetGiverByUserID(ctx context.Context, userID int64) (domain.GiverProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getGiverByUserID(userID)
}

func (t memTx) GetGiverByUserID(ctx context.Context, userID int64) (domain.GiverProfile, error) {
	return t.m.getGiverByUserID(userID)
}

func (m *Memory) getGiverByUserID(userID int64) (domain.GiverProfile, error) {
	for _, g := range m.givers {
		if g.UserID == userID {
			return g, nil
		}
	}
	return domain.GiverProfile{}, ErrNotFound
}

// ─── QueueStore ──────────────────────────────────────────────────────────────

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// seekerDecided reports whether the viewer already swiped (either direction)
// on the seeker, scoped to the job when a scope is given. Callers hold the
// lock.
func (m *Memory) seekerDecided(viewerUserID, seekerID int64, scopeJobID *int64) bool {
	for _, s := range m.swipes {
		if s.ActorUserID != viewerUserID || s.TargetType != domain.TargetJobSeeker || s.TargetID != seekerID {
			continue
		}
		if scopeJobID != nil && (s.ScopeJobID == nil || *s.ScopeJobID != *scopeJobID) {
			continue
		}
		return true
	}
	return false
}

func (m *Memory) ListCandidates(ctx context.Context, q CandidateQuery) ([]domain.SeekerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCandidates(q)
}

func (t memTx) ListCandidates(ctx context.Context, q CandidateQuery) ([]domain.SeekerProfile, error) {
	return t.m.listCandidates(q)
}

func (m *Memory) listCandidates(q CandidateQuery) ([]domain.SeekerProfile, error) {
	out := make([]domain.SeekerProfile, 0)
	for _, s := range m.seekers {
		if len(out) >= q.Limit {
			break
		}
		a, ok := m.accounts[s.UserID]
		if !ok || !a.ProfileComplete {
			continue
		}
		if m.seekerDecided(q.ViewerUserID, s.ID, q.ScopeJobID) {
			continue
		}
		if m.targetMatchedWith(q.ViewerUserID, domain.TargetJobSeeker, s.ID, q.ScopeJobID) {
			continue
		}
		if !matchesCandidateFilters(s, q.Filters) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func matchesCandidateFilters(s domain.SeekerProfile, f domain.CandidateFilters) bool {
	for _, skill := range f.Skills {
		found := false
		for _, have := range s.Skills {
			if have == skill {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinExperience != nil && s.Experience < *f.MinExperience {
		return false
	}
	if f.Location != "" && !containsFold(s.Location, f.Location) {
		return false
	}
	if f.Education != "" && !containsFold(s.Education, f.Education) {
		return false
	}
	return true
}

func (m *Memory) jobDecided(viewerUserID, jobID int64) bool {
	for _, s := range m.swipes {
		if s.ActorUserID == viewerUserID && s.TargetType == domain.TargetJob && s.TargetID == jobID {
			return true
		}
	}
	return false
}

func (m *Memory) ListJobs(ctx context.Context, q JobQuery) ([]domain.JobCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listJobs(q)
}

func (t memTx) ListJobs(ctx context.Context, q JobQuery) ([]domain.JobCard, error) {
	return t.m.listJobs(q)
}

func (m *Memory) listJobs(q JobQuery) ([]domain.JobCard, error) {
	out := make([]domain.JobCard, 0)
	for _, j := range m.jobs {
		if len(out) >= q.Limit {
			break
		}
		if !j.Active {
			continue
		}
		if m.jobDecided(q.ViewerUserID, j.ID) {
			continue
		}
		if m.targetMatchedWith(q.ViewerUserID, domain.TargetJob, j.ID, nil) {
			continue
		}
		if !matchesJobFilters(j, q.Filters) {
			continue
		}
		card := domain.JobCard{Job: j}
		if g, ok := m.giverByID(j.JobGiverID); ok {
			card.CompanyName = g.CompanyName
		}
		out = append(out, card)
	}
	return out, nil
}

func matchesJobFilters(j domain.Job, f domain.JobFilters) bool {
	if f.Keywords != "" && !containsFold(j.Title, f.Keywords) && !containsFold(j.Description, f.Keywords) {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	// Salary bounds are substring checks against the free-text range, same
	// as the filter the posting flow applies.
	if f.MinSalary != "" && !containsFold(j.SalaryRange, f.MinSalary) {
		return false
	}
	if f.MaxSalary != "" && !containsFold(j.SalaryRange, f.MaxSalary) {
		return false
	}
	return true
}
