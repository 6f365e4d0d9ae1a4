package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"swipehire/matching-service/internal/domain"
)

// DBTX is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx, so
// every query method works inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements Store on top of a pgxpool connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewPostgres returns a pool-backed Store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, db: pool}
}

// WithinTx runs fn against a transaction-bound copy of the store. A nested
// call reuses the already-open transaction.
func (p *Postgres) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := p.db.(pgx.Tx); ok {
		return fn(p)
	}
	return pgx.BeginTxFunc(ctx, p.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&Postgres{pool: p.pool, db: tx})
	})
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ─── SwipeStore ──────────────────────────────────────────────────────────────

func (p *Postgres) InsertSwipe(ctx context.Context, s domain.Swipe) (domain.Swipe, error) {
	err := p.db.QueryRow(ctx,
		`INSERT INTO swipes (actor_user_id, target_id, target_type, direction, scope_job_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.ActorUserID, s.TargetID, string(s.TargetType), string(s.Direction), s.ScopeJobID,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return domain.Swipe{}, fmt.Errorf("insertSwipe: %w", err)
	}
	return s, nil
}

func (p *Postgres) HasRightSwipe(ctx context.Context, actorUserID int64, targetType domain.TargetType, targetID int64, scopeJobID *int64) (bool, error) {
	query := `SELECT 1 FROM swipes
		 WHERE actor_user_id = $1
		   AND target_type   = $2
		   AND target_id     = $3
		   AND direction     = 'right'`
	args := []any{actorUserID, string(targetType), targetID}
	if scopeJobID != nil {
		query += ` AND scope_job_id = $4`
		args = append(args, *scopeJobID)
	}

	var one int
	err := p.db.QueryRow(ctx, query+` LIMIT 1`, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("hasRightSwipe: %w", err)
	}
	return true, nil
}

func (p *Postgres) DeleteLeftSwipes(ctx context.Context, actorUserID int64, targetType domain.TargetType, scopeJobID *int64) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	switch targetType {
	case domain.TargetJobSeeker:
		// Recruiter resetting skipped candidates. Matched candidates are
		// already resolved and stay hidden.
		if scopeJobID != nil {
			tag, err = p.db.Exec(ctx,
				`DELETE FROM swipes s
				 WHERE s.actor_user_id = $1
				   AND s.target_type   = 'job_seeker'
				   AND s.direction     = 'left'
				   AND s.scope_job_id  = $2
				   AND NOT EXISTS (
				       SELECT 1 FROM matches m
				       JOIN job_givers jg ON jg.id = m.job_giver_id
				       WHERE m.job_seeker_id = s.target_id
				         AND jg.user_id      = $1
				         AND m.job_id        = $2
				   )`,
				actorUserID, *scopeJobID,
			)
		} else {
			tag, err = p.db.Exec(ctx,
				`DELETE FROM swipes s
				 WHERE s.actor_user_id = $1
				   AND s.target_type   = 'job_seeker'
				   AND s.direction     = 'left'
				   AND NOT EXISTS (
				       SELECT 1 FROM matches m
				       JOIN job_givers jg ON jg.id = m.job_giver_id
				       WHERE m.job_seeker_id = s.target_id
				         AND jg.user_id      = $1
				   )`,
				actorUserID,
			)
		}
	case domain.TargetJob:
		// Seeker resetting skipped jobs.
		tag, err = p.db.Exec(ctx,
			`DELETE FROM swipes s
			 WHERE s.actor_user_id = $1
			   AND s.target_type   = 'job'
			   AND s.direction     = 'left'
			   AND NOT EXISTS (
			       SELECT 1 FROM matches m
			       JOIN job_seekers js ON js.id = m.job_seeker_id
			       WHERE m.job_id  = s.target_id
			         AND js.user_id = $1
			   )`,
			actorUserID,
		)
	default:
		return 0, fmt.Errorf("deleteLeftSwipes: unknown target type %q", targetType)
	}
	if err != nil {
		return 0, fmt.Errorf("deleteLeftSwipes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ─── MatchStore ──────────────────────────────────────────────────────────────

const matchColumns = `id, job_seeker_id, job_giver_id, job_id, status, created_at, updated_at`

func scanMatch(row pgx.Row) (domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.JobSeekerID, &m.JobGiverID, &m.JobID, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (p *Postgres) InsertMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	m, err := scanMatch(p.db.QueryRow(ctx,
		`INSERT INTO matches (job_seeker_id, job_giver_id, job_id, status)
		 VALUES ($1, $2, $3, 'active')
		 RETURNING `+matchColumns,
		seekerID, giverID, jobID,
	))
	if isUniqueViolation(err) {
		return domain.Match{}, ErrDuplicateMatch
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("insertMatch: %w", err)
	}
	return m, nil
}

func (p *Postgres) GetMatch(ctx context.Context, seekerID, giverID, jobID int64) (domain.Match, error) {
	m, err := scanMatch(p.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE job_seeker_id = $1 AND job_giver_id = $2 AND job_id = $3`,
		seekerID, giverID, jobID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Match{}, ErrNotFound
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("getMatch: %w", err)
	}
	return m, nil
}

func (p *Postgres) GetMatchByID(ctx context.Context, id int64) (domain.Match, error) {
	m, err := scanMatch(p.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Match{}, ErrNotFound
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("getMatchByID: %w", err)
	}
	return m, nil
}

func (p *Postgres) UpdateMatchStatus(ctx context.Context, id int64, status domain.MatchStatus) (domain.Match, error) {
	m, err := scanMatch(p.db.QueryRow(ctx,
		`UPDATE matches
		 SET status = $1::match_status, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+matchColumns,
		string(status), id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Match{}, ErrNotFound
	}
	if err != nil {
		return domain.Match{}, fmt.Errorf("updateMatchStatus: %w", err)
	}
	return m, nil
}

func (p *Postgres) listMatches(ctx context.Context, where string, arg int64) ([]domain.Match, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("listMatches query: %w", err)
	}
	defer rows.Close()

	matches := make([]domain.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("listMatches scan: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (p *Postgres) ListMatchesForSeeker(ctx context.Context, seekerID int64) ([]domain.Match, error) {
	return p.listMatches(ctx, `job_seeker_id = $1`, seekerID)
}

func (p *Postgres) ListMatchesForGiver(ctx context.Context, giverID int64) ([]domain.Match, error) {
	return p.listMatches(ctx, `job_giver_id = $1`, giverID)
}

func (p *Postgres) ListMatchesForJob(ctx context.Context, jobID int64) ([]domain.Match, error) {
	return p.listMatches(ctx, `job_id = $1`, jobID)
}

// ─── Ledger ──────────────────────────────────────────────────────────────────

func (p *Postgres) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := p.db.QueryRow(ctx,
		`SELECT credits FROM accounts WHERE user_id = $1`, userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	return balance, nil
}

// ApplyDelta changes the balance and appends the log entry as one unit. The
// balance check is part of the UPDATE itself, so two concurrent debits can
// never both pass on a stale read.
func (p *Postgres) ApplyDelta(ctx context.Context, userID, amount int64, txType, description string) error {
	var balance int64
	err := p.db.QueryRow(ctx,
		`UPDATE accounts
		 SET credits = credits + $2
		 WHERE user_id = $1 AND credits + $2 >= 0
		 RETURNING credits`,
		userID, amount,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		var one int
		if exErr := p.db.QueryRow(ctx,
			`SELECT 1 FROM accounts WHERE user_id = $1`, userID,
		).Scan(&one); exErr != nil {
			return ErrNotFound
		}
		return ErrInsufficientCredits
	}
	if err != nil {
		return fmt.Errorf("applyDelta update: %w", err)
	}

	_, err = p.db.Exec(ctx,
		`INSERT INTO credit_transactions (user_id, amount, transaction_type, description)
		 VALUES ($1, $2, $3, $4)`,
		userID, amount, txType, description,
	)
	if err != nil {
		return fmt.Errorf("applyDelta log: %w", err)
	}
	return nil
}

func (p *Postgres) ListTransactions(ctx context.Context, userID int64, limit int) ([]domain.CreditTransaction, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, user_id, amount, transaction_type, description, created_at
		 FROM credit_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listTransactions query: %w", err)
	}
	defer rows.Close()

	txs := make([]domain.CreditTransaction, 0)
	for rows.Next() {
		var t domain.CreditTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("listTransactions scan: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ─── Directory ───────────────────────────────────────────────────────────────

func (p *Postgres) GetAccount(ctx context.Context, userID int64) (domain.Account, error) {
	var a domain.Account
	err := p.db.QueryRow(ctx,
		`SELECT user_id, role, credits, profile_complete, created_at
		 FROM accounts WHERE user_id = $1`,
		userID,
	).Scan(&a.UserID, &a.Role, &a.Credits, &a.ProfileComplete, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("getAccount: %w", err)
	}
	return a, nil
}

func (p *Postgres) GetJob(ctx context.Context, id int64) (domain.Job, error) {
	var j domain.Job
	err := p.db.QueryRow(ctx,
		`SELECT id, job_giver_id, title, description, location, job_type, salary_range, active, created_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.JobGiverID, &j.Title, &j.Description, &j.Location, &j.JobType, &j.SalaryRange, &j.Active, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("getJob: %w", err)
	}
	return j, nil
}

const seekerColumns = `id, user_id, full_name, bio, skills, experience, education, location`

func scanSeeker(row pgx.Row) (domain.SeekerProfile, error) {
	var s domain.SeekerProfile
	err := row.Scan(&s.ID, &s.UserID, &s.FullName, &s.Bio, &s.Skills, &s.Experience, &s.Education, &s.Location)
	return s, err
}

func (p *Postgres) GetSeekerByID(ctx context.Context, id int64) (domain.SeekerProfile, error) {
	s, err := scanSeeker(p.db.QueryRow(ctx,
		`SELECT `+seekerColumns+` FROM job_seekers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SeekerProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.SeekerProfile{}, fmt.Errorf("getSeekerByID: %w", err)
	}
	return s, nil
}

func (p *Postgres) GetSeekerByUserID(ctx context.Context, userID int64) (domain.SeekerProfile, error) {
	s, err := scanSeeker(p.db.QueryRow(ctx,
		`SELECT `+seekerColumns+` FROM job_seekers WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SeekerProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.SeekerProfile{}, fmt.Errorf("getSeekerByUserID: %w", err)
	}
	return s, nil
}

func (p *Postgres) GetGiverByID(ctx context.Context, id int64) (domain.GiverProfile, error) {
	var g domain.GiverProfile
	err := p.db.QueryRow(ctx,
		`SELECT id, user_id, company_name, location FROM job_givers WHERE id = $1`, id,
	).Scan(&g.ID, &g.UserID, &g.CompanyName, &g.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GiverProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.GiverProfile{}, fmt.Errorf("getGiverByID: %w", err)
	}
	return g, nil
}

func (p *Postgres) GetGiverByUserID(ctx context.Context, userID int64) (domain.GiverProfile, error) {
	var g domain.GiverProfile
	err := p.db.QueryRow(ctx,
		`SELECT id, user_id, company_name, location FROM job_givers WHERE user_id = $1`, userID,
	).Scan(&g.ID, &g.UserID, &g.CompanyName, &g.Location)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.GiverProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.GiverProfile{}, fmt.Errorf("getGiverByUserID: %w", err)
	}
	return g, nil
}

// ─── QueueStore ──────────────────────────────────────────────────────────────

func (p *Postgres) ListCandidates(ctx context.Context, q CandidateQuery) ([]domain.SeekerProfile, error) {
	query := `
		SELECT js.id, js.user_id, js.full_name, js.bio, js.skills,
		       js.experience, js.education, js.location
		FROM job_seekers js
		JOIN accounts a ON a.user_id = js.user_id
		WHERE a.profile_complete = TRUE`

	args := []any{q.ViewerUserID}
	viewer := "$1"

	// Already-decided exclusions: right swipes never reappear, left swipes
	// hide the target until resetSkips. Both are scoped to the job when a
	// scope is given.
	scopeCond := ""
	if q.ScopeJobID != nil {
		args = append(args, *q.ScopeJobID)
		scopeCond = fmt.Sprintf(" AND s.scope_job_id = $%d", len(args))
	}
	query += `
		AND NOT EXISTS (
		    SELECT 1 FROM swipes s
		    WHERE s.actor_user_id = ` + viewer + `
		      AND s.target_type = 'job_seeker'
		      AND s.target_id   = js.id
		      AND s.direction   = 'right'` + scopeCond + `
		)
		AND NOT EXISTS (
		    SELECT 1 FROM swipes s
		    WHERE s.actor_user_id = ` + viewer + `
		      AND s.target_type = 'job_seeker'
		      AND s.target_id   = js.id
		      AND s.direction   = 'left'` + scopeCond + `
		)`

	// Matched candidates are resolved: excluded per job when scoped,
	// across all jobs otherwise.
	if q.ScopeJobID != nil {
		query += `
		AND NOT EXISTS (
		    SELECT 1 FROM matches m
		    JOIN job_givers jg ON jg.id = m.job_giver_id
		    WHERE m.job_seeker_id = js.id
		      AND jg.user_id      = ` + viewer + `
		      AND m.job_id        = $2
		)`
	} else {
		query += `
		AND NOT EXISTS (
		    SELECT 1 FROM matches m
		    JOIN job_givers jg ON jg.id = m.job_giver_id
		    WHERE m.job_seeker_id = js.id
		      AND jg.user_id      = ` + viewer + `
		)`
	}

	for _, skill := range q.Filters.Skills {
		args = append(args, skill)
		query += fmt.Sprintf(" AND $%d = ANY(js.skills)", len(args))
	}
	if q.Filters.MinExperience != nil {
		args = append(args, *q.Filters.MinExperience)
		query += fmt.Sprintf(" AND js.experience >= $%d", len(args))
	}
	if q.Filters.Location != "" {
		args = append(args, "%"+q.Filters.Location+"%")
		query += fmt.Sprintf(" AND js.location ILIKE $%d", len(args))
	}
	if q.Filters.Education != "" {
		args = append(args, "%"+q.Filters.Education+"%")
		query += fmt.Sprintf(" AND js.education ILIKE $%d", len(args))
	}

	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY js.id LIMIT $%d", len(args))

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listCandidates query: %w", err)
	}
	defer rows.Close()

	seekers := make([]domain.SeekerProfile, 0)
	for rows.Next() {
		s, err := scanSeeker(rows)
		if err != nil {
			return nil, fmt.Errorf("listCandidates scan: %w", err)
		}
		seekers = append(seekers, s)
	}
	return seekers, rows.Err()
}

func (p *Postgres) ListJobs(ctx context.Context, q JobQuery) ([]domain.JobCard, error) {
	query := `
		SELECT j.id, j.job_giver_id, j.title, j.description, j.location,
		       j.job_type, j.salary_range, j.active, j.created_at, jg.company_name
		FROM jobs j
		JOIN job_givers jg ON jg.id = j.job_giver_id
		WHERE j.active = TRUE
		AND NOT EXISTS (
		    SELECT 1 FROM swipes s
		    WHERE s.actor_user_id = $1
		      AND s.target_type = 'job'
		      AND s.target_id   = j.id
		      AND s.direction   = 'right'
		)
		AND NOT EXISTS (
		    SELECT 1 FROM swipes s
		    WHERE s.actor_user_id = $1
		      AND s.target_type = 'job'
		      AND s.target_id   = j.id
		      AND s.direction   = 'left'
		)
		AND NOT EXISTS (
		    SELECT 1 FROM matches m
		    JOIN job_seekers js ON js.id = m.job_seeker_id
		    WHERE m.job_id  = j.id
		      AND js.user_id = $1
		)`

	args := []any{q.ViewerUserID}

	if q.Filters.Keywords != "" {
		args = append(args, "%"+q.Filters.Keywords+"%")
		query += fmt.Sprintf(" AND (j.title ILIKE $%d OR j.description ILIKE $%d)", len(args), len(args))
	}
	if q.Filters.Location != "" {
		args = append(args, "%"+q.Filters.Location+"%")
		query += fmt.Sprintf(" AND j.location ILIKE $%d", len(args))
	}
	if q.Filters.JobType != "" {
		args = append(args, q.Filters.JobType)
		query += fmt.Sprintf(" AND j.job_type = $%d", len(args))
	}
	if q.Filters.MinSalary != "" {
		args = append(args, "%"+q.Filters.MinSalary+"%")
		query += fmt.Sprintf(" AND j.salary_range ILIKE $%d", len(args))
	}
	if q.Filters.MaxSalary != "" {
		args = append(args, "%"+q.Filters.MaxSalary+"%")
		query += fmt.Sprintf(" AND j.salary_range ILIKE $%d", len(args))
	}

	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY j.id LIMIT $%d", len(args))

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]domain.JobCard, 0)
	for rows.Next() {
		var jc domain.JobCard
		if err := rows.Scan(
			&jc.ID, &jc.JobGiverID, &jc.Title, &jc.Description, &jc.Location,
			&jc.JobType, &jc.SalaryRange, &jc.Active, &jc.CreatedAt, &jc.CompanyName,
		); err != nil {
			return nil, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, jc)
	}
	return jobs, rows.Err()
}
