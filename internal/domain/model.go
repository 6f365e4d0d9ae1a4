// Package domain defines the data model shared by the matching engine and
// the persistence layer: swipes, matches, ledger entries and the read-only
// directory records (accounts, profiles, jobs).
package domain

import (
	"fmt"
	"time"
)

// Direction is the side of a swipe decision.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection converts a raw string to a Direction, returning an error
// for unknown values.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	switch d {
	case DirectionLeft, DirectionRight:
		return d, nil
	}
	return "", fmt.Errorf("unknown swipe direction %q", s)
}

// TargetType tags what a swipe points at: a job posting or a job-seeker
// profile.
type TargetType string

const (
	TargetJob       TargetType = "job"
	TargetJobSeeker TargetType = "job_seeker"
)

// ParseTargetType converts a raw string to a TargetType, returning an error
// for unknown values.
func ParseTargetType(s string) (TargetType, error) {
	t := TargetType(s)
	switch t {
	case TargetJob, TargetJobSeeker:
		return t, nil
	}
	return "", fmt.Errorf("unknown swipe target type %q", s)
}

// Role distinguishes the two account sides of the marketplace.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleJobGiver  Role = "job_giver"
)

// Account is the ledger-owning record for one participant. Credits are only
// mutated through Ledger.ApplyDelta; profile completion is written by the
// external profile flow.
type Account struct {
	UserID          int64     `json:"userId"`
	Role            Role      `json:"role"`
	Credits         int64     `json:"credits"`
	ProfileComplete bool      `json:"profileComplete"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Swipe is one immutable swipe decision. ScopeJobID is set when a recruiter
// swipes on a candidate for a specific job; it is nil for seeker-initiated
// swipes and for unscoped recruiter swipes (which never produce a match).
type Swipe struct {
	ID          int64      `json:"id"`
	ActorUserID int64      `json:"actorUserId"`
	TargetID    int64      `json:"targetId"`
	TargetType  TargetType `json:"targetType"`
	Direction   Direction  `json:"direction"`
	ScopeJobID  *int64     `json:"scopeJobId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Match is a confirmed mutual right-swipe for a specific job.
type Match struct {
	ID          int64       `json:"id"`
	JobSeekerID int64       `json:"jobSeekerId"`
	JobGiverID  int64       `json:"jobGiverId"`
	JobID       int64       `json:"jobId"`
	Status      MatchStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CreditTransaction is one immutable ledger entry. Amount is signed; a debit
// is negative. The sum of a user's entries always equals the account balance.
type CreditTransaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"transactionType"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Ledger transaction types.
const (
	TxTypeMatch      = "match"
	TxTypePurchase   = "purchase"
	TxTypeRedemption = "redemption"
	TxTypeRefund     = "refund"
)

// SeekerProfile is the candidate card shown to recruiters.
type SeekerProfile struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"userId"`
	FullName   string   `json:"fullName"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	Experience int      `json:"experience"`
	Education  string   `json:"education"`
	Location   string   `json:"location"`
}

// GiverProfile is the recruiter/company side of the directory.
type GiverProfile struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
}

// Job is a posting owned by a recruiter. The matching core reads only its
// id, owner and active flag; the rest is carried for queue rendering.
type Job struct {
	ID          int64     `json:"id"`
	JobGiverID  int64     `json:"jobGiverId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	JobType     string    `json:"jobType"`
	SalaryRange string    `json:"salaryRange"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// JobCard is a job posting as rendered in the seeker's queue, with the
// company name joined in.
type JobCard struct {
	Job
	CompanyName string `json:"companyName"`
}

// CandidateFilters is the conjunctive predicate applied to the recruiter's
// candidate queue. Zero values mean "no constraint".
type CandidateFilters struct {
	Skills        []string `json:"skills"`
	MinExperience *int     `json:"minExperience,omitempty"`
	Location      string   `json:"location"`
	Education     string   `json:"education"`
}

// JobFilters is the conjunctive predicate applied to the seeker's job queue.
type JobFilters struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	JobType  string `json:"jobType"`
	// Salary bounds match as substrings of the free-text salary range.
	MinSalary string `json:"minSalary"`
	MaxSalary string `json:"maxSalary"`
}
