// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the matching service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// MatchCost is the credit price of a match, debited from the recruiter
	// and credited to the seeker. JobPostCost is the posting fee read by
	// the external job-posting flow.
	MatchCost   int64
	JobPostCost int64
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MATCHING_PORT")
	if port == "" {
		port = "8083"
	}

	matchCost, err := costVar("MATCH_COST", 10)
	if err != nil {
		return nil, err
	}
	jobPostCost, err := costVar("JOB_POST_COST", 1)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        port,
		DatabaseURL: dbURL,
		RedisURL:    redisURL,
		MatchCost:   matchCost,
		JobPostCost: jobPostCost,
	}, nil
}

// costVar parses a positive integer credit price with a default.
func costVar(name string, def int64) (int64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}
