// Package health scores the hygiene of a secret collection on a 0-100 scale
// and flags individual secrets that look deprecated.
package health

import (
	"fmt"
	"strings"
	"time"

	"secretsctl/internal/analyzer"
	"secretsctl/internal/model"
)

// Weights of the individual deductions. Each factor deducts its weight scaled
// by the fraction of affected secrets, so the score stays within [0, 100] by
// construction.
const (
	weightDuplicates         = 30.0
	weightMissingDescription = 20.0
	weightStale              = 10.0
	weightDeprecatedNames    = 10.0
)

// StaleAfter is the age past which an untouched secret counts as stale.
const StaleAfter = 365 * 24 * time.Hour

// DefaultDeprecationMarkers are the name fragments that flag a secret as a
// deprecation candidate.
var DefaultDeprecationMarkers = []string{"deprecated", "obsolete", "do not use", "legacy"}

// Report is the outcome of one scoring pass.
type Report struct {
	OverallScore       float64 `json:"overall_score"`
	TotalSecrets       int     `json:"total_secrets"`
	DuplicateSecrets   int     `json:"duplicate_secrets"`
	MissingDescription int     `json:"missing_description"`
	StaleSecrets       int     `json:"stale_secrets"`
	DeprecatedNames    int     `json:"deprecated_names"`
}

// Scorer computes hygiene reports. The zero value is not usable; construct
// with New.
type Scorer struct {
	now                func() time.Time
	deprecationMarkers []string
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithClock replaces the wall clock used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithDeprecationMarkers replaces the name fragments that flag deprecation
// candidates.
func WithDeprecationMarkers(markers ...string) Option {
	return func(s *Scorer) { s.deprecationMarkers = markers }
}

// New creates a Scorer with the default markers and wall clock.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		now:                time.Now,
		deprecationMarkers: DefaultDeprecationMarkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates the collection. An empty collection is perfectly healthy: the
// report carries exactly 100.0 and zero counts, with no division performed.
func (s *Scorer) Score(secrets []*model.Secret, matches []analyzer.Match) *Report {
	report := &Report{TotalSecrets: len(secrets)}
	if len(secrets) == 0 {
		report.OverallScore = 100.0
		return report
	}

	duplicateIDs := make(map[string]struct{})
	for _, match := range matches {
		duplicateIDs[match.SecretAID] = struct{}{}
		duplicateIDs[match.SecretBID] = struct{}{}
	}

	cutoff := s.now().Add(-StaleAfter)
	for _, secret := range secrets {
		if _, dup := duplicateIDs[secret.ID]; dup || secret.IsDuplicate {
			report.DuplicateSecrets++
		}
		if strings.TrimSpace(secret.Description) == "" {
			report.MissingDescription++
		}
		if s.isStale(secret, cutoff) {
			report.StaleSecrets++
		}
		if deprecated, _ := s.SuggestDeprecation(secret); deprecated {
			report.DeprecatedNames++
		}
	}

	total := float64(report.TotalSecrets)
	score := 100.0
	score -= float64(report.DuplicateSecrets) / total * weightDuplicates
	score -= float64(report.MissingDescription) / total * weightMissingDescription
	score -= float64(report.StaleSecrets) / total * weightStale
	score -= float64(report.DeprecatedNames) / total * weightDeprecatedNames

	report.OverallScore = clamp(score)
	return report
}

// isStale reports whether the secret was last touched before cutoff. A secret
// with no usage timestamps at all is not stale; absence of data is not
// evidence of abandonment.
func (s *Scorer) isStale(secret *model.Secret, cutoff time.Time) bool {
	last := secret.LastAccessedDate
	if secret.LastChangedDate != nil &&
		(last == nil || secret.LastChangedDate.Time.After(last.Time)) {
		last = secret.LastChangedDate
	}
	if last == nil {
		return false
	}
	return last.Time.Before(cutoff)
}

// SuggestDeprecation reports whether the secret's name carries a deprecation
// marker, with a human-readable reason when it does.
func (s *Scorer) SuggestDeprecation(secret *model.Secret) (bool, string) {
	name := strings.ToLower(secret.Name)
	for _, marker := range s.deprecationMarkers {
		if strings.Contains(name, marker) {
			return true, fmt.Sprintf("Name contains deprecation marker %q", marker)
		}
	}
	return false, ""
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
