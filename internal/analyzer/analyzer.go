// Package analyzer implements pairwise duplicate detection over secret
// collections. Heuristics are evaluated in priority order and the first one
// that fires decides the match; credential and account-level signals outrank
// name similarity.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"

	"secretsctl/internal/hash"
	"secretsctl/internal/model"
)

// DefaultSimilarityThreshold is the minimum name-similarity ratio that
// qualifies a pair as a likely duplicate.
const DefaultSimilarityThreshold = 0.85

// Confidence levels of the fixed-confidence heuristics.
const (
	confidenceIdentical     = 1.0
	confidenceSharedAccount = 0.95
)

// Match is a scored, explained assertion that two secrets likely represent
// the same underlying credential. Matches are produced fresh on every run
// and never persisted on their own.
type Match struct {
	SecretAID  string  `json:"secret_a_id"`
	SecretBID  string  `json:"secret_b_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// CredentialMatcher decides whether two secrets hold identical secret
// material. Implementations must treat missing fields as "no match", never
// as an error.
type CredentialMatcher func(a, b *model.Secret) bool

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithCredentialMatcher replaces the credential-equality predicate, letting
// vault-style and AWS-style sources plug in their own equality rules.
func WithCredentialMatcher(matcher CredentialMatcher) Option {
	return func(a *Analyzer) { a.credentialsMatch = matcher }
}

// WithSimilarityThreshold overrides the name-similarity cutoff.
func WithSimilarityThreshold(threshold float64) Option {
	return func(a *Analyzer) { a.similarityThreshold = threshold }
}

// Analyzer finds likely duplicate pairs in a secret collection. It is
// stateless: every run is a pure function of its input.
type Analyzer struct {
	logger              *zap.SugaredLogger
	similarityThreshold float64
	similarity          *metrics.JaroWinkler
	credentialsMatch    CredentialMatcher
}

// New creates an Analyzer. The name-similarity ratio is the Jaro–Winkler
// similarity of the normalized names: a normalized [0,1] measure that, like
// the classic sequence-matcher ratio, rewards long shared runs, which suits
// names that differ only by a suffix ("-v2", "DB" vs "Database").
func New(logger *zap.SugaredLogger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	similarity := metrics.NewJaroWinkler()
	similarity.CaseSensitive = false

	a := &Analyzer{
		logger:              logger,
		similarityThreshold: DefaultSimilarityThreshold,
		similarity:          similarity,
		credentialsMatch:    DefaultCredentialMatcher,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DefaultCredentialMatcher compares secret material along both source
// flavors: vault-style username/password fields on the record itself, and
// AWS-style secret-value dictionaries that carry username/password keys.
// Value payloads are never compared on their own.
func DefaultCredentialMatcher(a, b *model.Secret) bool {
	if a.HasCredentials() && b.HasCredentials() {
		return hash.CredentialFingerprint(a.Username, a.Password) ==
			hash.CredentialFingerprint(b.Username, b.Password)
	}

	userA, passA, okA := valueCredentials(a.SecretValue)
	userB, passB, okB := valueCredentials(b.SecretValue)
	if okA && okB {
		return hash.CredentialFingerprint(userA, passA) == hash.CredentialFingerprint(userB, passB)
	}
	return false
}

// valueCredentials extracts a username/password pair from an opaque secret
// value when it is a mapping carrying both keys.
func valueCredentials(value interface{}) (username, password string, ok bool) {
	mapping, isMap := value.(map[string]interface{})
	if !isMap {
		return "", "", false
	}
	username, userOK := mapping["username"].(string)
	password, passOK := mapping["password"].(string)
	if !userOK || !passOK || username == "" || password == "" {
		return "", "", false
	}
	return username, password, true
}

// FindDuplicates evaluates every unordered pair of distinct secrets and
// returns all likely duplicates. Output is deterministic for identical
// input regardless of input order: pairs are visited in id order.
func (a *Analyzer) FindDuplicates(secrets []*model.Secret) []Match {
	seen := make(map[string]struct{}, len(secrets))
	ordered := make([]*model.Secret, 0, len(secrets))
	for _, secret := range secrets {
		if _, dup := seen[secret.ID]; dup {
			continue
		}
		seen[secret.ID] = struct{}{}
		ordered = append(ordered, secret)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var matches []Match
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if match, ok := a.comparePair(ordered[i], ordered[j]); ok {
				matches = append(matches, match)
			}
		}
	}

	a.logger.Debugw("duplicate analysis finished",
		"secrets", len(secrets), "matches", len(matches))
	return matches
}

// comparePair applies the heuristics in priority order; the first one that
// fires determines the confidence and reason.
func (a *Analyzer) comparePair(s1, s2 *model.Secret) (Match, bool) {
	if a.credentialsMatch(s1, s2) {
		return Match{
			SecretAID:  s1.ID,
			SecretBID:  s2.ID,
			Confidence: confidenceIdentical,
			Reason:     "Identical credentials (same username and password)",
		}, true
	}

	if s1.NormalizedName != "" && s1.NormalizedName == s2.NormalizedName &&
		s1.Environment != s2.Environment {
		return Match{
			SecretAID:  s1.ID,
			SecretBID:  s2.ID,
			Confidence: confidenceIdentical,
			Reason: fmt.Sprintf("Same secret across envs: %s and %s",
				s1.Environment, s2.Environment),
		}, true
	}

	if s1.AccountNumber != "" && s1.AccountNumber == s2.AccountNumber &&
		s1.Source != s2.Source {
		return Match{
			SecretAID:  s1.ID,
			SecretBID:  s2.ID,
			Confidence: confidenceSharedAccount,
			Reason: fmt.Sprintf("Same AWS account %s surfaced by %s and %s",
				s1.AccountNumber, s1.Source, s2.Source),
		}, true
	}

	if s1.NormalizedName != "" && s2.NormalizedName != "" {
		ratio := strutil.Similarity(s1.NormalizedName, s2.NormalizedName, a.similarity)
		if ratio >= a.similarityThreshold {
			return Match{
				SecretAID:  s1.ID,
				SecretBID:  s2.ID,
				Confidence: ratio,
				Reason:     fmt.Sprintf("Very similar names (%.0f%% match)", ratio*100),
			}, true
		}
	}

	return Match{}, false
}

// CrossEnvGroup is a set of secrets sharing one normalized name across more
// than one environment.
type CrossEnvGroup struct {
	NormalizedName string          `json:"normalized_name"`
	Environments   []string        `json:"environments"`
	Secrets        []*model.Secret `json:"secrets"`
}

// CrossEnvironment groups secrets by normalized name and returns the groups
// spanning multiple environments, sorted by name.
func (a *Analyzer) CrossEnvironment(secrets []*model.Secret) []CrossEnvGroup {
	byName := make(map[string][]*model.Secret)
	for _, secret := range secrets {
		if secret.NormalizedName == "" {
			continue
		}
		byName[secret.NormalizedName] = append(byName[secret.NormalizedName], secret)
	}

	var groups []CrossEnvGroup
	for name, group := range byName {
		envs := make(map[model.Environment]struct{})
		for _, secret := range group {
			envs[secret.Environment] = struct{}{}
		}
		if len(envs) < 2 {
			continue
		}

		labels := make([]string, 0, len(envs))
		for env := range envs {
			labels = append(labels, string(env))
		}
		sort.Strings(labels)
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		groups = append(groups, CrossEnvGroup{
			NormalizedName: name,
			Environments:   labels,
			Secrets:        group,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].NormalizedName < groups[j].NormalizedName
	})
	return groups
}
