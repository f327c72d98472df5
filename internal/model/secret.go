// Package model defines the secret entity, its classification taxonomy and
// normalization rules. Secrets arrive from several discovery paths (AWS
// Secrets Manager inventories, DynamoDB cross-reference tables, LastPass
// exports, local backup trees) and are unified here into a single record
// shape so the catalog and analyzer can treat them uniformly.
package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"secretsctl/internal/stringutil"
)

// ErrValidation is wrapped by constructor errors for missing required fields.
var ErrValidation = errors.New("validation")

// Secret is a single cataloged credential record.
//
// A Secret is immutable after construction except for the explicit
// correction methods (SetDescription, OverrideCategory, Rename,
// MarkDuplicate). The derived fields (Category, Environment, NormalizedName,
// Purpose, Instance) are computed once at construction.
type Secret struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Username    string            `json:"username,omitempty"`
	Password    string            `json:"password,omitempty"`
	URL         string            `json:"url,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Description string            `json:"description,omitempty"`
	Grouping    string            `json:"grouping,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`

	Category    Category    `json:"category"`
	Environment Environment `json:"environment"`
	Status      Status      `json:"status"`
	Source      Source      `json:"source"`

	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	AccountType   string `json:"account_type,omitempty"`

	// SecretValue is the opaque payload: either a plain string or a
	// key-value mapping, depending on the source.
	SecretValue interface{} `json:"secret_value,omitempty"`

	Purpose        string `json:"purpose,omitempty"`
	Instance       string `json:"instance,omitempty"`
	NormalizedName string `json:"normalized_name"`

	CreatedDate      *Timestamp `json:"created_date,omitempty"`
	LastChangedDate  *Timestamp `json:"last_changed_date,omitempty"`
	LastAccessedDate *Timestamp `json:"last_accessed_date,omitempty"`

	IsDuplicate     bool    `json:"is_duplicate,omitempty"`
	DuplicateOf     string  `json:"duplicate_of,omitempty"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
}

// Input carries the raw fields a source supplies when constructing a Secret.
// Only ID and Name are required; everything else defaults permissively.
type Input struct {
	ID          string
	Name        string
	Username    string
	Password    string
	URL         string
	Notes       string
	Description string
	Grouping    string
	Tags        map[string]string

	Environment Environment
	Source      Source

	AccountNumber string
	AccountName   string
	AccountType   string

	SecretValue interface{}

	CreatedDate      *Timestamp
	LastChangedDate  *Timestamp
	LastAccessedDate *Timestamp
}

// New constructs a Secret from raw source fields, deriving category,
// environment, normalized name, purpose and instance.
func New(in Input) (*Secret, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("%w: secret id is required", ErrValidation)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: secret name is required", ErrValidation)
	}

	source := in.Source
	if source == "" {
		source = SourceUnknown
	}

	s := &Secret{
		ID:               in.ID,
		Name:             in.Name,
		Username:         in.Username,
		Password:         in.Password,
		URL:              in.URL,
		Notes:            in.Notes,
		Description:      in.Description,
		Grouping:         in.Grouping,
		Tags:             in.Tags,
		Status:           StatusActive,
		Source:           source,
		AccountNumber:    in.AccountNumber,
		AccountName:      in.AccountName,
		AccountType:      in.AccountType,
		SecretValue:      in.SecretValue,
		CreatedDate:      in.CreatedDate,
		LastChangedDate:  in.LastChangedDate,
		LastAccessedDate: in.LastAccessedDate,
	}

	s.Category = defaultClassifier.Classify(in.Name, in.URL, in.Grouping)
	s.Environment = resolveEnvironment(in.Environment, in.Name)
	s.NormalizedName = stringutil.NormalizeName(in.Name)
	s.Purpose = extractPurpose(in.Notes)
	s.Instance = extractInstance(in.URL)

	return s, nil
}

// SetDescription updates the free-form description.
func (s *Secret) SetDescription(description string) {
	s.Description = description
}

// OverrideCategory replaces the derived category with an explicit one.
func (s *Secret) OverrideCategory(category Category) {
	s.Category = category
}

// Rename updates the display name and recomputes the normalized form.
// Category and environment are intentionally left untouched: classification
// never overwrites an established value unless explicitly requested.
func (s *Secret) Rename(name string) {
	s.Name = name
	s.NormalizedName = stringutil.NormalizeName(name)
}

// MarkDuplicate annotates this secret as a duplicate of another entry.
func (s *Secret) MarkDuplicate(ofID string, confidence float64) {
	s.IsDuplicate = true
	s.DuplicateOf = ofID
	s.ConfidenceScore = confidence
}

// HasCredentials reports whether the secret carries a comparable
// username/password pair.
func (s *Secret) HasCredentials() bool {
	return s.Username != "" && s.Password != ""
}

// UnmarshalJSON restores a stored secret. Stored category, environment and
// normalized name are trusted when valid and re-derived only when absent or
// unparseable, so round-trips never drift.
func (s *Secret) UnmarshalJSON(data []byte) error {
	type stored Secret
	aux := struct {
		*stored
		Category    string `json:"category"`
		Environment string `json:"environment"`
		Status      string `json:"status"`
		Source      string `json:"source"`
	}{stored: (*stored)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.ID == "" {
		return fmt.Errorf("%w: stored secret has no id", ErrValidation)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: stored secret %q has no name", ErrValidation, s.ID)
	}

	if category, ok := ParseCategory(aux.Category); ok {
		s.Category = category
	} else {
		s.Category = defaultClassifier.Classify(s.Name, s.URL, s.Grouping)
	}

	if env, ok := ParseEnvironment(aux.Environment); ok {
		s.Environment = env
	} else {
		s.Environment = resolveEnvironment(EnvUnknown, s.Name)
	}

	s.Status, _ = ParseStatus(aux.Status)
	s.Source, _ = ParseSource(aux.Source)

	if s.NormalizedName == "" {
		s.NormalizedName = stringutil.NormalizeName(s.Name)
	}
	if s.Purpose == "" {
		s.Purpose = extractPurpose(s.Notes)
	}
	if s.Instance == "" {
		s.Instance = extractInstance(s.URL)
	}

	return nil
}
