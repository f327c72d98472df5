// Package catalog implements the JSON-file-backed store of secrets. The
// catalog exclusively owns its entity set; persistence is explicit via Save,
// nothing is written as a side effect of mutation.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"secretsctl/internal/model"
	"secretsctl/internal/stringutil"
)

// CurrentSchemaVersion is written into saved catalog documents.
const CurrentSchemaVersion = 1

// document is the on-disk shape of a catalog: a single JSON object holding
// the full entity set in insertion order.
type document struct {
	Version int             `json:"version"`
	Secrets []*model.Secret `json:"secrets"`
}

// Stats summarizes catalog contents for reporting.
type Stats struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByEnvironment map[string]int `json:"by_environment"`
	BySource      map[string]int `json:"by_source"`
}

// Catalog is an insertion-ordered keyed store of secrets backed by a single
// JSON document. It is not safe for concurrent use; callers serialize access.
type Catalog struct {
	path    string
	logger  *zap.SugaredLogger
	secrets map[string]*model.Secret
	order   []string
}

// New opens the catalog at path. A missing file yields an empty catalog; a
// present but malformed file is an error and the catalog stays empty rather
// than partially populated.
func New(path string, logger *zap.SugaredLogger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c := &Catalog{
		path:    path,
		logger:  logger,
		secrets: make(map[string]*model.Secret),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) load() error {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		c.logger.Debugw("no catalog file yet, starting empty", "path", c.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", c.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("catalog %s is not a valid catalog document: %w", c.path, err)
	}

	for _, secret := range doc.Secrets {
		if secret == nil {
			return fmt.Errorf("catalog %s contains a null secret entry", c.path)
		}
		c.insert(secret)
	}

	c.logger.Infow("loaded catalog", "path", c.path, "secrets", len(c.order))
	return nil
}

func (c *Catalog) insert(secret *model.Secret) {
	if _, exists := c.secrets[secret.ID]; !exists {
		c.order = append(c.order, secret.ID)
	}
	c.secrets[secret.ID] = secret
}

// Add inserts or overwrites a secret by id. Last write wins; an overwrite
// keeps the original insertion position.
func (c *Catalog) Add(secret *model.Secret) {
	c.insert(secret)
}

// Get returns the secret with the given id, or false when absent.
func (c *Catalog) Get(id string) (*model.Secret, bool) {
	secret, ok := c.secrets[id]
	return secret, ok
}

// Len returns the number of cataloged secrets.
func (c *Catalog) Len() int {
	return len(c.order)
}

// All returns every secret in insertion order.
func (c *Catalog) All() []*model.Secret {
	result := make([]*model.Secret, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.secrets[id])
	}
	return result
}

// Search returns secrets whose name or notes contain query, case-insensitively,
// in catalog order.
func (c *Catalog) Search(query string) []*model.Secret {
	var result []*model.Secret
	for _, id := range c.order {
		secret := c.secrets[id]
		if stringutil.ContainsIgnoreCase(secret.Name, query) ||
			(secret.Notes != "" && stringutil.ContainsIgnoreCase(secret.Notes, query)) {
			result = append(result, secret)
		}
	}
	return result
}

// ByCategory returns secrets of the given category in catalog order.
func (c *Catalog) ByCategory(category model.Category) []*model.Secret {
	return c.filter(func(s *model.Secret) bool { return s.Category == category })
}

// ByEnvironment returns secrets of the given environment in catalog order.
func (c *Catalog) ByEnvironment(environment model.Environment) []*model.Secret {
	return c.filter(func(s *model.Secret) bool { return s.Environment == environment })
}

// ByAccountType returns secrets with the given account type in catalog order.
func (c *Catalog) ByAccountType(accountType string) []*model.Secret {
	return c.filter(func(s *model.Secret) bool { return s.AccountType == accountType })
}

func (c *Catalog) filter(keep func(*model.Secret) bool) []*model.Secret {
	var result []*model.Secret
	for _, id := range c.order {
		if secret := c.secrets[id]; keep(secret) {
			result = append(result, secret)
		}
	}
	return result
}

// Stats returns the total count plus per-category/environment/source breakdowns.
func (c *Catalog) Stats() *Stats {
	stats := &Stats{
		Total:         len(c.order),
		ByCategory:    make(map[string]int),
		ByEnvironment: make(map[string]int),
		BySource:      make(map[string]int),
	}
	for _, id := range c.order {
		secret := c.secrets[id]
		stats.ByCategory[string(secret.Category)]++
		stats.ByEnvironment[string(secret.Environment)]++
		stats.BySource[string(secret.Source)]++
	}
	return stats
}

// Save serializes the full entity set to the backing path, creating parent
// directories as needed. I/O errors are propagated, never swallowed.
func (c *Catalog) Save() error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create catalog directory %s: %w", dir, err)
		}
	}

	doc := document{
		Version: CurrentSchemaVersion,
		Secrets: c.All(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write catalog %s: %w", c.path, err)
	}

	c.logger.Infow("saved catalog", "path", c.path, "secrets", len(c.order))
	return nil
}
