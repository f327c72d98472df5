// Package index provides full-text search over cataloged secrets plus the
// materialized index artifacts (index.json, index.md, aliases, per-secret
// metadata files). Secret material is never indexed or materialized: only
// descriptive metadata leaves the catalog.
package index

import (
	"fmt"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"secretsctl/internal/model"
)

// secretDocument is the indexed projection of a secret. Password and secret
// value are deliberately absent.
type secretDocument struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Notes          string `json:"notes"`
	Purpose        string `json:"purpose"`
	Grouping       string `json:"grouping"`
	Category       string `json:"category"`
	Environment    string `json:"environment"`
}

// Result is a single search hit.
type Result struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Indexer wraps a Bleve index over the catalog.
type Indexer struct {
	index  bleve.Index
	logger *zap.SugaredLogger
}

// New opens the index under dir, creating it with the secret mapping when it
// does not exist yet.
func New(dir string, logger *zap.SugaredLogger) (*Indexer, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	indexPath := filepath.Join(dir, "secrets.bleve")

	idx, err := bleve.Open(indexPath)
	if err != nil {
		logger.Infow("creating new search index", "path", indexPath)
		idx, err = createIndex(indexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create search index: %w", err)
		}
	} else {
		logger.Debugw("opened existing search index", "path", indexPath)
	}

	return &Indexer{index: idx, logger: logger}, nil
}

func createIndex(indexPath string) (bleve.Index, error) {
	indexMapping := bleve.NewIndexMapping()
	secretMapping := bleve.NewDocumentMapping()

	keywordField := func() *mapping.FieldMapping { // exact-match fields
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		return f
	}
	textField := func() *mapping.FieldMapping { // full-text fields
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = true
		return f
	}

	secretMapping.AddFieldMappingsAt("id", keywordField())
	secretMapping.AddFieldMappingsAt("normalized_name", keywordField())
	secretMapping.AddFieldMappingsAt("category", keywordField())
	secretMapping.AddFieldMappingsAt("environment", keywordField())
	secretMapping.AddFieldMappingsAt("name", textField())
	secretMapping.AddFieldMappingsAt("notes", textField())
	secretMapping.AddFieldMappingsAt("purpose", textField())
	secretMapping.AddFieldMappingsAt("grouping", textField())

	indexMapping.AddDocumentMapping("secret", secretMapping)
	indexMapping.DefaultMapping = secretMapping

	return bleve.New(indexPath, indexMapping)
}

// Close releases the underlying index.
func (ix *Indexer) Close() error {
	return ix.index.Close()
}

// Rebuild replaces the index contents with the given secrets in one batch.
func (ix *Indexer) Rebuild(secrets []*model.Secret) error {
	batch := ix.index.NewBatch()

	existing, err := ix.allDocIDs()
	if err != nil {
		return fmt.Errorf("failed to enumerate index: %w", err)
	}
	for _, id := range existing {
		batch.Delete(id)
	}

	for _, secret := range secrets {
		batch.Index(secret.ID, documentFor(secret))
	}

	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	ix.logger.Infow("rebuilt search index", "secrets", len(secrets), "removed", len(existing))
	return nil
}

// Search runs a full-text match query and returns up to limit hits by score.
func (ix *Indexer) Search(query string, limit int) ([]*Result, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	searchReq := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	searchReq.Size = limit
	searchReq.Fields = []string{"id", "name"}

	searchResult, err := ix.index.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var results []*Result
	for _, hit := range searchResult.Hits {
		results = append(results, &Result{
			ID:    hit.ID,
			Name:  stringField(hit.Fields, "name"),
			Score: hit.Score,
		})
	}
	return results, nil
}

// DocCount returns the number of indexed secrets.
func (ix *Indexer) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

func (ix *Indexer) allDocIDs() ([]string, error) {
	searchReq := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	searchReq.Size = 10000

	searchResult, err := ix.index.Search(searchReq)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func documentFor(secret *model.Secret) *secretDocument {
	return &secretDocument{
		ID:             secret.ID,
		Name:           secret.Name,
		NormalizedName: secret.NormalizedName,
		Notes:          secret.Notes,
		Purpose:        secret.Purpose,
		Grouping:       secret.Grouping,
		Category:       string(secret.Category),
		Environment:    string(secret.Environment),
	}
}

func stringField(fields map[string]interface{}, name string) string {
	if value, ok := fields[name].(string); ok {
		return value
	}
	return ""
}
