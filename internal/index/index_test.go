package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secretsctl/internal/model"
)

func makeSecret(t *testing.T, id, name string, opts ...func(*model.Input)) *model.Secret {
	t.Helper()
	in := model.Input{
		ID:          id,
		Name:        name,
		Environment: model.EnvProd,
		Source:      model.SourceSecretsManager,
	}
	for _, opt := range opts {
		opt(&in)
	}
	s, err := model.New(in)
	require.NoError(t, err)
	return s
}

func newTestIndexer(t *testing.T) *Indexer {
	t.Helper()
	ix, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestIndexer_RebuildAndSearch(t *testing.T) {
	ix := newTestIndexer(t)

	secrets := []*model.Secret{
		makeSecret(t, "arn:1", "prod-neo4j-connection", func(in *model.Input) {
			in.Notes = "graph database for the platform"
		}),
		makeSecret(t, "arn:2", "stripe-api-key"),
	}
	require.NoError(t, ix.Rebuild(secrets))

	count, err := ix.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	results, err := ix.Search("graph", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "arn:1", results[0].ID)
	assert.Equal(t, "prod-neo4j-connection", results[0].Name)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestIndexer_RebuildReplacesPreviousContents(t *testing.T) {
	ix := newTestIndexer(t)

	require.NoError(t, ix.Rebuild([]*model.Secret{
		makeSecret(t, "arn:old", "retired-secret"),
	}))
	require.NoError(t, ix.Rebuild([]*model.Secret{
		makeSecret(t, "arn:new", "fresh-secret"),
	}))

	count, err := ix.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	results, err := ix.Search("retired", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndexer_EmptyQueryFails(t *testing.T) {
	ix := newTestIndexer(t)

	_, err := ix.Search("", 10)
	assert.Error(t, err)
}

func TestIndexer_NeverIndexesSecretMaterial(t *testing.T) {
	ix := newTestIndexer(t)

	secret := makeSecret(t, "arn:1", "prod-db", func(in *model.Input) {
		in.Username = "admin"
		in.Password = "hunter2-super-secret"
		in.Source = model.SourceLastPass
	})
	require.NoError(t, ix.Rebuild([]*model.Secret{secret}))

	results, err := ix.Search("hunter2", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWriteIndex_ProducesJSONAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	entries := BuildEntries([]*model.Secret{
		makeSecret(t, "2", "Beta"),
		makeSecret(t, "1", "Alpha"),
	})

	jsonPath, mdPath, err := WriteIndex(entries, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded []Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	// sorted by normalized name regardless of input order
	assert.Equal(t, "alpha", decoded[0].NormalizedName)
	assert.Equal(t, "beta", decoded[1].NormalizedName)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "Total secrets: 2")
	assert.Contains(t, string(md), "| Alpha |")
}

func TestWriteAliases(t *testing.T) {
	dir := t.TempDir()
	secrets := []*model.Secret{
		makeSecret(t, "1", "Alpha"),
		makeSecret(t, "2", "Beta"),
	}

	path, err := WriteAliases(secrets, filepath.Join(dir, "organized"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var aliases Aliases
	require.NoError(t, json.Unmarshal(data, &aliases))

	assert.Equal(t, "alpha", aliases.ByID["1"])
	assert.Equal(t, "1", aliases.ByName["alpha"])
	assert.Equal(t, "2", aliases.ByName["beta"])
}

func TestWriteAliases_FirstSecretKeepsCollidingName(t *testing.T) {
	dir := t.TempDir()
	secrets := []*model.Secret{
		makeSecret(t, "1", "Shared Name"),
		makeSecret(t, "2", "Shared Name"),
	}

	path, err := WriteAliases(secrets, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var aliases Aliases
	require.NoError(t, json.Unmarshal(data, &aliases))

	assert.Equal(t, "1", aliases.ByName["shared_name"])
	assert.Equal(t, "shared_name", aliases.ByID["2"])
}

func TestMaterializeMetadata(t *testing.T) {
	dir := t.TempDir()
	secrets := []*model.Secret{
		makeSecret(t, "1", "Prod Database", func(in *model.Input) {
			in.Username = "admin"
			in.Password = "hunter2"
			in.Source = model.SourceLastPass
		}),
	}

	metadataDir, err := MaterializeMetadata(secrets, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(metadataDir, "prod_database.json"))
	require.NoError(t, err)

	assert.Contains(t, string(data), "Prod Database")
	assert.NotContains(t, string(data), "hunter2")
	assert.NotContains(t, string(data), "admin")
}
