package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"secretsctl/internal/model"
)

// Entry is one row of the materialized index listing.
type Entry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Category       string `json:"category"`
	Environment    string `json:"environment"`
	Grouping       string `json:"grouping,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
}

// Aliases maps secret ids to normalized names and back, for stable lookups
// from scripts and notebooks.
type Aliases struct {
	ByID   map[string]string `json:"by_id"`
	ByName map[string]string `json:"by_name"`
}

// BuildEntries projects secrets into index entries sorted by normalized name,
// then id, so repeated runs over the same catalog emit identical artifacts.
func BuildEntries(secrets []*model.Secret) []Entry {
	entries := make([]Entry, 0, len(secrets))
	for _, secret := range secrets {
		entries = append(entries, Entry{
			ID:             secret.ID,
			Name:           secret.Name,
			NormalizedName: secret.NormalizedName,
			Category:       string(secret.Category),
			Environment:    string(secret.Environment),
			Grouping:       secret.Grouping,
			Purpose:        secret.Purpose,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].NormalizedName != entries[j].NormalizedName {
			return entries[i].NormalizedName < entries[j].NormalizedName
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// WriteIndex materializes index.json and a human-readable index.md summary
// under dir. Both paths are returned.
func WriteIndex(entries []Entry, dir string) (jsonPath, mdPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create index directory %s: %w", dir, err)
	}

	jsonPath = filepath.Join(dir, "index.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize index: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}

	mdPath = filepath.Join(dir, "index.md")
	if err := os.WriteFile(mdPath, []byte(renderMarkdown(entries)), 0o600); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	return jsonPath, mdPath, nil
}

func renderMarkdown(entries []Entry) string {
	var b strings.Builder
	b.WriteString("# Secret Index\n\n")
	fmt.Fprintf(&b, "Total secrets: %d\n\n", len(entries))
	b.WriteString("| Name | Category | Environment | ID |\n")
	b.WriteString("|------|----------|-------------|----|\n")
	for _, entry := range entries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			entry.Name, entry.Category, entry.Environment, entry.ID)
	}
	return b.String()
}

// WriteAliases materializes aliases.json under dir with id-to-name and
// name-to-id maps. On normalized-name collisions the first secret in input
// order keeps the name alias.
func WriteAliases(secrets []*model.Secret, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create alias directory %s: %w", dir, err)
	}

	aliases := Aliases{
		ByID:   make(map[string]string, len(secrets)),
		ByName: make(map[string]string, len(secrets)),
	}
	for _, secret := range secrets {
		aliases.ByID[secret.ID] = secret.NormalizedName
		if _, taken := aliases.ByName[secret.NormalizedName]; !taken {
			aliases.ByName[secret.NormalizedName] = secret.ID
		}
	}

	path := filepath.Join(dir, "aliases.json")
	data, err := json.MarshalIndent(aliases, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize aliases: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// MaterializeMetadata writes one metadata JSON file per secret under
// dir/metadata. Files carry descriptive fields only, never credentials, so
// the directory is safe to sync to shared storage.
func MaterializeMetadata(secrets []*model.Secret, dir string) (string, error) {
	metadataDir := filepath.Join(dir, "metadata")
	if err := os.MkdirAll(metadataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create metadata directory %s: %w", metadataDir, err)
	}

	for _, secret := range secrets {
		entry := Entry{
			ID:             secret.ID,
			Name:           secret.Name,
			NormalizedName: secret.NormalizedName,
			Category:       string(secret.Category),
			Environment:    string(secret.Environment),
			Grouping:       secret.Grouping,
			Purpose:        secret.Purpose,
		}
		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to serialize metadata for %s: %w", secret.ID, err)
		}

		path := filepath.Join(metadataDir, metadataFileName(secret))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return metadataDir, nil
}

// metadataFileName prefers the normalized name and falls back to a sanitized
// id when the name normalizes to nothing.
func metadataFileName(secret *model.Secret) string {
	base := secret.NormalizedName
	if base == "" {
		base = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			case r >= 'A' && r <= 'Z':
				return r + ('a' - 'A')
			default:
				return '_'
			}
		}, secret.ID)
	}
	return base + ".json"
}
