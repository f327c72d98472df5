// Package backup loads secrets from on-disk vault exports. An export tree
// holds one JSON file per entry under an individual/ directory; a consolidated
// complete_latest export supersedes the rolling latest one when both exist.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"secretsctl/internal/model"
)

// exportDirs lists candidate entry directories under a backup root, most
// authoritative first. Only the first existing one is loaded.
var exportDirs = []string{
	filepath.Join("complete_latest", "merged", "individual"),
	filepath.Join("latest", "individual"),
}

// entryFile is the JSON shape of one exported vault entry.
type entryFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Note     string `json:"note"`
	Group    string `json:"group"`
}

// Loader reads vault export trees.
type Loader struct {
	logger *zap.SugaredLogger
}

// NewLoader creates a Loader.
func NewLoader(logger *zap.SugaredLogger) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{logger: logger}
}

// LoadSecrets reads every entry file from the preferred export under root. A
// missing root or export directory yields an empty slice; unreadable or
// malformed entry files are logged and skipped so one corrupt file does not
// discard the rest of the backup.
func (l *Loader) LoadSecrets(root string) ([]*model.Secret, error) {
	dir, ok := l.selectExport(root)
	if !ok {
		l.logger.Debugw("no backup export found", "root", root)
		return nil, nil
	}

	names, err := entryFileNames(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list backup entries in %s: %w", dir, err)
	}

	var secrets []*model.Secret
	for _, name := range names {
		path := filepath.Join(dir, name)
		secret, err := l.loadEntry(path)
		if err != nil {
			l.logger.Warnw("skipping unreadable backup entry", "path", path, "error", err)
			continue
		}
		secrets = append(secrets, secret)
	}

	l.logger.Infow("loaded backup export", "dir", dir, "secrets", len(secrets))
	return secrets, nil
}

// selectExport returns the most authoritative existing export directory.
func (l *Loader) selectExport(root string) (string, bool) {
	for _, sub := range exportDirs {
		dir := filepath.Join(root, sub)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

func entryFileNames(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) loadEntry(path string) (*model.Secret, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entry entryFile
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("not a valid entry file: %w", err)
	}

	return model.New(model.Input{
		ID:       entry.ID,
		Name:     entry.Name,
		Username: entry.Username,
		Password: entry.Password,
		URL:      entry.URL,
		Notes:    entry.Note,
		Grouping: entry.Group,
		Source:   model.SourceBackupCLI,
	})
}
