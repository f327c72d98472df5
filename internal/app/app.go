// Package app wires the catalog, analyzer, scorer and indexer into the
// consolidation service behind the CLI. Source clients are injected so the
// service stays testable without network access or real vault exports.
package app

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"secretsctl/internal/analyzer"
	"secretsctl/internal/catalog"
	"secretsctl/internal/config"
	"secretsctl/internal/health"
	"secretsctl/internal/index"
	"secretsctl/internal/model"
)

// VaultClient exports every secret from a password vault.
type VaultClient interface {
	ExportAll() ([]*model.Secret, error)
}

// BackupLoader reads secrets out of an on-disk backup tree.
type BackupLoader func(root string) ([]*model.Secret, error)

// Options control one consolidation run.
type Options struct {
	SkipBackup  bool
	SkipVault   bool
	Materialize bool
}

// Result summarizes a finished consolidation run.
type Result struct {
	RunID        string           `json:"run_id"`
	TotalSecrets int              `json:"total_secrets"`
	Duplicates   []analyzer.Match `json:"duplicates"`
	Health       *health.Report   `json:"health"`
}

// Params collects the collaborators of an App. Config and Catalog are
// required; Indexer, BackupLoader and Vault are optional and their stages are
// skipped when absent.
type Params struct {
	Config       *config.Config
	Catalog      *catalog.Catalog
	Analyzer     *analyzer.Analyzer
	Scorer       *health.Scorer
	Indexer      *index.Indexer
	BackupLoader BackupLoader
	Vault        VaultClient
	Logger       *zap.SugaredLogger
}

// App is the consolidation service.
type App struct {
	cfg          *config.Config
	catalog      *catalog.Catalog
	analyzer     *analyzer.Analyzer
	scorer       *health.Scorer
	indexer      *index.Indexer
	backupLoader BackupLoader
	vault        VaultClient
	logger       *zap.SugaredLogger
}

// New assembles an App, defaulting the analyzer, scorer and logger.
func New(p Params) (*App, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("app requires a config")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("app requires a catalog")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop().Sugar()
	}
	if p.Analyzer == nil {
		p.Analyzer = analyzer.New(p.Logger)
	}
	if p.Scorer == nil {
		p.Scorer = health.New()
	}

	return &App{
		cfg:          p.Config,
		catalog:      p.Catalog,
		analyzer:     p.Analyzer,
		scorer:       p.Scorer,
		indexer:      p.Indexer,
		backupLoader: p.BackupLoader,
		vault:        p.Vault,
		logger:       p.Logger,
	}, nil
}

// Consolidate ingests all configured sources into the catalog, runs duplicate
// detection and health scoring, optionally rebuilds and materializes the
// index, and persists the catalog. The catalog file is only written when the
// whole run succeeds; a failing source loader aborts before anything is saved.
func (a *App) Consolidate(ctx context.Context, opts Options) (*Result, error) {
	runID := ulid.Make().String()
	a.logger.Infow("starting consolidation", "run_id", runID,
		"skip_backup", opts.SkipBackup, "skip_vault", opts.SkipVault)

	if !opts.SkipBackup && a.backupLoader != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		secrets, err := a.backupLoader(a.cfg.BackupDir)
		if err != nil {
			return nil, fmt.Errorf("backup load failed: %w", err)
		}
		for _, secret := range secrets {
			a.catalog.Add(secret)
		}
		a.logger.Infow("ingested backup export", "run_id", runID, "secrets", len(secrets))
	}

	if !opts.SkipVault && a.vault != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		secrets, err := a.vault.ExportAll()
		if err != nil {
			return nil, fmt.Errorf("vault export failed: %w", err)
		}
		for _, secret := range secrets {
			a.catalog.Add(secret)
		}
		a.logger.Infow("ingested vault export", "run_id", runID, "secrets", len(secrets))
	}

	all := a.catalog.All()
	matches := a.analyzer.FindDuplicates(all)
	a.markDuplicates(matches)
	report := a.scorer.Score(all, matches)

	if a.indexer != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.indexer.Rebuild(all); err != nil {
			return nil, fmt.Errorf("index rebuild failed: %w", err)
		}
		if opts.Materialize {
			if err := a.materialize(all); err != nil {
				return nil, err
			}
		}
	}

	if err := a.catalog.Save(); err != nil {
		return nil, fmt.Errorf("catalog save failed: %w", err)
	}

	a.logger.Infow("consolidation finished", "run_id", runID,
		"secrets", len(all), "duplicates", len(matches), "score", report.OverallScore)
	return &Result{
		RunID:        runID,
		TotalSecrets: len(all),
		Duplicates:   matches,
		Health:       report,
	}, nil
}

// markDuplicates flags the second secret of each match. The first id wins so
// the earliest cataloged entry stays canonical.
func (a *App) markDuplicates(matches []analyzer.Match) {
	for _, match := range matches {
		if secret, ok := a.catalog.Get(match.SecretBID); ok && !secret.IsDuplicate {
			secret.MarkDuplicate(match.SecretAID, match.Confidence)
		}
	}
}

func (a *App) materialize(secrets []*model.Secret) error {
	entries := index.BuildEntries(secrets)
	if _, _, err := index.WriteIndex(entries, a.cfg.DataDir); err != nil {
		return fmt.Errorf("index materialization failed: %w", err)
	}
	organized := a.cfg.OrganizedDir()
	if _, err := index.WriteAliases(secrets, organized); err != nil {
		return fmt.Errorf("alias materialization failed: %w", err)
	}
	if _, err := index.MaterializeMetadata(secrets, organized); err != nil {
		return fmt.Errorf("metadata materialization failed: %w", err)
	}
	return nil
}
