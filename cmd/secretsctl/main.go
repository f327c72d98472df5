package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"secretsctl/internal/analyzer"
	"secretsctl/internal/app"
	"secretsctl/internal/backup"
	"secretsctl/internal/catalog"
	"secretsctl/internal/config"
	"secretsctl/internal/health"
	"secretsctl/internal/index"
	"secretsctl/internal/logs"
	"secretsctl/internal/model"
)

var (
	rootDir    string
	dataDir    string
	backupDir  string
	logLevel   string
	logToFile  bool
	logDir     string
	jsonOutput bool

	version = "v0.1.0" // injected by -ldflags during build
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "secretsctl",
		Short:   "Secrets catalog - inventory, deduplicate and score credentials across sources",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Base directory (default: ~/.secretsctl)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory path (default: <root>/data)")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "Backup export directory (default: <root>/backups)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-to-file", false, "Enable logging to file in standard OS location")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Custom log directory path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit JSON on stdout")

	rootCmd.AddCommand(
		consolidateCommand(),
		searchCommand(),
		duplicatesCommand(),
		healthCommand(),
		statsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and builds the shared
// logger and catalog.
func setup() (*config.Config, *catalog.Catalog, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if rootDir != "" {
		cfg.RootDir = rootDir
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logToFile {
		cfg.LogToFile = true
	}

	logger, err := logs.Setup(cfg.LogLevel, cfg.LogToFile, logDir)
	if err != nil {
		return nil, nil, nil, err
	}

	cat, err := catalog.New(cfg.CatalogPath(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, cat, logger, nil
}

func consolidateCommand() *cobra.Command {
	var (
		skipBackup  bool
		skipVault   bool
		materialize bool
	)

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Ingest all sources, detect duplicates and score catalog health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cat, logger, err := setup()
			if err != nil {
				return err
			}

			indexer, err := index.New(cfg.IndexDir(), logger)
			if err != nil {
				return err
			}
			defer indexer.Close()

			loader := backup.NewLoader(logger)
			service, err := app.New(app.Params{
				Config:       cfg,
				Catalog:      cat,
				Analyzer:     analyzer.New(logger),
				Scorer:       health.New(),
				Indexer:      indexer,
				BackupLoader: loader.LoadSecrets,
				Logger:       logger,
			})
			if err != nil {
				return err
			}

			result, err := service.Consolidate(cmd.Context(), app.Options{
				SkipBackup:  skipBackup,
				SkipVault:   skipVault,
				Materialize: materialize,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return emitJSON(result)
			}
			fmt.Printf("Run %s: %d secrets, %d duplicate pairs, health %.1f\n",
				result.RunID, result.TotalSecrets, len(result.Duplicates),
				result.Health.OverallScore)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipBackup, "skip-backup", false, "Skip the backup export source")
	cmd.Flags().BoolVar(&skipVault, "skip-vault", false, "Skip the vault export source")
	cmd.Flags().BoolVar(&materialize, "materialize", false, "Write index.json, index.md, aliases and metadata files")
	return cmd
}

func searchCommand() *cobra.Command {
	var (
		limit    int
		fullText bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search cataloged secrets by name and notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, cat, logger, err := setup()
			if err != nil {
				return err
			}

			if fullText {
				return runIndexSearch(cfg, logger, args[0], limit)
			}

			results := cat.Search(args[0])
			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}

			if jsonOutput {
				return emitJSON(results)
			}
			if len(results) == 0 {
				fmt.Println("No secrets found.")
				return nil
			}
			for _, secret := range results {
				fmt.Printf("%-40s %-15s %-8s %s\n",
					secret.Name, secret.Category, secret.Environment, secret.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (0 = all)")
	cmd.Flags().BoolVar(&fullText, "index", false, "Use the full-text index built by consolidate instead of substring matching")
	return cmd
}

// runIndexSearch queries the bleve index maintained by consolidate.
func runIndexSearch(cfg *config.Config, logger *zap.SugaredLogger, query string, limit int) error {
	indexer, err := index.New(cfg.IndexDir(), logger)
	if err != nil {
		return err
	}
	defer indexer.Close()

	results, err := indexer.Search(query, limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return emitJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("No secrets found.")
		return nil
	}
	for _, result := range results {
		fmt.Printf("%6.3f  %-40s %s\n", result.Score, result.Name, result.ID)
	}
	return nil
}

func duplicatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "Report likely duplicate secrets in the catalog",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, cat, logger, err := setup()
			if err != nil {
				return err
			}

			matches := analyzer.New(logger).FindDuplicates(cat.All())
			if jsonOutput {
				return emitJSON(matches)
			}
			if len(matches) == 0 {
				fmt.Println("No duplicates found.")
				return nil
			}
			for _, match := range matches {
				fmt.Printf("%.2f  %s <-> %s\n      %s\n",
					match.Confidence, match.SecretAID, match.SecretBID, match.Reason)
			}
			return nil
		},
	}
}

func healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Score catalog hygiene and list deprecation candidates",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, cat, logger, err := setup()
			if err != nil {
				return err
			}

			secrets := cat.All()
			matches := analyzer.New(logger).FindDuplicates(secrets)
			scorer := health.New()
			report := scorer.Score(secrets, matches)

			if jsonOutput {
				return emitJSON(report)
			}
			fmt.Printf("Overall score: %.1f/100\n", report.OverallScore)
			fmt.Printf("  secrets:             %d\n", report.TotalSecrets)
			fmt.Printf("  duplicates:          %d\n", report.DuplicateSecrets)
			fmt.Printf("  missing description: %d\n", report.MissingDescription)
			fmt.Printf("  stale:               %d\n", report.StaleSecrets)
			fmt.Printf("  deprecated names:    %d\n", report.DeprecatedNames)

			printDeprecationCandidates(scorer, secrets)
			return nil
		},
	}
}

func printDeprecationCandidates(scorer *health.Scorer, secrets []*model.Secret) {
	var lines []string
	for _, secret := range secrets {
		if deprecated, reason := scorer.SuggestDeprecation(secret); deprecated {
			lines = append(lines, fmt.Sprintf("  %s: %s", secret.Name, reason))
		}
	}
	if len(lines) > 0 {
		fmt.Println("Deprecation candidates:")
		fmt.Println(strings.Join(lines, "\n"))
	}
}

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals by category, environment and source",
		RunE: func(_ *cobra.Command, _ []string) error {
			_, cat, _, err := setup()
			if err != nil {
				return err
			}

			stats := cat.Stats()
			if jsonOutput {
				return emitJSON(stats)
			}
			fmt.Printf("Total secrets: %d\n", stats.Total)
			printBreakdown("By category", stats.ByCategory)
			printBreakdown("By environment", stats.ByEnvironment)
			printBreakdown("By source", stats.BySource)
			return nil
		},
	}
}

func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for label, count := range counts {
		fmt.Printf("  %-20s %d\n", label, count)
	}
}

func emitJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
