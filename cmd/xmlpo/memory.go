package main

import (
	"fmt"
	"time"

	"github.com/ZaguanLabs/xmlpo"
	"github.com/ZaguanLabs/xmlpo/cache"
	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/internal/config"
	"github.com/ZaguanLabs/xmlpo/locale"
	"github.com/ZaguanLabs/xmlpo/provider"
	"github.com/spf13/cobra"
)

// newProvider builds the machine translation backend. Tests replace it.
var newProvider = func(cfg config.ProviderConfig) (xmlpo.AIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key required (OPENAI_API_KEY env)")
	}
	return provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		BaseURL:     cfg.BaseURL,
	}), nil
}

func (a *app) pretranslateCmd() *cobra.Command {
	var out, lang string
	var memoryOnly, dryRun bool

	cmd := &cobra.Command{
		Use:   "pretranslate <catalog.po>",
		Short: "Fill untranslated catalog entries from memory and machine translation",
		Long: `Pretranslate looks every untranslated message up in the translation memory
and sends the rest to the configured provider. Filled entries are flagged
fuzzy for review. Translations that break markup or refer to unknown
placeholders are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lang == "" {
				lang = locale.FromCatalogPath(args[0])
			}
			cat, err := readCatalog(args[0])
			if err != nil {
				return err
			}

			pc := a.cfg.Provider
			var p xmlpo.AIProvider
			if !memoryOnly && !dryRun {
				inner, err := newProvider(pc)
				if err != nil {
					return err
				}
				retry := xmlpo.DefaultRetryConfig()
				retry.MaxRetries = pc.MaxRetries
				p = xmlpo.NewRateLimitedProvider(
					xmlpo.NewRetryableProvider(inner, retry).WithLogger(a.logger),
					xmlpo.RateLimitConfig{
						RequestsPerMinute: pc.RequestsPerMinute,
						MessagesPerMinute: pc.MessagesPerMinute,
					},
				).WithLogger(a.logger)
			}

			store, closeMemory, err := a.openMemory()
			if err != nil {
				return err
			}

			opts := []xmlpo.PretranslatorOption{
				xmlpo.WithSourceLang(pc.SourceLang),
				xmlpo.WithCache(store),
				xmlpo.WithExcludedTerms(pc.ExcludedTerms),
				xmlpo.WithContext(pc.Context),
				xmlpo.WithGlossary(pc.Glossary),
				xmlpo.WithStyle(xmlpo.TranslationStyle(pc.Style)),
				xmlpo.WithBatchSize(pc.BatchSize),
				xmlpo.WithPretranslatorLogger(a.logger),
			}

			start := time.Now()
			res, fillErr := xmlpo.NewPretranslator(lang, p, opts...).Fill(cmd.Context(), cat)
			if err := closeMemory(); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to save translation memory")
			}
			if fillErr != nil {
				return fillErr
			}

			if dryRun {
				fmt.Fprintf(a.stdout, "%d untranslated, %d from memory, %d would be sent for translation\n",
					res.Total, res.Cached, res.Total-res.Cached)
				return nil
			}

			w, err := a.output(out)
			if err != nil {
				return err
			}
			if err := writeCatalog(w, cat, catalog.Header{Language: lang}); err != nil {
				return err
			}
			a.logger.Info().Dur("elapsed", time.Since(start).Round(time.Millisecond)).Msg("Catalog written")
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "target language (default from the catalog file name)")
	cmd.Flags().BoolVar(&memoryOnly, "memory-only", false, "only use the translation memory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be translated without calling the provider")
	return cmd
}

func (a *app) memoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage the translation memory",
	}
	cmd.AddCommand(a.memoryImportCmd(), a.memoryExportCmd(), a.memoryLearnCmd())
	return cmd
}

func (a *app) memoryImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <export.json>",
		Short: "Load entries from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeMemory, err := a.openMemory()
			if err != nil {
				return err
			}
			res, err := cache.NewImporter(store).ImportFromFile(args[0])
			if err != nil {
				closeMemory()
				return err
			}
			a.logger.Info().Int("imported", res.Imported).Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("Memory import finished")
			return closeMemory()
		},
	}
}

func (a *app) memoryExportCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the memory as JSON (default stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeMemory, err := a.openMemory()
			if err != nil {
				return err
			}
			defer closeMemory()

			exporter := cache.NewExporter(store)
			if lang != "" {
				exporter.ForLanguage(lang)
			}
			meta := map[string]string{"generator": xmlpo.Generator()}
			if len(args) == 1 && args[0] != "-" {
				return exporter.ExportToFile(args[0], meta)
			}
			return exporter.Export(a.stdout, meta)
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "only export entries for this language")
	return cmd
}

func (a *app) memoryLearnCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "learn <catalog.po>...",
		Short: "Store the reviewed translations of catalogs",
		Long:  "Learn stores every translated entry that is not flagged fuzzy.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeMemory, err := a.openMemory()
			if err != nil {
				return err
			}

			total := 0
			for _, path := range args {
				cat, err := readCatalog(path)
				if err != nil {
					closeMemory()
					return err
				}
				l := lang
				if l == "" {
					l = locale.FromCatalogPath(path)
				}
				n, err := xmlpo.LearnCatalog(store, cat, l)
				if err != nil {
					closeMemory()
					return err
				}
				a.logger.Debug().Str("catalog", path).Str("lang", l).Int("entries", n).Msg("Learned catalog")
				total += n
			}
			a.logger.Info().Int("entries", total).Msg("Memory updated")
			return closeMemory()
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language of the catalogs (default from each file name)")
	return cmd
}
