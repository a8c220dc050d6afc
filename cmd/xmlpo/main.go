// Command xmlpo extracts translatable messages from XML documents into PO
// catalogs and merges translated catalogs back into documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZaguanLabs/xmlpo"
	"github.com/ZaguanLabs/xmlpo/cache"
	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/internal/config"
	"github.com/ZaguanLabs/xmlpo/mode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	modeName   string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:          xmlpo.Name,
		Short:        xmlpo.Description,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default "+config.DefaultFile+" if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	root.PersistentFlags().StringVarP(&a.modeName, "mode", "m", "", "document mode ("+strings.Join(mode.Names(), ", ")+")")

	root.AddCommand(
		a.extractCmd(),
		a.mergeCmd(),
		a.reuseCmd(),
		a.diffCmd(),
		a.pretranslateCmd(),
		a.memoryCmd(),
		a.versionCmd(),
	)

	return root
}

func (a *app) setup() error {
	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
	log.Logger = a.logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.modeName != "" {
		cfg.Mode = a.modeName
	}
	a.cfg = cfg
	return nil
}

func (a *app) engine(opts ...xmlpo.EngineOption) *xmlpo.Engine {
	base := []xmlpo.EngineOption{
		xmlpo.WithLogger(a.logger),
		xmlpo.WithKeepEntities(a.cfg.KeepEntities),
		xmlpo.WithMarkUntranslated(a.cfg.MarkUntranslated),
		xmlpo.WithWorkers(a.cfg.Workers),
	}
	return xmlpo.NewEngine(mode.Resolve(a.cfg.Mode, a.cfg.Modes, a.logger), append(base, opts...)...)
}

// output returns stdout for "" and "-", otherwise a created file.
func (a *app) output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{a.stdout}, nil
	}
	f, err := os.Create(path) // #nosec G304 - CLI writes user-specified files
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeCatalog(w io.WriteCloser, cat *catalog.Catalog, h catalog.Header) error {
	h.Generator = xmlpo.Generator()
	if err := cat.Write(w, h); err != nil {
		w.Close()
		return fmt.Errorf("writing catalog: %w", err)
	}
	return w.Close()
}

func readCatalog(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path) // #nosec G304 - CLI reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	cat, err := catalog.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cat, nil
}

// openMemory returns the configured translation memory. The in-process
// store is loaded from and saved back to cfg.Memory.File when set.
func (a *app) openMemory() (cache.Store, func() error, error) {
	m := a.cfg.Memory
	if m.RedisURL != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: m.RedisURL, TTL: m.TTL, KeyPrefix: m.KeyPrefix})
		if err != nil {
			return nil, nil, &xmlpo.CacheError{Message: "connecting to Redis", Cause: err}
		}
		return rc, rc.Close, nil
	}

	mem := cache.NewInMemoryCache(m.TTL)
	if m.File == "" {
		return mem, func() error { return nil }, nil
	}
	res, err := cache.NewImporter(mem).ImportFromFile(m.File)
	switch {
	case err == nil:
		a.logger.Debug().Int("entries", res.Imported).Str("file", m.File).Msg("Loaded translation memory")
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, nil, &xmlpo.CacheError{Message: "loading " + m.File, Cause: err}
	}
	save := func() error {
		return cache.NewExporter(mem).ExportToFile(m.File, nil)
	}
	return mem, save, nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version",
		Args:              cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.stdout, "%s %s\n", xmlpo.Name, xmlpo.FullVersion())
			if xmlpo.BuildDate != "unknown" && xmlpo.BuildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", xmlpo.BuildDate)
			}
			fmt.Fprintf(a.stdout, "  source:  %s (%s)\n", xmlpo.Repository, xmlpo.License)
			return nil
		},
	}
}
