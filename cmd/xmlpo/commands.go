package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ZaguanLabs/xmlpo"
	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/locale"
	"github.com/ZaguanLabs/xmlpo/verify"
	"github.com/spf13/cobra"
)

func (a *app) extractCmd() *cobra.Command {
	var out, project string
	var parallel bool

	cmd := &cobra.Command{
		Use:   "extract <file>...",
		Short: "Extract translatable messages into a PO template",
		Long: `Extract reads each XML document and writes one PO template holding every
translatable message. Documents that fail to parse are reported and skipped;
the template is still written from the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := a.engine()

			var cat *catalog.Catalog
			var err error
			if parallel {
				cat, err = e.ExtractParallel(cmd.Context(), args)
			} else {
				cat, err = e.Extract(args)
			}

			w, werr := a.output(out)
			if werr != nil {
				return werr
			}
			if werr := writeCatalog(w, cat, catalog.Header{Project: project}); werr != nil {
				return werr
			}

			a.logger.Info().Int("files", len(args)).Int("messages", cat.Len()).Msg("Extraction finished")
			if err != nil {
				return fmt.Errorf("some documents were skipped: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&project, "project", "", "Project-Id-Version header value")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "read documents concurrently")
	return cmd
}

func (a *app) mergeCmd() *cobra.Command {
	var po, out, lang string
	var check, useMemory, fuzzy, mark bool

	cmd := &cobra.Command{
		Use:   "merge -p <catalog.po> <file>",
		Short: "Write a translated copy of a document",
		Long: `Merge replaces every translatable message of the document with its
translation from the catalog and writes the result. Messages without a usable
translation keep the original text. With --memory the translation memory is
consulted for messages the catalog does not translate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if po == "" && !useMemory {
				return errors.New("a catalog (--po) or --memory is required")
			}
			if lang == "" && po != "" {
				lang = locale.FromCatalogPath(po)
			}

			var chain xmlpo.ChainTranslations
			if po != "" {
				cat, err := readCatalog(po)
				if err != nil {
					return err
				}
				cat.UseFuzzy = fuzzy
				chain = append(chain, cat)
			}
			if useMemory {
				if lang == "" {
					return errors.New("--lang is required to merge from memory alone")
				}
				store, closeMemory, err := a.openMemory()
				if err != nil {
					return err
				}
				defer closeMemory()
				chain = append(chain, &xmlpo.MemoryTranslations{Cache: store, Lang: lang})
			}

			opts := []xmlpo.EngineOption{xmlpo.WithLanguage(lang)}
			if mark {
				opts = append(opts, xmlpo.WithMarkUntranslated(true))
			}
			merged, err := a.engine(opts...).Merge(chain, args[0])
			if err != nil {
				return err
			}

			if check {
				if err := a.check(args[0], merged); err != nil {
					return err
				}
			}

			w, err := a.output(out)
			if err != nil {
				return err
			}
			if _, err := w.Write(merged); err != nil {
				w.Close()
				return fmt.Errorf("writing document: %w", err)
			}
			return w.Close()
		},
	}

	cmd.Flags().StringVarP(&po, "po", "p", "", "translated catalog")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "target language (default from the catalog file name)")
	cmd.Flags().BoolVar(&check, "check", false, "compare the element structure of the result with the source")
	cmd.Flags().BoolVar(&useMemory, "memory", false, "fall back to the translation memory")
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "use translations flagged fuzzy")
	cmd.Flags().BoolVar(&mark, "mark-untranslated", false, `set xml:lang="C" on untranslated messages`)
	return cmd
}

func (a *app) check(file string, merged []byte) error {
	src, err := os.ReadFile(file) // #nosec G304 - CLI reads user-specified files
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	report, err := verify.Compare(src, merged)
	if err != nil {
		return fmt.Errorf("checking structure: %w", err)
	}
	if report.OK() {
		a.logger.Debug().Str("file", file).Msg("Structure unchanged")
		return nil
	}
	a.logger.Warn().Str("file", file).Str("changes", report.String()).Msg("Merged document structure differs from source")
	return nil
}

func (a *app) reuseCmd() *cobra.Command {
	var out, lang string

	cmd := &cobra.Command{
		Use:   "reuse <translated.xml> <source.xml>",
		Short: "Build a catalog from an existing translated document",
		Long: `Reuse pairs the messages of a document translated by hand with those of its
source by position and writes them as a catalog. Both documents must have the
same structure; the result is approximate and should be reviewed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.engine().Reuse(args[0], args[1])
			if err != nil {
				return err
			}
			w, err := a.output(out)
			if err != nil {
				return err
			}
			return writeCatalog(w, cat, catalog.Header{Language: lang})
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language header value")
	return cmd
}

type diffJSON struct {
	Stats    xmlpo.DiffStats `json:"stats"`
	Added    []string        `json:"added"`
	Removed  []string        `json:"removed"`
	Modified [][2]string     `json:"modified"`
}

func (a *app) diffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff <old.pot> <new.pot>",
		Short: "Show how the messages of two catalogs differ",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldCat, err := readCatalog(args[0])
			if err != nil {
				return err
			}
			newCat, err := readCatalog(args[1])
			if err != nil {
				return err
			}
			diff := xmlpo.DiffCatalogs(oldCat, newCat)

			if asJSON {
				out := diffJSON{Stats: diff.Stats(), Added: []string{}, Removed: []string{}, Modified: [][2]string{}}
				for _, m := range diff.Added {
					out.Added = append(out.Added, m.ID)
				}
				for _, m := range diff.Removed {
					out.Removed = append(out.Removed, m.ID)
				}
				for _, m := range diff.Modified {
					out.Modified = append(out.Modified, [2]string{m.Old.ID, m.New.ID})
				}
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			s := diff.Stats()
			fmt.Fprintf(a.stdout, "%d added, %d removed, %d modified, %d unchanged\n", s.Added, s.Removed, s.Modified, s.Unchanged)
			for _, m := range diff.Added {
				fmt.Fprintf(a.stdout, "+ %q\n", m.ID)
			}
			for _, m := range diff.Removed {
				fmt.Fprintf(a.stdout, "- %q\n", m.ID)
			}
			for _, m := range diff.Modified {
				fmt.Fprintf(a.stdout, "~ %q\n  -> %q\n", m.Old.ID, m.New.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the diff as JSON")
	return cmd
}
