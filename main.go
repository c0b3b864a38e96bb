// tskit: Qt Linguist catalog toolkit. Inspects, validates, queries and
// converts .ts translation catalogs.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/minios-linux/tskit/catalog"
	"github.com/minios-linux/tskit/config"
	"github.com/minios-linux/tskit/convert"
	"github.com/minios-linux/tskit/i18n"
	"github.com/minios-linux/tskit/langmeta"
	"github.com/minios-linux/tskit/pofile"
	"github.com/minios-linux/tskit/tsfile"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tskit",
		Short: i18n.T("Qt Linguist catalog toolkit"),
		Long: i18n.T(`tskit: Qt Linguist catalog toolkit.

Reads .ts translation catalogs, reports their progress, checks them for
structural errors, resolves single strings the way the application does
at runtime, and converts catalogs to and from gettext PO files.

Commands:
  status      Show translation statistics for each catalog
  validate    Check catalogs for malformed XML and duplicate keys
  lookup      Resolve one string against a catalog
  export-po   Convert a .ts catalog to a PO file
  import-po   Convert a PO file back to a .ts catalog`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))

	root.AddCommand(
		newStatusCmd(),
		newValidateCmd(),
		newLookupCmd(),
		newExportPOCmd(),
		newImportPOCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tskit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
			fmt.Fprintf(out, "  languages: %s\n", strings.Join(append([]string{"en"}, i18n.Available()...), ", "))
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: per-catalog statistics)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [files...]",
		Short: i18n.T("Show translation statistics for each catalog"),
		Long: i18n.T(`Show translation statistics for .ts catalogs.

Without arguments, every *.ts file in the configured translations
directory is listed. Does not modify any files.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			return runStatus(cfg, args)
		},
	}
}

// catalogPaths returns the catalogs named on the command line, or every
// catalog in the translations directory.
func catalogPaths(cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	var paths []string
	for _, code := range config.DetectLanguages(cfg.AbsTranslationsDir()) {
		paths = append(paths, cfg.CatalogPath(code))
	}
	return paths
}

type statusRow struct {
	path       string
	lang       string
	contexts   int
	total      int
	finished   int
	unfinished int
	obsolete   int
	err        error
}

func (r statusRow) percent() int {
	if r.total == 0 {
		return 0
	}
	return r.finished * 100 / r.total
}

func collectStatus(paths []string) []statusRow {
	rows := make([]statusRow, 0, len(paths))
	for _, path := range paths {
		row := statusRow{path: path}
		f, err := tsfile.ParseFile(path)
		if err != nil {
			row.err = err
			rows = append(rows, row)
			continue
		}
		meta := langmeta.Resolve(f.Language)
		row.lang = strings.TrimSpace(meta.Flag + " " + meta.Name)
		row.contexts = len(f.Contexts)
		row.total, row.finished, row.unfinished, row.obsolete = f.Stats()
		rows = append(rows, row)
	}
	return rows
}

func runStatus(cfg *config.Config, args []string) error {
	paths := catalogPaths(cfg, args)
	if len(paths) == 0 {
		logInfo(i18n.T("No catalogs found in %s"), cfg.AbsTranslationsDir())
		return nil
	}

	rows := collectStatus(paths)

	fileWidth, langWidth := len("File"), len("Language")
	for _, r := range rows {
		fileWidth = max(fileWidth, runewidth.StringWidth(filepath.Base(r.path)))
		langWidth = max(langWidth, runewidth.StringWidth(r.lang))
	}

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Translation Statistics"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "%s %s %-9s %-9s %-11s %-9s %s\n",
		padRight("File", fileWidth), padRight("Language", langWidth),
		"Contexts", "Finished", "Unfinished", "Obsolete", "Progress")

	failed := 0
	for _, r := range rows {
		name := padRight(filepath.Base(r.path), fileWidth)
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s%s%s\n", name, colorRed, i18n.T("unreadable"), colorReset)
			continue
		}
		fmt.Fprintf(os.Stderr, "%s %s %-9d %-9d %-11d %-9d %s\n",
			name, padRight(r.lang, langWidth),
			r.contexts, r.finished, r.unfinished, r.obsolete,
			progressBar(r.percent(), 20))
	}
	fmt.Fprintln(os.Stderr)

	for _, r := range rows {
		if r.err != nil {
			logError("%v", r.err)
		}
	}
	if failed > 0 {
		logWarning(i18n.N("%d catalog could not be read", "%d catalogs could not be read", failed), failed)
	}
	return nil
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// progressBar renders a colored bar of the given width followed by the
// percentage.
func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <files...>",
		Short: i18n.T("Check catalogs for malformed XML and duplicate keys"),
		Long: i18n.T(`Parse each catalog and report every error with its position.

Exits with a non-zero status if any catalog is invalid.`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
}

func runValidate(paths []string) error {
	failed := 0
	for _, path := range paths {
		f, err := tsfile.ParseFile(path)
		if err != nil {
			failed++
			logError("%v", err)
			continue
		}
		total, _, _, _ := f.Stats()
		logSuccess(i18n.T("%s: %d contexts, %d messages"), path, len(f.Contexts), total)
	}
	if failed > 0 {
		return fmt.Errorf(i18n.N("%d of %d catalog is invalid", "%d of %d catalogs are invalid", len(paths)), failed, len(paths))
	}
	return nil
}

// ---------------------------------------------------------------------------
// lookup
// ---------------------------------------------------------------------------

type lookupArgs struct {
	lang           string
	file           string
	context        string
	disambiguation string
	id             bool
}

func newLookupCmd() *cobra.Command {
	var a lookupArgs

	cmd := &cobra.Command{
		Use:   "lookup <source>",
		Short: i18n.T("Resolve one string against a catalog"),
		Long: i18n.T(`Resolve a source text the way the application does at runtime.

The catalog is chosen with --file, or from --lang through the project
config (language names such as "Spanish" map through its aliases). The
source language needs no catalog. A catalog that cannot be loaded is
reported and the source text is printed.`),
		Example: `  tskit lookup --lang Spanish --context GeneralWidget Settings
  tskit lookup --file es.ts --context MainWindow --disambiguation menu Open
  tskit lookup --file es.ts --id settings.open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.context == "" && !a.id {
				return errors.New(i18n.T("--context is required unless --id is set"))
			}
			cat, err := lookupCatalog(a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resolve(cat, a, args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&a.lang, "lang", "l", "", i18n.T("Language code or name (default: config default_lang)"))
	cmd.Flags().StringVarP(&a.file, "file", "f", "", i18n.T("Catalog file, overrides --lang"))
	cmd.Flags().StringVarP(&a.context, "context", "c", "", i18n.T("Context name, usually the UI form"))
	cmd.Flags().StringVarP(&a.disambiguation, "disambiguation", "d", "", i18n.T("Disambiguation comment"))
	cmd.Flags().BoolVar(&a.id, "id", false, i18n.T("Treat the argument as a message id"))

	return cmd
}

// lookupCatalog picks the catalog for a lookup. Load failures are logged
// and yield the empty catalog, so lookups fall back to the source text.
func lookupCatalog(a lookupArgs) (*catalog.Catalog, error) {
	path := a.file
	if path == "" {
		cfg, err := config.Load(rootDir)
		if err != nil {
			return nil, err
		}
		code := cfg.LanguageCode(a.lang)
		if cfg.IsSourceLanguage(code) {
			return catalog.Empty(), nil
		}
		path = cfg.CatalogPath(code)
	}

	cat, err := catalog.LoadFileOrEmpty(path)
	if err != nil {
		logWarning(i18n.T("Using source texts: %v"), err)
	}
	return cat, nil
}

func resolve(cat *catalog.Catalog, a lookupArgs, arg string) string {
	if a.id {
		return cat.ResolveID(arg)
	}
	return cat.ResolveDisambiguated(a.context, arg, a.disambiguation)
}

// ---------------------------------------------------------------------------
// export-po / import-po
// ---------------------------------------------------------------------------

func newExportPOCmd() *cobra.Command {
	var output, project string

	cmd := &cobra.Command{
		Use:   "export-po <file.ts>",
		Short: i18n.T("Convert a .ts catalog to a PO file"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tsfile.ParseFile(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = replaceExt(args[0], ".po")
			}
			if project == "" {
				project = projectName(rootDir)
			}
			if fileExists(output) {
				logInfo(i18n.T("Overwriting %s"), output)
			}
			po := convert.ToPO(f, project)
			if err := po.WriteFile(output); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			logSuccess(i18n.N("Wrote %d entry to %s", "Wrote %d entries to %s", len(po.Entries)), len(po.Entries), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", i18n.T("Output PO file (default: input with .po extension)"))
	cmd.Flags().StringVar(&project, "project", "", i18n.T("Project-Id-Version header (default: root directory name)"))

	return cmd
}

func newImportPOCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import-po <file.po>",
		Short: i18n.T("Convert a PO file back to a .ts catalog"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := pofile.ParseFile(args[0])
			if err != nil {
				return err
			}
			f, err := convert.FromPO(po)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if output == "" {
				output = replaceExt(args[0], ".ts")
			}
			if fileExists(output) {
				logInfo(i18n.T("Overwriting %s"), output)
			}
			if err := f.WriteFile(output); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			total, _, _, _ := f.Stats()
			logSuccess(i18n.N("Wrote %d message to %s", "Wrote %d messages to %s", total), total, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", i18n.T("Output .ts file (default: input with .ts extension)"))

	return cmd
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// replaceExt swaps the extension of path for ext.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// projectName derives the PO project name from the root directory.
func projectName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "tskit"
	}
	return filepath.Base(abs)
}
