package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"site_uitest/application/report"
	"site_uitest/application/runner"
	"site_uitest/domain/entities"
	"site_uitest/infrastructure/config"
	"site_uitest/infrastructure/storage"
)

type runFlags struct {
	categories string
	browser    string
	driver     string
	headed     bool
	parallel   int
	format     string
	out        string
	run        string
	timeout    time.Duration
	short      bool
	raw        bool
	dir        string
}

func runCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the browser suite and report the results",
		Long: "Runs the suite package with go test, restricted to the selected categories,\n" +
			"and writes a report. Exits non-zero when any test failed or errored.\n\n" +
			"Categories: " + categoryList(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := fromContext(cmd.Context())
			cfg, err := f.apply(*e.cfg)
			if err != nil {
				return err
			}
			// the suite resolves relative paths against the module root it
			// runs in, so hand it absolute ones anchored at the same place
			root, err := filepath.Abs(f.dir)
			if err != nil {
				return fmt.Errorf("--dir: %w", err)
			}
			cfg.ResolvePaths(root)

			store, err := storage.NewArtifactStore(cfg.ArtifactsDir, "")
			if err != nil {
				return err
			}

			opts := runner.Options{
				Run:      f.run,
				Parallel: f.parallel,
				Timeout:  f.timeout,
				Short:    f.short,
				Dir:      f.dir,
			}
			if f.raw {
				opts.Raw = cmd.ErrOrStderr()
			}

			rep, err := runner.New(&cfg, store, e.logger).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if f.out != "" {
				file, err := os.Create(f.out)
				if err != nil {
					return fmt.Errorf("failed to create report: %w", err)
				}
				defer file.Close()
				out = file
			}
			if err := report.Write(out, rep, f.format); err != nil {
				return err
			}
			if rep.Failed() {
				return errTestsFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.categories, "category", "c", "", "comma separated categories to run (default all)")
	cmd.Flags().StringVar(&f.browser, "browser", "", "chromium, firefox or webkit (overrides UITEST_BROWSER)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "playwright or selenium (overrides UITEST_DRIVER)")
	cmd.Flags().BoolVar(&f.headed, "headed", false, "show the browser windows")
	cmd.Flags().IntVarP(&f.parallel, "parallel", "p", 0, "tests run at once (default GOMAXPROCS)")
	cmd.Flags().StringVar(&f.format, "report", report.FormatText, "report format: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&f.run, "run", "", "only run tests matching this regexp")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "fail the run after this long (default go test's)")
	cmd.Flags().BoolVar(&f.short, "short", false, "pass -short; every browser test skips")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "echo the go test event stream to stderr")
	cmd.Flags().StringVar(&f.dir, "dir", "", "module root to run in (default the working directory)")
	return cmd
}

// apply - cfg with the command line overrides, validated
func (f runFlags) apply(cfg config.Config) (config.Config, error) {
	if f.categories != "" {
		set, err := entities.ParseCategories(f.categories)
		if err != nil {
			return cfg, fmt.Errorf("--category: %w", err)
		}
		cfg.Categories = set
	}
	if f.browser != "" {
		cfg.Browser = strings.ToLower(f.browser)
	}
	if f.driver != "" {
		cfg.Driver = strings.ToLower(f.driver)
	}
	if f.headed {
		cfg.Headless = false
	}
	if !report.KnownFormat(f.format) {
		return cfg, fmt.Errorf("--report: unknown format %q", f.format)
	}
	return cfg, cfg.Validate()
}

func categoryList() string {
	known := entities.KnownCategories()
	names := make([]string, 0, len(known))
	for c := range known {
		names = append(names, string(c))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
