package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"site_uitest/application/extractor"
	"site_uitest/domain/entities"
	"site_uitest/domain/interfaces"
	"site_uitest/infrastructure/browser"
	"site_uitest/infrastructure/htmldom"
)

type extractFlags struct {
	url     string
	html    string
	out     string
	merge   bool
	headed  bool
	static  bool
	dryRun  bool
	skipped bool
}

func extractCommand() *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Propose selector entries from a rendered page",
		Long: "Inspects a page and writes every element it can pin to exactly one node into\n" +
			"the snapshot. Elements sharing a locator, or matching zero or several nodes,\n" +
			"are reported and left out. The existing snapshot is replaced unless --merge.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := fromContext(cmd.Context())
			if f.out == "" {
				f.out = e.cfg.RegistryPath
			}
			if f.url == "" && f.html == "" {
				f.url = e.cfg.URL("/")
			}

			policy := extractor.PolicyReplace
			if f.merge {
				policy = extractor.PolicyMerge
			}

			src, done, err := openSource(cmd.Context(), e, f)
			if err != nil {
				return err
			}
			defer done()

			x := extractor.New(extractor.DefaultHeuristics(), e.logger)
			result, err := x.Extract(cmd.Context(), src)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d accepted, %d skipped\n", result.URL, len(result.Accepted), len(result.Skipped))
			if f.skipped {
				if err := writeSkipped(out, result.Skipped); err != nil {
					return err
				}
			}
			if f.dryRun {
				return writeEntries(out, result.Accepted)
			}

			changes, err := x.Write(result, f.out, policy)
			if err != nil {
				return err
			}
			writeChanges(out, changes)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.url, "url", "", "page to inspect (default the base URL)")
	cmd.Flags().StringVar(&f.html, "html", "", "saved HTML file to inspect instead of a live page")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "snapshot to write (default UITEST_REGISTRY)")
	cmd.Flags().BoolVar(&f.merge, "merge", false, "keep entries of the existing snapshot that were not re-extracted")
	cmd.Flags().BoolVar(&f.headed, "headed", false, "show the browser window")
	cmd.Flags().BoolVar(&f.static, "static", false, "fetch the page over HTTP without a browser")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the proposed entries instead of writing them")
	cmd.Flags().BoolVar(&f.skipped, "show-skipped", false, "list skipped elements and why")
	cmd.MarkFlagsMutuallyExclusive("url", "html")
	return cmd
}

// openSource - the DOM source for f, and a function releasing it
func openSource(ctx context.Context, e env, f extractFlags) (interfaces.DOMSource, func(), error) {
	if f.html != "" {
		src, err := htmldom.Open(f.html, f.url)
		return src, func() {}, err
	}
	if f.static {
		client := &http.Client{Timeout: e.cfg.NavTimeout}
		src, _, err := htmldom.Fetch(ctx, client, f.url)
		return src, func() {}, err
	}

	cfg := *e.cfg
	if f.headed {
		cfg.Headless = false
	}
	session, err := browser.Launch(&cfg, e.logger)
	if err != nil {
		return nil, nil, err
	}
	tab, err := session.NewTab(browser.TabOptions{})
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}
	done := func() {
		if _, err := tab.Close(); err != nil {
			e.logger.Warnf("Failed to close tab: %v", err)
		}
		if err := session.Close(); err != nil {
			e.logger.Warnf("Failed to close browser: %v", err)
		}
	}

	status, err := tab.Driver().Navigate(ctx, f.url)
	if err == nil && status >= 400 {
		err = &entities.NavigationError{URL: f.url, Status: status}
	}
	if err != nil {
		done()
		return nil, nil, err
	}
	return tab.DOM(), done, nil
}

func writeSkipped(w io.Writer, skipped []extractor.Skipped) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ELEMENT\tLOCATOR\tREASON\tMATCHES")
	for _, s := range skipped {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Candidate.Describe(), s.Locator, s.Reason, s.Matches)
	}
	return tw.Flush()
}
