package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"site_uitest/application/pages"
	"site_uitest/domain/entities"
	"site_uitest/domain/registry"
)

func registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect selector snapshots",
	}
	cmd.AddCommand(
		registryValidateCommand(),
		registryShowCommand(),
		registryDiffCommand(),
	)
	return cmd
}

// boundNames - every name some page object resolves
func boundNames() []string {
	var names []string
	names = append(names, pages.HomeSelectors...)
	names = append(names, pages.ProductSelectors...)
	names = append(names, pages.SearchSelectors...)
	return names
}

// snapshotPath - the FILE argument, or the configured snapshot
func snapshotPath(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fromContext(cmd.Context()).cfg.RegistryPath
}

func registryValidateCommand() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check a snapshot against the schema",
		Long: "Loads the snapshot and reports every schema problem. Names that page objects\n" +
			"resolve but the snapshot lacks are reported too; with --strict they fail validation.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := snapshotPath(cmd, args)
			out := cmd.OutOrStdout()

			reg, err := registry.Load(path)
			if err != nil {
				var malformed *entities.MalformedRegistryError
				if errors.As(err, &malformed) {
					fmt.Fprintf(out, "%s is malformed:\n", path)
					for _, p := range malformed.Problems {
						fmt.Fprintf(out, "  - %s\n", p)
					}
				}
				return err
			}

			missing := reg.Missing(boundNames()...)
			fmt.Fprintf(out, "%s: %d entries\n", path, reg.Len())
			if len(missing) > 0 {
				fmt.Fprintf(out, "missing names used by page objects: %s\n", strings.Join(missing, ", "))
				if strict {
					return fmt.Errorf("%d page object names are missing from %s", len(missing), path)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when page object names are missing")
	return cmd
}

func registryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [FILE]",
		Short: "List the entries of a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := snapshotPath(cmd, args)
			reg, meta, err := registry.LoadWithMeta(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if meta.Site != "" {
				fmt.Fprintf(out, "site: %s\n", meta.Site)
			}
			if !meta.GeneratedAt.IsZero() {
				fmt.Fprintf(out, "generated: %s\n", meta.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
			}
			return writeEntries(out, reg.Entries())
		},
	}
}

func writeEntries(w io.Writer, entries []entities.SelectorEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tLOCATOR\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind, e.Locator, e.Description)
	}
	return tw.Flush()
}

func registryDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show what changed between two snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := registry.Load(args[0])
			if err != nil {
				return err
			}
			next, err := registry.Load(args[1])
			if err != nil {
				return err
			}
			writeChanges(cmd.OutOrStdout(), registry.Diff(prev, next))
			return nil
		},
	}
}

func writeChanges(w io.Writer, changes registry.Changes) {
	for _, e := range changes.Added {
		fmt.Fprintf(w, "+ %s\n", e)
	}
	for _, e := range changes.Removed {
		fmt.Fprintf(w, "- %s\n", e)
	}
	for _, c := range changes.Changed {
		fmt.Fprintf(w, "~ %s: %s -> %s\n", c.New.Name, c.Old.Locator, c.New.Locator)
	}
	fmt.Fprintln(w, changes)
}
