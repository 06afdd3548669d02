package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/contactscan/internal/database"
	"github.com/nao1215/contactscan/internal/model"
	"github.com/nao1215/contactscan/internal/report"
)

// errNotEnoughRuns is returned when a site has fewer than two stored runs.
var errNotEnoughRuns = errors.New("at least two stored runs are needed to compare")

// errRunNotFound is returned when a requested run ID is not stored.
var errRunNotFound = errors.New("run not found")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare stored extraction runs",
		Long: `Compare shows how the contacts of a site changed between two stored runs:
- Contacts that appeared since the previous run
- Contacts that are no longer found
- Contacts whose confidence, verdict or attributes changed

Without --id, the two most recent runs of --site are compared.

Examples:
  # Compare the latest two runs for a site
  contactscan compare --site example.com

  # Compare two specific runs
  contactscan compare --id 3f0c... --id 9a71...

  # List stored runs for a site
  contactscan compare --list --site example.com

  # List all sites in the database
  contactscan compare --list-sites

  # Show every run an address was found in
  contactscan compare --history jane@example.com`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("site", "s", "",
		"Site label the runs were stored with")
	cmd.Flags().StringSlice("id", nil,
		"Run IDs to compare: previous, then current (repeat twice)")

	cmd.Flags().BoolP("list", "l", false,
		"List stored runs (for --site, or all)")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all site labels in the database")
	cmd.Flags().String("history", "",
		"List the stored runs an address was found in")

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison in Markdown format")

	return cmd
}

func runCompareCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	site, err := flags.GetString("site")
	if err != nil {
		return err
	}
	if site == "" {
		site = cfg.Site
	}
	ids, err := flags.GetStringSlice("id")
	if err != nil {
		return err
	}
	list, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	listSites, err := flags.GetBool("list-sites")
	if err != nil {
		return err
	}
	history, err := flags.GetString("history")
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("no stored runs yet (run 'contactscan extract' first): %w", err)
		}
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case listSites:
		return listStoredSites(ctx, db, out)
	case list:
		return listStoredRuns(ctx, db, site, out)
	case history != "":
		return listContactHistory(ctx, db, history, out)
	}

	previous, current, err := selectRuns(ctx, db, site, ids)
	if err != nil {
		return err
	}
	_, err = newReportWriter(cfg, out).WriteComparison(report.Compare(previous, current))
	return err
}

// selectRuns resolves the previous and current run: the two given IDs, or
// the latest two runs of site.
func selectRuns(ctx context.Context, db *database.ContactDB, site string, ids []string) (*model.RunResult, *model.RunResult, error) {
	switch len(ids) {
	case 0:
		runs, err := db.GetLatestRuns(ctx, site, 2)
		if err != nil {
			return nil, nil, err
		}
		if len(runs) < 2 {
			return nil, nil, fmt.Errorf("%w: site %q has %d", errNotEnoughRuns, site, len(runs))
		}
		return runs[1], runs[0], nil
	case 2:
		runs := make([]*model.RunResult, 2)
		for i, id := range ids {
			run, err := db.GetRun(ctx, id)
			if err != nil {
				return nil, nil, err
			}
			if run == nil {
				return nil, nil, fmt.Errorf("%w: %s", errRunNotFound, id)
			}
			runs[i] = run
		}
		return runs[0], runs[1], nil
	default:
		return nil, nil, fmt.Errorf("--id must be given exactly twice, got %d", len(ids))
	}
}

func listStoredSites(ctx context.Context, db *database.ContactDB, out io.Writer) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return nil
	}
	for _, site := range sites {
		if site == "" {
			site = "(no site)"
		}
		fmt.Fprintln(out, site)
	}
	return nil
}

func listStoredRuns(ctx context.Context, db *database.ContactDB, site string, out io.Writer) error {
	runs, err := db.ListRuns(ctx, site)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-16s  %-20s  %8s  %6s\n", "RUN ID", "STARTED", "SITE", "CONTACTS", "PAGES")
	fmt.Fprintln(out, strings.Repeat("-", 96))
	for _, r := range runs {
		status := ""
		if r.Interrupted {
			status = "  (interrupted)"
		}
		fmt.Fprintf(out, "%-36s  %-16s  %-20s  %8d  %6d%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), truncate(r.Site, 20), r.Contacts, r.PagesProcessed, status)
	}
	return nil
}

func listContactHistory(ctx context.Context, db *database.ContactDB, email string, out io.Writer) error {
	sightings, err := db.ContactHistory(ctx, email)
	if err != nil {
		return err
	}
	if len(sightings) == 0 {
		fmt.Fprintf(out, "%s was not found in any stored run.\n", email)
		return nil
	}
	for _, s := range sightings {
		methods := make([]string, len(s.Methods))
		for i, m := range s.Methods {
			methods[i] = report.MethodLabel(m)
		}
		fmt.Fprintf(out, "%s  %s  %-20s  %.2f  %-7s  %s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"), s.RunID, truncate(s.Site, 20),
			s.Confidence, s.Verdict, strings.Join(methods, ", "))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
