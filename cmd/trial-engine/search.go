// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/internal/enrich"
	"github.com/pdiddy/trial-engine/internal/export"
	"github.com/pdiddy/trial-engine/internal/registry"
	"github.com/pdiddy/trial-engine/internal/report"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the clinical trial registry and export enriched records",
	Long: `Search retrieves trial records matching the given query and filters,
walking the registry's paginated API with rate limiting and retries. Retrieved
trials are classified by intervention, enriched into flat rows, exported in the
requested format, and summarized.

Filters combine with AND: a trial must match the query, every status, every
phase, and so on. Multiple values within one filter combine with OR.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "free-text search query")
	searchCmd.Flags().Int("max-results", 100, "maximum number of trials to retrieve")
	searchCmd.Flags().StringSlice("phase", nil, "filter by trial phase (e.g. PHASE2, PHASE3)")
	searchCmd.Flags().StringSlice("status", nil, "filter by recruitment status (e.g. RECRUITING, COMPLETED)")
	searchCmd.Flags().StringSlice("condition", nil, "filter by condition studied")
	searchCmd.Flags().StringSlice("sponsor", nil, "filter by sponsor name")
	searchCmd.Flags().StringSlice("country", nil, "filter by study location country")
	searchCmd.Flags().String("intervention-type", "", "keep only trials with this intervention category (drug, device, procedure, behavioral, biological, radiation, other)")
	searchCmd.Flags().Bool("interventional-only", false, "keep only interventional trials")
	searchCmd.Flags().String("format", "", "export format: csv, json, both, yaml, xlsx, sqlite (default from config)")
	searchCmd.Flags().String("output-dir", "", "export output directory (default from config)")
	searchCmd.Flags().String("prefix", "trials", "export filename prefix")
	searchCmd.Flags().Bool("phase-dates", false, "also export per-product Phase 1/3 dates and success flags")
	searchCmd.Flags().Int("top-sponsors", report.DefaultTopSponsors, "number of sponsors in the summary leaderboard")
	searchCmd.Flags().Bool("json", false, "print the summary as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	filters, err := filtersFromFlags(cmd)
	if err != nil {
		return err
	}

	categoryFilter, err := categoryFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := registry.NewClient(registryConfig())

	out, err := client.Search(ctx, filters, os.Stderr)
	if err != nil {
		if len(out.Trials) == 0 {
			return err
		}
		// Keep what pagination delivered before the failure.
		fmt.Fprintf(os.Stderr, "Warning: retrieval incomplete after %d trial(s): %v\n", len(out.Trials), err)
	}
	if len(out.Trials) == 0 {
		fmt.Fprintln(os.Stderr, "No trials matched the query.")
		return nil
	}

	interventionalOnly, _ := cmd.Flags().GetBool("interventional-only")

	records := make([]enrich.Record, 0, len(out.Trials))
	for _, trial := range out.Trials {
		cls := classify.Classify(trial)
		if interventionalOnly && !cls.Interventional {
			continue
		}
		if categoryFilter != "" && !cls.HasCategory(categoryFilter) {
			continue
		}
		records = append(records, enrich.Enrich(trial, cls))
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No trials remained after classification filters.")
		return nil
	}

	paths, err := exportRecords(cmd, records)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(os.Stderr, "Exported %s\n", p)
	}

	if phaseDates, _ := cmd.Flags().GetBool("phase-dates"); phaseDates {
		path, err := export.New(resolveOutputDir(cmd)).ExportPhaseDates(out.Trials, "phase_dates")
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %s\n", path)
	}

	topN, _ := cmd.Flags().GetInt("top-sponsors")
	summary := report.Summarize(records, topN)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return report.FormatJSON(summary, os.Stdout)
	}
	report.FormatText(summary, os.Stdout)
	return nil
}

func filtersFromFlags(cmd *cobra.Command) (types.SearchFilters, error) {
	query, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	phases, _ := cmd.Flags().GetStringSlice("phase")
	statuses, _ := cmd.Flags().GetStringSlice("status")
	conditions, _ := cmd.Flags().GetStringSlice("condition")
	sponsors, _ := cmd.Flags().GetStringSlice("sponsor")
	countries, _ := cmd.Flags().GetStringSlice("country")

	filters := types.SearchFilters{
		Query:      query,
		MaxResults: maxResults,
		Phases:     phases,
		Statuses:   statuses,
		Conditions: conditions,
		Sponsors:   sponsors,
		Countries:  countries,
	}
	if err := filters.Validate(); err != nil {
		return types.SearchFilters{}, err
	}
	if query == "" && len(statuses) == 0 && len(conditions) == 0 && len(sponsors) == 0 && len(countries) == 0 {
		return types.SearchFilters{}, errors.New("query or at least one filter required")
	}
	return filters, nil
}

func categoryFromFlags(cmd *cobra.Command) (classify.Category, error) {
	raw, _ := cmd.Flags().GetString("intervention-type")
	if raw == "" {
		return "", nil
	}
	want := classify.Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range classify.Categories {
		if c == want {
			return want, nil
		}
	}
	return "", fmt.Errorf("unknown intervention type %q", raw)
}

// exportRecords resolves format and output directory from flags, falling
// back to config defaults.
func exportRecords(cmd *cobra.Command, records []enrich.Record) ([]string, error) {
	rawFormat, _ := cmd.Flags().GetString("format")
	if rawFormat == "" {
		rawFormat = exportConfig().Format
	}
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, err
	}

	prefix, _ := cmd.Flags().GetString("prefix")

	return export.New(resolveOutputDir(cmd)).Export(records, format, prefix)
}

func resolveOutputDir(cmd *cobra.Command) string {
	if outputDir, _ := cmd.Flags().GetString("output-dir"); outputDir != "" {
		return outputDir
	}
	return exportConfig().OutputDir
}
