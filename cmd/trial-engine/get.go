// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
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
)

var getCmd = &cobra.Command{
	Use:   "get <nct-id>",
	Short: "Fetch a single trial by NCT identifier",
	Long: `Get fetches one trial record by its NCT identifier (e.g. NCT04267848),
classifies and enriches it, and prints the enriched fields. With --format the
record is also exported like a one-row search result.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().String("format", "", "also export the record: csv, json, both, yaml, xlsx, sqlite")
	getCmd.Flags().String("output-dir", "", "export output directory (default from config)")
	getCmd.Flags().Bool("json", false, "print the enriched record as JSON")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	nctID := strings.ToUpper(strings.TrimSpace(args[0]))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := registry.NewClient(registryConfig())

	trial, err := client.Get(ctx, nctID)
	if err != nil {
		return err
	}

	cls := classify.Classify(*trial)
	record := enrich.Enrich(*trial, cls)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if err := printRecordJSON(record); err != nil {
			return err
		}
	} else {
		printRecord(record)
	}

	rawFormat, _ := cmd.Flags().GetString("format")
	if rawFormat == "" {
		return nil
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	paths, err := exportSingle(record, rawFormat, outputDir, "trial_"+nctID)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(os.Stderr, "Exported %s\n", p)
	}
	return nil
}

func exportSingle(record enrich.Record, rawFormat, outputDir, prefix string) ([]string, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		outputDir = exportConfig().OutputDir
	}
	return export.New(outputDir).Export([]enrich.Record{record}, format, prefix)
}

func printRecordJSON(r enrich.Record) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func printRecord(r enrich.Record) {
	fmt.Printf("%s  %s\n", r.NCTID, r.BriefTitle)
	if r.OfficialTitle != "" && r.OfficialTitle != r.BriefTitle {
		fmt.Printf("  Official title: %s\n", r.OfficialTitle)
	}
	fmt.Printf("  Type:           %s\n", r.StudyType)
	fmt.Printf("  Status:         %s\n", r.Status)
	if r.PhaseDetails != "" {
		fmt.Printf("  Phases:         %s\n", r.PhaseDetails)
	}
	if r.StartDate != "" {
		fmt.Printf("  Start:          %s\n", r.StartDate)
	}
	if r.CompletionDate != "" {
		fmt.Printf("  Completion:     %s\n", r.CompletionDate)
	}
	fmt.Printf("  Enrollment:     %d\n", r.Enrollment)
	if r.Conditions != "" {
		fmt.Printf("  Conditions:     %s\n", r.Conditions)
	}
	if r.Interventions != "" {
		fmt.Printf("  Interventions:  %s\n", r.Interventions)
	}
	fmt.Printf("  Lead sponsor:   %s\n", r.LeadSponsor)
	if r.Countries != "" {
		fmt.Printf("  Countries:      %s\n", r.Countries)
	}
	fmt.Printf("  Interventional: %t\n", r.IsInterventional)
	if r.ClassificationNotes != "" {
		fmt.Printf("  Notes:          %s\n", r.ClassificationNotes)
	}
}
