// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes enriched trial records to timestamped output
// artifacts. Sinks: CSV, JSON, YAML, XLSX, and a SQLite database file.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/trial-engine/internal/enrich"
)

// Format selects the export format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatBoth   Format = "both" // csv + json
	FormatYAML   Format = "yaml"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// ParseFormat validates a format selector string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatBoth, FormatYAML, FormatXLSX, FormatSQLite:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use csv, json, both, yaml, xlsx, or sqlite", s)
	}
}

// column describes one export column shared by the tabular sinks.
type column struct {
	header string
	value  func(r enrich.Record) any
}

// columns fixes the tabular column order. Headers follow the registry's
// human-readable field names.
var columns = []column{
	{"NCT ID", func(r enrich.Record) any { return r.NCTID }},
	{"Brief Title", func(r enrich.Record) any { return r.BriefTitle }},
	{"Official Title", func(r enrich.Record) any { return r.OfficialTitle }},
	{"Study Type", func(r enrich.Record) any { return r.StudyType }},
	{"Recruitment Status", func(r enrich.Record) any { return r.Status }},
	{"Phases", func(r enrich.Record) any { return r.Phases }},
	{"Phase Details", func(r enrich.Record) any { return r.PhaseDetails }},
	{"Start Date", func(r enrich.Record) any { return r.StartDate }},
	{"Completion Date", func(r enrich.Record) any { return r.CompletionDate }},
	{"Primary Completion Date", func(r enrich.Record) any { return r.PrimaryCompletionDate }},
	{"Enrollment", func(r enrich.Record) any { return r.Enrollment }},
	{"Conditions Treated", func(r enrich.Record) any { return r.Conditions }},
	{"Interventions", func(r enrich.Record) any { return r.Interventions }},
	{"Intervention Names", func(r enrich.Record) any { return r.InterventionNames }},
	{"Intervention Types", func(r enrich.Record) any { return r.InterventionTypes }},
	{"Lead Sponsor", func(r enrich.Record) any { return r.LeadSponsor }},
	{"All Sponsors", func(r enrich.Record) any { return r.Sponsors }},
	{"Sponsor Classes", func(r enrich.Record) any { return r.SponsorClasses }},
	{"Study Locations", func(r enrich.Record) any { return r.Locations }},
	{"Countries", func(r enrich.Record) any { return r.Countries }},
	{"Cities", func(r enrich.Record) any { return r.Cities }},
	{"Is Interventional", func(r enrich.Record) any { return r.IsInterventional }},
	{"Classification Notes", func(r enrich.Record) any { return r.ClassificationNotes }},
	{"Has Drug Intervention", func(r enrich.Record) any { return r.HasDrugIntervention }},
	{"Has Device Intervention", func(r enrich.Record) any { return r.HasDeviceIntervention }},
	{"Has Procedure Intervention", func(r enrich.Record) any { return r.HasProcedureIntervention }},
	{"Has Behavioral Intervention", func(r enrich.Record) any { return r.HasBehavioralIntervention }},
	{"Has Biological Intervention", func(r enrich.Record) any { return r.HasBiologicalIntervention }},
	{"Has Radiation Intervention", func(r enrich.Record) any { return r.HasRadiationIntervention }},
	{"Has Other Intervention", func(r enrich.Record) any { return r.HasOtherIntervention }},
	{"Is Early Phase 1", func(r enrich.Record) any { return r.IsEarlyPhase1 }},
	{"Is Phase 1", func(r enrich.Record) any { return r.IsPhase1 }},
	{"Is Phase 2", func(r enrich.Record) any { return r.IsPhase2 }},
	{"Is Phase 3", func(r enrich.Record) any { return r.IsPhase3 }},
	{"Is Phase 4", func(r enrich.Record) any { return r.IsPhase4 }},
	{"Is Recruiting", func(r enrich.Record) any { return r.IsRecruiting }},
	{"Is Not Yet Recruiting", func(r enrich.Record) any { return r.IsNotYetRecruiting }},
	{"Is Active Not Recruiting", func(r enrich.Record) any { return r.IsActiveNotRecruiting }},
	{"Is Enrolling By Invitation", func(r enrich.Record) any { return r.IsEnrollingByInvitation }},
	{"Is Completed", func(r enrich.Record) any { return r.IsCompleted }},
	{"Is Terminated", func(r enrich.Record) any { return r.IsTerminated }},
	{"Is Suspended", func(r enrich.Record) any { return r.IsSuspended }},
	{"Is Withdrawn", func(r enrich.Record) any { return r.IsWithdrawn }},
}

// Exporter writes record sets into a single output directory.
type Exporter struct {
	outputDir string
}

// New returns an Exporter rooted at outputDir.
func New(outputDir string) *Exporter {
	return &Exporter{outputDir: outputDir}
}

// Export writes records in the selected format and returns the created
// file paths. Filenames are prefix_YYYYMMDD_HHMMSS.ext.
func (e *Exporter) Export(records []enrich.Record, format Format, prefix string) ([]string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	var created []string

	write := func(ext string, fn func(path string) error) error {
		path := filepath.Join(e.outputDir, fmt.Sprintf("%s_%s.%s", prefix, stamp, ext))
		if err := fn(path); err != nil {
			return err
		}
		created = append(created, path)
		return nil
	}

	var err error
	switch format {
	case FormatCSV:
		err = write("csv", func(p string) error { return writeCSV(records, p) })
	case FormatJSON:
		err = write("json", func(p string) error { return writeJSON(records, p) })
	case FormatBoth:
		if err = write("csv", func(p string) error { return writeCSV(records, p) }); err == nil {
			err = write("json", func(p string) error { return writeJSON(records, p) })
		}
	case FormatYAML:
		err = write("yaml", func(p string) error { return writeYAML(records, p) })
	case FormatXLSX:
		err = write("xlsx", func(p string) error { return writeXLSX(records, p) })
	case FormatSQLite:
		err = write("db", func(p string) error { return writeSQLite(records, p) })
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return created, err
	}
	return created, nil
}

func writeCSV(records []enrich.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = cellString(col.value(rec))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeJSON(records []enrich.Record, path string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeYAML(records []enrich.Record, path string) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// cellString renders a column value for CSV.
func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
