// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// The registry API does not expose per-phase dates for most studies, so the
// phase-dates export approximates: phase start is the overall start date
// when the phase is listed, phase end is the primary completion date
// (falling back to completion date). A listed phase counts as failed when
// the trial status is in failedStatuses and the phase list shows no
// progression beyond it.

// failedStatuses are the recruitment statuses treated as a failed run.
var failedStatuses = map[string]bool{
	"TERMINATED": true,
	"WITHDRAWN":  true,
	"SUSPENDED":  true,
}

// PhaseDatesRow is one product's Phase 1/3 date approximation.
type PhaseDatesRow struct {
	Company       string
	Product       string
	Conditions    string
	NCTID         string
	Phase1Start   string
	Phase1End     string
	Phase1Success int
	Phase3Start   string
	Phase3End     string
	Phase3Success int
}

var phaseDatesHeader = []string{
	"Company",
	"Product",
	"Disorder/Condition",
	"NCT ID",
	"Phase1 Start",
	"Phase1 End",
	"Phase1 Success",
	"Phase3 Start",
	"Phase3 End",
	"Phase3 Success",
}

// ExportPhaseDates writes one CSV row per intervention (trials without
// interventions still get a row with an empty product) into a phase_dates/
// subdirectory, timestamped like the other exports. Returns the file path.
func (e *Exporter) ExportPhaseDates(trials []types.TrialRecord, prefix string) (string, error) {
	dir := filepath.Join(e.outputDir, "phase_dates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating phase dates directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, stamp))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(phaseDatesHeader); err != nil {
		return "", fmt.Errorf("writing phase dates header: %w", err)
	}
	for _, trial := range trials {
		for _, row := range phaseDatesRows(trial) {
			record := []string{
				row.Company,
				row.Product,
				row.Conditions,
				row.NCTID,
				row.Phase1Start,
				row.Phase1End,
				strconv.Itoa(row.Phase1Success),
				row.Phase3Start,
				row.Phase3End,
				strconv.Itoa(row.Phase3Success),
			}
			if err := cw.Write(record); err != nil {
				return "", fmt.Errorf("writing phase dates row for %s: %w", row.NCTID, err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// phaseDatesRows derives the per-product rows for one trial.
func phaseDatesRows(trial types.TrialRecord) []PhaseDatesRow {
	hasP1 := listsPhase(trial.Phases, "PHASE1") || listsPhase(trial.Phases, "EARLY_PHASE1")
	hasP3 := listsPhase(trial.Phases, "PHASE3")

	start := isoDate(trial.StartDate)
	end := isoDate(trial.PrimaryCompletionDate)
	if end == "" {
		end = isoDate(trial.CompletionDate)
	}

	base := PhaseDatesRow{
		Company:    trial.LeadSponsor.Name,
		Conditions: strings.Join(trial.Conditions, ", "),
		NCTID:      trial.NCTID,
	}
	if hasP1 {
		base.Phase1Start = start
		base.Phase1End = end
		base.Phase1Success = phaseSuccess(trial, "PHASE1")
	}
	if hasP3 {
		base.Phase3Start = start
		base.Phase3End = end
		base.Phase3Success = phaseSuccess(trial, "PHASE3")
	}

	if len(trial.Interventions) == 0 {
		return []PhaseDatesRow{base}
	}
	rows := make([]PhaseDatesRow, 0, len(trial.Interventions))
	for _, iv := range trial.Interventions {
		row := base
		row.Product = iv.Name
		rows = append(rows, row)
	}
	return rows
}

// phaseSuccess applies the failure heuristic: a failed status marks the
// phase unsuccessful unless the phase list shows progression beyond it.
func phaseSuccess(trial types.TrialRecord, target string) int {
	if !failedStatuses[strings.ToUpper(trial.Status)] {
		return 1
	}
	switch target {
	case "PHASE1":
		if listsPhase(trial.Phases, "PHASE2") || listsPhase(trial.Phases, "PHASE3") || listsPhase(trial.Phases, "PHASE4") {
			return 1
		}
	case "PHASE3":
		if listsPhase(trial.Phases, "PHASE4") {
			return 1
		}
	}
	return 0
}

func listsPhase(phases []string, code string) bool {
	for _, p := range phases {
		if strings.EqualFold(p, code) {
			return true
		}
	}
	return false
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
