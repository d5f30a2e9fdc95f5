// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report computes summary statistics over enriched trial records.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/internal/enrich"
)

// DefaultTopSponsors is the leaderboard size when the caller passes 0.
const DefaultTopSponsors = 10

// unknownStatus buckets records whose status the registry left empty, so
// every record lands in exactly one status bucket. The registry's own
// status vocabulary uses UNKNOWN for trials with no verified status.
const unknownStatus = "UNKNOWN"

// SponsorCount pairs a lead sponsor with its trial count.
type SponsorCount struct {
	Name   string `json:"name" yaml:"name"`
	Trials int    `json:"trials" yaml:"trials"`
}

// DateRange spans the earliest and latest start/completion dates seen,
// ISO-formatted or empty when no record carries the date.
type DateRange struct {
	EarliestStart      string `json:"earliest_start" yaml:"earliest_start"`
	LatestStart        string `json:"latest_start" yaml:"latest_start"`
	EarliestCompletion string `json:"earliest_completion" yaml:"earliest_completion"`
	LatestCompletion   string `json:"latest_completion" yaml:"latest_completion"`
}

// Summary holds distribution statistics for one collection of records.
type Summary struct {
	// RunID uniquely identifies the summarized run.
	RunID string `json:"run_id" yaml:"run_id"`

	// GeneratedAt is the summary creation time.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	TotalTrials          int     `json:"total_trials" yaml:"total_trials"`
	InterventionalTrials int     `json:"interventional_trials" yaml:"interventional_trials"`
	InterventionalPct    float64 `json:"interventional_pct" yaml:"interventional_pct"`

	// StatusDistribution maps status code to count. Every record lands in
	// exactly one bucket, records with no status under UNKNOWN; zero-count
	// codes are omitted.
	StatusDistribution map[string]int `json:"status_distribution" yaml:"status_distribution"`

	// PhaseDistribution maps phase code to count. Phase-spanning records
	// contribute to several buckets.
	PhaseDistribution map[string]int `json:"phase_distribution" yaml:"phase_distribution"`

	// CategoryDistribution maps intervention category to count.
	CategoryDistribution map[string]int `json:"category_distribution" yaml:"category_distribution"`

	// TopSponsors is the lead-sponsor leaderboard, ties broken by
	// first-seen order.
	TopSponsors []SponsorCount `json:"top_sponsors" yaml:"top_sponsors"`

	// CountryDistribution maps country to count; a record contributes
	// once per distinct country it lists.
	CountryDistribution map[string]int `json:"country_distribution" yaml:"country_distribution"`

	DateRange DateRange `json:"date_range" yaml:"date_range"`
}

// Summarize aggregates records into a Summary. Pure aggregation over the
// in-memory collection; no I/O.
func Summarize(records []enrich.Record, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopSponsors
	}

	s := Summary{
		RunID:                uuid.NewString(),
		GeneratedAt:          time.Now().UTC(),
		TotalTrials:          len(records),
		StatusDistribution:   make(map[string]int),
		PhaseDistribution:    make(map[string]int),
		CategoryDistribution: make(map[string]int),
		CountryDistribution:  make(map[string]int),
	}

	sponsorCounts := make(map[string]int)
	var sponsorOrder []string

	for _, r := range records {
		if r.IsInterventional {
			s.InterventionalTrials++
		}
		status := r.Status
		if status == "" {
			status = unknownStatus
		}
		s.StatusDistribution[status]++
		for _, phase := range splitJoined(r.Phases) {
			s.PhaseDistribution[phase]++
		}
		for _, country := range splitJoined(r.Countries) {
			s.CountryDistribution[country]++
		}
		for cat, set := range categoryFlags(r) {
			if set {
				s.CategoryDistribution[cat]++
			}
		}
		if r.LeadSponsor != "" {
			if _, ok := sponsorCounts[r.LeadSponsor]; !ok {
				sponsorOrder = append(sponsorOrder, r.LeadSponsor)
			}
			sponsorCounts[r.LeadSponsor]++
		}

		s.DateRange.EarliestStart = minDate(s.DateRange.EarliestStart, r.StartDate)
		s.DateRange.LatestStart = maxDate(s.DateRange.LatestStart, r.StartDate)
		s.DateRange.EarliestCompletion = minDate(s.DateRange.EarliestCompletion, r.CompletionDate)
		s.DateRange.LatestCompletion = maxDate(s.DateRange.LatestCompletion, r.CompletionDate)
	}

	if s.TotalTrials > 0 {
		pct := float64(s.InterventionalTrials) / float64(s.TotalTrials) * 100
		s.InterventionalPct = math.Round(pct*100) / 100
	}

	// Stable sort keeps first-seen order among equal counts.
	leaderboard := make([]SponsorCount, 0, len(sponsorOrder))
	for _, name := range sponsorOrder {
		leaderboard = append(leaderboard, SponsorCount{Name: name, Trials: sponsorCounts[name]})
	}
	sort.SliceStable(leaderboard, func(i, j int) bool {
		return leaderboard[i].Trials > leaderboard[j].Trials
	})
	if len(leaderboard) > topN {
		leaderboard = leaderboard[:topN]
	}
	s.TopSponsors = leaderboard

	return s
}

// categoryFlags projects the record's category booleans back onto category names.
func categoryFlags(r enrich.Record) map[string]bool {
	return map[string]bool{
		string(classify.Drug):       r.HasDrugIntervention,
		string(classify.Device):     r.HasDeviceIntervention,
		string(classify.Procedure):  r.HasProcedureIntervention,
		string(classify.Behavioral): r.HasBehavioralIntervention,
		string(classify.Biological): r.HasBiologicalIntervention,
		string(classify.Radiation):  r.HasRadiationIntervention,
		string(classify.Other):      r.HasOtherIntervention,
	}
}

// splitJoined undoes the enrichment join, returning nil for "".
func splitJoined(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, enrich.JoinSep)
}

// minDate and maxDate compare ISO date strings; "" means unset.
func minDate(current, candidate string) string {
	if candidate == "" {
		return current
	}
	if current == "" || candidate < current {
		return candidate
	}
	return current
}

func maxDate(current, candidate string) string {
	if candidate == "" {
		return current
	}
	if current == "" || candidate > current {
		return candidate
	}
	return current
}

// FormatText writes a human-readable summary to w.
func FormatText(s Summary, w io.Writer) {
	fmt.Fprintf(w, "Summary (run %s)\n", s.RunID)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Total trials:          %d\n", s.TotalTrials)
	fmt.Fprintf(w, "Interventional trials: %d (%.2f%%)\n", s.InterventionalTrials, s.InterventionalPct)

	writeDistribution(w, "Status distribution", s.StatusDistribution)
	writeDistribution(w, "Phase distribution", s.PhaseDistribution)
	writeDistribution(w, "Intervention categories", s.CategoryDistribution)
	writeDistribution(w, "Countries", s.CountryDistribution)

	if len(s.TopSponsors) > 0 {
		fmt.Fprintln(w, "\nTop sponsors:")
		for _, sc := range s.TopSponsors {
			fmt.Fprintf(w, "  %-50s %d\n", truncate(sc.Name, 50), sc.Trials)
		}
	}

	if s.DateRange.EarliestStart != "" || s.DateRange.EarliestCompletion != "" {
		fmt.Fprintln(w, "\nDate range:")
		fmt.Fprintf(w, "  start:      %s .. %s\n", s.DateRange.EarliestStart, s.DateRange.LatestStart)
		fmt.Fprintf(w, "  completion: %s .. %s\n", s.DateRange.EarliestCompletion, s.DateRange.LatestCompletion)
	}
}

// FormatJSON writes the summary as indented JSON to w.
func FormatJSON(s Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// writeDistribution prints a count map sorted by count descending, key
// ascending for equal counts, so output is deterministic.
func writeDistribution(w io.Writer, title string, dist map[string]int) {
	if len(dist) == 0 {
		return
	}
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-30s %d\n", k, dist[k])
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
