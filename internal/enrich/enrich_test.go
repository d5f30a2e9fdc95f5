// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"testing"
	"time"

	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/pkg/types"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestEnrich_ZeroRecordIsTotal(t *testing.T) {
	got := Enrich(types.TrialRecord{}, classify.Result{})

	if got.Conditions != "" || got.Interventions != "" || got.Sponsors != "" || got.Countries != "" {
		t.Errorf("empty projections must join to empty strings, got %+v", got)
	}
	if got.StartDate != "" || got.CompletionDate != "" {
		t.Errorf("zero dates must format to empty strings, got %q / %q", got.StartDate, got.CompletionDate)
	}
	if got.IsInterventional || got.IsRecruiting || got.HasDrugIntervention || got.IsPhase1 {
		t.Error("flags must default to false on a zero record")
	}
}

func TestEnrich_Projections(t *testing.T) {
	rec := types.TrialRecord{
		NCTID:      "NCT00000001",
		BriefTitle: "Checkpoint Inhibitor Study",
		StudyType:  "INTERVENTIONAL",
		Status:     "RECRUITING",
		Phases:     []string{"PHASE1", "PHASE2"},
		Conditions: []string{"Melanoma", "Lymphoma"},
		Interventions: []types.Intervention{
			{Name: "Pembrolizumab", Type: "DRUG"},
			{Name: "Placebo", Type: ""},
		},
		LeadSponsor:   types.Sponsor{Name: "Acme Oncology", Class: "INDUSTRY"},
		Collaborators: []types.Sponsor{{Name: "State University", Class: "OTHER"}},
		Locations: []types.Location{
			{Facility: "City Hospital", City: "Boston", Country: "United States"},
			{Facility: "North Clinic", City: "Toronto", Country: "Canada"},
			{Facility: "South Clinic", City: "Boston", Country: "United States"},
		},
		Enrollment: 120,
		StartDate:  date(2024, 3, 1),
	}
	cls := classify.Classify(rec)
	got := Enrich(rec, cls)

	checks := []struct {
		name, got, want string
	}{
		{"Conditions", got.Conditions, "Melanoma; Lymphoma"},
		{"Interventions", got.Interventions, "Pembrolizumab (DRUG); Placebo"},
		{"InterventionNames", got.InterventionNames, "Pembrolizumab; Placebo"},
		{"LeadSponsor", got.LeadSponsor, "Acme Oncology"},
		{"Sponsors", got.Sponsors, "Acme Oncology; State University"},
		{"SponsorClasses", got.SponsorClasses, "INDUSTRY; OTHER"},
		{"Countries", got.Countries, "United States; Canada"},
		{"Cities", got.Cities, "Boston; Toronto"},
		{"Locations", got.Locations, "City Hospital, Boston, United States; North Clinic, Toronto, Canada; South Clinic, Boston, United States"},
		{"StartDate", got.StartDate, "2024-03-01"},
		{"Phases", got.Phases, "PHASE1; PHASE2"},
		{"PhaseDetails", got.PhaseDetails, "Phase 1 (Safety); Phase 2 (Efficacy)"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	if !got.IsInterventional || !got.HasDrugIntervention || !got.HasOtherIntervention {
		t.Errorf("classification flags wrong: %+v", got)
	}
	if !got.IsPhase1 || !got.IsPhase2 || got.IsPhase3 {
		t.Error("phase flags wrong")
	}
	if !got.IsRecruiting || got.IsCompleted {
		t.Error("status flags wrong")
	}
}

func TestEnrich_PhaseFlagsAreExactMatches(t *testing.T) {
	rec := types.TrialRecord{Phases: []string{"EARLY_PHASE1"}}
	got := Enrich(rec, classify.Result{})

	if !got.IsEarlyPhase1 {
		t.Error("IsEarlyPhase1 = false, want true")
	}
	// EARLY_PHASE1 must not light up the plain phase 1 flag.
	if got.IsPhase1 {
		t.Error("IsPhase1 = true, want false")
	}
}

func TestEnrich_StatusFlagsExclusive(t *testing.T) {
	statuses := []string{
		"RECRUITING", "NOT_YET_RECRUITING", "ACTIVE_NOT_RECRUITING",
		"ENROLLING_BY_INVITATION", "COMPLETED", "TERMINATED", "SUSPENDED", "WITHDRAWN",
	}
	for _, status := range statuses {
		got := Enrich(types.TrialRecord{Status: status}, classify.Result{})
		set := 0
		for _, flag := range []bool{
			got.IsRecruiting, got.IsNotYetRecruiting, got.IsActiveNotRecruiting,
			got.IsEnrollingByInvitation, got.IsCompleted, got.IsTerminated,
			got.IsSuspended, got.IsWithdrawn,
		} {
			if flag {
				set++
			}
		}
		if set != 1 {
			t.Errorf("status %s set %d flags, want exactly 1", status, set)
		}
	}
}

func TestEnrich_UnknownPhaseCodeKeptVerbatim(t *testing.T) {
	got := Enrich(types.TrialRecord{Phases: []string{"NA"}}, classify.Result{})
	if got.PhaseDetails != "NA" {
		t.Errorf("PhaseDetails = %q, want NA", got.PhaseDetails)
	}
	if got.IsPhase1 || got.IsPhase2 || got.IsPhase3 || got.IsPhase4 || got.IsEarlyPhase1 {
		t.Error("unknown phase code must not set phase flags")
	}
}
