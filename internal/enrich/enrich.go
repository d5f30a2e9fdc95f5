// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich expands a trial record and its classification into a flat,
// analysis-ready record. Enrichment is pure and total: absent source fields
// become empty strings or false flags, never errors.
package enrich

import (
	"strings"
	"time"

	"github.com/pdiddy/trial-engine/internal/classify"
	"github.com/pdiddy/trial-engine/pkg/types"
)

// JoinSep separates entries in flattened list projections. Consumers that
// split a projection back apart must use the same separator.
const JoinSep = "; "

// phaseDetails annotates each recognized phase code for the readable
// phase projection.
var phaseDetails = []struct {
	code  string
	label string
}{
	{"EARLY_PHASE1", "Early Phase 1 (Exploratory)"},
	{"PHASE1", "Phase 1 (Safety)"},
	{"PHASE2", "Phase 2 (Efficacy)"},
	{"PHASE3", "Phase 3 (Confirmation)"},
	{"PHASE4", "Phase 4 (Post-marketing)"},
}

// Record is the flat projection of a TrialRecord plus its classification.
// Every field is always present: list projections join to "" when empty,
// flags default to false. Records are created once at enrichment time and
// never mutated.
type Record struct {
	// Identity.
	NCTID         string `json:"nct_id" yaml:"nct_id"`
	BriefTitle    string `json:"brief_title" yaml:"brief_title"`
	OfficialTitle string `json:"official_title" yaml:"official_title"`
	StudyType     string `json:"study_type" yaml:"study_type"`

	// Status and phases.
	Status       string `json:"status" yaml:"status"`
	Phases       string `json:"phases" yaml:"phases"`
	PhaseDetails string `json:"phase_details" yaml:"phase_details"`

	// Dates, ISO-formatted or empty.
	StartDate             string `json:"start_date" yaml:"start_date"`
	CompletionDate        string `json:"completion_date" yaml:"completion_date"`
	PrimaryCompletionDate string `json:"primary_completion_date" yaml:"primary_completion_date"`

	Enrollment int `json:"enrollment" yaml:"enrollment"`

	// Flattened projections, order-preserving joins with "; ".
	Conditions        string `json:"conditions" yaml:"conditions"`
	Interventions     string `json:"interventions" yaml:"interventions"`
	InterventionNames string `json:"intervention_names" yaml:"intervention_names"`
	InterventionTypes string `json:"intervention_types" yaml:"intervention_types"`
	LeadSponsor       string `json:"lead_sponsor" yaml:"lead_sponsor"`
	Sponsors          string `json:"sponsors" yaml:"sponsors"`
	SponsorClasses    string `json:"sponsor_classes" yaml:"sponsor_classes"`
	Locations         string `json:"locations" yaml:"locations"`
	Countries         string `json:"countries" yaml:"countries"`
	Cities            string `json:"cities" yaml:"cities"`

	// Classification.
	IsInterventional    bool   `json:"is_interventional" yaml:"is_interventional"`
	ClassificationNotes string `json:"classification_notes" yaml:"classification_notes"`

	// Intervention-category flags.
	HasDrugIntervention       bool `json:"has_drug_intervention" yaml:"has_drug_intervention"`
	HasDeviceIntervention     bool `json:"has_device_intervention" yaml:"has_device_intervention"`
	HasProcedureIntervention  bool `json:"has_procedure_intervention" yaml:"has_procedure_intervention"`
	HasBehavioralIntervention bool `json:"has_behavioral_intervention" yaml:"has_behavioral_intervention"`
	HasBiologicalIntervention bool `json:"has_biological_intervention" yaml:"has_biological_intervention"`
	HasRadiationIntervention  bool `json:"has_radiation_intervention" yaml:"has_radiation_intervention"`
	HasOtherIntervention      bool `json:"has_other_intervention" yaml:"has_other_intervention"`

	// Phase flags. A phase-spanning trial sets several.
	IsEarlyPhase1 bool `json:"is_early_phase_1" yaml:"is_early_phase_1"`
	IsPhase1      bool `json:"is_phase_1" yaml:"is_phase_1"`
	IsPhase2      bool `json:"is_phase_2" yaml:"is_phase_2"`
	IsPhase3      bool `json:"is_phase_3" yaml:"is_phase_3"`
	IsPhase4      bool `json:"is_phase_4" yaml:"is_phase_4"`

	// Status flags, mutually exclusive by construction.
	IsRecruiting            bool `json:"is_recruiting" yaml:"is_recruiting"`
	IsNotYetRecruiting      bool `json:"is_not_yet_recruiting" yaml:"is_not_yet_recruiting"`
	IsActiveNotRecruiting   bool `json:"is_active_not_recruiting" yaml:"is_active_not_recruiting"`
	IsEnrollingByInvitation bool `json:"is_enrolling_by_invitation" yaml:"is_enrolling_by_invitation"`
	IsCompleted             bool `json:"is_completed" yaml:"is_completed"`
	IsTerminated            bool `json:"is_terminated" yaml:"is_terminated"`
	IsSuspended             bool `json:"is_suspended" yaml:"is_suspended"`
	IsWithdrawn             bool `json:"is_withdrawn" yaml:"is_withdrawn"`
}

// Enrich derives the flat record from rec and its classification.
func Enrich(rec types.TrialRecord, cls classify.Result) Record {
	interventionLabels := make([]string, 0, len(rec.Interventions))
	interventionNames := make([]string, 0, len(rec.Interventions))
	interventionTypes := make([]string, 0, len(rec.Interventions))
	for _, iv := range rec.Interventions {
		label := iv.Name
		if iv.Type != "" {
			label = iv.Name + " (" + iv.Type + ")"
		}
		interventionLabels = append(interventionLabels, label)
		interventionNames = append(interventionNames, iv.Name)
		interventionTypes = append(interventionTypes, iv.Type)
	}

	sponsorNames := make([]string, 0, len(rec.Collaborators)+1)
	sponsorClasses := make([]string, 0, len(rec.Collaborators)+1)
	if rec.LeadSponsor.Name != "" {
		sponsorNames = append(sponsorNames, rec.LeadSponsor.Name)
		sponsorClasses = append(sponsorClasses, rec.LeadSponsor.Class)
	}
	for _, sp := range rec.Collaborators {
		sponsorNames = append(sponsorNames, sp.Name)
		sponsorClasses = append(sponsorClasses, sp.Class)
	}

	locationLabels := make([]string, 0, len(rec.Locations))
	countries := make([]string, 0, len(rec.Locations))
	cities := make([]string, 0, len(rec.Locations))
	for _, loc := range rec.Locations {
		locationLabels = append(locationLabels, locationLabel(loc))
		countries = append(countries, loc.Country)
		cities = append(cities, loc.City)
	}

	return Record{
		NCTID:         rec.NCTID,
		BriefTitle:    rec.BriefTitle,
		OfficialTitle: rec.OfficialTitle,
		StudyType:     rec.StudyType,

		Status:       rec.Status,
		Phases:       strings.Join(rec.Phases, JoinSep),
		PhaseDetails: describePhases(rec.Phases),

		StartDate:             formatDate(rec.StartDate),
		CompletionDate:        formatDate(rec.CompletionDate),
		PrimaryCompletionDate: formatDate(rec.PrimaryCompletionDate),

		Enrollment: rec.Enrollment,

		Conditions:        strings.Join(rec.Conditions, JoinSep),
		Interventions:     strings.Join(interventionLabels, JoinSep),
		InterventionNames: strings.Join(interventionNames, JoinSep),
		InterventionTypes: strings.Join(interventionTypes, JoinSep),
		LeadSponsor:       rec.LeadSponsor.Name,
		Sponsors:          strings.Join(sponsorNames, JoinSep),
		SponsorClasses:    strings.Join(sponsorClasses, JoinSep),
		Locations:         strings.Join(locationLabels, JoinSep),
		Countries:         strings.Join(dedupe(countries), JoinSep),
		Cities:            strings.Join(dedupe(cities), JoinSep),

		IsInterventional:    cls.Interventional,
		ClassificationNotes: strings.Join(cls.Notes, JoinSep),

		HasDrugIntervention:       cls.HasCategory(classify.Drug),
		HasDeviceIntervention:     cls.HasCategory(classify.Device),
		HasProcedureIntervention:  cls.HasCategory(classify.Procedure),
		HasBehavioralIntervention: cls.HasCategory(classify.Behavioral),
		HasBiologicalIntervention: cls.HasCategory(classify.Biological),
		HasRadiationIntervention:  cls.HasCategory(classify.Radiation),
		HasOtherIntervention:      cls.HasCategory(classify.Other),

		IsEarlyPhase1: hasPhase(rec.Phases, "EARLY_PHASE1"),
		IsPhase1:      hasPhase(rec.Phases, "PHASE1"),
		IsPhase2:      hasPhase(rec.Phases, "PHASE2"),
		IsPhase3:      hasPhase(rec.Phases, "PHASE3"),
		IsPhase4:      hasPhase(rec.Phases, "PHASE4"),

		IsRecruiting:            rec.Status == "RECRUITING",
		IsNotYetRecruiting:      rec.Status == "NOT_YET_RECRUITING",
		IsActiveNotRecruiting:   rec.Status == "ACTIVE_NOT_RECRUITING",
		IsEnrollingByInvitation: rec.Status == "ENROLLING_BY_INVITATION",
		IsCompleted:             rec.Status == "COMPLETED",
		IsTerminated:            rec.Status == "TERMINATED",
		IsSuspended:             rec.Status == "SUSPENDED",
		IsWithdrawn:             rec.Status == "WITHDRAWN",
	}
}

// describePhases renders the readable phase projection, keeping unknown
// codes as-is.
func describePhases(phases []string) string {
	labels := make([]string, 0, len(phases))
	for _, code := range phases {
		label := code
		for _, pd := range phaseDetails {
			if strings.EqualFold(code, pd.code) {
				label = pd.label
				break
			}
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, JoinSep)
}

// hasPhase is an exact, case-insensitive membership check. Substring
// matching would confuse PHASE1 with EARLY_PHASE1.
func hasPhase(phases []string, code string) bool {
	for _, p := range phases {
		if strings.EqualFold(p, code) {
			return true
		}
	}
	return false
}

func locationLabel(loc types.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.Facility, loc.City, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// dedupe removes repeats preserving first-seen order, dropping empties.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
