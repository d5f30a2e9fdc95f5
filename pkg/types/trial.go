// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trial-engine pipeline.
package types

import "time"

// Intervention is one assigned intervention within a trial.
type Intervention struct {
	// Name is the intervention name as given by the registry (e.g. "Metformin").
	Name string `json:"name" yaml:"name"`

	// Type is the registry type tag (e.g. "DRUG", "DEVICE", "Behavioral").
	Type string `json:"type" yaml:"type"`

	// Description is the optional free-text description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Sponsor is a sponsoring organization.
type Sponsor struct {
	// Name is the organization name.
	Name string `json:"name" yaml:"name"`

	// Class is the registry organization class (e.g. "INDUSTRY", "NIH", "OTHER").
	Class string `json:"class,omitempty" yaml:"class,omitempty"`
}

// Location is one study site.
type Location struct {
	Facility string `json:"facility" yaml:"facility"`
	City     string `json:"city" yaml:"city"`
	State    string `json:"state,omitempty" yaml:"state,omitempty"`
	Country  string `json:"country" yaml:"country"`
}

// TrialRecord is the normalized in-memory representation of one registry
// study. List-valued fields are always non-nil: an absent module in the
// source payload yields an empty slice. Dates use the zero time.Time when
// the registry omits them.
type TrialRecord struct {
	// NCTID is the registry identifier ("NCT" followed by 8 digits).
	// It is required and unique within a retrieved batch.
	NCTID string `json:"nct_id" yaml:"nct_id"`

	// BriefTitle is the short public title.
	BriefTitle string `json:"brief_title" yaml:"brief_title"`

	// OfficialTitle is the full protocol title.
	OfficialTitle string `json:"official_title" yaml:"official_title"`

	// StudyType is the declared study type from the registry
	// (e.g. "INTERVENTIONAL", "OBSERVATIONAL"). May be empty.
	StudyType string `json:"study_type" yaml:"study_type"`

	// Phases lists the registry phase codes (e.g. "PHASE1", "PHASE2").
	// Phase-spanning trials carry more than one code.
	Phases []string `json:"phases" yaml:"phases"`

	// Status is the single recruitment status code (e.g. "RECRUITING").
	Status string `json:"status" yaml:"status"`

	// Conditions lists the medical conditions under study.
	Conditions []string `json:"conditions" yaml:"conditions"`

	// Interventions lists the assigned interventions.
	Interventions []Intervention `json:"interventions" yaml:"interventions"`

	// LeadSponsor is the organization with primary responsibility.
	LeadSponsor Sponsor `json:"lead_sponsor" yaml:"lead_sponsor"`

	// Collaborators lists additional sponsoring organizations.
	Collaborators []Sponsor `json:"collaborators" yaml:"collaborators"`

	// Locations lists the study sites.
	Locations []Location `json:"locations" yaml:"locations"`

	// Enrollment is the participant count (0 when not reported).
	Enrollment int `json:"enrollment" yaml:"enrollment"`

	// StartDate is the study start date.
	StartDate time.Time `json:"start_date" yaml:"start_date"`

	// CompletionDate is the overall completion date.
	CompletionDate time.Time `json:"completion_date" yaml:"completion_date"`

	// PrimaryCompletionDate is the primary outcome completion date.
	PrimaryCompletionDate time.Time `json:"primary_completion_date" yaml:"primary_completion_date"`
}
