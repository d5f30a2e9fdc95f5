// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"fmt"
	"time"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// ClinicalTrials.gov v2 API JSON structures.
type studiesPage struct {
	Studies       []studyPayload `json:"studies"`
	NextPageToken string         `json:"nextPageToken"`
}

type studyPayload struct {
	ProtocolSection protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	Identification identificationModule       `json:"identificationModule"`
	Status         statusModule               `json:"statusModule"`
	Design         designModule               `json:"designModule"`
	Conditions     conditionsModule           `json:"conditionsModule"`
	Interventions  interventionsModule        `json:"interventionsModule"`
	Sponsors       sponsorCollaboratorsModule `json:"sponsorCollaboratorsModule"`
	Locations      locationsModule            `json:"locationsModule"`
}

type identificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

type statusModule struct {
	OverallStatus         string     `json:"overallStatus"`
	StartDate             dateStruct `json:"startDateStruct"`
	CompletionDate        dateStruct `json:"completionDateStruct"`
	PrimaryCompletionDate dateStruct `json:"primaryCompletionDateStruct"`
}

type dateStruct struct {
	Date string `json:"date"`
}

type designModule struct {
	StudyType      string         `json:"studyType"`
	Phases         []string       `json:"phases"`
	EnrollmentInfo enrollmentInfo `json:"enrollmentInfo"`
}

type enrollmentInfo struct {
	Count int `json:"count"`
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type interventionsModule struct {
	Interventions []interventionPayload `json:"interventions"`
}

type interventionPayload struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type sponsorCollaboratorsModule struct {
	LeadSponsor   sponsorPayload   `json:"leadSponsor"`
	Collaborators []sponsorPayload `json:"collaborators"`
}

type sponsorPayload struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type locationsModule struct {
	Locations []locationPayload `json:"locations"`
}

type locationPayload struct {
	Facility facilityPayload `json:"facility"`
}

type facilityPayload struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// parseStudy converts a raw study payload into a TrialRecord. A missing
// identifier or an unparseable date makes the payload malformed; the caller
// skips it and keeps counting.
func parseStudy(s studyPayload) (types.TrialRecord, error) {
	p := s.ProtocolSection
	if p.Identification.NCTID == "" {
		return types.TrialRecord{}, fmt.Errorf("study missing nctId")
	}

	start, err := parseDate(p.Status.StartDate.Date)
	if err != nil {
		return types.TrialRecord{}, fmt.Errorf("study %s: start date: %w", p.Identification.NCTID, err)
	}
	completion, err := parseDate(p.Status.CompletionDate.Date)
	if err != nil {
		return types.TrialRecord{}, fmt.Errorf("study %s: completion date: %w", p.Identification.NCTID, err)
	}
	primary, err := parseDate(p.Status.PrimaryCompletionDate.Date)
	if err != nil {
		return types.TrialRecord{}, fmt.Errorf("study %s: primary completion date: %w", p.Identification.NCTID, err)
	}

	rec := types.TrialRecord{
		NCTID:                 p.Identification.NCTID,
		BriefTitle:            p.Identification.BriefTitle,
		OfficialTitle:         p.Identification.OfficialTitle,
		StudyType:             p.Design.StudyType,
		Phases:                []string{},
		Status:                p.Status.OverallStatus,
		Conditions:            []string{},
		Interventions:         []types.Intervention{},
		LeadSponsor:           types.Sponsor{Name: p.Sponsors.LeadSponsor.Name, Class: p.Sponsors.LeadSponsor.Class},
		Collaborators:         []types.Sponsor{},
		Locations:             []types.Location{},
		Enrollment:            p.Design.EnrollmentInfo.Count,
		StartDate:             start,
		CompletionDate:        completion,
		PrimaryCompletionDate: primary,
	}

	rec.Phases = append(rec.Phases, p.Design.Phases...)
	rec.Conditions = append(rec.Conditions, p.Conditions.Conditions...)

	for _, iv := range p.Interventions.Interventions {
		rec.Interventions = append(rec.Interventions, types.Intervention{
			Name:        iv.Name,
			Type:        iv.Type,
			Description: iv.Description,
		})
	}
	for _, sp := range p.Sponsors.Collaborators {
		rec.Collaborators = append(rec.Collaborators, types.Sponsor{Name: sp.Name, Class: sp.Class})
	}
	for _, loc := range p.Locations.Locations {
		rec.Locations = append(rec.Locations, types.Location{
			Facility: loc.Facility.Name,
			City:     loc.Facility.City,
			State:    loc.Facility.State,
			Country:  loc.Facility.Country,
		})
	}

	return rec, nil
}

// dateLayouts are the registry date formats, full date first. Partial dates
// resolve to the first day of the period.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// parseDate parses a registry date string. An empty string is a valid
// absent date (zero time); a non-empty string that matches no layout is an
// error.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
