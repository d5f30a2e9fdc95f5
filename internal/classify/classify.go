// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a trial record qualifies as an
// interventional study and tags its intervention categories. Classification
// is pure and deterministic: it is always recomputed from the record, never
// persisted on its own.
package classify

import (
	"strings"

	"github.com/pdiddy/trial-engine/pkg/types"
)

// Category is one of the fixed intervention categories.
type Category string

const (
	Drug       Category = "drug"
	Device     Category = "device"
	Procedure  Category = "procedure"
	Behavioral Category = "behavioral"
	Biological Category = "biological"
	Radiation  Category = "radiation"
	Other      Category = "other"
)

// Categories lists every category in reporting order.
var Categories = []Category{Drug, Device, Procedure, Behavioral, Biological, Radiation, Other}

// interventionalDesignation marks a declared interventional study type.
const interventionalDesignation = "INTERVENTIONAL"

// observationalDesignations are the declared study types that suppress the
// intervention-presence fallback. Chosen conservatively: a record carrying
// any of these is never classified interventional from its interventions
// alone.
var observationalDesignations = []string{
	"OBSERVATIONAL",
	"PATIENT_REGISTRY",
	"EXPANDED_ACCESS",
}

// categoryKeywords maps each concrete category to the type-tag keywords
// that select it. Matching is case-insensitive substring; the bare
// "therapy" keyword is deliberately absent so "radiotherapy" and
// "gene therapy" land in their own categories.
var categoryKeywords = map[Category][]string{
	Drug:       {"drug", "medication", "pharmaceutical", "compound", "agent"},
	Device:     {"device", "equipment", "instrument", "apparatus"},
	Procedure:  {"procedure", "surgery", "surgical", "operation"},
	Behavioral: {"behavioral", "behaviour", "psychological", "counseling", "education"},
	Biological: {"biological", "biologic", "vaccine", "immunotherapy", "gene therapy", "cell therapy"},
	Radiation:  {"radiation", "radiotherapy", "irradiation", "radioactive"},
}

// keywordOrder fixes the match precedence across categories.
var keywordOrder = []Category{Radiation, Biological, Behavioral, Procedure, Device, Drug}

// Result is the per-record classification verdict.
type Result struct {
	// Interventional reports whether the record qualifies as an
	// interventional study.
	Interventional bool `json:"interventional" yaml:"interventional"`

	// Categories is the matched category set, in reporting order. A
	// trial combining a drug and a device belongs to both.
	Categories []Category `json:"categories" yaml:"categories"`

	// Notes explain why the record was included or excluded, including
	// whether the fallback rule decided the verdict.
	Notes []string `json:"notes" yaml:"notes"`
}

// HasCategory reports whether c is in the matched set.
func (r Result) HasCategory(c Category) bool {
	for _, got := range r.Categories {
		if got == c {
			return true
		}
	}
	return false
}

// Classify computes the verdict for one record.
//
// Eligibility: a declared interventional study type qualifies outright. When
// the declared type is absent or unrecognized, the presence of at least one
// intervention entry qualifies the record as a fallback, unless an explicit
// observational designation suppresses it. The fallback path is recorded in
// Notes so consumers can tell confident verdicts from ambiguous ones.
func Classify(rec types.TrialRecord) Result {
	res := Result{Categories: []Category{}, Notes: []string{}}

	designation := strings.ToUpper(strings.TrimSpace(rec.StudyType))
	switch {
	case strings.Contains(designation, interventionalDesignation):
		res.Interventional = true
		res.Notes = append(res.Notes, "declared study type is interventional")
	case isObservational(designation):
		res.Notes = append(res.Notes, "declared study type "+designation+" is observational")
	case len(rec.Interventions) > 0:
		res.Interventional = true
		res.Notes = append(res.Notes, "study type absent; classified from intervention entries (ambiguous)")
	default:
		res.Notes = append(res.Notes, "no interventional designation and no intervention entries")
	}

	matched := make(map[Category]bool)
	for _, iv := range rec.Interventions {
		matched[categorize(iv.Type)] = true
	}
	for _, c := range Categories {
		if matched[c] {
			res.Categories = append(res.Categories, c)
		}
	}

	return res
}

func isObservational(designation string) bool {
	for _, obs := range observationalDesignations {
		if strings.Contains(designation, obs) {
			return true
		}
	}
	return false
}

// categorize maps an intervention type tag to its category. Exact tag
// matches win; otherwise the keyword lists apply in fixed precedence.
// Unrecognized tags map to Other.
func categorize(tag string) Category {
	t := strings.ToLower(strings.TrimSpace(tag))
	if t == "" {
		return Other
	}
	for _, c := range keywordOrder {
		if t == string(c) {
			return c
		}
	}
	for _, c := range keywordOrder {
		for _, kw := range categoryKeywords[c] {
			if strings.Contains(t, kw) {
				return c
			}
		}
	}
	return Other
}
