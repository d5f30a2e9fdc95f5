// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/trial-engine/pkg/types"
)

func TestClassify_Eligibility(t *testing.T) {
	tests := []struct {
		name      string
		rec       types.TrialRecord
		want      bool
		ambiguous bool
	}{
		{
			name: "declared interventional",
			rec:  types.TrialRecord{StudyType: "INTERVENTIONAL"},
			want: true,
		},
		{
			name: "declared interventional lowercase",
			rec:  types.TrialRecord{StudyType: "interventional"},
			want: true,
		},
		{
			name: "observational with interventions stays excluded",
			rec: types.TrialRecord{
				StudyType:     "OBSERVATIONAL",
				Interventions: []types.Intervention{{Name: "Aspirin", Type: "DRUG"}},
			},
			want: false,
		},
		{
			name: "patient registry stays excluded",
			rec: types.TrialRecord{
				StudyType:     "PATIENT_REGISTRY",
				Interventions: []types.Intervention{{Name: "Stent", Type: "DEVICE"}},
			},
			want: false,
		},
		{
			name: "expanded access stays excluded",
			rec:  types.TrialRecord{StudyType: "EXPANDED_ACCESS"},
			want: false,
		},
		{
			name: "missing type falls back to intervention presence",
			rec: types.TrialRecord{
				Interventions: []types.Intervention{{Name: "Stent", Type: "DEVICE"}},
			},
			want:      true,
			ambiguous: true,
		},
		{
			name: "unrecognized type falls back to intervention presence",
			rec: types.TrialRecord{
				StudyType:     "SOMETHING_ELSE",
				Interventions: []types.Intervention{{Name: "Aspirin", Type: "DRUG"}},
			},
			want:      true,
			ambiguous: true,
		},
		{
			name: "no type and no interventions",
			rec:  types.TrialRecord{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.rec)
			if got.Interventional != tt.want {
				t.Errorf("Interventional = %t, want %t", got.Interventional, tt.want)
			}
			if tt.ambiguous != hasAmbiguousNote(got) {
				t.Errorf("ambiguous note presence = %t, want %t (notes: %v)", hasAmbiguousNote(got), tt.ambiguous, got.Notes)
			}
			if len(got.Notes) == 0 {
				t.Error("every verdict must carry at least one note")
			}
		})
	}
}

func hasAmbiguousNote(r Result) bool {
	for _, n := range r.Notes {
		if strings.Contains(n, "(ambiguous)") {
			return true
		}
	}
	return false
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		tag  string
		want Category
	}{
		{"DRUG", Drug},
		{"drug", Drug},
		{"DEVICE", Device},
		{"PROCEDURE", Procedure},
		{"BEHAVIORAL", Behavioral},
		{"BIOLOGICAL", Biological},
		{"RADIATION", Radiation},
		{"Genetic: gene therapy", Biological},
		{"Combination Product: drug/device", Device},
		{"radiotherapy", Radiation},
		{"DIAGNOSTIC_TEST", Other},
		{"DIETARY_SUPPLEMENT", Other},
		{"", Other},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := categorize(tt.tag); got != tt.want {
				t.Errorf("categorize(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestClassify_CategoryUnionInReportingOrder(t *testing.T) {
	rec := types.TrialRecord{
		StudyType: "INTERVENTIONAL",
		Interventions: []types.Intervention{
			{Name: "Linac", Type: "RADIATION"},
			{Name: "Aspirin", Type: "DRUG"},
			{Name: "Aspirin XR", Type: "DRUG"},
			{Name: "Stent", Type: "DEVICE"},
		},
	}
	got := Classify(rec)
	want := []Category{Drug, Device, Radiation}
	if !reflect.DeepEqual(got.Categories, want) {
		t.Errorf("Categories = %v, want %v", got.Categories, want)
	}
	if !got.HasCategory(Drug) || got.HasCategory(Procedure) {
		t.Error("HasCategory disagrees with Categories")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	rec := types.TrialRecord{
		StudyType: "INTERVENTIONAL",
		Interventions: []types.Intervention{
			{Name: "Vaccine", Type: "BIOLOGICAL"},
			{Name: "Counseling", Type: "BEHAVIORAL"},
		},
	}
	first := Classify(rec)
	for i := 0; i < 5; i++ {
		if got := Classify(rec); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, got, first)
		}
	}
}
