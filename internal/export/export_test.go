// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/trial-engine/internal/enrich"
)

func testRecords() []enrich.Record {
	return []enrich.Record{
		{
			NCTID:               "NCT00000001",
			BriefTitle:          "Checkpoint Inhibitor Study",
			StudyType:           "INTERVENTIONAL",
			Status:              "RECRUITING",
			Phases:              "PHASE2",
			Enrollment:          120,
			Conditions:          "Melanoma",
			LeadSponsor:         "Acme Oncology",
			Countries:           "United States; Canada",
			IsInterventional:    true,
			HasDrugIntervention: true,
			IsPhase2:            true,
			IsRecruiting:        true,
		},
		{
			NCTID:       "NCT00000002",
			BriefTitle:  "Registry Follow-up",
			StudyType:   "OBSERVATIONAL",
			Status:      "COMPLETED",
			LeadSponsor: "State University",
			IsCompleted: true,
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"csv", "JSON", " both ", "yaml", "xlsx", "sqlite"} {
		f, err := ParseFormat(valid)
		require.NoError(t, err, valid)
		assert.NotEmpty(t, f)
	}

	_, err := ParseFormat("parquet")
	require.Error(t, err)
}

func TestExport_CSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(dir).Export(testRecords(), FormatCSV, "trials")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(paths[0]), "trials_"))
	assert.True(t, strings.HasSuffix(paths[0], ".csv"))

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "NCT ID", rows[0][0])
	assert.Equal(t, len(columns), len(rows[0]))
	assert.Equal(t, "NCT00000001", rows[1][0])
	assert.Equal(t, "true", rows[1][headerIndex(t, "Is Interventional")])
	assert.Equal(t, "120", rows[1][headerIndex(t, "Enrollment")])
}

func TestExport_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(dir).Export(testRecords(), FormatJSON, "trials")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var round []map[string]any
	require.NoError(t, json.Unmarshal(data, &round))
	require.Len(t, round, 2)
	assert.Equal(t, "NCT00000001", round[0]["nct_id"])
}

func TestExport_BothWritesTwoFiles(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(dir).Export(testRecords(), FormatBoth, "trials")
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[0], ".csv"))
	assert.True(t, strings.HasSuffix(paths[1], ".json"))
}

func TestExport_XLSX(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(dir).Export(testRecords(), FormatXLSX, "trials")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	f, err := excelize.OpenFile(paths[0])
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "NCT ID", rows[0][0])
	assert.Equal(t, "NCT00000002", rows[2][0])
}

func TestExport_SQLite(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(dir).Export(testRecords(), FormatSQLite, "trials")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	db, err := sql.Open("sqlite3", paths[0])
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM trials").Scan(&count))
	assert.Equal(t, 2, count)

	var title string
	require.NoError(t, db.QueryRow("SELECT brief_title FROM trials WHERE nct_id = ?", "NCT00000001").Scan(&title))
	assert.Equal(t, "Checkpoint Inhibitor Study", title)
}

func TestExport_YAML(t *testing.T) {
	dir := t.TempDir()
	paths, err := New(dir).Export(testRecords(), FormatYAML, "trials")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "nct_id: NCT00000001")
}

// headerIndex finds a column's position by header name.
func headerIndex(t *testing.T, header string) int {
	t.Helper()
	for i, col := range columns {
		if col.header == header {
			return i
		}
	}
	t.Fatalf("no column %q", header)
	return -1
}
