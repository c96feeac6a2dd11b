package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
)

// FixtureColumns is the feature layout of tables built by ReferenceTable.
var FixtureColumns = []string{
	"Concentrations", "Time",
	"Compounds_Tebuconazole", "Compounds_Azoxystrobin",
	"Species_Zebrafish",
	"Tissues_Gill", "Tissues_Liver",
}

// ReferenceTable builds a learnable table of n rows for (medium, endpoint).
// The label depends on concentration alone:
//
//	MDA: < 5 -> 0, [5, 10) -> 1, >= 10 -> 2
//	ROS: < 5 -> 0, >= 5 -> 2
//
// Concentrations cycle through 0.5 .. 14.5, so n >= 60 covers every band
// several times.
func ReferenceTable(medium exposure.Medium, endpoint exposure.Endpoint, n int) *reference.Table {
	rows := make([]reference.Row, n)
	for i := range rows {
		conc := float64(i%15) + 0.5
		compound := 2 + i%2
		tissue := 5 + (i/2)%2
		f := make([]float64, len(FixtureColumns))
		f[0] = conc
		f[1] = float64(i%4 + 1)
		f[compound] = 1
		if i%3 == 0 {
			f[4] = 1
		}
		f[tissue] = 1
		rows[i] = reference.Row{ID: fmt.Sprintf("%d", i+1), Label: FixtureLabel(endpoint, conc), Features: f}
	}
	names := make([]string, len(FixtureColumns))
	copy(names, FixtureColumns)
	return &reference.Table{Medium: medium, Endpoint: endpoint, FeatureNames: names, Rows: rows}
}

// FixtureLabel returns the class ReferenceTable assigns to conc.
func FixtureLabel(endpoint exposure.Endpoint, conc float64) int {
	switch {
	case conc < 5:
		return exposure.ClassNoResponse
	case conc < 10 && endpoint == exposure.EndpointMDA:
		return exposure.ClassInhibition
	default:
		return exposure.ClassStimulation
	}
}

// ReferenceSource returns a MemorySource holding fixture tables of n rows for
// every (medium, endpoint).
func ReferenceSource(n int) *reference.MemorySource {
	src := reference.NewMemorySource()
	for _, m := range exposure.AllMedia() {
		for _, e := range exposure.AllEndpoints() {
			src.Put(ReferenceTable(m, e, n))
		}
	}
	return src
}

// WriteReferenceDir writes the fixture tables of ReferenceSource(n) into dir
// as CSV files named the way the filesystem source expects.
func WriteReferenceDir(t testing.TB, dir string, n int) {
	t.Helper()
	for _, m := range exposure.AllMedia() {
		for _, e := range exposure.AllEndpoints() {
			WriteReferenceCSV(t, filepath.Join(dir, reference.FileName(m, e, reference.FormatCSV)), ReferenceTable(m, e, n))
		}
	}
}

// WriteReferenceCSV writes table to path in the ID,label,features layout.
func WriteReferenceCSV(t testing.TB, path string, table *reference.Table) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"ID", "label"}, table.FeatureNames...)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range table.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, row.ID, strconv.Itoa(row.Label))
		for _, v := range row.Features {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush %s: %v", path, err)
	}
}

//Personal.AI order the ending
