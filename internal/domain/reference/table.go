// Package reference models the labelled reference tables that the endpoint
// classifiers are fitted on, one per (medium, endpoint) pair, together with
// the parsers and the Source abstraction that supplies them.
package reference

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// Row is one labelled observation.  Features are aligned to the owning
// Table's FeatureNames.
type Row struct {
	ID       string    `json:"id"`
	Label    int       `json:"label"`
	Features []float64 `json:"features"`
}

// Table is a rectangular reference dataset.  The order of FeatureNames is the
// column order used for both training and inference.
type Table struct {
	Medium       exposure.Medium   `json:"medium"`
	Endpoint     exposure.Endpoint `json:"endpoint"`
	FeatureNames []string          `json:"feature_names"`
	Rows         []Row             `json:"rows"`
}

// Key identifies the table, e.g. "aquatic/MDA".
func (t *Table) Key() string {
	return fmt.Sprintf("%s/%s", t.Medium, t.Endpoint)
}

// NumRows returns the number of observations.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int { return len(t.FeatureNames) }

// Validate checks the schema: at least one feature column, the Concentrations
// and Time columns present, and every row as wide as the header.  It never
// inspects labels; degenerate label sets are a training concern.
func (t *Table) Validate() error {
	if len(t.FeatureNames) == 0 {
		return errors.New(errors.ErrCodeSchemaMismatch, "reference table has no feature columns").
			WithDetail(t.Key())
	}
	seen := make(map[string]bool, len(t.FeatureNames))
	for _, n := range t.FeatureNames {
		seen[n] = true
	}
	for _, required := range []string{exposure.FeatureConcentrations, exposure.FeatureTime} {
		if !seen[required] {
			return errors.New(errors.ErrCodeSchemaMismatch,
				fmt.Sprintf("reference table is missing the %s column", required)).
				WithDetail(t.Key())
		}
	}
	for i, r := range t.Rows {
		if len(r.Features) != len(t.FeatureNames) {
			return errors.New(errors.ErrCodeReferenceDataInvalid,
				fmt.Sprintf("row %d has %d features, header has %d", i, len(r.Features), len(t.FeatureNames))).
				WithDetail(t.Key())
		}
	}
	return nil
}

// Matrix returns the feature matrix, one slice per row.  The row slices are
// shared with the table.
func (t *Table) Matrix() [][]float64 {
	x := make([][]float64, len(t.Rows))
	for i, r := range t.Rows {
		x[i] = r.Features
	}
	return x
}

// Labels returns the label column.
func (t *Table) Labels() []int {
	y := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		y[i] = r.Label
	}
	return y
}

// Fingerprint returns a hex SHA-256 digest of the table's canonical JSON
// (RFC 8785) form.  Two tables with the same medium, endpoint, columns and
// rows always share a fingerprint.
func (t *Table) Fingerprint() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeReferenceDataInvalid, "reference table is not serialisable").
			WithDetail(t.Key())
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeReferenceDataInvalid, "canonicalising reference table").
			WithDetail(t.Key())
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

//Personal.AI order the ending
