package exposure

import (
	"fmt"

	"github.com/turtacn/ecowarn/pkg/errors"
)

// Numeric feature columns every reference table must carry.
const (
	FeatureConcentrations = "Concentrations"
	FeatureTime           = "Time"
)

// EncodedVector is one scenario aligned to a reference table's feature
// columns.  Values[i] belongs to Names[i].
type EncodedVector struct {
	Names  []string  `json:"names"`
	Values []float64 `json:"values"`
}

// Len returns the vector width.
func (v EncodedVector) Len() int { return len(v.Values) }

// Get returns the value of the first column called name.
func (v EncodedVector) Get(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// OneHotCount returns the number of categorical columns set to 1.0.
func (v EncodedVector) OneHotCount() int {
	n := 0
	for i, name := range v.Names {
		if name == FeatureConcentrations || name == FeatureTime {
			continue
		}
		if v.Values[i] == 1.0 {
			n++
		}
	}
	return n
}

// Encode builds the feature vector of s for a table whose columns are
// targetFeatureNames.  Every column starts at 0.0; Concentrations and Time
// receive the numeric amounts; the compound, species and tissue columns are
// set to 1.0 when the label is non-empty and is one of the columns.  Labels
// that match no column are dropped without error.
//
// A column list without Concentrations or Time yields ErrCodeSchemaMismatch.
func Encode(s Scenario, targetFeatureNames []string) (EncodedVector, error) {
	if len(targetFeatureNames) == 0 {
		return EncodedVector{}, errors.New(errors.ErrCodeSchemaMismatch, "reference table has no feature columns")
	}

	index := make(map[string][]int, len(targetFeatureNames))
	for i, name := range targetFeatureNames {
		index[name] = append(index[name], i)
	}
	for _, required := range []string{FeatureConcentrations, FeatureTime} {
		if _, ok := index[required]; !ok {
			return EncodedVector{}, errors.New(errors.ErrCodeSchemaMismatch,
				fmt.Sprintf("reference table is missing the %s column", required))
		}
	}

	names := make([]string, len(targetFeatureNames))
	copy(names, targetFeatureNames)
	values := make([]float64, len(names))

	for _, i := range index[FeatureConcentrations] {
		values[i] = s.Concentration
	}
	for _, i := range index[FeatureTime] {
		values[i] = s.ExposureTime
	}
	for _, label := range s.Labels() {
		if label == FeatureConcentrations || label == FeatureTime {
			continue
		}
		for _, i := range index[label] {
			values[i] = 1.0
		}
	}

	return EncodedVector{Names: names, Values: values}, nil
}

// DroppedLabels returns the non-empty labels of s that match no column in
// targetFeatureNames.  Encode ignores them; callers may log them.
func DroppedLabels(s Scenario, targetFeatureNames []string) []string {
	present := make(map[string]struct{}, len(targetFeatureNames))
	for _, n := range targetFeatureNames {
		present[n] = struct{}{}
	}
	var dropped []string
	for _, label := range s.Labels() {
		if _, ok := present[label]; !ok {
			dropped = append(dropped, label)
		}
	}
	return dropped
}

//Personal.AI order the ending
