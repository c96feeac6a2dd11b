package reference

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/pkg/errors"
)

func sampleTable() *Table {
	return &Table{
		Medium:       exposure.MediumAquatic,
		Endpoint:     exposure.EndpointMDA,
		FeatureNames: []string{"Concentrations", "Time", "Tissues_Gill"},
		Rows: []Row{
			{ID: "1", Label: 0, Features: []float64{1, 2, 0}},
			{ID: "2", Label: 2, Features: []float64{5, 7, 1}},
			{ID: "3", Label: 1, Features: []float64{3, 1, 1}},
		},
	}
}

func TestTable_Validate(t *testing.T) {
	require.NoError(t, sampleTable().Validate())

	noTime := sampleTable()
	noTime.FeatureNames = []string{"Concentrations", "Tissues_Liver", "Tissues_Gill"}
	err := noTime.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsSchemaMismatch(err))
	assert.Contains(t, err.Error(), "Time")

	empty := &Table{Medium: exposure.MediumSoil, Endpoint: exposure.EndpointROS}
	assert.True(t, errors.IsSchemaMismatch(empty.Validate()))

	ragged := sampleTable()
	ragged.Rows[1].Features = []float64{1}
	assert.True(t, errors.IsCode(ragged.Validate(), errors.ErrCodeReferenceDataInvalid))
}

func TestTable_Accessors(t *testing.T) {
	tb := sampleTable()
	assert.Equal(t, "aquatic/MDA", tb.Key())
	assert.Equal(t, 3, tb.NumRows())
	assert.Equal(t, 3, tb.NumFeatures())
	assert.Equal(t, []int{0, 2, 1}, tb.Labels())
	assert.Equal(t, []float64{5, 7, 1}, tb.Matrix()[1])
}

func TestTable_Fingerprint(t *testing.T) {
	a, err := sampleTable().Fingerprint()
	require.NoError(t, err)
	b, err := sampleTable().Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	changed := sampleTable()
	changed.Rows[0].Label = 2
	c, err := changed.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	bad := sampleTable()
	bad.Rows[0].Features[0] = math.NaN()
	_, err = bad.Fingerprint()
	assert.Error(t, err)
}

//Personal.AI order the ending
