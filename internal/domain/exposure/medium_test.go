package exposure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/pkg/errors"
)

func TestParseMedium(t *testing.T) {
	tests := []struct {
		in      string
		want    Medium
		wantErr bool
	}{
		{"aquatic", MediumAquatic, false},
		{" Soil ", MediumSoil, false},
		{"AQUATIC", MediumAquatic, false},
		{"marine", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMedium(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpoint_Classes(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, EndpointMDA.Classes())
	assert.Equal(t, []int{0, 2}, EndpointROS.Classes())
	assert.Nil(t, Endpoint("X").Classes())

	assert.True(t, EndpointMDA.InDomain(1))
	assert.False(t, EndpointROS.InDomain(1))
}

func TestEndpoint_Legend(t *testing.T) {
	assert.Equal(t, "0: No Response, 1: Inhibition, 2: Stimulation", EndpointMDA.Legend())
	assert.Equal(t, "0: No Response, 2: Stimulation", EndpointROS.Legend())
}

func TestClassLabel(t *testing.T) {
	assert.Equal(t, "No Response", ClassLabel(0))
	assert.Equal(t, "Inhibition", ClassLabel(1))
	assert.Equal(t, "Stimulation", ClassLabel(2))
	assert.Equal(t, "Unknown", ClassLabel(7))
}

//Personal.AI order the ending
