package cli

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/app"
	"github.com/turtacn/ecowarn/internal/config"
	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/pkg/errors"
)

func TestVocabulary_Text(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t), "vocabulary", "aquatic")
	require.NoError(t, err)
	assert.Contains(t, out, "Medium: aquatic\n")
	assert.Contains(t, out, "  Compounds_Tebuconazole\n")
	assert.Contains(t, out, "  Tissues_Gill\n")
	assert.Contains(t, out, "  "+noSelection+"\n")
}

func TestVocabulary_JSONMatchesRegistry(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t), "-o", "json", "vocab", "soil")
	require.NoError(t, err)

	var view VocabularyView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	want := exposure.VocabularyFor(exposure.MediumSoil)
	assert.Equal(t, "soil", view.Medium)
	assert.Equal(t, want.Compounds, view.Compounds)
	assert.Equal(t, want.Species, view.Species)
	assert.Equal(t, want.Tissues, view.Tissues)
}

func TestVocabulary_Table(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t), "-o", "table", "vocabulary", "soil")
	require.NoError(t, err)
	assert.Contains(t, out, "CATEGORY")
	assert.Contains(t, out, "Species_Earthworms")
}

func TestVocabulary_Rejections(t *testing.T) {
	cfg := writeConfig(t)

	_, _, err := execute(t, "--config", cfg, "vocabulary", "air")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err), err)

	_, _, err = execute(t, "--config", cfg, "vocabulary")
	assert.Error(t, err)
}

func TestVocabulary_Remote(t *testing.T) {
	cfgPath := writeConfig(t)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	rt, err := app.NewRuntime(cfg, nil)
	require.NoError(t, err)
	defer rt.Close()
	srv := httptest.NewServer(rt.Handler("test"))
	defer srv.Close()

	out, _, err := execute(t, "--config", cfgPath, "--server", srv.URL, "-o", "json", "vocabulary", "aquatic")
	require.NoError(t, err)

	var view VocabularyView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, exposure.VocabularyFor(exposure.MediumAquatic).Compounds, view.Compounds)
}

func TestVocabularyView_TableRows(t *testing.T) {
	v := &VocabularyView{Compounds: []string{"Compounds_A"}, Species: []string{""}, Tissues: []string{"Tissues_B"}}
	assert.Equal(t, [][]string{
		{"compound", "Compounds_A"},
		{"species", noSelection},
		{"tissue", "Tissues_B"},
	}, v.TableRows())
}

//Personal.AI order the ending
