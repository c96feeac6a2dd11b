package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ecowarn/internal/application/assessment"
	"github.com/turtacn/ecowarn/internal/domain/exposure"
	"github.com/turtacn/ecowarn/internal/domain/reference"
	"github.com/turtacn/ecowarn/internal/testutil"
	"github.com/turtacn/ecowarn/pkg/errors"
)

type MockAssessmentService struct {
	mock.Mock
}

func (m *MockAssessmentService) Assess(ctx context.Context, s exposure.Scenario) (*assessment.Result, error) {
	args := m.Called(ctx, s)
	if r := args.Get(0); r != nil {
		return r.(*assessment.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAssessmentService) Vocabulary(medium exposure.Medium) (*assessment.VocabularyView, error) {
	args := m.Called(medium)
	if v := args.Get(0); v != nil {
		return v.(*assessment.VocabularyView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAssessmentService) Ready(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestRouter(svc assessment.Service, observer ErrorObserver) http.Handler {
	h := NewPredictionHandler(svc, 0, observer, testutil.NewMockLogger())
	r := chi.NewRouter()
	r.Route("/api/v1", h.Register)
	return r
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

const gillBody = `{"medium":"aquatic","compound":"Compounds_Tebuconazole","concentration":12.5,"exposure_time":3,"species":"","tissue":"Tissues_Gill"}`

func TestCreatePrediction_Success(t *testing.T) {
	svc := new(MockAssessmentService)
	want := exposure.Scenario{
		Medium: exposure.MediumAquatic, Compound: "Compounds_Tebuconazole",
		Concentration: 12.5, ExposureTime: 3, Tissue: "Tissues_Gill",
	}
	svc.On("Assess", mock.Anything, want).Return(&assessment.Result{
		RequestID:    "req-1",
		Scenario:     want,
		MDA:          assessment.EndpointResult{Class: 2, Label: "Stimulation"},
		ROS:          assessment.EndpointResult{Class: 2, Label: "Stimulation"},
		Verdict:      exposure.VerdictPotentialRisk,
		VerdictLabel: "Potential Risk",
	}, nil)

	w := post(t, newTestRouter(svc, nil), gillBody)
	require.Equal(t, http.StatusOK, w.Code)

	var got assessment.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, 2, got.MDA.Class)
	assert.Equal(t, exposure.VerdictPotentialRisk, got.Verdict)
	svc.AssertExpectations(t)
}

func TestCreatePrediction_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"malformed json":     `{"medium":`,
		"unknown field":      `{"medium":"aquatic","colour":"red"}`,
		"missing amounts":    `{"medium":"aquatic","tissue":"Tissues_Gill"}`,
		"negative amount":    `{"medium":"aquatic","concentration":-1,"exposure_time":4,"tissue":"Tissues_Gill"}`,
		"no species/tissue":  `{"medium":"aquatic","concentration":1,"exposure_time":4}`,
		"unsupported medium": `{"medium":"air","concentration":1,"exposure_time":4,"tissue":"Tissues_Gill"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := new(MockAssessmentService)
			w := post(t, newTestRouter(svc, nil), body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Contains(t, []string{"COMMON_002", "COMMON_010"}, resp.Code)
			svc.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything)
		})
	}
}

func TestCreatePrediction_ZeroIsNotMissing(t *testing.T) {
	svc := new(MockAssessmentService)
	svc.On("Assess", mock.Anything, mock.MatchedBy(func(s exposure.Scenario) bool {
		return s.Concentration == 0 && s.ExposureTime == 0
	})).Return(&assessment.Result{Verdict: exposure.VerdictNoRisk}, nil)

	w := post(t, newTestRouter(svc, nil), `{"medium":"soil","concentration":0,"exposure_time":0,"species":"Species_Earthworms"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePrediction_ServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing reference", reference.Missing(exposure.MediumAquatic, exposure.EndpointMDA, "aquatic_MDA_train.xlsx"), http.StatusNotFound, "REF_001"},
		{"schema mismatch", errors.New(errors.ErrCodeSchemaMismatch, "reference table is missing the Time column"), http.StatusUnprocessableEntity, "REF_002"},
		{"training failure", errors.New(errors.ErrCodeTrainingFailure, "single class"), http.StatusUnprocessableEntity, "MDL_001"},
		{"inference failure", errors.New(errors.ErrCodeInferenceFailed, "width mismatch"), http.StatusInternalServerError, "MDL_002"},
		{"plain error", assert.AnError, http.StatusInternalServerError, "COMMON_001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockAssessmentService)
			svc.On("Assess", mock.Anything, mock.Anything).Return(nil, tc.err)
			var observed errors.ErrorCode
			w := post(t, newTestRouter(svc, func(c errors.ErrorCode) { observed = c }), gillBody)

			assert.Equal(t, tc.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.code, resp.Code)
			assert.Equal(t, tc.code, observed.String())
			if tc.status >= 500 {
				assert.Equal(t, errors.DefaultMessageForCode(errors.ErrorCode(tc.code)), resp.Message)
				assert.Empty(t, resp.Detail)
			}
		})
	}
}

func TestCreatePrediction_MissingReferenceNamesFile(t *testing.T) {
	svc := new(MockAssessmentService)
	svc.On("Assess", mock.Anything, mock.Anything).
		Return(nil, reference.Missing(exposure.MediumAquatic, exposure.EndpointROS, "/data/aquatic_ROS_train.xlsx"))

	resp := decodeError(t, post(t, newTestRouter(svc, nil), gillBody))
	assert.Contains(t, resp.Detail+resp.Message, "aquatic_ROS_train.xlsx")
}

func TestGetVocabulary(t *testing.T) {
	svc := new(MockAssessmentService)
	svc.On("Vocabulary", exposure.MediumSoil).Return(&assessment.VocabularyView{
		Medium:    exposure.MediumSoil,
		Compounds: []string{"Compounds_Tebuconazole"},
		Species:   []string{"", "Species_Earthworms"},
	}, nil)
	h := newTestRouter(svc, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vocabularies/SOIL", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var view assessment.VocabularyView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, []string{"Compounds_Tebuconazole"}, view.Compounds)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vocabularies/air", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

//Personal.AI order the ending
