package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusNotFound, "REGION_NOT_FOUND", "Region not found in sales data")
	assert.Equal(t, "Region not found in sales data", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "REGION_NOT_FOUND", err.ErrorCode)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := NewStorageError("failed to open workbook", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORAGE")
	assert.Contains(t, err.Error(), "no such file")
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewParsingError("bad year label", nil).WithContext("label", "20XX-15")
	assert.Equal(t, "20XX-15", err.Context["label"])
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNoSalesData, "No Sales Data", "Goa has no value for 2016", "/api/dashboard/regions/Goa/summary").
		WithExtension("region", "Goa").
		WithExtension("year", 2016)

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, TypeNoSalesData, decoded["type"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
	assert.Equal(t, "Goa", decoded["region"])
	assert.Equal(t, float64(2016), decoded["year"])
}

func TestErrorToProblemMapsAPIErrors(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/sales/top", nil)

	tests := []struct {
		err      *APIError
		wantType string
	}{
		{ErrDataUnavailable, TypeDataUnavailable},
		{ErrNoSalesData, TypeNoSalesData},
		{ErrRegionNotFound, TypeRegionNotFound},
		{ErrYearNotFound, TypeYearNotFound},
		{ErrGeoUnavailable, TypeGeoUnavailable},
		{ErrValidationFailed, TypeValidation},
		{ErrRateLimitExceeded, TypeRateLimit},
	}

	for _, tt := range tests {
		problem := h.ErrorToProblem(tt.err, r)
		assert.Equal(t, tt.wantType, problem.Type, tt.err.ErrorCode)
		assert.Equal(t, tt.err.StatusCode, problem.Status, tt.err.ErrorCode)
	}
}

func TestErrorToProblemGenericFallback(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/years", nil)

	problem := h.ErrorToProblem(errors.New("something odd happened"), r)
	assert.Equal(t, TypeInternal, problem.Type)
	assert.Equal(t, http.StatusInternalServerError, problem.Status)
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard/regions/Goa/summary", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, ErrNoSalesData)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, TypeNoSalesData, decoded["type"])
	assert.Equal(t, "/api/dashboard/regions/Goa/summary", decoded["instance"])
}
