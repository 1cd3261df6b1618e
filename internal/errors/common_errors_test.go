package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewAppValidationError("empty selection value"),
			want: "[VALIDATION] empty selection value",
		},
		{
			name: "with cause",
			err:  NewDataAccessError("cannot open data file", fs.ErrNotExist),
			want: "[DATA_ACCESS] cannot open data file: file does not exist",
		},
		{
			name: "export",
			err:  NewExportError("failed to save workbook", errors.New("disk full")),
			want: "[EXPORT] failed to save workbook: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_UnwrapAndType(t *testing.T) {
	base := NewDataAccessError("cannot open data file", fs.ErrNotExist)
	wrapped := fmt.Errorf("load dataset: %w", base)

	assert.True(t, errors.Is(wrapped, fs.ErrNotExist))
	assert.True(t, IsType(wrapped, ErrTypeDataAccess))
	assert.False(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(errors.New("plain"), ErrTypeDataAccess))

	errType, ok := TypeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeDataAccess, errType)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad row"}
	err.WithContext("row", 3).WithContext("fields", 12)

	assert.Equal(t, 3, err.Context["row"])
	assert.Equal(t, 12, err.Context["fields"])
}

func TestAPIError_Constructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", InvalidRequestWithError(errors.New("bad offset")), http.StatusBadRequest, CodeInvalidRequest},
		{"field errors", NewValidationErrors([]FieldError{{Field: "kind", Message: "must be one of count sum mean box"}}), http.StatusBadRequest, CodeValidationFailed},
		{"too large", PayloadTooLarge(1024, 4096), http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{"media type", UnsupportedMediaType("text/plain", []string{"application/json"}), http.StatusUnsupportedMediaType, CodeUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}

	details, ok := NewValidationErrors([]FieldError{{Field: "kind"}}).Details.(ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "kind", details.Errors[0].Field)
}

func TestForRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/data/summary", nil)
	problem := ForRequest(req, http.StatusServiceUnavailable, TypeDataUnavailable, "Dataset Unavailable", "")

	assert.Equal(t, "/api/data/summary", problem.Instance)
	assert.Contains(t, problem.Extensions, "trace_id")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusServiceUnavailable, TypeDataUnavailable, "Dataset Unavailable", "", "/api/data/dataset").
		WithExtension("trace_id", "abc")

	raw, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, TypeDataUnavailable, body["type"])
	assert.Equal(t, "abc", body["trace_id"])
	assert.NotContains(t, body, "detail")

	// extensions never shadow standard members
	problem.WithExtension("status", "overridden")
	raw, err = json.Marshal(problem)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, float64(http.StatusServiceUnavailable), body["status"])
}
