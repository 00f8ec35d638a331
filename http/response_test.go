package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/assetgate"
	assethttp "github.com/sagarc03/assetgate/http"
	"github.com/stretchr/testify/assert"
)

func TestHandleError_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	assethttp.HandleError(rec, assetgate.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
}

func TestHandleError_SanitizeError(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := assetgate.SanitizeFileName("../x")
	assethttp.HandleError(rec, fmt.Errorf("resolve: %w", err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_filename","detail":"path separators not allowed"}`, rec.Body.String())
}

func TestHandleError_InvalidInput(t *testing.T) {
	rec := httptest.NewRecorder()

	assethttp.HandleError(rec, assetgate.ErrInvalidInput)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_parameter")
}

func TestHandleError_Unauthorized(t *testing.T) {
	rec := httptest.NewRecorder()

	assethttp.HandleError(rec, assetgate.ErrInvalidToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestHandleError_InternalError(t *testing.T) {
	rec := httptest.NewRecorder()

	assethttp.HandleError(rec, errors.New("some unexpected error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
	assert.NotContains(t, rec.Body.String(), "unexpected", "internal details are not leaked")
}

func TestHandleError_WrappedNotFound(t *testing.T) {
	rec := httptest.NewRecorder()

	wrappedErr := errors.Join(errors.New("context"), assetgate.ErrNotFound)
	assethttp.HandleError(rec, wrappedErr)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestWriteError_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	assethttp.WriteError(rec, http.StatusBadRequest, "bad_request", "Invalid request")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"bad_request"`)
	assert.Contains(t, rec.Body.String(), `"detail":"Invalid request"`)
}

func TestWriteError_OmitsEmptyDetail(t *testing.T) {
	rec := httptest.NewRecorder()

	assethttp.WriteError(rec, http.StatusNotFound, "not_found", "")

	assert.NotContains(t, rec.Body.String(), "detail")
}

func TestWriteJSON_Success(t *testing.T) {
	rec := httptest.NewRecorder()

	data := map[string]string{"key": "value"}
	err := assethttp.WriteJSON(rec, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"key":"value"`)
}

func TestWriteJSON_EncodingError(t *testing.T) {
	rec := httptest.NewRecorder()

	// Channels cannot be JSON encoded
	data := make(chan int)
	err := assethttp.WriteJSON(rec, http.StatusOK, data)

	assert.Error(t, err)
}
