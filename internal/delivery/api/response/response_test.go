package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverycontext "tracker/internal/delivery/context"
	domainerrors "tracker/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	deliverycontext.SetRequestID(c, "req-1")

	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestSuccess(t *testing.T) {
	c, rec := newContext()
	require.NoError(t, Success(c, http.StatusCreated, map[string]string{"k": "v"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"k":"v"},"meta":{"request_id":"req-1"}}`, rec.Body.String())
}

func TestHandleAppError_KeepsDetailsFor4xx(t *testing.T) {
	c, rec := newContext()
	err := domainerrors.ErrValidationFailed.WithDetails("name is required")
	require.NoError(t, HandleAppError(c, domainerrors.ErrValidationFailed.WrapMessage("create")))
	assert.Nil(t, decodeError(t, rec).Error.Details)

	c, rec = newContext()
	require.NoError(t, HandleAppError(c, err))
	body := decodeError(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Equal(t, "name is required", body.Error.Details)
	assert.Equal(t, "req-1", body.Meta.RequestID)
}

func TestError_HidesDetailsForAuthAndServerErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		c, rec := newContext()
		require.NoError(t, Error(c, status, "X", "msg", "secret"))
		assert.Nil(t, decodeError(t, rec).Error.Details, status)
	}
}

func TestHandleAppError_PassesThroughUnknown(t *testing.T) {
	c, rec := newContext()
	err := HandleAppError(c, assert.AnError)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, rec.Body.Len())
}
