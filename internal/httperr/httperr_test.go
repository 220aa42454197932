package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Respond(c, err)
	return w, c
}

func TestRespond_Kinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrValidation("invalid_date"), http.StatusBadRequest, "invalid_date"},
		{ErrBusiness("slot_unavailable"), http.StatusBadRequest, "slot_unavailable"},
		{ErrNotFound("appointment_not_found"), http.StatusNotFound, "appointment_not_found"},
		{ErrForbidden("not_owner"), http.StatusForbidden, "not_owner"},
		{ErrExternal("refund_failed", errors.New("timeout")), http.StatusInternalServerError, "refund_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w, _ := respond(t, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.code)

		var body HTTPError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code)
		assert.NotEmpty(t, body.Message)
	}
}

func TestRespond_ValidationIsNotRecorded(t *testing.T) {
	_, c := respond(t, ErrValidation("invalid_request"))
	assert.Empty(t, c.Errors)

	_, c = respond(t, ErrBusiness("too_late"))
	assert.Len(t, c.Errors, 1)
}

func TestIsBusiness_Wrapped(t *testing.T) {
	err := fmt.Errorf("approve: %w", ErrBusiness("already_processed"))
	assert.True(t, IsBusiness(err, "already_processed"))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindNotFound))
}

func TestErrExternal_Unwraps(t *testing.T) {
	cause := errors.New("gateway down")
	err := ErrExternal("refund_failed", cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_appointments_active_slot"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "ux_appointments_active_slot"))
	assert.False(t, IsUniqueViolation(err, "other"))
	assert.False(t, IsUniqueViolation(errors.New("x"), ""))
}
