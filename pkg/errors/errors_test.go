package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/ccsfp/clinic-api/pkg/errors"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.Conflict("dup"), http.StatusConflict},
		{apperrors.NotFoundMsg("gone"), http.StatusNotFound},
		{apperrors.InvalidID("bad id"), http.StatusBadRequest},
		{apperrors.SlotTaken("taken"), http.StatusBadRequest},
		{apperrors.DuplicateBooking("dup"), http.StatusBadRequest},
		{apperrors.InvalidCredentials("nope"), http.StatusBadRequest},
		{apperrors.Validation([]string{"Age"}), http.StatusUnprocessableEntity},
		{apperrors.NotApproved("wait"), http.StatusForbidden},
		{apperrors.Internal(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, apperrors.HTTPStatus(tc.err), "error: %v", tc.err)
	}
}

func TestCodeUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", apperrors.Conflict("dup"))
	assert.Equal(t, apperrors.ErrConflict, apperrors.Code(wrapped))
	assert.True(t, apperrors.Is(wrapped, apperrors.ErrConflict))

	assert.Equal(t, apperrors.ErrInternal, apperrors.Code(errors.New("plain")))
}

func TestValidationMessageListsFields(t *testing.T) {
	err := apperrors.Validation([]string{"Age", "ContactNumber"})
	assert.EqualError(t, err, "validation failed: Age, ContactNumber")
	assert.Equal(t, []string{"Age", "ContactNumber"}, err.Fields)
}

func TestInternalHidesCauseInMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := apperrors.Internal(cause)
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}
