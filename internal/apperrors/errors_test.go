package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrUpstreamAuth, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrDomainNotAllowed, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{New(ErrValidation, "Title is required"), http.StatusBadRequest},
		{ErrDuplicateEmail, http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusBadRequest},
		{fmt.Errorf("save: %w", ErrStorageUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Title is required", Message(New(ErrValidation, "Title is required")))
	assert.Equal(t, "Invalid creds", Message(fmt.Errorf("login: %w", ErrInvalidCredentials)))
	assert.Equal(t, "Server error", Message(errors.New("driver exploded")))

	err := Newf(ErrNotFound, "%s not found", "User")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "User not found", Message(err))
}
