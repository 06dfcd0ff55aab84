package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_Unwrap(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusUnauthorized, ErrForbidden},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusConflict, ErrBadRequest},
		{http.StatusBadGateway, ErrUnavailable},
	}
	for _, tc := range cases {
		err := fmt.Errorf("wrapped: %w", &UpstreamError{System: "dokarkiv", Status: tc.status})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
	}

	var ue *UpstreamError
	err := fmt.Errorf("x: %w", &UpstreamError{System: "saf", Status: 400, Reason: "ugyldig journalpostId"})
	if assert.True(t, errors.As(err, &ue)) {
		assert.Equal(t, 400, ue.Status)
		assert.Contains(t, ue.Error(), "ugyldig journalpostId")
	}
	assert.Nil(t, (&UpstreamError{Status: 302}).Unwrap())
}
