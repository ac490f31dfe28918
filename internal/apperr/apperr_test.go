package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:     http.StatusBadRequest,
		KindAuthentication: http.StatusUnauthorized,
		KindAuthorization:  http.StatusForbidden,
		KindNotFound:       http.StatusNotFound,
		KindConflict:       http.StatusConflict,
		KindUpstream:       http.StatusInternalServerError,
		KindInternal:       http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestFromUnwrapsClassifiedErrors(t *testing.T) {
	sentinel := Conflict("wallet_exists", "Wallet already exists")
	wrapped := fmt.Errorf("create wallet: %w", sentinel)

	got := From(wrapped)
	assert.Same(t, sentinel, got)
	assert.True(t, errors.Is(wrapped, sentinel))
}

func TestFromHidesUnknownErrors(t *testing.T) {
	got := From(errors.New("connection refused"))
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, "internal_error", got.Code)
	assert.Equal(t, "Internal server error", got.Message)
}

func TestUpstreamKeepsProcessorMessage(t *testing.T) {
	got := Upstream(errors.New("paypal: INSTRUMENT_DECLINED"))
	assert.Equal(t, "paypal: INSTRUMENT_DECLINED", got.Message)
	assert.Equal(t, "processor_error", got.Code)
}

func TestWrapKeepsClassification(t *testing.T) {
	base := NotFound("wallet_not_found", "Wallet not found")
	cause := errors.New("record not found")
	got := base.Wrap(cause)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.ErrorIs(t, got, cause)
}
