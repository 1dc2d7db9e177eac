package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("book: %w", NotFound("Mechanic not found: %s", "Zed"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Mechanic not found: Zed", MessageOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "Internal server error", MessageOf(err))
}

func TestStoreClassification(t *testing.T) {
	assert.Nil(t, Store(nil))
	assert.Equal(t, KindTransport, Store(context.DeadlineExceeded).Kind)
	assert.Equal(t, KindInternal, Store(errors.New("write conflict")).Kind)

	noop := NoOp("already")
	assert.Same(t, noop, Store(noop))
}

func TestTransportUnwraps(t *testing.T) {
	err := Transport(context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "Database unavailable")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:    http.StatusBadRequest,
		KindInvalidID:     http.StatusBadRequest,
		KindNotFound:      http.StatusNotFound,
		KindNoOp:          http.StatusConflict,
		KindInconsistency: http.StatusInternalServerError,
		KindTransport:     http.StatusServiceUnavailable,
		KindInternal:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
