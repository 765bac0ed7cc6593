package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrNotFound.WithDetails("candidate missing")

	assert.Nil(t, ErrNotFound.Details)
	assert.Equal(t, "candidate missing", withDetails.Details)
	assert.True(t, errors.Is(withDetails, ErrNotFound))
	assert.False(t, errors.Is(withDetails, ErrConflict))
}

func TestIsAPIError_Wrapped(t *testing.T) {
	err := fmt.Errorf("unlock: %w", ErrInsufficientCredits.WithDetails("balance 0"))

	apiErr, ok := IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Equal(t, "INSUFFICIENT_CREDITS", apiErr.Code)

	_, ok = IsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, 10, p.Offset())

	empty := NewPagination(0, 0, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, DefaultPage, empty.CurrentPage)
	assert.False(t, empty.HasNext)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(-1, 1000)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, MaxPageSize, size)
}
