package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanMoveTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusApplied, StatusReviewing, true},
		{StatusReviewing, StatusInterview, true},
		{StatusInterview, StatusOffered, true},
		{StatusOffered, StatusHired, true},
		{StatusApplied, StatusInterview, false},
		{StatusReviewing, StatusApplied, false},
		{StatusApplied, StatusRejected, true},
		{StatusOffered, StatusRejected, true},
		{StatusHired, StatusRejected, false},
		{StatusRejected, StatusReviewing, false},
		{StatusWithdrawn, StatusReviewing, false},
		{StatusApplied, StatusWithdrawn, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanMoveTo(tt.to))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusHired.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusWithdrawn.IsTerminal())
	assert.False(t, StatusOffered.IsTerminal())
}
