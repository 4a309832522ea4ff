package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLinkOutcome(t *testing.T) {
	cases := []struct {
		status   string
		expected LinkOutcome
	}{
		{"paid", LinkOutcomePaid},
		{"expired", LinkOutcomeExpired},
		{"cancelled", LinkOutcomeCancelled},
		{"created", LinkOutcomeUnknown},
		{"", LinkOutcomeUnknown},
		{"PAID", LinkOutcomeUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, ParseLinkOutcome(tc.status), "status %q", tc.status)
	}
}

func TestLinkOutcomeString(t *testing.T) {
	assert.Equal(t, "paid", LinkOutcomePaid.String())
	assert.Equal(t, "expired", LinkOutcomeExpired.String())
	assert.Equal(t, "cancelled", LinkOutcomeCancelled.String())
	assert.Equal(t, "unknown", LinkOutcomeUnknown.String())
}
