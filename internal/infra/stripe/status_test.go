package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"":                   StatusIncomplete,
		"active":             StatusActive,
		"trialing":           StatusTrialing,
		"past_due":           StatusPastDue,
		"unpaid":             StatusPastDue,
		"canceled":           StatusCanceled,
		"incomplete_expired": StatusCanceled,
		"incomplete":         "incomplete",
		" active ":           StatusActive,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeStatus(in), "input %q", in)
	}
}

func TestIsActiveStatus(t *testing.T) {
	assert.True(t, IsActiveStatus(StatusActive))
	assert.True(t, IsActiveStatus(StatusTrialing))
	assert.False(t, IsActiveStatus(StatusPastDue))
	assert.False(t, IsActiveStatus(StatusCanceled))
	assert.False(t, IsActiveStatus(StatusIncomplete))
}
