package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReturnsDistinctNonEmptyIDs(t *testing.T) {
	a := New()
	b := New()

	assert.NotEmpty(t, a)
	assert.NotEmpty(t, b)
	assert.NotEqual(t, a, b)
}
