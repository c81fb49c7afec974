package shared

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("loading creator: %w", NewDomainError("NOT_FOUND", "Creator not found"))

	de, ok := AsDomainError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "Creator not found", de.Error())

	_, ok = AsDomainError(fmt.Errorf("plain"))
	assert.False(t, ok)
}
