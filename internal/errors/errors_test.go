package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = New("sentinel")

func TestWrapPreservesIdentity(t *testing.T) {
	err := Wrapf(errSentinel, "read %s", "mapping.json")
	require.Error(t, err)

	assert.True(t, Is(err, errSentinel))
	assert.Contains(t, err.Error(), "read mapping.json")
}

func TestHints(t *testing.T) {
	err := WithHint(New("bad input"), "check the file extension")

	assert.Equal(t, []string{"check the file extension"}, GetAllHints(err))
	assert.Equal(t, "check the file extension", FlattenHints(err))
}

func TestMark(t *testing.T) {
	err := Mark(New("row 2: CongaField is required"), errSentinel)

	assert.True(t, Is(err, errSentinel))
}
