package tracking

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateShape(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]struct{})
	for range 200 {
		tn, err := g.Generate()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(tn, DefaultPrefix))
		assert.Len(t, tn, len(DefaultPrefix)+DefaultLength)
		assert.True(t, g.Valid(tn), tn)
		seen[tn] = struct{}{}
	}

	// 32^8 combinations; a duplicate in 200 draws would point at a broken source.
	assert.Len(t, seen, 200)
}

func TestGenerateDeterministicEntropy(t *testing.T) {
	entropy := bytes.Repeat([]byte{0x00}, 64)

	a, err := NewGenerator(WithEntropy(bytes.NewReader(entropy)), WithLength(4)).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(WithEntropy(bytes.NewReader(entropy)), WithLength(4)).Generate()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "BG2222", a)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestGenerateEntropyError(t *testing.T) {
	_, err := NewGenerator(WithEntropy(failingReader{})).Generate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestValid(t *testing.T) {
	g := NewGenerator()

	assert.True(t, g.Valid("BG23456789"))
	assert.False(t, g.Valid("BG2345678"))
	assert.False(t, g.Valid("XX23456789"))
	assert.False(t, g.Valid("BG2345678O"))
	assert.False(t, g.Valid("bg23456789"))
}
