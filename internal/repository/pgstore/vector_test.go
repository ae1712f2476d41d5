package pgstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorLiteral(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "[]", vectorLiteral(nil))
	assert.Equal(t, "[1,-0.5,0.25]", vectorLiteral([]float32{1, -0.5, 0.25}))

	v, err := parseVector("[1,-0.5,0.25]")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -0.5, 0.25}, v)

	_, err = parseVector("[1,x]")
	assert.Error(t, err)
}
