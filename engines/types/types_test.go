package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]Type{
		"starlark": Starlark,
		" Risor ":  Risor,
		"EXTISM":   Extism,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := Parse("python")
	require.Error(t, err)
	assert.Len(t, All(), 3)
	assert.Equal(t, "risor", Risor.String())
}
