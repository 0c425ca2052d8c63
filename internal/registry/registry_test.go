package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := New[int]()
	r.Add("b", 2)
	r.Add("a", 1)

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, r.Names())

	v, loaded := r.GetOrAdd("a", func() int { return 99 })
	assert.True(t, loaded)
	assert.Equal(t, 1, v)

	v, loaded = r.GetOrAdd("c", func() int { return 3 })
	assert.False(t, loaded)
	assert.Equal(t, 3, v)

	r.Del("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
}
