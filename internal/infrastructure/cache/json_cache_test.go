package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Total string `json:"total"`
}

func TestInMemoryJSONCache_SetGet(t *testing.T) {
	c := NewInMemoryJSONCache()
	defer c.Close()
	ctx := context.Background()

	var got sample
	found, err := c.Get(ctx, "metrics", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "metrics", sample{Name: "jan", Total: "100.00"}, time.Minute))
	found, err = c.Get(ctx, "metrics", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "100.00", got.Total)

	assert.Equal(t, Stats{Hits: 1, Misses: 1}, c.Stats())
}

func TestInMemoryJSONCache_Expiry(t *testing.T) {
	c := NewInMemoryJSONCache()
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", sample{Name: "a"}, time.Minute))
	now = now.Add(2 * time.Minute)

	var got sample
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryJSONCache_ValuesAreCopied(t *testing.T) {
	c := NewInMemoryJSONCache()
	defer c.Close()
	ctx := context.Background()

	v := &sample{Name: "original"}
	require.NoError(t, c.Set(ctx, "k", v, time.Minute))
	v.Name = "mutated"

	var got sample
	_, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Name)

	require.NoError(t, c.Delete(ctx, "k"))
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
