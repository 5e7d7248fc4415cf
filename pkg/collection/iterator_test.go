package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keeldata/keel/pkg/collection"
	"github.com/keeldata/keel/pkg/model"
)

func TestValuesIteration(t *testing.T) {
	a, b := book("a", nil), book("b", nil)
	c := books(a, b)

	it := c.Values()

	entry, ok := it.Next()
	require.True(t, ok)
	assert.Same(t, a, entry.Model)
	assert.Empty(t, entry.Key)

	entry, ok = it.Next()
	require.True(t, ok)
	assert.Same(t, b, entry.Model)

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestKeysIteration(t *testing.T) {
	a := book("a", nil)
	unsaved := model.New(model.Attrs{"title": "no id"})
	c := books(a, unsaved)

	it := c.Keys()

	entry, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "a", entry.Key)
	assert.Nil(t, entry.Model)

	// Models without a server id key by cid.
	entry, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, unsaved.CID(), entry.Key)
}

func TestEntriesIteration(t *testing.T) {
	a := book("a", nil)
	c := books(a)

	it := c.Entries()

	entry, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "a", entry.Key)
	assert.Same(t, a, entry.Model)
}

func TestIteratorIsPermanentlyExhausted(t *testing.T) {
	c := books(book("a", nil))

	it := c.Values()
	_, ok := it.Next()
	require.True(t, ok)
	_, ok = it.Next()
	require.False(t, ok)

	// Growing the collection does not revive a finished iterator.
	c.AddOne(book("b", nil))
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestExhaustedIteratorOverEmptyCollection(t *testing.T) {
	c := collection.New()

	it := c.Values()
	_, ok := it.Next()
	require.False(t, ok)

	c.AddOne(book("a", nil))
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestIteratorReadsLive(t *testing.T) {
	a, b, d := book("a", nil), book("b", nil), book("d", nil)
	c := books(a, b, d)

	it := c.Values()
	entry, _ := it.Next()
	assert.Same(t, a, entry.Model)

	// Removing the first model shifts the tail under the cursor.
	c.RemoveOne(a)

	entry, ok := it.Next()
	require.True(t, ok)
	assert.Same(t, d, entry.Model)

	_, ok = it.Next()
	assert.False(t, ok)
}

func TestSeq(t *testing.T) {
	a, b := book("a", nil), book("b", nil)
	c := books(a, b)

	var seen []*model.Model
	for entry := range c.Values().Seq() {
		seen = append(seen, entry.Model)
	}

	assert.Equal(t, []*model.Model{a, b}, seen)
}

func TestSeqEarlyBreakConsumesTheCursor(t *testing.T) {
	a, b := book("a", nil), book("b", nil)
	c := books(a, b)

	it := c.Values()
	for range it.Seq() {
		break
	}

	// The underlying cursor advanced past the first model.
	entry, ok := it.Next()
	require.True(t, ok)
	assert.Same(t, b, entry.Model)
}
