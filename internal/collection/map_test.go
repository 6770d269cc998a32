package collection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMapBasics(t *testing.T) {
	m := NewSyncMap[string, int]()

	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Put("a", 1)
	m.Put("b", 2)
	value, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, value)
	assert.Equal(t, 2, m.Len())

	m.Delete("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestSyncMapRangeAllowsMutation(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)

	m.Range(func(key string, _ int) bool {
		m.Delete(key)
		return true
	})
	assert.Equal(t, 0, m.Len())
}

func TestSyncMapConcurrentAccess(t *testing.T) {
	m := NewSyncMap[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Put(i, i)
			m.Get(i)
			m.Len()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 32, m.Len())
}
