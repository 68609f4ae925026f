package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMap_SetGet(t *testing.T) {
	m := NewMap[string, int]()

	m.Set("a", 1, 0)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMap_TTLExpiry(t *testing.T) {
	m := NewMap[string, int]()

	m.Set("a", 1, 10*time.Millisecond)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	time.Sleep(20 * time.Millisecond)
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMap_ZeroTTLNeverExpires(t *testing.T) {
	m := NewMap[string, int]()

	m.Set("a", 1, 0)
	time.Sleep(5 * time.Millisecond)
	_, ok := m.Get("a")
	assert.True(t, ok)
}

func TestMap_Delete(t *testing.T) {
	m := NewMap[string, int]()

	m.Set("a", 1, 0)
	m.Delete("a")
	_, ok := m.Get("a")
	assert.False(t, ok)
}

func TestMap_Overwrite(t *testing.T) {
	m := NewMap[string, int]()

	m.Set("a", 1, 0)
	m.Set("a", 2, 0)
	v, _ := m.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, m.Len())
}
