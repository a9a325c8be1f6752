package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoped_GetOrBuild(t *testing.T) {
	c := New[*int]()
	builds := 0
	build := func() (*int, error) {
		builds++
		v := builds
		return &v, nil
	}

	a, err := c.GetOrBuild("t1", "k", build)
	require.NoError(t, err)
	b, err := c.GetOrBuild("t1", "k", build)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, builds)

	other, err := c.GetOrBuild("t2", "k", build)
	require.NoError(t, err)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, c.Len())
}

func TestScoped_BuildErrorNotCached(t *testing.T) {
	c := New[string]()
	calls := 0
	_, err := c.GetOrBuild("t", "k", func() (string, error) {
		calls++
		return "", errors.New("boom")
	})
	assert.Error(t, err)

	v, err := c.GetOrBuild("t", "k", func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestScoped_ClearScopeOnly(t *testing.T) {
	c := New[string]()
	_, _ = c.GetOrBuild("t1", "a", func() (string, error) { return "1", nil })
	_, _ = c.GetOrBuild("t2", "a", func() (string, error) { return "2", nil })

	c.Clear("t1")

	_, ok := c.Get("t1", "a")
	assert.False(t, ok)
	v, ok := c.Get("t2", "a")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	c.ClearAll()
	assert.Equal(t, 0, c.Len())
}

func TestScoped_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	c := New[int]()
	var builds atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrBuild("t", "k", func() (int, error) {
				builds.Add(1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
}

func TestScoped_ClearDuringBuildDropsStaleValue(t *testing.T) {
	c := New[int]()
	_, err := c.GetOrBuild("t", "k", func() (int, error) {
		c.Clear("t")
		return 1, nil
	})
	require.NoError(t, err)

	_, ok := c.Get("t", "k")
	assert.False(t, ok)
}
