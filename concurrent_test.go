package multikey

import (
	"bytes"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestConcurrent_ParallelWritersAndReaders(t *testing.T) {
	defer goleak.VerifyNone(t)

	c, err := NewConcurrent[string, int]([]string{"A", "B"})
	require.NoError(t, err)

	const writers, perWriter = 8, 200

	var g errgroup.Group
	for w := range writers {
		g.Go(func() error {
			for i := range perWriter {
				key := fmt.Sprintf("w%d-%d", w, i)
				id, err := c.Add(map[string]string{"A": key}, i)
				if err != nil {
					return err
				}
				if err := c.SetKey(id, "B", key); err != nil {
					return err
				}
				if i%2 == 0 {
					if _, err := c.Pop("B", key); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	for range 4 {
		g.Go(func() error {
			for range perWriter {
				_, _ = c.Get("A", "w0-1", -1)
				_, _ = c.HasKey("B", "w1-1")
				_ = c.Len()
				for range c.Values() {
				}
				for range c.All() {
				}
				items, err := c.Items("A")
				if err != nil {
					return err
				}
				for range items {
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, writers*perWriter/2, c.Len())
	require.NoError(t, c.Read(func(s *Store[string, int]) error {
		requireConsistent(t, s)
		return nil
	}))
}

func TestConcurrent_Delegates(t *testing.T) {
	c, err := NewConcurrent[string, string]([]string{"A", "B"}, WithIDGenerator(NewSequenceGenerator("")))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, c.KeySpaces())
	assert.True(t, c.HasKeySpace("A"))
	assert.Equal(t, "multikey.Store[A B]", c.String())

	id, err := c.Add(map[string]string{"A": "x"}, "v")
	require.NoError(t, err)

	v, err := c.Lookup("A", "x")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	got, err := c.GetID("A", "x")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.NoError(t, c.Set("A", "x", "w"))
	require.NoError(t, c.SetKey(id, "B", "y"))

	dict, err := c.GetDict("B")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"y": "w"}, dict)

	keys, err := c.Keys("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, keys)

	record, err := c.KeysOf(id)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "x", "B": "y"}, record)

	assert.Equal(t, []string{"w"}, slices.Collect(c.Values()))

	var buf bytes.Buffer
	require.NoError(t, c.Save(&buf))
	loaded, err := Load[string, string](&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())

	v, err = c.Pop("B", "y")
	require.NoError(t, err)
	assert.Equal(t, "w", v)

	_, err = c.Add(map[string]string{"A": "z"}, "z")
	require.NoError(t, err)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestConcurrent_IterationCopies(t *testing.T) {
	c, err := NewConcurrent[string, int]([]string{"A", "B"}, WithIDGenerator(NewSequenceGenerator("id-")))
	require.NoError(t, err)
	for i := range 3 {
		_, err := c.Add(map[string]string{"A": fmt.Sprint("a", i)}, i)
		require.NoError(t, err)
	}

	items, err := c.Items("A")
	require.NoError(t, err)

	// Writers do not block on a range in progress, and it keeps its copy.
	got := map[string]int{}
	for key, v := range items {
		got[key] = v
		_, err := c.Pop("A", key)
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{"a0": 0, "a1": 1, "a2": 2}, got)
	assert.Equal(t, 0, c.Len())

	for i := range 3 {
		_, err := c.Add(map[string]string{"B": fmt.Sprint("b", i)}, i*10)
		require.NoError(t, err)
	}

	var ids []ID
	var values []int
	for id, v := range c.All() {
		ids = append(ids, id)
		values = append(values, v)
		c.Clear()
	}
	assert.Equal(t, []ID{"id-4", "id-5", "id-6"}, ids)
	assert.Equal(t, []int{0, 10, 20}, values)

	_, err = c.Items("missing")
	assert.ErrorIs(t, err, ErrUnknownKeySpace)
}

func TestConcurrent_Update(t *testing.T) {
	c, err := NewConcurrent[string, int]([]string{"A", "B"})
	require.NoError(t, err)

	// Move a value between keys as one step.
	_, err = c.Add(map[string]string{"A": "old"}, 1)
	require.NoError(t, err)

	err = c.Update(func(s *Store[string, int]) error {
		v, err := s.Pop("A", "old")
		if err != nil {
			return err
		}
		_, err = s.Add(map[string]string{"A": "new"}, v+1)
		return err
	})
	require.NoError(t, err)

	v, err := c.Get("A", "new", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = NewConcurrent[string, int](nil)
	assert.ErrorIs(t, err, ErrNoKeySpaces)
}
