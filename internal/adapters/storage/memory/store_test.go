package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "lastViewedQuoteText")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "lastViewedQuoteText", []byte(`"a" — [b]`)))

	v, ok, err := s.Get(ctx, "lastViewedQuoteText")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"a" — [b]`, string(v))

	require.NoError(t, s.Delete(ctx, "lastViewedQuoteText"))

	_, ok, err = s.Get(ctx, "lastViewedQuoteText")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CopiesValues(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'z'

	out, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = s.Set(ctx, "k", []byte{byte(i)})
			_, _, _ = s.Get(ctx, "k")
		}()
	}

	wg.Wait()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
