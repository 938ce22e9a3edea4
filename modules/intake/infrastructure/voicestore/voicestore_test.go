package voicestore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/intake/infrastructure/voicestore"
)

func TestInMemoryStore_PutAndGet(t *testing.T) {
	t.Parallel()

	store := voicestore.NewInMemoryStore()
	link, err := store.Put(context.Background(), "SF-20250401-00001.wav", []byte{1, 2, 3}, "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, "mem://SF-20250401-00001.wav", link)

	data, found := store.Get("SF-20250401-00001.wav")
	require.True(t, found)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, found = store.Get("missing")
	assert.False(t, found)
}

func TestInMemoryStore_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	store := voicestore.NewInMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("SF-20250401-%05d.wav", n)
			_, err := store.Put(ctx, key, []byte{byte(n)}, "audio/wav")
			assert.NoError(t, err)
			store.Get(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		_, found := store.Get(fmt.Sprintf("SF-20250401-%05d.wav", i))
		assert.True(t, found)
	}
}
