package middleware

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ghaggin/coachportal/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server, e.g. COACHPORTAL_TEST_REDIS=localhost:6379.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("COACHPORTAL_TEST_REDIS")
	if addr == "" {
		t.Skip("COACHPORTAL_TEST_REDIS not set")
	}

	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	store, err := NewRedisStore(config.Redis{Addr: addr})
	require.NoError(err)
	defer store.Close()

	token := uuid.NewString()

	_, found, err := store.FindCtx(ctx, token)
	require.NoError(err)
	assert.False(found)

	require.NoError(store.CommitCtx(ctx, token, []byte("data"), time.Now().Add(time.Minute)))
	b, found, err := store.FindCtx(ctx, token)
	require.NoError(err)
	assert.True(found)
	assert.Equal([]byte("data"), b)

	require.NoError(store.Delete(token))
	_, found, err = store.Find(token)
	require.NoError(err)
	assert.False(found)

	// an expiry in the past removes the entry
	require.NoError(store.Commit(token, []byte("data"), time.Now().Add(time.Minute)))
	require.NoError(store.Commit(token, []byte("data"), time.Now().Add(-time.Second)))
	_, found, err = store.Find(token)
	require.NoError(err)
	assert.False(found)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := NewRedisStore(config.Redis{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
