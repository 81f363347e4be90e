package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-triage/internal/session"
)

func newSession(sub, token string) session.Session {
	return session.Session{
		Credentials: session.Credentials{
			Token:        token,
			RefreshToken: "refresh-" + token,
			TokenURI:     "https://oauth2.googleapis.com/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/gmail.readonly"},
			Expiry:       time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		Profile: session.Profile{
			Email:   sub + "@example.com",
			Name:    "User " + sub,
			Picture: "https://example.com/" + sub + ".png",
			Sub:     sub,
		},
	}
}

func TestStores(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	stores := map[string]session.Store{
		"memory": session.NewMemory(0),
		"redis":  session.NewRedis(rdb, 0),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "unknown")
			require.ErrorIs(t, err, session.ErrNotAuthenticated)

			first := newSession("u-1", "tok-1")
			require.NoError(t, store.Put(ctx, "u-1", first))

			got, err := store.Get(ctx, "u-1")
			require.NoError(t, err)
			assert.Equal(t, first, got)

			second := newSession("u-1", "tok-2")
			require.NoError(t, store.Put(ctx, "u-1", second))

			got, err = store.Get(ctx, "u-1")
			require.NoError(t, err)
			assert.Equal(t, "tok-2", got.Credentials.Token, "last login wins")

			_, err = store.Get(ctx, "u-2")
			require.ErrorIs(t, err, session.ErrNotAuthenticated)
		})
	}
}

func TestRedisTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := session.NewRedis(rdb, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u-1", newSession("u-1", "tok")))
	assert.Equal(t, time.Hour, mr.TTL("mail-triage:session:u-1"))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "u-1")
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestRedisCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, mr.Set("mail-triage:session:u-1", "{not json"))

	_, err := session.NewRedis(rdb, 0).Get(context.Background(), "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	store := session.NewMemory(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := newSession("shared", "tok")
			s.Credentials.Token = string(rune('a' + i%26))
			_ = store.Put(ctx, "shared", s)
			_, _ = store.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}
