package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

func TestNewSessionStore(t *testing.T) {
	store := NewSessionStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.sessions)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_GetOrCreate_CreatesEmptySession(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	key := domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"}

	session, err := store.GetOrCreate(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, key, session.Key())
	assert.False(t, session.HasVisited())
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_GetOrCreate_ReturnsSameSession(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	key := domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"}

	first, err := store.GetOrCreate(ctx, key)
	require.NoError(t, err)
	first.Merge([]string{"https://example.com"}, nil, time.Now())

	second, err := store.GetOrCreate(ctx, key)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, second.HasVisited())
}

func TestSessionStore_KeysAreExact(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	lower, err := store.GetOrCreate(ctx, domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"})
	require.NoError(t, err)
	upper, err := store.GetOrCreate(ctx, domain.SessionKey{BaseURL: "https://example.com", SearchText: "Go"})
	require.NoError(t, err)

	assert.NotSame(t, lower, upper)
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_GetOrCreate_Concurrent(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	key := domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"}

	var wg sync.WaitGroup
	sessions := make([]*domain.SearchSession, 20)
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := store.GetOrCreate(ctx, key)
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range sessions {
		assert.Same(t, sessions[0], s)
	}
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_Get_NotFound(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Get(context.Background(), domain.SessionKey{BaseURL: "x", SearchText: "y"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_Save(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	key := domain.SessionKey{BaseURL: "https://example.com", SearchText: "go"}

	session := domain.NewSearchSession(key)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Same(t, session, got)
}

func TestSessionStore_Save_Nil(t *testing.T) {
	store := NewSessionStore()
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestSessionStore_List_OrderedByLastUpdated(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	keys := []domain.SessionKey{
		{BaseURL: "https://a.example", SearchText: "old"},
		{BaseURL: "https://b.example", SearchText: "new"},
		{BaseURL: "https://c.example", SearchText: "middle"},
	}
	times := []time.Time{base, base.Add(2 * time.Hour), base.Add(time.Hour)}
	for i, key := range keys {
		s, err := store.GetOrCreate(ctx, key)
		require.NoError(t, err)
		s.Merge([]string{key.BaseURL}, nil, times[i])
	}

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, "new", sessions[0].Key().SearchText)
	assert.Equal(t, "middle", sessions[1].Key().SearchText)
	assert.Equal(t, "old", sessions[2].Key().SearchText)
}

func TestSessionStore_List_StableForTies(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	for _, text := range []string{"b", "a", "c"} {
		_, err := store.GetOrCreate(ctx, domain.SessionKey{BaseURL: "https://example.com", SearchText: text})
		require.NoError(t, err)
	}

	first, err := store.List(ctx)
	require.NoError(t, err)
	second, err := store.List(ctx)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, "a", first[0].Key().SearchText)
	assert.Equal(t, "b", first[1].Key().SearchText)
	assert.Equal(t, "c", first[2].Key().SearchText)
	assert.Equal(t, first, second)
}

func TestSessionStore_List_Empty(t *testing.T) {
	store := NewSessionStore()

	sessions, err := store.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, sessions)
}
