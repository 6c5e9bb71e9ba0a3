package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/paperstack-cli/internal/stack"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := Session{ID: "a", State: AwaitingTechnology, Paper: "p.pdf"}
	require.NoError(t, store.Save(ctx, s))
	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(db, time.Hour)
	ctx := context.TODO()

	s := Session{ID: "abc", State: Done, Paper: "p.pdf", Technology: stack.Django,
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	mock.ExpectSet("paperstack:session:abc", string(data), time.Hour).SetVal("OK")
	assert.NoError(t, store.Save(ctx, s))

	mock.ExpectSet("paperstack:session:abc", string(data), time.Hour).SetErr(errors.New("redis error"))
	err = store.Save(ctx, s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis set failure")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRedisStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(db, time.Hour)
	ctx := context.TODO()

	mock.ExpectGet("paperstack:session:abc").SetVal(`{"id":"abc","state":"awaiting_technology","paper":"p.pdf","updated_at":"2024-01-02T03:04:05Z"}`)
	s, err := store.Load(ctx, "abc")
	assert.NoError(t, err)
	assert.Equal(t, AwaitingTechnology, s.State)
	assert.Equal(t, "p.pdf", s.Paper)

	mock.ExpectGet("paperstack:session:gone").RedisNil()
	_, err = store.Load(ctx, "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet("paperstack:session:abc").SetErr(errors.New("redis error"))
	_, err = store.Load(ctx, "abc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis get failure")

	mock.ExpectGet("paperstack:session:bad").SetVal("{not json")
	_, err = store.Load(ctx, "bad")
	assert.Error(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRedisStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStoreWithClient(db, time.Hour)

	mock.ExpectDel("paperstack:session:abc").SetVal(1)
	assert.NoError(t, store.Delete(context.TODO(), "abc"))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
