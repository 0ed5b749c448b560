package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletedIDs_Mark(t *testing.T) {
	id := uuid.New()
	client, mock := redismock.NewClientMock()
	d := NewDeletedIDs(client, 5*time.Minute)

	mock.ExpectSet("schedule_deleted:"+id.String(), "1", 5*time.Minute).SetVal("OK")

	require.NoError(t, d.Mark(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletedIDs_IsDeleted(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	key := "schedule_deleted:" + id.String()

	t.Run("Marked", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		d := NewDeletedIDs(client, time.Minute)
		mock.ExpectExists(key).SetVal(1)

		deleted, err := d.IsDeleted(ctx, id)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unmarked", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		d := NewDeletedIDs(client, time.Minute)
		mock.ExpectExists(key).SetVal(0)

		deleted, err := d.IsDeleted(ctx, id)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		d := NewDeletedIDs(client, time.Minute)
		mock.ExpectExists(key).SetErr(errors.New("connection refused"))

		_, err := d.IsDeleted(ctx, id)
		assert.EqualError(t, err, "connection refused")
	})
}
