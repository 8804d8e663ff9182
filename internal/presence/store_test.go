package presence

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatSetsTTLKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(client)
	driverID := uuid.New()

	mock.ExpectSet(fmt.Sprintf("presence:driver:%s", driverID), "1", HeartbeatTTL).SetVal("OK")

	err := store.Heartbeat(context.Background(), driverID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOfflineDeletesKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(client)
	driverID := uuid.New()

	mock.ExpectDel(fmt.Sprintf("presence:driver:%s", driverID)).SetVal(1)

	err := store.SetOffline(context.Background(), driverID)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsOnline(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(client)
	driverID := uuid.New()
	k := fmt.Sprintf("presence:driver:%s", driverID)

	mock.ExpectExists(k).SetVal(1)
	online, err := store.IsOnline(context.Background(), driverID)
	require.NoError(t, err)
	assert.True(t, online)

	mock.ExpectExists(k).SetVal(0)
	online, err = store.IsOnline(context.Background(), driverID)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, mock.ExpectationsWereMet())
}
