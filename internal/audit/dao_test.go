package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubctl/internal/publish"
)

func TestDAO_RecordAndList(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := dao.Record(ctx, Action{Project: "app", Operation: OperationSet, Channel: "production", PublicationID: "p1", Success: true, CreatedAt: base})
	require.NoError(t, err)
	_, err = dao.Record(ctx, Action{Project: "app", Operation: OperationRollback, ChannelID: "c2", FailureReason: "boom", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = dao.Record(ctx, Action{Project: "other", Operation: OperationSet, CreatedAt: base})
	require.NoError(t, err)

	actions, err := dao.List(ctx, "app", 10)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, OperationRollback, actions[0].Operation, "newest first")
	assert.False(t, actions[0].Success)
	assert.Equal(t, "boom", actions[0].FailureReason)
	assert.Equal(t, "c2", actions[0].ChannelID)
	assert.True(t, actions[0].CreatedAt.Equal(base.Add(time.Minute)))

	assert.Equal(t, "p1", actions[1].PublicationID)
	assert.True(t, actions[1].Success)
	assert.Empty(t, actions[1].FailureReason)

	limited, err := dao.List(ctx, "app", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDAO_RecordStampsTime(t *testing.T) {
	dao := newTestDAO(t)
	now := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	dao.now = func() time.Time { return now }

	_, err := dao.Record(context.Background(), Action{Project: "app", Operation: OperationSet})
	require.NoError(t, err)

	actions, err := dao.List(context.Background(), "app", 1)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.True(t, actions[0].CreatedAt.Equal(now))
}

func TestDAO_RecordRequiresProjectAndOperation(t *testing.T) {
	dao := newTestDAO(t)
	_, err := dao.Record(context.Background(), Action{Operation: OperationSet})
	assert.Error(t, err)
	_, err = dao.Record(context.Background(), Action{Project: "app"})
	assert.Error(t, err)
}

func TestDAO_Prune(t *testing.T) {
	dao := newTestDAO(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dao.now = func() time.Time { return now }

	// two stale actions, five recent ones
	for i := 0; i < 2; i++ {
		_, err := dao.Record(ctx, Action{Project: "app", Operation: OperationSet, CreatedAt: now.Add(-100 * 24 * time.Hour)})
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, err := dao.Record(ctx, Action{Project: "app", Operation: OperationSet, CreatedAt: now.Add(-time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	results, err := dao.Prune(ctx, RetentionConfig{MaxAge: 90 * 24 * time.Hour, MaxRecordsPerProject: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), results["time_based"])
	assert.Equal(t, int64(2), results["count_based"])

	actions, err := dao.List(ctx, "app", 100)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.True(t, actions[0].CreatedAt.Equal(now))
}

func TestDAO_PruneDisabled(t *testing.T) {
	dao := newTestDAO(t)
	_, err := dao.Record(context.Background(), Action{Project: "app", Operation: OperationSet, CreatedAt: time.Unix(0, 1)})
	require.NoError(t, err)

	results, err := dao.Prune(context.Background(), RetentionConfig{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMutator_RecordsWrites(t *testing.T) {
	dao := newTestDAO(t)
	stub := &publish.StubMutator{RollbackError: errors.New("remote down")}
	m := NewMutator(stub, dao, "app", nil)
	ctx := context.Background()

	_, err := m.SetChannelToPublication(ctx, "production", "p1")
	require.NoError(t, err)
	_, err = m.RollbackChannel(ctx, "c2")
	require.EqualError(t, err, "remote down")

	actions, err := dao.List(ctx, "app", 10)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, OperationRollback, actions[0].Operation)
	assert.False(t, actions[0].Success)
	assert.Equal(t, "remote down", actions[0].FailureReason)
	assert.Equal(t, OperationSet, actions[1].Operation)
	assert.True(t, actions[1].Success)
	assert.Equal(t, "production", actions[1].Channel)
}

func TestMutator_SkipsRejectedWrites(t *testing.T) {
	dao := newTestDAO(t)
	stub := &publish.StubMutator{SetError: publish.InvalidArgument("you must specify a release channel")}
	m := NewMutator(stub, dao, "app", nil)

	_, err := m.SetChannelToPublication(context.Background(), "", "p1")
	assert.ErrorIs(t, err, publish.ErrInvalidArgument)

	actions, err := dao.List(context.Background(), "app", 10)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
