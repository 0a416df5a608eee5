package proposal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hvacpro/proposals/internal/proposal"
	"github.com/hvacpro/proposals/internal/proposal/mocks"
)

func draft(id, title string) proposal.Proposal {
	return proposal.Proposal{ID: id, Title: title}
}

type titleIs string

func (m titleIs) Matches(x any) bool {
	p, ok := x.(proposal.Proposal)
	return ok && p.Title == string(m)
}

func (m titleIs) String() string { return "has title " + string(m) }

func TestAutoSaverDebouncesToLatestVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	saved := make(chan proposal.Proposal, 1)
	saver.EXPECT().
		Save(gomock.Any(), titleIs("v3")).
		DoAndReturn(func(_ context.Context, p proposal.Proposal) error {
			saved <- p
			return nil
		}).
		Times(1)

	auto := proposal.NewAutoSaver(saver, 50*time.Millisecond, nil)
	id := uuid.NewString()
	for _, title := range []string{"v1", "v2", "v3"} {
		require.NoError(t, auto.Schedule(draft(id, title)))
	}
	assert.True(t, auto.Pending(id))

	select {
	case p := <-saved:
		assert.Equal(t, "v3", p.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("autosave did not fire")
	}
	require.NoError(t, auto.Flush(context.Background()))
	assert.False(t, auto.Pending(id))
	assert.NoError(t, auto.LastError(id))
}

func TestAutoSaverRecordsFailureWithoutRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)
	core, logs := observer.New(zap.ErrorLevel)

	failure := errors.New("disk full")
	id := uuid.NewString()
	saver.EXPECT().Save(gomock.Any(), titleIs("broken")).Return(failure).Times(1)

	auto := proposal.NewAutoSaver(saver, time.Hour, zap.New(core))
	require.NoError(t, auto.Schedule(draft(id, "broken")))
	require.NoError(t, auto.Flush(context.Background()))

	assert.ErrorIs(t, auto.LastError(id), failure)
	require.Equal(t, 1, logs.FilterMessage("autosave failed").Len())
	assert.Equal(t, id, logs.All()[0].ContextMap()["proposal_id"])

	saver.EXPECT().Save(gomock.Any(), titleIs("fixed")).Return(nil).Times(1)
	require.NoError(t, auto.Schedule(draft(id, "fixed")))
	require.NoError(t, auto.Flush(context.Background()))
	assert.NoError(t, auto.LastError(id))
}

func TestAutoSaverKeepsProposalsIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	saver.EXPECT().Save(gomock.Any(), titleIs("a")).Return(nil).Times(1)
	saver.EXPECT().Save(gomock.Any(), titleIs("b")).Return(nil).Times(1)

	auto := proposal.NewAutoSaver(saver, time.Hour, nil)
	require.NoError(t, auto.Schedule(draft(uuid.NewString(), "a")))
	require.NoError(t, auto.Schedule(draft(uuid.NewString(), "b")))
	require.NoError(t, auto.Flush(context.Background()))
}

func TestAutoSaverCancelDropsWaitingDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	id := uuid.NewString()
	other := uuid.NewString()
	saver.EXPECT().Save(gomock.Any(), titleIs("other")).Return(nil).Times(1)

	auto := proposal.NewAutoSaver(saver, time.Hour, nil)
	require.NoError(t, auto.Schedule(draft(id, "stale")))
	require.NoError(t, auto.Schedule(draft(other, "other")))

	auto.Cancel(id)
	assert.False(t, auto.Pending(id))
	assert.True(t, auto.Pending(other))

	require.NoError(t, auto.Flush(context.Background()))
	assert.False(t, auto.Pending(other))
}

func TestAutoSaverSchedulesAgainAfterCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	id := uuid.NewString()
	saver.EXPECT().Save(gomock.Any(), titleIs("next")).Return(nil).Times(1)

	auto := proposal.NewAutoSaver(saver, time.Hour, nil)
	auto.Cancel(id)
	require.NoError(t, auto.Schedule(draft(id, "next")))
	require.NoError(t, auto.Flush(context.Background()))
}

func TestAutoSaverCloseFlushesAndRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	saver := mocks.NewMockSaver(ctrl)

	id := uuid.NewString()
	saver.EXPECT().Save(gomock.Any(), titleIs("final")).Return(nil).Times(1)

	auto := proposal.NewAutoSaver(saver, time.Hour, nil)
	require.NoError(t, auto.Schedule(draft(id, "final")))
	require.NoError(t, auto.Close(context.Background()))

	assert.ErrorIs(t, auto.Schedule(draft(id, "late")), proposal.ErrAutoSaverClosed)
	assert.False(t, auto.Pending(id))
}
