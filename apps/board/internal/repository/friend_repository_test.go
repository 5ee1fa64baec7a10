package repository

import (
	"context"
	"errors"
	"testing"

	"CommunityBoard/apps/board/internal/repository/repotest"
	"CommunityBoard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository(t *testing.T) {
	repo := NewFriendRepository(repotest.NewDB(t))
	ctx := context.Background()

	rel := &model.FriendRelation{UserUuid: "alice", FriendUuid: "bob"}
	require.NoError(t, repo.CreatePending(ctx, rel))
	assert.Equal(t, model.FriendStatusPending, rel.Status)

	t.Run("duplicate_pair_rejected", func(t *testing.T) {
		err := repo.CreatePending(ctx, &model.FriendRelation{UserUuid: "alice", FriendUuid: "bob"})
		assert.True(t, errors.Is(err, ErrDuplicateKey))
	})

	t.Run("get_between_either_direction", func(t *testing.T) {
		got, err := repo.GetBetween(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.Equal(t, rel.Id, got.Id)
	})

	t.Run("pending_not_listed", func(t *testing.T) {
		list, err := repo.ListFriends(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("accept_only_once", func(t *testing.T) {
		ok, err := repo.AcceptPending(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.False(t, ok, "direction matters")

		ok, err = repo.AcceptPending(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.AcceptPending(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, ok)

		for _, user := range []string{"alice", "bob"} {
			list, err := repo.ListFriends(ctx, user)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		}
	})

	t.Run("delete_pending_ignores_accepted", func(t *testing.T) {
		ok, err := repo.DeletePending(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete_accepted", func(t *testing.T) {
		ok, err := repo.DeleteAccepted(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.GetBetween(ctx, "alice", "bob")
		assert.True(t, errors.Is(err, ErrRecordNotFound))
	})
}
