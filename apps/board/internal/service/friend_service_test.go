package service

import (
	"context"
	"testing"

	"CommunityBoard/consts"
	"CommunityBoard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendService_AcceptReject(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	for _, u := range []string{"alice", "bob", "carol"} {
		env.addUser(t, u)
	}

	req, err := env.friends.SendFriendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, model.AlarmTypeFriendRequest, req.AlarmType)
	assert.Equal(t, "bob", req.RecipientUuid)
	assert.NotZero(t, req.TargetId)
	require.Len(t, env.publisher.events, 1)

	t.Run("send_validations", func(t *testing.T) {
		_, err := env.friends.SendFriendRequest(ctx, "alice", "alice")
		assert.ErrorIs(t, err, ErrKindInvalidState)

		_, err = env.friends.SendFriendRequest(ctx, "bob", "alice")
		assert.ErrorIs(t, err, ErrKindInvalidState, "pending in the other direction")

		_, err = env.friends.SendFriendRequest(ctx, "alice", "nobody")
		assert.ErrorIs(t, err, ErrKindNotFound)
	})

	t.Run("generic_read_paths_keep_request_pending", func(t *testing.T) {
		marked, err := env.notifications.MarkAllAsRead(ctx, "bob")
		require.NoError(t, err)
		assert.Zero(t, marked)

		err = env.notifications.MarkAsRead(ctx, "bob", req.Id)
		assert.ErrorIs(t, err, ErrKindInvalidState)
		assert.Equal(t, int32(consts.CodeFriendRequestPending), CodeOf(err))

		err = env.notifications.Delete(ctx, "bob", req.Id)
		assert.ErrorIs(t, err, ErrKindInvalidState)

		n, err := env.notifyRepo.GetByID(ctx, req.Id)
		require.NoError(t, err)
		assert.False(t, n.IsRead)
		rel, err := env.friendRepo.GetBetween(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, model.FriendStatusPending, rel.Status)
	})

	t.Run("only_recipient_may_respond", func(t *testing.T) {
		assert.ErrorIs(t, env.friends.AcceptFriendRequest(ctx, "alice", req.Id), ErrKindUnauthorized)
		assert.ErrorIs(t, env.friends.AcceptFriendRequest(ctx, "bob", 999), ErrKindNotFound)
	})

	t.Run("accept_is_atomic_and_single_shot", func(t *testing.T) {
		before, err := env.notifications.GetUnreadCount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(1), before)

		require.NoError(t, env.friends.AcceptFriendRequest(ctx, "bob", req.Id))

		n, err := env.notifyRepo.GetByID(ctx, req.Id)
		require.NoError(t, err)
		assert.True(t, n.IsRead)
		rel, err := env.friendRepo.GetBetween(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, model.FriendStatusAccepted, rel.Status)

		after, err := env.notifications.GetUnreadCount(ctx, "bob")
		require.NoError(t, err)
		assert.Zero(t, after)

		assert.ErrorIs(t, env.friends.AcceptFriendRequest(ctx, "bob", req.Id), ErrKindInvalidState)
		assert.ErrorIs(t, env.friends.RejectFriendRequest(ctx, "bob", req.Id), ErrKindInvalidState)

		_, err = env.friends.SendFriendRequest(ctx, "bob", "alice")
		assert.ErrorIs(t, err, ErrKindInvalidState, "already friends")

		for _, u := range []string{"alice", "bob"} {
			list, err := env.friends.ListFriends(ctx, u)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		}
	})

	t.Run("reject_removes_relation", func(t *testing.T) {
		req2, err := env.friends.SendFriendRequest(ctx, "carol", "bob")
		require.NoError(t, err)

		require.NoError(t, env.friends.RejectFriendRequest(ctx, "bob", req2.Id))

		n, err := env.notifyRepo.GetByID(ctx, req2.Id)
		require.NoError(t, err)
		assert.True(t, n.IsRead)
		_, err = env.friendRepo.GetBetween(ctx, "carol", "bob")
		assert.Error(t, err)

		assert.ErrorIs(t, env.friends.RejectFriendRequest(ctx, "bob", req2.Id), ErrKindInvalidState)
		assert.ErrorIs(t, env.friends.AcceptFriendRequest(ctx, "bob", req2.Id), ErrKindInvalidState)
	})

	t.Run("missing_relation_rolls_back_mark_read", func(t *testing.T) {
		req3, err := env.friends.SendFriendRequest(ctx, "carol", "bob")
		require.NoError(t, err)
		require.NoError(t, env.db.Where("user_uuid = ? AND friend_uuid = ?", "carol", "bob").
			Delete(&model.FriendRelation{}).Error)

		err = env.friends.AcceptFriendRequest(ctx, "bob", req3.Id)
		assert.ErrorIs(t, err, ErrKindNotFound)

		n, err := env.notifyRepo.GetByID(ctx, req3.Id)
		require.NoError(t, err)
		assert.False(t, n.IsRead, "mark-read is rolled back with the relation change")
	})

	t.Run("wrong_kind", func(t *testing.T) {
		article := newArticle(t, env, "bob")
		like, err := env.notifications.Dispatch(ctx, model.AlarmTypeLike, article.Id, "alice")
		require.NoError(t, err)
		assert.ErrorIs(t, env.friends.AcceptFriendRequest(ctx, "bob", like.Id), ErrKindInvalidState)
	})

	t.Run("resolved_request_can_be_deleted", func(t *testing.T) {
		require.NoError(t, env.notifications.MarkAsRead(ctx, "bob", req.Id))
		require.NoError(t, env.notifications.Delete(ctx, "bob", req.Id))
	})

	t.Run("delete_friend", func(t *testing.T) {
		require.NoError(t, env.friends.DeleteFriend(ctx, "bob", "alice"))
		assert.ErrorIs(t, env.friends.DeleteFriend(ctx, "bob", "alice"), ErrKindNotFound)
	})
}
