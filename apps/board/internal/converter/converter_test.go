package converter

import (
	"testing"
	"time"

	"CommunityBoard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleToResponse(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	a := &model.Article{
		Id:         7,
		Title:      "t",
		Content:    "c",
		AuthorUuid: "u1",
		CreatedAt:  now,
		Attachments: []*model.Attachment{
			{UuidFileName: "tok", FileName: "a.png", IsTemporary: true},
			nil,
		},
	}

	resp := ArticleToResponse(a)
	require.NotNil(t, resp)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, now.UnixMilli(), resp.CreatedAt)
	assert.Equal(t, int64(0), resp.UpdatedAt)
	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "tok", resp.Attachments[0].Token)
	assert.True(t, resp.Attachments[0].IsTemporary)

	assert.Nil(t, ArticleToResponse(nil))
}

func TestFriendsToList(t *testing.T) {
	list := []*model.FriendRelation{
		{UserUuid: "me", FriendUuid: "bob"},
		{UserUuid: "alice", FriendUuid: "me"},
	}

	resp := FriendsToList("me", list)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "bob", resp.Items[0].FriendUUID)
	assert.Equal(t, "alice", resp.Items[1].FriendUUID)
}

func TestNotificationsToList(t *testing.T) {
	resp := NotificationsToList([]*model.Notification{{Id: 1, AlarmType: model.AlarmTypeLike}}, nil)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, model.AlarmTypeLike, resp.Items[0].AlarmType)
	assert.Nil(t, resp.Pagination)
}
