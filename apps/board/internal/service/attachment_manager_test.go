package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"CommunityBoard/consts"
	"CommunityBoard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokens(t *testing.T) {
	content := "a uuidFileName=abc-1 b uuidFileName=def_2 c uuidFileName=abc-1 uuidFileName="
	assert.Equal(t, []string{"abc-1", "def_2"}, ExtractTokens(content))
	assert.Empty(t, ExtractTokens("no attachments here"))
}

func TestAttachmentManager_Lifecycle(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	article := &model.Article{Title: "t", Content: "", AuthorUuid: "alice"}
	require.NoError(t, env.articleRepo.Create(ctx, article))

	// 上传 f1、f2 为临时附件
	uploaded, err := env.attachments.UploadTemporary(ctx, article, []*FileInput{fileOf("f1.txt", "one"), fileOf("f2.txt", "two")})
	require.NoError(t, err)
	require.Len(t, uploaded, 2)
	f1, f2 := uploaded[0], uploaded[1]
	assert.True(t, f1.IsTemporary)
	assert.True(t, strings.HasPrefix(f1.Location, "articles/"))
	assert.Equal(t, 2, env.store.count())
	article.Content = tokenRef(f1.UuidFileName) + tokenRef(f2.UuidFileName)

	t.Run("finalize_is_idempotent", func(t *testing.T) {
		n, dropped, err := env.attachments.FinalizeEdit(ctx, article)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Empty(t, dropped)

		n, dropped, err = env.attachments.FinalizeEdit(ctx, article)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, dropped)

		for _, a := range env.attachmentsOf(t, article.Id) {
			assert.False(t, a.IsTemporary)
		}
	})

	t.Run("reconcile_deletes_unreferenced_permanent", func(t *testing.T) {
		res, err := env.attachments.ReconcileOnEdit(ctx, article, tokenRef(f1.UuidFileName), nil, nil)
		require.NoError(t, err)
		require.Len(t, res.Removed, 1)
		assert.Equal(t, f2.UuidFileName, res.Removed[0].UuidFileName)

		// 记录已删除，对象在 PurgeBlobs 之前仍然存在
		got := byToken(env.attachmentsOf(t, article.Id))
		assert.Contains(t, got, f1.UuidFileName)
		assert.NotContains(t, got, f2.UuidFileName)
		assert.True(t, env.store.has(f2.Location))

		require.NoError(t, env.attachments.PurgeBlobs(ctx, res.Removed))
		assert.False(t, env.store.has(f2.Location))
		assert.True(t, env.store.has(f1.Location))
		article.Content = tokenRef(f1.UuidFileName)
	})

	t.Run("final_set_after_finalize", func(t *testing.T) {
		_, _, err := env.attachments.FinalizeEdit(ctx, article)
		require.NoError(t, err)
		list := env.attachmentsOf(t, article.Id)
		require.Len(t, list, 1)
		assert.Equal(t, f1.UuidFileName, list[0].UuidFileName)
		assert.False(t, list[0].IsTemporary)
	})

	t.Run("reconcile_ignores_temporaries", func(t *testing.T) {
		res, err := env.attachments.ReconcileOnEdit(ctx, article, tokenRef(f1.UuidFileName), nil, []*FileInput{fileOf("f3.txt", "three")})
		require.NoError(t, err)
		assert.Empty(t, res.Removed)
		require.Len(t, res.Uploaded, 1)
		assert.True(t, res.Uploaded[0].IsTemporary)

		// f3 未被正文引用，但临时附件不参与对账
		res, err = env.attachments.ReconcileOnEdit(ctx, article, tokenRef(f1.UuidFileName), nil, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Removed)
		assert.Len(t, env.attachmentsOf(t, article.Id), 2)
	})

	t.Run("cancel_removes_only_temporaries", func(t *testing.T) {
		removed, err := env.attachments.CancelEdit(ctx, article)
		require.NoError(t, err)
		require.Len(t, removed, 1)
		assert.Equal(t, "f3.txt", removed[0].FileName)

		list := env.attachmentsOf(t, article.Id)
		require.Len(t, list, 1)
		assert.Equal(t, f1.UuidFileName, list[0].UuidFileName)

		removed, err = env.attachments.CancelEdit(ctx, article)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})

	t.Run("content_tokens_survive_empty_explicit_list", func(t *testing.T) {
		res, err := env.attachments.ReconcileOnEdit(ctx, article, tokenRef(f1.UuidFileName), []string{}, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Removed)
		assert.Contains(t, byToken(env.attachmentsOf(t, article.Id)), f1.UuidFileName)
	})

	t.Run("explicit_tokens_extend_content", func(t *testing.T) {
		res, err := env.attachments.ReconcileOnEdit(ctx, article, "no files", []string{f1.UuidFileName}, nil)
		require.NoError(t, err)
		assert.Empty(t, res.Removed)

		res, err = env.attachments.ReconcileOnEdit(ctx, article, "no files", []string{"other"}, nil)
		require.NoError(t, err)
		require.Len(t, res.Removed, 1)
		assert.Equal(t, f1.UuidFileName, res.Removed[0].UuidFileName)
	})
}

func TestAttachmentManager_FinalizeDiscardsUnreferenced(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	article := &model.Article{Title: "t", Content: "", AuthorUuid: "alice"}
	require.NoError(t, env.articleRepo.Create(ctx, article))

	uploaded, err := env.attachments.UploadTemporary(ctx, article, []*FileInput{
		fileOf("f1.txt", "one"), fileOf("f2.txt", "two"), fileOf("f3.txt", "three"),
	})
	require.NoError(t, err)
	f1, f2, f3 := uploaded[0], uploaded[1], uploaded[2]

	// f1 在正文中，f3 通过显式声明引用，f2 未被引用
	article.Content = tokenRef(f1.UuidFileName)
	article.ReferencedTokens = []string{f3.UuidFileName}

	n, dropped, err := env.attachments.FinalizeEdit(ctx, article)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.Len(t, dropped, 1)
	assert.Equal(t, f2.UuidFileName, dropped[0].UuidFileName)

	got := byToken(env.attachmentsOf(t, article.Id))
	require.Len(t, got, 2)
	assert.False(t, got[f1.UuidFileName].IsTemporary)
	assert.False(t, got[f3.UuidFileName].IsTemporary)
	assert.NotContains(t, got, f2.UuidFileName)
	// 记录已删除，对象留给调用方在提交后清理
	assert.True(t, env.store.has(f2.Location))
}

func TestAttachmentManager_UnreadableFileIsInvalidInput(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	article := &model.Article{Title: "t", Content: "", AuthorUuid: "alice"}
	require.NoError(t, env.articleRepo.Create(ctx, article))

	broken := &FileInput{
		FileName: "broken.txt",
		Open:     func() (io.ReadCloser, error) { return nil, errBoom },
	}
	tests := []struct {
		name string
		file *FileInput
	}{
		{name: "open_fails", file: broken},
		{name: "no_content", file: &FileInput{FileName: "empty.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploaded, err := env.attachments.UploadTemporary(ctx, article, []*FileInput{fileOf("ok.txt", "ok"), tt.file})
			assert.Nil(t, uploaded)
			assert.ErrorIs(t, err, ErrKindInvalidInput)
			assert.NotErrorIs(t, err, ErrKindStorageFailure)
			assert.Equal(t, int32(consts.CodeParamError), CodeOf(err))
			assert.Zero(t, env.store.count())
			assert.Empty(t, env.attachmentsOf(t, article.Id))
		})
	}
}

func TestAttachmentManager_UploadFailureAbortsBatch(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	article := &model.Article{Title: "t", Content: "", AuthorUuid: "alice"}
	require.NoError(t, env.articleRepo.Create(ctx, article))

	env.store.failOnStore = 2
	uploaded, err := env.attachments.UploadTemporary(ctx, article, []*FileInput{
		fileOf("a.txt", "a"), fileOf("b.txt", "b"), fileOf("c.txt", "c"),
	})
	assert.Nil(t, uploaded)
	assert.ErrorIs(t, err, ErrKindStorageFailure)
	assert.Equal(t, int32(consts.CodeStorageFailure), CodeOf(err))

	assert.Empty(t, env.attachmentsOf(t, article.Id))
	assert.Zero(t, env.store.count(), "already stored blobs of the batch are purged")
}

func TestAttachmentManager_PurgeFailureQueuesOrphan(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	article := &model.Article{Title: "t", Content: "", AuthorUuid: "alice"}
	require.NoError(t, env.articleRepo.Create(ctx, article))

	uploaded, err := env.attachments.UploadTemporary(ctx, article, []*FileInput{fileOf("a.txt", "a"), fileOf("b.txt", "b")})
	require.NoError(t, err)
	removed, err := env.attachments.CancelEdit(ctx, article)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	env.store.failDelete = true
	err = env.attachments.PurgeBlobs(ctx, removed)
	assert.ErrorIs(t, err, ErrKindStorageFailure)

	// 记录已经不存在，不会指向被删除或残留的对象
	assert.Empty(t, env.attachmentsOf(t, article.Id))
	require.Len(t, env.orphans.tasks, 2)
	assert.Equal(t, uploaded[0].Location, env.orphans.tasks[0].Location)
	assert.Equal(t, article.Id, env.orphans.tasks[0].ArticleID)
	assert.NotEmpty(t, env.orphans.tasks[0].OriginalErr)
}
