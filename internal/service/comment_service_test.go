package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/testutil"
)

func TestComments_ThreadShape(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	author := testutil.SeedUser(t, e.db, "author")
	x := testutil.SeedUser(t, e.db, "x")
	y := testutil.SeedUser(t, e.db, "y")
	p := testutil.SeedPost(t, e.db, author.ID, true, time.Now())

	root, err := e.comments.AddRootComment(ctx, x.ID, p.ID, "first")
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	reply, err := e.comments.AddReply(ctx, y.ID, root.ID, "second")
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)
	assert.Equal(t, p.ID, reply.PostID)

	deep, err := e.comments.AddReply(ctx, x.ID, reply.ID, "third")
	require.NoError(t, err)
	assert.Equal(t, p.ID, deep.PostID)

	roots, err := e.comments.RootComments(ctx, x.ID, p.ID, PageQuery{})
	require.NoError(t, err)
	require.Len(t, roots.Items, 1)
	assert.EqualValues(t, 1, roots.Items[0].ReplyCount)

	kids, err := e.comments.Children(ctx, root.ID, PageQuery{})
	require.NoError(t, err)
	require.Len(t, kids.Items, 1)
	assert.Equal(t, reply.ID, kids.Items[0].ID)

	leaf, err := e.comments.Children(ctx, deep.ID, PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, leaf.Items)

	total, err := e.comments.SubtreeCount(ctx, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	direct, err := e.comments.ChildCount(ctx, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, direct)

	count, err := e.posts.CommentCount(ctx, x.ID, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestComments_NotifyPostAuthorForRootsAndReplies(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	author := testutil.SeedUser(t, e.db, "author")
	x := testutil.SeedUser(t, e.db, "x")
	p := testutil.SeedPost(t, e.db, author.ID, true, time.Now())

	root, err := e.comments.AddRootComment(ctx, x.ID, p.ID, "hi")
	require.NoError(t, err)
	_, err = e.comments.AddReply(ctx, x.ID, root.ID, "again")
	require.NoError(t, err)

	events := e.notifier.Events()
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, model.NotifyPostComment, ev.Kind)
		assert.Equal(t, author.ID, ev.RecipientID)
		assert.Equal(t, p.ID, ev.TargetID)
	}
}

func TestComments_Errors(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	author := testutil.SeedUser(t, e.db, "author")
	x := testutil.SeedUser(t, e.db, "x")
	p := testutil.SeedPost(t, e.db, author.ID, true, time.Now())
	draft := testutil.SeedPost(t, e.db, author.ID, false, time.Now())

	_, err := e.comments.AddReply(ctx, x.ID, "missing", "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.comments.AddRootComment(ctx, x.ID, "missing", "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.comments.AddRootComment(ctx, x.ID, draft.ID, "hello")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.comments.AddRootComment(ctx, x.ID, p.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.comments.SubtreeCount(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.comments.Children(ctx, "missing", PageQuery{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.comments.Delete(ctx, x.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.comments.Update(ctx, x.ID, "missing", "new")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, e.notifier.Events())
}

func TestComments_UpdateAndDeleteAreAuthorOnly(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	author := testutil.SeedUser(t, e.db, "author")
	x := testutil.SeedUser(t, e.db, "x")
	p := testutil.SeedPost(t, e.db, author.ID, true, time.Now())
	c, err := e.comments.AddRootComment(ctx, x.ID, p.ID, "hi")
	require.NoError(t, err)

	_, err = e.comments.Update(ctx, author.ID, c.ID, "hijack")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	updated, err := e.comments.Update(ctx, x.ID, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, c.ParentID, updated.ParentID)

	_, err = e.comments.Delete(ctx, author.ID, c.ID)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestComments_DeleteRemovesSubtreeAndLikes(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	author := testutil.SeedUser(t, e.db, "author")
	x := testutil.SeedUser(t, e.db, "x")
	p := testutil.SeedPost(t, e.db, author.ID, true, time.Now())

	root, err := e.comments.AddRootComment(ctx, x.ID, p.ID, "root")
	require.NoError(t, err)
	sibling, err := e.comments.AddRootComment(ctx, author.ID, p.ID, "sibling")
	require.NoError(t, err)
	parent := root
	for i := 0; i < 5; i++ {
		parent, err = e.comments.AddReply(ctx, author.ID, parent.ID, "reply")
		require.NoError(t, err)
		_, err = e.likes.Like(ctx, x.ID, model.TargetComment, parent.ID)
		require.NoError(t, err)
	}
	_, err = e.likes.Like(ctx, x.ID, model.TargetComment, sibling.ID)
	require.NoError(t, err)

	removed, err := e.comments.Delete(ctx, x.ID, root.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, removed)

	_, err = e.comments.Get(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := e.posts.CommentCount(ctx, x.ID, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	var likes int64
	require.NoError(t, e.db.Model(&model.Like{}).Count(&likes).Error)
	assert.EqualValues(t, 1, likes)
}

func TestAddReply_ParentDeletedBeforeInsert(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, db, "author")
	p := testutil.SeedPost(t, db, author.ID, true, time.Now())
	root := testutil.SeedComment(t, db, p.ID, author.ID, nil)

	commentRepo := repository.NewCommentRepository(db)
	posts := &interleavedPosts{PostRepository: repository.NewPostRepository(db)}
	posts.between = func() {
		removed, err := commentRepo.DeleteSubtree(ctx, root.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)
	}
	rec := &recordingNotifier{}
	svc := NewCommentService(commentRepo, posts, rec)

	_, err := svc.AddReply(ctx, author.ID, root.ID, "late")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	var n int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, rec.Events())
}

func TestAddRootComment_PostDeletedBeforeInsert(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.SeedUser(t, db, "author")
	reader := testutil.SeedUser(t, db, "reader")
	p := testutil.SeedPost(t, db, author.ID, true, time.Now())

	postRepo := repository.NewPostRepository(db)
	posts := &interleavedPosts{PostRepository: postRepo}
	posts.between = func() {
		deleted, err := postRepo.Delete(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	}
	svc := NewCommentService(repository.NewCommentRepository(db), posts, nil)

	_, err := svc.AddRootComment(ctx, reader.ID, p.ID, "late")
	assert.ErrorIs(t, err, ErrPostNotFound)

	var n int64
	require.NoError(t, db.Model(&model.Comment{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestComments_StoreCascadesOrphans(t *testing.T) {
	e := newEnv(t, nil)
	author := testutil.SeedUser(t, e.db, "author")
	p := testutil.SeedPost(t, e.db, author.ID, true, time.Now())
	root := testutil.SeedComment(t, e.db, p.ID, author.ID, nil)
	testutil.SeedComment(t, e.db, p.ID, author.ID, &root.ID)

	// bypasses the repositories: the foreign keys alone must drop the thread
	require.NoError(t, e.db.Exec("DELETE FROM posts WHERE id = ?", p.ID).Error)

	var n int64
	require.NoError(t, e.db.Model(&model.Comment{}).Count(&n).Error)
	assert.Zero(t, n)

	stray := model.Comment{ID: "stray", PostID: "missing", AuthorID: author.ID, Content: "x"}
	assert.Error(t, e.db.Create(&stray).Error)
}
