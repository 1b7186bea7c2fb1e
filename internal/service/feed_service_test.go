package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/testutil"
)

func postIDs(page *Page[repository.PostWithStats]) []string {
	out := make([]string, len(page.Items))
	for i, p := range page.Items {
		out[i] = p.ID
	}
	return out
}

func TestGlobalFeed_PublishedOnlyNewestFirst(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := testutil.SeedUser(t, e.db, "a")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p1 := testutil.SeedPost(t, e.db, a.ID, true, base)
	p2 := testutil.SeedPost(t, e.db, a.ID, true, base.Add(time.Minute))
	testutil.SeedPost(t, e.db, a.ID, false, base.Add(2*time.Minute))

	page, err := e.feeds.GlobalFeed(ctx, PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID, p1.ID}, postIDs(page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)

	asc, err := e.feeds.GlobalFeed(ctx, PageQuery{Order: SortAsc, Sort: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p2.ID}, postIDs(asc))

	past, err := e.feeds.GlobalFeed(ctx, PageQuery{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, past.Items)

	far, err := e.feeds.GlobalFeed(ctx, PageQuery{Page: 4611686018427387905, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, far.Items)
}

func TestGlobalFeed_SortByLikesMatchesCounts(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := testutil.SeedUser(t, e.db, "a")
	fans := []model.User{testutil.SeedUser(t, e.db, "f1"), testutil.SeedUser(t, e.db, "f2"), testutil.SeedUser(t, e.db, "f3")}
	base := time.Now()
	posts := make([]model.Post, 4)
	for i := range posts {
		posts[i] = testutil.SeedPost(t, e.db, a.ID, true, base.Add(time.Duration(i)*time.Second))
	}
	// posts[2] gets 3 likes, posts[0] gets 2, posts[3] gets 1
	for i, f := range fans {
		_, err := e.likes.Like(ctx, f.ID, model.TargetPost, posts[2].ID)
		require.NoError(t, err)
		if i < 2 {
			_, err = e.likes.Like(ctx, f.ID, model.TargetPost, posts[0].ID)
			require.NoError(t, err)
		}
	}
	_, err := e.likes.Like(ctx, fans[0].ID, model.TargetPost, posts[3].ID)
	require.NoError(t, err)

	page, err := e.feeds.GlobalFeed(ctx, PageQuery{Sort: SortLikeCount, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{posts[2].ID, posts[0].ID, posts[3].ID}, postIDs(page))
	for _, p := range page.Items {
		n, err := e.likes.CountLikes(ctx, model.TargetPost, p.ID)
		require.NoError(t, err)
		assert.Equal(t, n, p.LikeCount)
	}
}

func TestGlobalFeed_PageSizeIsCapped(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := testutil.SeedUser(t, e.db, "a")
	rows := make([]model.Post, 120)
	for i := range rows {
		rows[i] = model.Post{ID: fmt.Sprintf("p%03d", i), AuthorID: a.ID, Title: "t", Published: true}
	}
	require.NoError(t, e.db.CreateInBatches(rows, 50).Error)

	page, err := e.feeds.GlobalFeed(ctx, PageQuery{PageSize: 1000})
	require.NoError(t, err)
	assert.Len(t, page.Items, 100)
	assert.Equal(t, 100, page.PageSize)
}

func TestPersonalizedFeed(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	reader := testutil.SeedUser(t, e.db, "reader")
	followed := testutil.SeedUser(t, e.db, "followed")
	stranger := testutil.SeedUser(t, e.db, "stranger")
	now := time.Now()
	want := testutil.SeedPost(t, e.db, followed.ID, true, now)
	testutil.SeedPost(t, e.db, followed.ID, false, now)
	testutil.SeedPost(t, e.db, stranger.ID, true, now)

	empty, err := e.feeds.PersonalizedFeed(ctx, reader.ID, PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	_, err = e.relationships.Follow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)

	page, err := e.feeds.PersonalizedFeed(ctx, reader.ID, PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{want.ID}, postIDs(page))
}

func TestAuthorPosts_DraftsAreAuthorOnly(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := testutil.SeedUser(t, e.db, "a")
	b := testutil.SeedUser(t, e.db, "b")
	draft := testutil.SeedPost(t, e.db, a.ID, false, time.Now())
	pub := testutil.SeedPost(t, e.db, a.ID, true, time.Now())

	_, err := e.feeds.AuthorPosts(ctx, b.ID, a.ID, false, PageQuery{})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	drafts, err := e.feeds.AuthorPosts(ctx, a.ID, a.ID, false, PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{draft.ID}, postIDs(drafts))

	published, err := e.feeds.AuthorPosts(ctx, b.ID, a.ID, true, PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{pub.ID}, postIDs(published))
}

func TestLikedAndCommentedPosts(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := testutil.SeedUser(t, e.db, "a")
	reader := testutil.SeedUser(t, e.db, "reader")
	liked := testutil.SeedPost(t, e.db, a.ID, true, time.Now())
	commented := testutil.SeedPost(t, e.db, a.ID, true, time.Now())

	_, err := e.likes.Like(ctx, reader.ID, model.TargetPost, liked.ID)
	require.NoError(t, err)
	root, err := e.comments.AddRootComment(ctx, a.ID, commented.ID, "mine")
	require.NoError(t, err)
	_, err = e.comments.AddReply(ctx, reader.ID, root.ID, "nested")
	require.NoError(t, err)

	page, err := e.feeds.LikedPosts(ctx, reader.ID, PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{liked.ID}, postIDs(page))

	page, err = e.feeds.CommentedPosts(ctx, reader.ID, PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{commented.ID}, postIDs(page))

	_, err = e.feeds.Search(ctx, "  ", PageQuery{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
