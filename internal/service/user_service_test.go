package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/testutil"
)

func TestUsers_CreateAndUniqueness(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	u, err := e.users.Create(ctx, "id-1", ProfileInput{Username: "alice", Bio: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = e.users.Create(ctx, "id-2", ProfileInput{Username: "alice"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.users.Create(ctx, "id-1", ProfileInput{Username: "alice2"})
	assert.ErrorIs(t, err, ErrProfileExists)

	_, err = e.users.Create(ctx, "id-3", ProfileInput{Username: "has space"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUsers_GetCountsAndUpdate(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	a := testutil.SeedUser(t, e.db, "a_user")
	b := testutil.SeedUser(t, e.db, "b_user")
	testutil.SeedFollow(t, e.db, b.ID, a.ID)

	p, err := e.users.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.Followers)
	assert.EqualValues(t, 0, p.Following)

	_, err = e.users.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	taken := "b_user"
	_, err = e.users.UpdateProfile(ctx, a.ID, ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	bio := "new bio"
	u, err := e.users.UpdateProfile(ctx, a.ID, ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "new bio", u.Bio)
	assert.Equal(t, "a_user", u.Username)
}

func TestUsers_SearchAndSuggested(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	me := testutil.SeedUser(t, e.db, "me")
	popular := testutil.SeedUser(t, e.db, "popular")
	quiet := testutil.SeedUser(t, e.db, "quiet")
	known := testutil.SeedUser(t, e.db, "known")
	testutil.SeedFollow(t, e.db, me.ID, known.ID)
	testutil.SeedFollow(t, e.db, quiet.ID, popular.ID)
	testutil.SeedFollow(t, e.db, known.ID, popular.ID)

	page, err := e.users.Search(ctx, "POP", PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, popular.ID, page.Items[0].ID)

	page, err = e.users.Search(ctx, "%", PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items, "wildcards are matched literally")

	suggested, err := e.users.Suggested(ctx, me.ID, 10)
	require.NoError(t, err)
	require.Len(t, suggested, 2)
	assert.Equal(t, popular.ID, suggested[0].ID)
	assert.Equal(t, quiet.ID, suggested[1].ID)
}

func TestUsers_RenameRaceReportsTaken(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")

	users := staleUsernames{UserRepository: repository.NewUserRepository(db)}
	svc := NewUserService(users, repository.NewFollowRepository(db))

	name := "alice"
	_, err := svc.UpdateProfile(ctx, bob.ID, ProfileUpdate{Username: &name})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
