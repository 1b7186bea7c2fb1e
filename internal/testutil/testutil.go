// Package testutil opens throwaway stores for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/pkg/database"
)

// NewDB returns a migrated in-memory SQLite database private to t. The pool holds
// a single connection so concurrent callers serialize like they would on row locks.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.New().String()[:8])
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(dsn)), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewRedis starts a miniredis server for t and returns a client to it.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func SeedUser(t testing.TB, db *gorm.DB, username string) model.User {
	t.Helper()
	u := model.User{ID: uuid.New().String(), Username: username}
	require.NoError(t, db.WithContext(context.Background()).Create(&u).Error)
	return u
}

// SeedPost inserts a post with an explicit creation time so ordering is deterministic.
func SeedPost(t testing.TB, db *gorm.DB, authorID string, published bool, createdAt time.Time) model.Post {
	t.Helper()
	p := model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Title:     "post by " + authorID[:8],
		Published: published,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func SeedComment(t testing.TB, db *gorm.DB, postID, authorID string, parentID *string) model.Comment {
	t.Helper()
	c := model.Comment{ID: uuid.New().String(), PostID: postID, AuthorID: authorID, ParentID: parentID, Content: "c"}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func SeedLike(t testing.TB, db *gorm.DB, userID string, kind model.TargetKind, targetID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Like{ID: uuid.New().String(), UserID: userID, TargetKind: kind, TargetID: targetID}).Error)
}

func SeedFollow(t testing.TB, db *gorm.DB, followerID, followeeID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Follow{ID: uuid.New().String(), FollowerID: followerID, FolloweeID: followeeID}).Error)
}
