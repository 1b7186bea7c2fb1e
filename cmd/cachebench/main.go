package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialgraph/config"
	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	return xs[max(0, min(k, len(xs)-1))]
}

// Compares personalized feed reads with the following set read from the database
// on every call against the Redis cache-aside path.
func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	addr := cfg.Redis.Addr
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		addr = v
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	mustDo(rdb.Ping(ctx).Err())
	defer rdb.Close()

	const (
		authorCount    = 2000
		postsPerAuthor = 5
		requests       = 2000
	)

	fmt.Println("Setting up test data...")
	reader := model.User{ID: uuid.NewString(), Username: "reader_" + uuid.NewString()[:8]}
	mustDo(db.Create(&reader).Error)

	authors := make([]model.User, authorCount)
	follows := make([]model.Follow, authorCount)
	posts := make([]model.Post, 0, authorCount*postsPerAuthor)
	base := time.Now()
	for i := range authors {
		id := uuid.NewString()
		authors[i] = model.User{ID: id, Username: fmt.Sprintf("author_%s", id[:12])}
		follows[i] = model.Follow{ID: uuid.NewString(), FollowerID: reader.ID, FolloweeID: id}
		for j := 0; j < postsPerAuthor; j++ {
			posts = append(posts, model.Post{
				ID:        uuid.NewString(),
				AuthorID:  id,
				Title:     "post",
				Published: true,
				CreatedAt: base.Add(-time.Duration(i*postsPerAuthor+j) * time.Second),
			})
		}
	}
	mustDo(db.CreateInBatches(&authors, 1000).Error)
	mustDo(db.CreateInBatches(&follows, 1000).Error)
	mustDo(db.CreateInBatches(&posts, 1000).Error)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	cache := repository.NewFollowingCache(rdb, cfg.Redis.FollowingTTL)
	mustDo(cache.Invalidate(ctx, reader.ID))

	scenarios := []struct {
		name  string
		cache *repository.FollowingCache
	}{
		{"database only", nil},
		{"redis following set", cache},
	}
	for _, sc := range scenarios {
		rel := service.NewRelationshipService(followRepo, userRepo, sc.cache, nil)
		feed := service.NewFeedService(postRepo, rel)
		lat := make([]time.Duration, 0, requests)
		t0 := time.Now()
		for i := 0; i < requests; i++ {
			st := time.Now()
			page := must(feed.PersonalizedFeed(ctx, reader.ID, service.PageQuery{Page: 1 + i%5, PageSize: 20}))
			if len(page.Items) == 0 {
				panic("empty feed page")
			}
			lat = append(lat, time.Since(st))
		}
		total := time.Since(t0)
		fmt.Printf("%-20s total=%v avg=%v p50=%v p95=%v p99=%v\n",
			sc.name, total, total/requests, pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	}
}
