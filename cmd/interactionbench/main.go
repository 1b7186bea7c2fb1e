package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/socialgraph/config"
	"github.com/d60-Lab/socialgraph/internal/model"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/database"
	"github.com/d60-Lab/socialgraph/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// pct returns the p-th percentile of vs.
func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	k = max(0, min(k, len(xs)-1))
	return xs[k]
}

// Every seeded user follows a celebrity, likes the celebrity's post and comments on
// it. Reports per-operation latency, notification landing latency and feed reads.
func main() {
	cfg := must(config.Load())
	must(struct{}{}, logger.Init(cfg.Server.Mode))
	db := must(database.InitDB(cfg))

	n := envInt("N", 10000)
	conc := envInt("CONC", 8)
	pageSize := envInt("PAGE", 50)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	dispatcher := service.NewDispatcher(notificationRepo, service.DispatcherOptions{QueueSize: 3 * n})
	stop := dispatcher.Start(cfg.Notifier.Workers)

	relSvc := service.NewRelationshipService(followRepo, userRepo, nil, dispatcher)
	likeSvc := service.NewLikeService(likeRepo, postRepo, commentRepo, dispatcher)
	commentSvc := service.NewCommentService(commentRepo, postRepo, dispatcher)
	postSvc := service.NewPostService(postRepo, commentRepo)
	feedSvc := service.NewFeedService(postRepo, relSvc)
	notificationSvc := service.NewNotificationService(notificationRepo)

	ctx := context.Background()

	celeb := model.User{ID: uuid.New().String(), Username: "celeb_" + uuid.New().String()[:8]}
	must(userRepo.Create(ctx, &celeb))
	post := must(postSvc.Create(ctx, celeb.ID, service.PostInput{Title: "hello", Text: "first post", Published: true}))

	users := make([]model.User, n)
	for i := range users {
		id := uuid.New().String()
		users[i] = model.User{ID: id, Username: "u" + id[:8]}
	}
	must(struct{}{}, db.CreateInBatches(&users, 1000).Error)

	landing := make([]time.Duration, 0, 3*n)
	doneMetrics := make(chan struct{})
	metricsDone := make(chan struct{})
	go func() {
		defer close(metricsDone)
		for {
			select {
			case d := <-dispatcher.Metrics():
				landing = append(landing, d)
			case <-doneMetrics:
				return
			}
		}
	}()

	maxQ := 0
	quitSample := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				maxQ = max(maxQ, dispatcher.QueueLen())
			case <-quitSample:
				return
			}
		}
	}()

	type op struct {
		name string
		run  func(u model.User) error
	}
	ops := []op{
		{"follow", func(u model.User) error { _, err := relSvc.Follow(ctx, u.ID, celeb.ID); return err }},
		{"like", func(u model.User) error { _, err := likeSvc.Like(ctx, u.ID, model.TargetPost, post.ID); return err }},
		{"comment", func(u model.User) error {
			_, err := commentSvc.AddRootComment(ctx, u.ID, post.ID, "nice post")
			return err
		}},
	}

	for _, o := range ops {
		recs := make([]time.Duration, n)
		var failures int
		var mu sync.Mutex
		feed := make(chan int, n)
		for i := 0; i < n; i++ {
			feed <- i
		}
		close(feed)

		t0 := time.Now()
		var wg sync.WaitGroup
		for w := 0; w < min(conc, n); w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range feed {
					st := time.Now()
					err := o.run(users[i])
					recs[i] = time.Since(st)
					if err != nil {
						mu.Lock()
						failures++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()
		total := time.Since(t0)
		fmt.Printf("%-8s total=%v per-op=%v p50=%v p95=%v p99=%v failures=%d\n",
			o.name, total, total/time.Duration(n), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99), failures)
	}
	close(quitSample)

	drainStart := time.Now()
	_ = stop(ctx)
	drainDur := time.Since(drainStart)
	close(doneMetrics)
	<-metricsDone

	q0 := time.Now()
	_, _ = feedSvc.PersonalizedFeed(ctx, users[0].ID, service.PageQuery{PageSize: pageSize})
	feedDur := time.Since(q0)

	q1 := time.Now()
	_, _ = feedSvc.GlobalFeed(ctx, service.PageQuery{PageSize: pageSize, Sort: service.SortLikeCount})
	globalDur := time.Since(q1)

	unread, _ := notificationSvc.UnreadCount(ctx, celeb.ID)

	fmt.Printf("N=%d, CONC=%d, PAGE=%d\n", n, conc, pageSize)
	fmt.Printf("personalized feed(%d): %v, global feed by likes(%d): %v\n", pageSize, feedDur, pageSize, globalDur)
	fmt.Printf("notifications landed=%d unread(celeb)=%d p50=%v p95=%v p99=%v maxQueue=%d drain=%v\n",
		len(landing), unread, pct(landing, 0.50), pct(landing, 0.95), pct(landing, 0.99), maxQ, drainDur)
}
