// Seed tool: fills a dev database with demo authors, groups and posts,
// so listings and pagination have something to show right after a fresh
// migration. It talks to postgres directly through pgx, batching inserts
// to keep the round-trips down.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

func main() {
	// CLI flags define the workload.
	var dsn string
	var numUsers int
	var numGroups int
	var numPosts int
	var batchSize int
	flag.StringVar(&dsn, "dsn", "postgres://postgres@localhost:5432/wtf_blogger", "postgres connection string")
	flag.IntVar(&numUsers, "users", 25, "number of demo users")
	flag.IntVar(&numGroups, "groups", 5, "number of demo groups")
	flag.IntVar(&numPosts, "posts", 500, "number of demo posts")
	flag.IntVar(&batchSize, "batch", 100, "insert batch size")
	flag.Parse()

	ctx := context.Background()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	start := time.Now()
	if err := seed(ctx, pool, r, numUsers, numGroups, numPosts, batchSize); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("done in %s", time.Since(start).Truncate(time.Millisecond))
}

// seed inserts users and groups one by one (there are few) and posts in
// batches. Post timestamps spread uniformly across the last year, so the
// newest-first listings look lived-in.
func seed(ctx context.Context, pool *pgxpool.Pool, r *rand.Rand, numUsers, numGroups, numPosts, batchSize int) error {
	log.Printf("seeding: users=%d groups=%d posts=%d batch=%d", numUsers, numGroups, numPosts, batchSize)

	userIds := make([]int, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		var id int
		err := pool.QueryRow(ctx,
			`INSERT INTO users (username, name, email, password_hash, remember_hash, created_at, updated_at)
			 VALUES ($1, $2, $3, '', $4, now(), now()) RETURNING id`,
			fmt.Sprintf("author%d", i+1),
			fmt.Sprintf("Demo Author %d", i+1),
			fmt.Sprintf("author%d@example.com", i+1),
			fmt.Sprintf("seed-remember-%d-%d", i+1, r.Int63()),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		userIds = append(userIds, id)
	}

	groupIds := make([]int, 0, numGroups)
	for i := 0; i < numGroups; i++ {
		var id int
		err := pool.QueryRow(ctx,
			`INSERT INTO groups (title, slug, description, created_at, updated_at)
			 VALUES ($1, $2, $3, now(), now()) RETURNING id`,
			fmt.Sprintf("Community %d", i+1),
			fmt.Sprintf("community-%d", i+1),
			fmt.Sprintf("Demo community number %d.", i+1),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		groupIds = append(groupIds, id)
	}

	now := time.Now()
	yearAgo := now.Add(-365 * 24 * time.Hour)

	// Small helper to produce synthetic post text.
	makeText := func(n int) string {
		var b strings.Builder
		fmt.Fprintf(&b, "Demo post %d. ", n)
		for i := 0; i < 3+r.Intn(5); i++ {
			b.WriteString("Lorem ipsum dolor sit amet. ")
		}
		return b.String()
	}

	// Use pgx.Batch to group many INSERTs per round-trip.
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		br := pool.SendBatch(ctx, batch)
		defer br.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("batch insert post: %w", err)
			}
		}
		batch = &pgx.Batch{}
		return nil
	}

	for i := 0; i < numPosts; i++ {
		createdAt := yearAgo.Add(time.Duration(r.Int63n(int64(now.Sub(yearAgo)))))
		userId := userIds[r.Intn(len(userIds))]

		// Roughly a third of the posts go without a group.
		var groupId interface{}
		if r.Intn(3) > 0 {
			groupId = groupIds[r.Intn(len(groupIds))]
		}

		batch.Queue(
			`INSERT INTO posts (user_id, group_id, text, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4)`,
			userId, groupId, makeText(i+1), createdAt,
		)
		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
