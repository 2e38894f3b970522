package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/menobass/hive-checkin-bot/internal/domain"
	"github.com/menobass/hive-checkin-bot/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dbFile string
		days   int
		limit  int
		reset  bool
	)
	flag.StringVar(&dbFile, "db", "processed_posts.db", "path to the bot database")
	flag.IntVar(&days, "days", 7, "how many recent days of stats to show")
	flag.IntVar(&limit, "limit", 10, "how many recent posts to show")
	flag.BoolVar(&reset, "reset", false, "delete the database and recreate it empty")
	flag.Parse()

	if reset {
		return resetDatabase(dbFile)
	}

	store, err := sqlite.Open(dbFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	printDashboard(ctx, store, days, limit)
	return nil
}

func resetDatabase(dbFile string) error {
	if err := os.Remove(dbFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove database: %w", err)
	}
	store, err := sqlite.Open(dbFile)
	if err != nil {
		return fmt.Errorf("recreate database: %w", err)
	}
	defer store.Close()
	fmt.Println("fresh database created:", dbFile)
	return nil
}

func printDashboard(ctx context.Context, store *sqlite.Store, days, limit int) {
	fmt.Println("=== check-in bot dashboard ===")

	totals, err := store.TotalStats(ctx)
	if err != nil {
		fmt.Println("failed to read totals:", err)
	} else {
		fmt.Println("\nTOTALS")
		fmt.Printf("  posts processed: %d\n", totals.TotalPosts)
		fmt.Printf("  hbd sent:        %.3f\n", totals.TotalHBD)
		fmt.Printf("  upvotes given:   %d\n", totals.TotalUpvotes)
		fmt.Printf("  errors:          %d\n", totals.TotalErrors)
		fmt.Printf("  days active:     %d\n", totals.DaysActive)
		if totals.DaysActive > 0 {
			fmt.Printf("  avg posts/day:   %.1f\n", float64(totals.TotalPosts)/float64(totals.DaysActive))
			fmt.Printf("  avg hbd/day:     %.3f\n", totals.TotalHBD/float64(totals.DaysActive))
		}
	}

	daily, err := store.RecentDailyStats(ctx, days)
	if err != nil {
		fmt.Println("failed to read daily stats:", err)
	} else if len(daily) > 0 {
		fmt.Printf("\nDAILY STATS (last %d days)\n", days)
		fmt.Printf("  %-12s %6s %8s %8s %7s\n", "date", "posts", "hbd", "upvotes", "errors")
		for _, d := range daily {
			fmt.Printf("  %-12s %6d %8.3f %8d %7d\n", d.Date, d.PostsProcessed, d.HBDSent, d.UpvotesGiven, d.Errors)
		}
	}

	posts, err := store.RecentProcessedPosts(ctx, limit)
	if err != nil {
		fmt.Println("failed to read recent posts:", err)
	} else if len(posts) > 0 {
		fmt.Printf("\nRECENT POSTS (last %d)\n", limit)
		fmt.Printf("  %-16s %-28s %6s %5s %8s\n", "author", "permlink", "hbd", "vote", "comment")
		for _, p := range posts {
			fmt.Printf("  %-16s %-28s %6.3f %5s %8s\n",
				clip(p.Author, 16), clip(p.Permlink, 28), p.HBDSent, mark(p.Upvoted), mark(p.Commented))
		}
	}

	printHealth(ctx, store)

	fmt.Printf("\ngenerated at %s\n", time.Now().Format("2006-01-02 15:04:05"))
}

// printHealth flags conditions an operator would want to look at.
func printHealth(ctx context.Context, store *sqlite.Store) {
	var warnings []string

	today, err := store.DailyStats(ctx, domain.DateKey(time.Now()))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to read today's stats: %v", err))
	} else if today == nil {
		warnings = append(warnings, "no activity recorded today")
	} else {
		if today.Errors > 0 {
			warnings = append(warnings, fmt.Sprintf("%d errors recorded today", today.Errors))
		}
		if today.PostsProcessed == 0 {
			warnings = append(warnings, "no posts processed today")
		}
	}

	fmt.Println("\nHEALTH")
	if len(warnings) == 0 {
		fmt.Println("  ok")
		return
	}
	for _, w := range warnings {
		fmt.Println("  warning:", w)
	}
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
