package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthewjhunter/marquee"
	"github.com/matthewjhunter/marquee/internal/bot"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the daily notification job",
		Long: `Starts the Telegram bot and schedules the due-alert check once a day
at the configured UTC time. Handles SIGINT/SIGTERM for graceful shutdown
(finishes the current check).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram token is not configured")
			}

			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			b, err := bot.New(cfg.Telegram.Token, engine)
			if err != nil {
				return fmt.Errorf("failed to start bot: %w", err)
			}

			go b.Start()
			defer b.Stop()

			return runScheduler(engine, b, cfg.Notify.At)
		},
	}
}

// runScheduler fires the due-alert check once a day at the given UTC
// "HH:MM" and blocks until a shutdown signal arrives. A mutex skips a
// firing if the previous check is somehow still running.
func runScheduler(engine *marquee.Engine, b *bot.Bot, at string) error {
	clock, err := time.Parse("15:04", at)
	if err != nil {
		return fmt.Errorf("invalid notify time %q: %w", at, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var mu sync.Mutex
	log.Printf("marquee daemon: starting, daily check at %s UTC", at)

	for {
		next := nextRun(time.Now().UTC(), clock.Hour(), clock.Minute())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-sig:
			timer.Stop()
			log.Println("marquee daemon: received shutdown signal, exiting")
			return nil
		case <-timer.C:
		}

		if !mu.TryLock() {
			log.Println("marquee daemon: previous check still running, skipping")
			continue
		}

		start := time.Now()
		notifications, err := engine.Notify(context.Background())
		if err != nil {
			log.Printf("marquee daemon: due-alert check failed: %v", err)
		} else {
			b.Dispatch(notifications)
			log.Printf("marquee daemon: check completed in %s, %d notification(s) sent",
				time.Since(start).Round(time.Millisecond), len(notifications))
		}
		mu.Unlock()
	}
}

// nextRun is the first instant strictly after now that falls on the given
// UTC hour and minute.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
