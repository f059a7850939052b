package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Doremi203/LeetCodeBot/internal/bot"
	"github.com/Doremi203/LeetCodeBot/internal/config"
	"github.com/Doremi203/LeetCodeBot/internal/database"
	"github.com/Doremi203/LeetCodeBot/internal/leetcode"
	"github.com/Doremi203/LeetCodeBot/internal/logger"
	"github.com/Doremi203/LeetCodeBot/internal/scheduler"
	"github.com/Doremi203/LeetCodeBot/internal/storage"
	"github.com/Doremi203/LeetCodeBot/internal/telegram"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("leetcodebot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		return err
	}

	rt, err := telegram.New(cfg)
	if err != nil {
		return err
	}

	users := storage.NewPostgresUsers(db)
	solved := storage.NewPostgresSolved(db)
	bot.Register(rt.Bot, bot.Deps{
		Users:   users,
		Solved:  solved,
		AdminID: cfg.Telegram.AdminID,
	})

	// Timezone validity is checked by config.Normalize.
	loc, err := time.LoadLocation(cfg.Notifier.Timezone)
	if err != nil {
		return err
	}
	catalog := leetcode.NewClient(cfg.Catalog,
		telegram.BuildHTTPClient(time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second))

	sched := scheduler.New(scheduler.Options{
		Users:     users,
		Solved:    solved,
		Catalog:   catalog,
		Deliverer: scheduler.NewTelegramDeliverer(rt.Bot, rt.Dispatcher),
		Location:  loc,
		Tick:      cfg.Notifier.TickInterval(),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = sched.Run(ctx)
	}()

	runErr := rt.Run(ctx)
	cancel()
	wg.Wait()
	return runErr
}
