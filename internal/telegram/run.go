// Package telegram owns the bot transport: poller construction, middleware,
// the retrying HTTP client, and the asynchronous outbound dispatcher.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/Doremi203/LeetCodeBot/internal/config"
	"github.com/Doremi203/LeetCodeBot/internal/logger"
)

// Runtime bundles the constructed bot with its outbound dispatcher so callers
// can register handlers and hand the dispatcher to the scheduler before Run.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *Dispatcher

	cfg *config.Config
}

// New builds the bot with the configured poller, middleware chain, and
// dispatcher. It does not start polling.
func New(cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram: nil config provided")
	}

	poller := BuildPoller(cfg)
	buildStart := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(0),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	bot.Use(Recover)
	bot.Use(Logging)
	bot.Use(RateLimit(cfg.RateLimit))

	switch p := poller.(type) {
	case *tele.Webhook:
		logger.TG.Info("webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", logger.Took(buildStart)),
		)
	default:
		logger.TG.Info("polling mode",
			slog.String("event", "mode"),
			slog.String("mode", "polling"),
			slog.Duration("duration", logger.Took(buildStart)),
		)
		if err := deleteWebhook(cfg.Telegram.Token); err != nil {
			logger.TG.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("err", err.Error()),
			)
		}
	}

	return &Runtime{
		Bot:        bot,
		Dispatcher: NewDispatcher(DispatcherOptions{MaxRetries: 3}),
		cfg:        cfg,
	}, nil
}

// Run starts the bot and blocks until the context is cancelled or polling
// stops on its own. The dispatcher is drained before returning.
func (rt *Runtime) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	done := make(chan struct{})
	go func() {
		rt.Bot.Start()
		close(done)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		rt.Bot.Stop()
		<-done
		runErr = ctx.Err()
	case <-done:
	}

	rt.Dispatcher.Close()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// deleteWebhook drops a stale webhook registration before long polling starts.
func deleteWebhook(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
