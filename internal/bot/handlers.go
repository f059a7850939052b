// Package bot implements the conversation state machine and its Telegram
// handlers. The pure transition lives in flow.go; handlers.go binds it to the
// transport and the stores.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
	"github.com/Doremi203/LeetCodeBot/internal/logger"
	"github.com/Doremi203/LeetCodeBot/internal/storage"
	"github.com/Doremi203/LeetCodeBot/internal/telegram"
	"github.com/Doremi203/LeetCodeBot/internal/telegram/keyboard"
)

const defaultEditorTTL = 30 * time.Second

// Deps wires the handlers to storage and runtime settings.
type Deps struct {
	Users   storage.Users
	Solved  storage.Solved
	AdminID int64
	// EditorTTL is how long the inline difficulty editor stays on screen
	// before its messages are deleted. Zero means the default 30 seconds.
	EditorTTL time.Duration
}

// Handlers routes Telegram updates through the conversation flow.
type Handlers struct {
	users     storage.Users
	solved    storage.Solved
	adminID   int64
	editorTTL time.Duration
}

// Register binds the conversation handlers to the bot.
func Register(b *tele.Bot, deps Deps) *Handlers {
	h := &Handlers{
		users:     deps.Users,
		solved:    deps.Solved,
		adminID:   deps.AdminID,
		editorTTL: deps.EditorTTL,
	}
	if h.editorTTL <= 0 {
		h.editorTTL = defaultEditorTTL
	}

	b.Handle("/start", h.OnText)
	b.Handle("/forget", h.OnForget)
	b.Handle(tele.OnText, h.OnText)
	b.Handle(tele.OnCallback, h.OnCallback)
	return h
}

// OnText feeds a plain text message through the transition.
func (h *Handlers) OnText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ev := Event{Kind: EventText, UserID: sender.ID, Text: c.Text()}
	return h.handle(c, "text", ev)
}

// OnCallback parses the inline button payload and feeds it through the
// transition, answering the callback query either way.
func (h *Handlers) OnCallback(c tele.Context) error {
	defer func() { _ = c.Respond() }()

	sender := c.Sender()
	cbq := c.Callback()
	if sender == nil || cbq == nil {
		return nil
	}

	cb, err := ParseCallback(cbq.Data)
	if err != nil {
		ctx := telegram.Ctx(c)
		logger.BOT.LogAttrs(ctx, slog.LevelWarn, "",
			slog.String("event", "callback.malformed"),
			slog.Int64("user_id", sender.ID),
			slog.String("payload", logger.SanitizeLimit(cbq.Data, 128)),
		)
		return h.replyValidation(c, err)
	}

	ev := Event{Kind: EventCallback, UserID: sender.ID, Callback: cb}
	return h.handle(c, "callback:"+cb.Command, ev)
}

// OnForget is the administrative profile delete: /forget <user id>.
func (h *Handlers) OnForget(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := telegram.Ctx(c)
	if h.adminID == 0 || sender.ID != h.adminID {
		logger.BOT.LogAttrs(ctx, slog.LevelWarn, "",
			slog.String("event", "forget.denied"),
			slog.Int64("user_id", sender.ID),
		)
		return nil
	}

	target, err := strconv.ParseInt(strings.TrimSpace(c.Message().Payload), 10, 64)
	if err != nil {
		return c.Send("Usage: /forget <user id>")
	}
	if err := h.users.Delete(ctx, target); err != nil {
		logger.BOT.LogAttrs(ctx, slog.LevelError, "",
			slog.String("event", "forget.failed"),
			slog.Int64("user_id", target),
			slog.String("err", err.Error()),
		)
		return c.Send(msgTryAgainLater)
	}
	return c.Send(fmt.Sprintf("User %d forgotten.", target))
}

func (h *Handlers) handle(c tele.Context, name string, ev Event) error {
	start := time.Now()
	ctx := logger.WithHandler(telegram.Ctx(c), name)

	user, err := h.lookup(ctx, ev.UserID)
	if err != nil {
		h.logSummary(ctx, name, start, "fail", err)
		return c.Send(msgTryAgainLater)
	}

	out, terr := Transition(user, ev, time.Now().UTC())
	if terr != nil {
		return h.transitionError(ctx, c, name, start, terr)
	}

	if out.IsNoop() {
		h.logSummary(ctx, name, start, "skip", nil)
		return nil
	}

	if err := h.apply(ctx, c, out); err != nil {
		h.logSummary(ctx, name, start, "fail", err)
		return err
	}

	h.logSummary(ctx, name, start, "ok", nil)
	return nil
}

func (h *Handlers) lookup(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := h.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// apply executes an outcome in its fixed order: every store mutation is
// committed before the first reply goes out.
func (h *Handlers) apply(ctx context.Context, c tele.Context, out Outcome) error {
	if out.Create != nil {
		if err := h.users.Create(ctx, *out.Create); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	}
	if out.Update != nil && !out.Update.IsZero() {
		if err := h.users.Update(ctx, *out.Update); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
	}
	if out.Solved != nil {
		if err := h.solved.Add(ctx, *out.Solved); err != nil {
			return fmt.Errorf("append solved record: %w", err)
		}
	}

	if out.DeleteSource {
		if err := c.Delete(); err != nil {
			logger.BOT.LogAttrs(ctx, slog.LevelWarn, "",
				slog.String("event", "message.delete_failed"),
				slog.String("err", err.Error()),
			)
		}
	}
	for _, reply := range out.Replies {
		if err := h.send(c, reply); err != nil {
			return fmt.Errorf("send reply: %w", err)
		}
	}
	if out.OpenDifficultyEditor {
		return h.openDifficultyEditor(ctx, c)
	}
	return nil
}

func (h *Handlers) send(c tele.Context, reply Reply) error {
	if markup := markupFor(reply.Keyboard); markup != nil {
		return c.Send(reply.Text, markup)
	}
	return c.Send(reply.Text)
}

func markupFor(kind KeyboardKind) *tele.ReplyMarkup {
	switch kind {
	case KeyboardMenu:
		return keyboard.ReplyButtons(
			[]string{btnGetSettings},
			[]string{btnChangeTime},
			[]string{btnChangeLevel},
			[]string{btnUnsubscribe},
		)
	case KeyboardTime:
		return keyboard.ReplyButtons(
			[]string{domain.TimeSlotTen.String(), domain.TimeSlotFourteen.String()},
			[]string{domain.TimeSlotEighteen.String(), domain.TimeSlotTwentyTwo.String()},
		)
	case KeyboardDifficulty:
		return keyboard.ReplyButtons(
			[]string{"Easy"},
			[]string{"Medium"},
			[]string{"Hard"},
			[]string{btnSaveLevel},
		)
	case KeyboardSubscribe:
		return keyboard.ReplyButtons([]string{btnSubscribe})
	}
	return nil
}

// openDifficultyEditor sends a header plus one inline add/remove row per level
// and deletes all of them after the editor TTL.
func (h *Handlers) openDifficultyEditor(ctx context.Context, c tele.Context) error {
	recipient := c.Recipient()
	if recipient == nil {
		return errors.New("difficulty editor: no recipient")
	}
	api := c.Bot()

	messages := make([]*tele.Message, 0, 4)
	header, err := api.Send(recipient, "Tinker difficulty:")
	if err != nil {
		return fmt.Errorf("send editor header: %w", err)
	}
	messages = append(messages, header)

	for _, level := range domain.Levels {
		add, remove := levelCommands(level)
		msg, err := api.Send(recipient, level.String(), keyboard.InlineRow(
			keyboard.InlineBtn{Text: "Add", Data: add},
			keyboard.InlineBtn{Text: "Remove", Data: remove},
		))
		if err != nil {
			return fmt.Errorf("send editor row %s: %w", level, err)
		}
		messages = append(messages, msg)
	}

	time.AfterFunc(h.editorTTL, func() {
		for _, m := range messages {
			if err := api.Delete(m); err != nil {
				logger.BOT.LogAttrs(ctx, slog.LevelDebug, "",
					slog.String("event", "editor.expire_failed"),
					slog.String("err", err.Error()),
				)
			}
		}
	})
	return nil
}

func levelCommands(level domain.Difficulty) (add, remove string) {
	switch level {
	case domain.DifficultyEasy:
		return cbEasyAdd, cbEasyRemove
	case domain.DifficultyMedium:
		return cbMediumAdd, cbMediumRemove
	}
	return cbHardAdd, cbHardRemove
}

func (h *Handlers) transitionError(ctx context.Context, c tele.Context, name string, start time.Time, err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		h.logSummary(ctx, name, start, "skip", err)
		return nil
	}
	if _, ok := domain.IsValidation(err); ok {
		h.logSummary(ctx, name, start, "fail", err)
		return h.replyValidation(c, err)
	}
	// Unknown state or malformed event: a programming error. Fatal for this
	// operation, never for the process.
	h.logSummary(ctx, name, start, "fail", err)
	return nil
}

func (h *Handlers) replyValidation(c tele.Context, err error) error {
	if ve, ok := domain.IsValidation(err); ok {
		return c.Send(ve.Prompt)
	}
	return c.Send(msgTryAgainLater)
}

func (h *Handlers) logSummary(ctx context.Context, name string, start time.Time, status string, err error) {
	outcome := status
	attrs := []slog.Attr{
		slog.String("event", "handler.handled"),
		slog.String("status", status),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if userID := logger.UserIDFrom(ctx); userID != 0 {
		attrs = append(attrs, slog.Int64("user_id", userID))
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.BOT.LogAttrs(ctx, slog.LevelInfo, "", attrs...)
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return "NOT_FOUND"
	}
	return "UNKNOWN_ERROR"
}
