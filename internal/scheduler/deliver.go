package scheduler

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"github.com/Doremi203/LeetCodeBot/internal/bot"
	"github.com/Doremi203/LeetCodeBot/internal/domain"
	"github.com/Doremi203/LeetCodeBot/internal/telegram"
	"github.com/Doremi203/LeetCodeBot/internal/telegram/keyboard"
)

// TelegramDeliverer pushes notifications through the bot, routed via the
// asynchronous dispatcher so a slow Telegram API never stalls the tick.
type TelegramDeliverer struct {
	bot        *tele.Bot
	dispatcher *telegram.Dispatcher
}

// NewTelegramDeliverer wires the deliverer to the bot transport.
func NewTelegramDeliverer(b *tele.Bot, d *telegram.Dispatcher) *TelegramDeliverer {
	return &TelegramDeliverer{bot: b, dispatcher: d}
}

// Deliver sends the problem with a "Solved" acknowledgment button attached.
// Delivery does not consume the problem; only the acknowledgment does.
func (d *TelegramDeliverer) Deliver(ctx context.Context, user domain.User, problem domain.Problem) error {
	text := fmt.Sprintf(
		"Time to solve some problems!\nDifficulty: %s\nTitle: %s\nId: %d\nLink: %s",
		problem.Difficulty, problem.Title, problem.ID, problem.URL(),
	)
	markup := keyboard.InlineRow(keyboard.InlineBtn{
		Text: "Solved",
		Data: bot.SolvedCallbackData(problem.ID),
	})

	recipient := &tele.User{ID: user.ID}
	run := func() error {
		_, err := d.bot.Send(recipient, text, markup)
		return err
	}

	if d.dispatcher == nil {
		return run()
	}
	if err := d.dispatcher.Enqueue(ctx, "notify", run); err != nil {
		// Queue saturated or closing: fall back to a synchronous send.
		return run()
	}
	return nil
}
