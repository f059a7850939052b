package bot

import (
	"fmt"
	"time"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

// User-facing texts of the conversation flow.
const (
	msgWelcome       = "This bot sends coding problem from LeetCode at chosen time."
	msgChooseTime    = "Choose time, when you want to receive notifications:"
	msgTimeChosen    = "Notification time chosen."
	msgChooseLevel   = "Choose problems difficulty:"
	msgPickOneLevel  = "Please select at least one difficulty"
	msgRegistered    = "You are registered. You will receive notifications at chosen time and with chosen difficulty."
	msgUnsubscribed  = "You are unsubscribed from bot."
	msgTryAgainLater = "Internal error. Please try again later."

	btnGetSettings = "Get settings"
	btnChangeTime  = "Change notification time"
	btnChangeLevel = "Change difficulty"
	btnUnsubscribe = "Unsubscribe from the bot"
	btnSubscribe   = "Subscribe to the bot"
	btnSaveLevel   = "Save difficulty"
)

// EventKind tags an inbound chat event.
type EventKind int

const (
	EventText EventKind = iota
	EventCallback
)

// Event is one inbound chat event addressed to a single user.
type Event struct {
	Kind     EventKind
	UserID   int64
	Text     string
	Callback Callback
}

// KeyboardKind names the reply keyboard attached to an outbound message.
// Handlers translate kinds into transport markup.
type KeyboardKind int

const (
	KeyboardNone KeyboardKind = iota
	KeyboardMenu
	KeyboardTime
	KeyboardDifficulty
	KeyboardSubscribe
)

// Reply is one outbound message of an Outcome.
type Reply struct {
	Text     string
	Keyboard KeyboardKind
}

// Outcome is everything a transition wants done, in order: profile create,
// coalescing profile update, solved-record append, source-message delete, then
// replies. Store mutations are committed before any reply is sent, so a crash
// between the two leaves retryable, idempotent work only.
type Outcome struct {
	Create  *domain.User
	Update  *domain.UserUpdate
	Solved  *domain.SolvedRecord
	Replies []Reply

	// DeleteSource removes the message the event originated from (the
	// delivered problem, once acknowledged).
	DeleteSource bool
	// OpenDifficultyEditor sends the self-expiring inline add/remove keyboard.
	OpenDifficultyEditor bool
}

// IsNoop reports whether the outcome carries no mutation and no reply.
func (o Outcome) IsNoop() bool {
	return o.Create == nil && o.Update == nil && o.Solved == nil &&
		len(o.Replies) == 0 && !o.DeleteSource && !o.OpenDifficultyEditor
}

// Transition is the pure conversation step: current profile (nil when absent)
// plus one event yield the mutations and replies to apply. It never touches
// storage or the transport, which keeps every row of the state table unit
// testable.
func Transition(user *domain.User, ev Event, now time.Time) (Outcome, error) {
	switch ev.Kind {
	case EventText:
		return transitionText(user, ev)
	case EventCallback:
		return transitionCallback(user, ev, now)
	}
	return Outcome{}, fmt.Errorf("unknown event kind %d", ev.Kind)
}

func transitionText(user *domain.User, ev Event) (Outcome, error) {
	if user == nil {
		return startOnboarding(ev.UserID), nil
	}

	switch user.State {
	// A NewUser row only survives a crash between create and the first prompt,
	// so it is treated the same as the time setup step.
	case domain.StateNewUser, domain.StateTimeSetup:
		return timeSetupStep(user, ev.Text), nil
	case domain.StateDifficultySetup:
		return difficultySetupStep(user, ev.Text)
	case domain.StateRegistered:
		return registeredStep(user, ev.Text), nil
	}
	return Outcome{}, fmt.Errorf("user %d in unknown state %d", user.ID, user.State)
}

// startOnboarding creates the profile and immediately prompts for a time slot.
// The fresh row is written as NewUser and advanced in the same outcome, so a
// crash in between just repeats the prompt on the next message.
func startOnboarding(userID int64) Outcome {
	state := domain.StateTimeSetup
	return Outcome{
		Create: &domain.User{
			ID:         userID,
			State:      domain.StateNewUser,
			Difficulty: domain.DifficultyNotSet,
			TimeSlot:   domain.TimeSlotNotSet,
		},
		Update: &domain.UserUpdate{ID: userID, State: &state},
		Replies: []Reply{
			{Text: msgWelcome},
			{Text: msgChooseTime, Keyboard: KeyboardTime},
		},
	}
}

func timeSetupStep(user *domain.User, text string) Outcome {
	slot, ok := domain.ParseTimeSlot(text)
	if !ok {
		return Outcome{}
	}

	upd := domain.UserUpdate{ID: user.ID, TimeSlot: &slot}
	if !user.Difficulty.IsSet() {
		state := domain.StateDifficultySetup
		upd.State = &state
		return Outcome{
			Update: &upd,
			Replies: []Reply{
				{Text: msgTimeChosen},
				{Text: msgChooseLevel, Keyboard: KeyboardDifficulty},
			},
		}
	}

	state := domain.StateRegistered
	upd.State = &state
	return Outcome{
		Update:  &upd,
		Replies: []Reply{{Text: msgTimeChosen, Keyboard: KeyboardMenu}},
	}
}

func difficultySetupStep(user *domain.User, text string) (Outcome, error) {
	if level, ok := domain.ParseDifficulty(text); ok {
		return addDifficulty(user, level), nil
	}

	if text == btnSaveLevel {
		if !user.Difficulty.IsSet() {
			return Outcome{}, domain.Validationf(msgPickOneLevel)
		}
		state := domain.StateRegistered
		return Outcome{
			Update:  &domain.UserUpdate{ID: user.ID, State: &state},
			Replies: []Reply{{Text: msgRegistered, Keyboard: KeyboardMenu}},
		}, nil
	}

	return Outcome{}, nil
}

func registeredStep(user *domain.User, text string) Outcome {
	switch text {
	case btnGetSettings:
		return Outcome{Replies: []Reply{{
			Text: fmt.Sprintf("Time: %s\nDifficulty: %s", user.TimeSlot, user.Difficulty),
		}}}
	case btnChangeTime, btnSubscribe:
		state := domain.StateTimeSetup
		return Outcome{
			Update:  &domain.UserUpdate{ID: user.ID, State: &state},
			Replies: []Reply{{Text: msgChooseTime, Keyboard: KeyboardTime}},
		}
	case btnChangeLevel:
		return Outcome{OpenDifficultyEditor: true}
	case btnUnsubscribe:
		slot := domain.TimeSlotNotSet
		return Outcome{
			Update:  &domain.UserUpdate{ID: user.ID, TimeSlot: &slot},
			Replies: []Reply{{Text: msgUnsubscribed, Keyboard: KeyboardSubscribe}},
		}
	}
	return Outcome{}
}

func transitionCallback(user *domain.User, ev Event, now time.Time) (Outcome, error) {
	cb := ev.Callback
	switch cb.Command {
	case cbEasyAdd, cbMediumAdd, cbHardAdd, cbEasyRemove, cbMediumRemove, cbHardRemove:
		if user == nil {
			return Outcome{}, domain.ErrUserNotFound
		}
		level, remove := parseLevelCommand(cb.Command)
		if remove {
			return removeDifficulty(user, level), nil
		}
		return addDifficulty(user, level), nil

	case cbProblemSolved:
		if !cb.HasArg {
			return Outcome{}, domain.Validationf(msgTryAgainLater)
		}
		rec := domain.NewSolvedRecord(ev.UserID, cb.Arg, now)
		return Outcome{
			Solved:       &rec,
			DeleteSource: true,
			Replies:      []Reply{{Text: fmt.Sprintf("Problem %d marked as solved.", cb.Arg)}},
		}, nil
	}

	return Outcome{}, domain.Validationf(msgTryAgainLater)
}

func parseLevelCommand(command string) (level domain.Difficulty, remove bool) {
	switch command {
	case cbEasyAdd:
		return domain.DifficultyEasy, false
	case cbEasyRemove:
		return domain.DifficultyEasy, true
	case cbMediumAdd:
		return domain.DifficultyMedium, false
	case cbMediumRemove:
		return domain.DifficultyMedium, true
	case cbHardAdd:
		return domain.DifficultyHard, false
	}
	return domain.DifficultyHard, true
}

func addDifficulty(user *domain.User, level domain.Difficulty) Outcome {
	next := user.Difficulty.Add(level)
	return Outcome{
		Update:  &domain.UserUpdate{ID: user.ID, Difficulty: &next},
		Replies: []Reply{{Text: fmt.Sprintf("Difficulty %s added.", level)}},
	}
}

func removeDifficulty(user *domain.User, level domain.Difficulty) Outcome {
	next := user.Difficulty.Remove(level)
	return Outcome{
		Update:  &domain.UserUpdate{ID: user.ID, Difficulty: &next},
		Replies: []Reply{{Text: fmt.Sprintf("Difficulty %s removed.", level)}},
	}
}
