package handlers

import (
	"context"
	"errors"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/nosmoke/coachbot/bot/onboarding"
	"github.com/nosmoke/coachbot/bot/storage"
	"github.com/nosmoke/coachbot/core/logger"
	tghelpers "github.com/nosmoke/coachbot/core/telegram/helpers"
	"github.com/nosmoke/coachbot/core/telegram/keyboard"
)

// Gateway produces one supportive reply per SOS press.
type Gateway interface {
	Reply(ctx context.Context) (string, error)
}

// Flow binds the onboarding state machine to Telegram updates. Each
// update loads the stored state, applies one transition, persists the
// result before the next prompt goes out, and sends the replies.
type Flow struct {
	store   storage.Store
	gateway Gateway
	now     func() time.Time
}

// NewFlow wires the conversation flow.
func NewFlow(store storage.Store, gateway Gateway) *Flow {
	return &Flow{store: store, gateway: gateway, now: time.Now}
}

// HandleText routes a free-form text message. It reports false when the
// text does not belong to the current step's vocabulary so the router
// can fall through to registered commands.
func (f *Flow) HandleText(c tele.Context) (bool, error) {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	st := f.loadState(ctx, userID)
	res := onboarding.Advance(st, c.Text(), f.now())

	switch res.Action {
	case onboarding.ActionSOS:
		return true, f.relaySOS(ctx, c)
	case onboarding.ActionBooking:
		return true, tghelpers.SendText(c, onboarding.BookingText)
	}

	if res.Next == nil && len(res.Prompts) == 0 {
		return false, nil
	}

	if res.Next != nil {
		// Durable before the next prompt: a crash here loses only the
		// outbound message, never recorded progress.
		if err := f.store.Put(ctx, userID, res.Next); err != nil {
			if sendErr := tghelpers.SendText(c, onboarding.ErrorText); sendErr != nil {
				return true, sendErr
			}
			return true, err
		}
	}
	return true, f.sendPrompts(c, res.Prompts)
}

// HandleAcceptTerms processes the terms-acceptance callback.
func (f *Flow) HandleAcceptTerms(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	st := f.loadState(ctx, userID)
	res := onboarding.AcceptTerms(st, f.now())

	if res.Next != nil {
		if err := f.store.Put(ctx, userID, res.Next); err != nil {
			if sendErr := tghelpers.SendText(c, onboarding.ErrorText); sendErr != nil {
				return sendErr
			}
			return err
		}
	}
	return f.sendPrompts(c, res.Prompts)
}

// HandleStart replies to /start. No state is read or written.
func (f *Flow) HandleStart(c tele.Context) error {
	return f.sendPrompt(c, onboarding.Welcome())
}

// loadState treats every read fault as "no prior state" so the
// conversation can proceed from scratch. Decode faults were already
// logged distinctly by the store; other faults are logged here.
func (f *Flow) loadState(ctx context.Context, userID int64) *onboarding.UserState {
	st, err := f.store.Get(ctx, userID)
	if err == nil {
		return st
	}
	var decodeErr *storage.DecodeError
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case errors.As(err, &decodeErr):
	default:
		logger.LogEvent(ctx, logger.SVCStore, slog.LevelWarn, "store.read_fail",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return nil
}

func (f *Flow) relaySOS(ctx context.Context, c tele.Context) error {
	if err := tghelpers.SendText(c, onboarding.ThinkingText); err != nil {
		return err
	}
	answer, err := f.gateway.Reply(ctx)
	if err != nil {
		// Failure kind is already in the gateway logs.
		if sendErr := tghelpers.SendText(c, onboarding.ApologyText); sendErr != nil {
			return sendErr
		}
		return err
	}
	return tghelpers.SendText(c, onboarding.AnswerPrefix+answer)
}

// sendPrompts delivers a transition's replies. Several prompts go out
// as a single batch so the async sender cannot reorder them.
func (f *Flow) sendPrompts(c tele.Context, prompts []onboarding.Prompt) error {
	if len(prompts) == 0 {
		return nil
	}
	if len(prompts) == 1 {
		return f.sendPrompt(c, prompts[0])
	}
	sends := make([]func() error, 0, len(prompts))
	for _, p := range prompts {
		p := p
		sends = append(sends, func() error { return sendPromptNow(c, p) })
	}
	return tghelpers.SendBatch(c, sends...)
}

func (f *Flow) sendPrompt(c tele.Context, p onboarding.Prompt) error {
	if opts := promptSendOptions(p); opts != nil {
		return tghelpers.SendText(c, p.Text, opts)
	}
	return tghelpers.SendText(c, p.Text)
}

// sendPromptNow bypasses the async sender; callers run it inside one
// dispatcher job.
func sendPromptNow(c tele.Context, p onboarding.Prompt) error {
	if opts := promptSendOptions(p); opts != nil {
		return c.Send(p.Text, opts)
	}
	return c.Send(p.Text)
}

func promptSendOptions(p onboarding.Prompt) *tele.SendOptions {
	markup := promptMarkup(p)
	if p.Markdown {
		return &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	}
	if markup != nil {
		return &tele.SendOptions{ReplyMarkup: markup}
	}
	return nil
}

func promptMarkup(p onboarding.Prompt) *tele.ReplyMarkup {
	switch {
	case len(p.Inline) > 0:
		btns := make([]keyboard.InlineBtn, 0, len(p.Inline))
		for _, b := range p.Inline {
			btns = append(btns, keyboard.InlineBtn{Text: b.Text, Unique: b.Key})
		}
		return keyboard.InlineButtons(btns)
	case len(p.Options) > 0:
		return keyboard.ReplyButtons(p.Options...)
	case p.ClearKeyboard:
		return keyboard.RemoveKeyboard()
	}
	return nil
}
