package router

import (
	"time"

	tg "github.com/nosmoke/coachbot/core/telegram"
	tghelpers "github.com/nosmoke/coachbot/core/telegram/helpers"
	"github.com/nosmoke/coachbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Flow routes free-form text according to the user's stored conversation state.
// HandleText reports whether the message was consumed by the flow.
type Flow interface {
	HandleText(c tele.Context) (bool, error)
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the handler for text routing: conversation flow first,
// then text-aliased commands from the registry, then the fallback.
func TextRoutes(flow Flow, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if flow != nil {
			tghelpers.WithHandler(c, "flow")
			handled, err := flow.HandleText(c)
			if handled || err != nil {
				logHandlerSummary(c, "flow", start, "", "", err)
				return err
			}
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
