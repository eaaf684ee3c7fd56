package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/nosmoke/coachbot/bot/onboarding"
	"github.com/nosmoke/coachbot/bot/sos"
	"github.com/nosmoke/coachbot/bot/storage"
	"github.com/nosmoke/coachbot/core/bootstrap"
	"github.com/nosmoke/coachbot/core/buildinfo"
	coretelegram "github.com/nosmoke/coachbot/core/telegram"
	"github.com/nosmoke/coachbot/core/telegram/commands"
	tghelpers "github.com/nosmoke/coachbot/core/telegram/helpers"
	"github.com/nosmoke/coachbot/core/telegram/router"
)

// App owns the wired application: store, gateway, and conversation flow.
type App struct {
	cfg       *Config
	db        *sqlx.DB
	flow      *Flow
	startedAt time.Time
}

// Bootstrap initializes logging, the database (with migrations), and the
// application services.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("handlers: nil config")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.NewPostgres(res.DB)
	gateway := sos.NewClient(cfg.LLM)

	return &App{
		cfg:       cfg,
		db:        res.DB,
		flow:      NewFlow(store, gateway),
		startedAt: time.Now(),
	}, nil
}

// TelegramRunOptions assembles registry, middleware chain, and routes
// for the bot runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.flow.HandleStart,
		Description: "Начать работу с ботом",
	})
	reg.RegisterCommand("/status", commands.Command{
		Handler:     a.handleStatus,
		Description: "Service status",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(onboarding.CallbackAcceptTerms, a.flow.HandleAcceptTerms); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.flow, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

func (a *App) handleStatus(c tele.Context) error {
	uptime := time.Since(a.startedAt).Round(time.Second)
	text := fmt.Sprintf(
		"version: %s\ncommit: %s\nbuilt: %s\nmode: %s\nuptime: %s",
		buildinfo.Version, buildinfo.Commit, buildinfo.Date,
		a.cfg.Core.Telegram.RunMode, uptime,
	)
	return tghelpers.SendText(c, text)
}
