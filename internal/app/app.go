// Package app assembles the hotel bot: configuration, infrastructure
// bootstrap and the Telegram run options consumed by core/cmd.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/hotelbot/core/bootstrap"
	corecmd "github.com/m3rciful/hotelbot/core/cmd"
	coretelegram "github.com/m3rciful/hotelbot/core/telegram"
	"github.com/m3rciful/hotelbot/core/telegram/router"
	"github.com/m3rciful/hotelbot/core/telegram/state"
	"github.com/m3rciful/hotelbot/core/telegram/ui"
	"github.com/m3rciful/hotelbot/internal/bot"
	"github.com/m3rciful/hotelbot/internal/dialog"
	"github.com/m3rciful/hotelbot/internal/hotels"
	"github.com/m3rciful/hotelbot/internal/storage"
)

// App holds the assembled bot components.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	handlers *bot.Handlers
}

// Load reads configuration for corecmd.Run.
func Load(path string) (corecmd.ConfigCarrier, error) {
	return LoadConfig(path)
}

// Bootstrap initializes the logger, database and domain services.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	repo := storage.NewPostgresRepository(infra.DB)
	api := hotels.NewClient(cfg.Hotels)
	machine := dialog.NewMachine(repo, api, cfg.Currency)
	fsm := state.NewMemoryManager()

	return &App{
		cfg:      cfg,
		db:       infra.DB,
		handlers: bot.NewHandlers(machine, fsm),
	}, nil
}

// TelegramRunOptions wires the registry, routers and middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	var fallbacks ui.FallbackProvider = a.handlers
	reg.SetCallbackNotFound(fallbacks.UnknownCallback())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a.handlers.FSM(), reg, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)

	middlewares := coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil)
	middlewares = append(middlewares, coretelegram.Middleware{
		Name: "fsm_session",
		Use:  state.WithSession(a.handlers.FSM()),
	})

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
