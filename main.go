package main

import (
	"flag"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/booking"
	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/repository"
	"github.com/ghaggin/coachportal/internal/session"
	"github.com/ghaggin/coachportal/internal/web"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	var path = flag.String("config", "config/config.yaml", "path to the yaml config file")
	flag.Parse()

	newPath := func() config.Path {
		return config.Path(*path)
	}

	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Provide(
			newPath,
			config.New,
			newLogger,
			clockwork.NewRealClock,
			middleware.NewSessionManager,
			tokenStore,
			sessionStore,
			api.New,
			backend,
			session.New,
			repository.NewJSON,
			booking.NewHub,
		),
		web.Module,
		fx.Invoke(web.RegisterHooks),
	)

	app.Run()
}

func newLogger(c *config.Config) (*zap.Logger, error) {
	if c.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func tokenStore(sm *middleware.SessionManager) api.TokenStore {
	return sm
}

func sessionStore(sm *middleware.SessionManager) session.Store {
	return sm
}

func backend(c *api.Client) session.Backend {
	return c
}
