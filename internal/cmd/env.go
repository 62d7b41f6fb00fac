package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/gravitrone/keyadmin/internal/api"
	"github.com/gravitrone/keyadmin/internal/config"
	"github.com/gravitrone/keyadmin/internal/keys"
	"github.com/gravitrone/keyadmin/internal/logging"
)

// searchBurst lets a burst of keystrokes through before the rate applies.
const searchBurst = 2

// Env is everything a command needs to talk to the server.
type Env struct {
	Config *config.Config
	Client *api.Client
	Log    zerolog.Logger

	closer io.Closer
}

// OpenEnv loads the config and builds the logger and API client. When
// requireToken is set a missing config or token is reported as not logged in.
func OpenEnv(requireToken bool) (*Env, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, err
	}
	if requireToken {
		if err := cfg.RequireToken(); err != nil {
			return nil, fmt.Errorf("not logged in: %w", err)
		}
	}

	log, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, Output: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}

	client := api.NewClient(cfg.BaseURL, cfg.Token).
		WithSearchRate(cfg.SearchRate, searchBurst).
		WithLogger(logging.WithComponent(log, "api"))
	return &Env{Config: cfg, Client: client, Log: log, closer: closer}, nil
}

// Console builds a key console over the env's client.
func (e *Env) Console(ctx context.Context) *keys.Console {
	return keys.NewConsole(ctx, api.NewRepository(e.Client), logging.WithComponent(e.Log, "keys"))
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

func friendlyError(action string, err error) error {
	if errors.Is(err, keys.ErrUnauthorized) {
		return fmt.Errorf("%s: session expired, run 'keyadmin login': %w", action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
