package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/paymybuddy/pkg/config"
	"github.com/dmitrymomot/paymybuddy/pkg/environment"
	"github.com/dmitrymomot/paymybuddy/pkg/logger"
	"github.com/dmitrymomot/paymybuddy/pkg/redis"
	"github.com/dmitrymomot/paymybuddy/pkg/tab"
	"github.com/dmitrymomot/paymybuddy/pkg/webstorage"
)

func loadEnvFiles(c *cli.Context) error {
	return config.LoadEnvFiles(c.StringSlice("env-file")...)
}

// session is a mounted tab and the resources it holds.
type session struct {
	*tab.Tab
	client  *goredis.Client
	storage webstorage.Storage
	out     io.Writer
}

// openSession connects to the shared storage and mounts a tab. reloader runs
// whenever the tab must reload.
func openSession(c *cli.Context, reloader func()) (*session, error) {
	ctx := c.Context

	var rcfg redis.Config
	if err := config.Load(&rcfg); err != nil {
		return nil, err
	}
	rcfg.ConnectionURL = c.String("redis-url")

	client, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return nil, err
	}
	var scfg webstorage.Config
	if err := config.Load(&scfg); err != nil {
		_ = client.Close()
		return nil, err
	}
	// Tabs of the terminal client are separate processes.
	scfg.Driver = webstorage.DriverRedis
	if c.IsSet("prefix") {
		scfg.KeyPrefix = c.String("prefix")
	}

	storage, err := webstorage.Open(scfg, nil, client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	t, err := tab.Open(ctx, tab.Config{
		BaseURL:  c.String("api"),
		Storage:  storage,
		Reloader: reloader,
		Logger:   newLogger(c),
	}, nil)
	if err != nil {
		_ = storage.Close()
		_ = client.Close()
		return nil, err
	}

	s := &session{Tab: t, client: client, storage: storage, out: c.App.Writer}
	if err := t.Mount(ctx); err != nil && !errors.Is(err, tab.ErrRemember) {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	_ = s.Tab.Close()
	_ = s.storage.Close()
	_ = s.client.Close()
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// describe prints the identity of the tab.
func (s *session) describe() {
	if u := s.Guard().User(); u != nil {
		s.printf("%s <%s>\n", u.Name, u.Email)
		return
	}
	s.printf("anonymous\n")
}

func newLogger(c *cli.Context) *slog.Logger {
	if !c.Bool("verbose") {
		return slog.New(slog.DiscardHandler)
	}
	return logger.New(
		logger.WithEnvironment(environment.Development, "buddy"),
		logger.WithOutput(os.Stderr),
	)
}

// authenticated fails when the tab has no session.
func (s *session) authenticated(ctx context.Context) error {
	if !s.Guard().Authenticated() {
		return cli.Exit("not logged in, run: buddy login", 2)
	}
	return ctx.Err()
}
