package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.hackfix.me/hello/app/context"
	"go.hackfix.me/hello/store"
)

// Option is a function that allows configuring the application.
type Option func(*App) error

// WithContext sets the context of the application. Cancelling it stops
// long-running commands such as the web servers.
func WithContext(ctx context.Context) Option {
	return func(app *App) error {
		app.ctx.Ctx = ctx
		return nil
	}
}

// WithEnv sets the process environment used by the application.
func WithEnv(env actx.Environment) Option {
	return func(app *App) error {
		app.ctx.Env = env
		return nil
	}
}

// WithExit sets the function that stops the application.
func WithExit(fn func(int)) Option {
	return func(app *App) error {
		app.Exit = fn
		return nil
	}
}

// WithFDs sets the file descriptors used by the application.
func WithFDs(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *App) error {
		app.ctx.Stdin = stdin
		app.ctx.Stdout = stdout
		app.ctx.Stderr = stderr
		return nil
	}
}

// WithFS sets the filesystem used by the application.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) error {
		app.ctx.FS = fs
		return nil
	}
}

// WithLogger initializes the logger used by the application. Its level is set
// by the --log-level flag on every run.
func WithLogger(isStdoutTTY, isStderrTTY bool) Option {
	return func(app *App) error {
		logger := slog.New(
			tint.NewHandler(app.ctx.Stderr, &tint.Options{
				Level:      app.logLevel,
				NoColor:    !isStderrTTY,
				TimeFormat: "2006-01-02 15:04:05.000",
			}),
		)
		app.ctx.Logger = logger
		return nil
	}
}

// WithStore sets the key-value store used by the application, instead of
// opening the one selected by the --store flag.
func WithStore(s store.Store) Option {
	return func(app *App) error {
		app.ctx.Store = s
		return nil
	}
}
