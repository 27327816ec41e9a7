package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"go.hackfix.me/hello/app"
	actx "go.hackfix.me/hello/app/context"
)

func main() {
	envErr := loadDotEnv(".env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(filepath.Join(xdg.DataHome, "hello"),
		app.WithContext(ctx),
		app.WithFDs(
			os.Stdin,
			colorable.NewColorable(os.Stdout),
			colorable.NewColorable(os.Stderr),
		),
		app.WithFS(osfs.New()),
		app.WithEnv(osEnv{}),
		app.WithLogger(
			isatty.IsTerminal(os.Stdout.Fd()),
			isatty.IsTerminal(os.Stderr.Fd()),
		),
		app.WithExit(os.Exit),
	)
	if err != nil {
		slog.Error(fmt.Sprintf("failed initializing app: %s", err))
		os.Exit(1)
	}

	if envErr != nil {
		slog.Warn(envErr.Error())
	}

	err = a.Run(os.Args[1:])
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	cancel()
	a.FatalIfErrorf(err)
}

// loadDotEnv loads the environment variables in the file at path. A missing
// file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed loading %s: %w", path, err)
	}
	return nil
}

type osEnv struct{}

var _ actx.Environment = &osEnv{}

func (e osEnv) Get(key string) string {
	return os.Getenv(key)
}

func (e osEnv) Set(key, val string) error {
	return os.Setenv(key, val)
}
