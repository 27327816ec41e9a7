package app

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/osfs"

	"go.hackfix.me/hello/app/cli"
	actx "go.hackfix.me/hello/app/context"
	aerrors "go.hackfix.me/hello/app/errors"
	"go.hackfix.me/hello/store"
	"go.hackfix.me/hello/store/badger"
	"go.hackfix.me/hello/store/redis"
	"go.hackfix.me/hello/store/sqlite"
)

// EncryptionKeyEnvar is the environment variable holding the hex encoded key
// of the encrypted badger store.
const EncryptionKeyEnvar = "HELLO_ENCRYPTION_KEY"

// App is the application.
type App struct {
	ctx      *actx.Context
	cli      *cli.CLI
	dataDir  string
	logLevel *slog.LevelVar

	// storeFlags are the flags the current store was opened with. It's nil
	// if the store was set with WithStore.
	storeFlags *cli.StoreFlags

	Exit func(int)
}

// New initializes a new application. dataDir is where the on-disk stores are
// kept; the special value ":memory:" keeps them in memory.
func New(dataDir string, opts ...Option) (*App, error) {
	version := actx.GetVersion()
	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		Version: version.String(),
		FS:      osfs.New(),
		Logger:  slog.Default(),
	}
	app := &App{
		ctx:      defaultCtx,
		dataDir:  dataDir,
		logLevel: &slog.LevelVar{},
		Exit:     func(int) {},
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	slog.SetDefault(app.ctx.Logger)

	return app, nil
}

// Run parses args and executes the selected command.
func (app *App) Run(args []string) error {
	app.cli = &cli.CLI{}
	if err := app.cli.Setup(app.ctx, args, app.Exit); err != nil {
		return err
	}

	app.logLevel.Set(app.cli.LogLevel)

	if app.cli.NeedsStore() && app.storeStale() {
		if err := app.Close(); err != nil {
			return fmt.Errorf("failed closing store: %w", err)
		}
		s, err := app.openStore()
		if err != nil {
			return err
		}
		app.ctx.Store = s
		flags := app.cli.StoreFlags
		app.storeFlags = &flags
	}

	return app.cli.Execute(app.ctx)
}

// storeStale returns true if no store is open, or if the open store doesn't
// match the store flags of the current run.
func (app *App) storeStale() bool {
	if app.ctx.Store == nil {
		return true
	}
	return app.storeFlags != nil && *app.storeFlags != app.cli.StoreFlags
}

// Close releases the resources held by the application.
func (app *App) Close() error {
	if app.ctx.Store == nil {
		return nil
	}
	err := app.ctx.Store.Close()
	app.ctx.Store = nil
	app.storeFlags = nil
	return err
}

// FatalIfErrorf terminates the application with an error message if err != nil.
func (app *App) FatalIfErrorf(err error, args ...any) {
	if err == nil {
		return
	}

	var errWithHint aerrors.WithHint
	if errors.As(err, &errWithHint) && errWithHint.Hint() != "" {
		args = append(args, "hint", errWithHint.Hint())
	}
	app.ctx.Logger.Error(err.Error(), args...)
	app.Exit(1)
}

func (app *App) inMemory() bool {
	return app.dataDir == ":memory:"
}

func (app *App) openStore() (store.Store, error) {
	flags := app.cli.StoreFlags
	logger := app.ctx.Logger.With("store", flags.Store)

	switch flags.Store {
	case "redis":
		s, err := redis.Open(app.ctx.Ctx, redis.Config{
			Address:  flags.RedisAddress,
			Password: flags.RedisPassword,
			DB:       flags.RedisDB,
		}, logger)
		if err != nil {
			return nil, aerrors.NewRuntimeError("failed opening store", err,
				fmt.Sprintf("Is Redis running at %s?", flags.RedisAddress))
		}
		return s, nil
	case "badger":
		var encKey []byte
		if keyHex := app.ctx.Env.Get(EncryptionKeyEnvar); keyHex != "" {
			var err error
			encKey, err = hex.DecodeString(keyHex)
			if err != nil {
				return nil, aerrors.NewRuntimeError("failed decoding encryption key", err,
					fmt.Sprintf("%s must be a hex encoded 16, 24 or 32 byte key.", EncryptionKeyEnvar))
			}
		}

		var path string
		if !app.inMemory() {
			path = filepath.Join(app.dataDir, "store")
			if err := app.ctx.FS.MkdirAll(path, 0o700); err != nil {
				return nil, fmt.Errorf("failed creating store directory: %w", err)
			}
		}

		s, err := badger.Open(path, encKey)
		if err != nil {
			return nil, aerrors.NewRuntimeError("failed opening store", err,
				"Another process may be holding the store lock.")
		}
		logger.Debug("opened store", "path", path)
		return s, nil
	case "sqlite":
		path := ":memory:"
		if !app.inMemory() {
			if err := app.ctx.FS.MkdirAll(app.dataDir, 0o700); err != nil {
				return nil, fmt.Errorf("failed creating data directory: %w", err)
			}
			path = filepath.Join(app.dataDir, "store.db")
		}

		s, err := sqlite.Open(app.ctx.Ctx, path, logger)
		if err != nil {
			return nil, aerrors.NewRuntimeError("failed opening store", err, "")
		}
		logger.Debug("opened store", "path", path)
		return s, nil
	}

	return nil, fmt.Errorf("unknown store '%s'", flags.Store)
}
