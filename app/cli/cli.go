package cli

import (
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	actx "go.hackfix.me/hello/app/context"
	"go.hackfix.me/hello/web/server/handlers"
)

// CLI is the command line interface of hello.
type CLI struct {
	ctx *kong.Context

	Async Async `kong:"cmd,help='Serve the delayed upstream fetch example.'"`
	Multi Multi `kong:"cmd,help='Serve the key-value store round trip example.'"`
	Feed  Feed  `kong:"cmd,help='Serve the JSON feed example.'"`
	Get   Get   `kong:"cmd,help='Get the value of a key.'"`
	Set   Set   `kong:"cmd,help='Set the value of a key.'"`
	Ls    Ls    `kong:"cmd,help='List keys.'"`
	Rm    Rm    `kong:"cmd,help='Delete a key.'"`

	StoreFlags `embed:""`

	LogLevel slog.Level       `default:"INFO" help:"Set the app logging level."`
	Version  kong.VersionFlag `help:"Output version and exit."`
}

// StoreFlags select and configure the key-value store backend.
type StoreFlags struct {
	Store         string `enum:"redis,badger,sqlite" default:"redis" help:"Key-value store backend (${enum})."`
	RedisAddress  string `name:"redis-address" default:"localhost:6379" help:"Redis server [host]:port."`
	RedisPassword string `name:"redis-password" help:"Redis server password."`
	RedisDB       int    `name:"redis-db" default:"0" help:"Redis database number."`
}

// Setup parses the command-line arguments.
func (c *CLI) Setup(appCtx *actx.Context, args []string, exitFn func(int)) error {
	kparser, err := kong.New(c,
		kong.Name("hello"),
		kong.Description("Minimal examples of asynchronous HTTP request handling."),
		kong.UsageOnError(),
		kong.DefaultEnvars("HELLO"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Exit(exitFn),
		kong.Writers(appCtx.Stdout, appCtx.Stderr),
		kong.Vars{
			"version":   appCtx.Version,
			"fetch_url": handlers.DefaultFetchURL,
			"feed_url":  handlers.DefaultFeedURL,
		},
	)
	if err != nil {
		return err
	}

	c.ctx, err = kparser.Parse(args)
	return err
}

// Command returns the name of the selected top-level command.
func (c *CLI) Command() string {
	if c.ctx == nil {
		return ""
	}
	cmd, _, _ := strings.Cut(c.ctx.Command(), " ")
	return cmd
}

// NeedsStore returns true if the selected command uses the key-value store.
func (c *CLI) NeedsStore() bool {
	switch c.Command() {
	case "multi", "get", "set", "ls", "rm":
		return true
	}
	return false
}

// Execute runs the selected command.
func (c *CLI) Execute(appCtx *actx.Context) error {
	return c.ctx.Run(appCtx)
}
