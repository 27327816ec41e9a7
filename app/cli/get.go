package cli

import (
	"fmt"

	actx "go.hackfix.me/hello/app/context"
	"go.hackfix.me/hello/store"
)

// The Get command retrieves and prints the value of a key.
type Get struct {
	Key string `arg:"" help:"The unique key associated with the value."`

	Namespace string `default:"default" help:"The namespace to retrieve the value from."`
}

// Run the get command.
func (c *Get) Run(appCtx *actx.Context) error {
	ok, val, err := appCtx.Store.Get(appCtx.Ctx, c.Namespace, c.Key)
	if err != nil {
		return err
	}
	if !ok {
		return store.KeyNotFoundError{Namespace: c.Namespace, Key: c.Key}
	}

	fmt.Fprintf(appCtx.Stdout, "%s\n", val)

	return nil
}
