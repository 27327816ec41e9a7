package cli

import (
	actx "go.hackfix.me/hello/app/context"
)

// The Set command stores the value of a key.
type Set struct {
	Key   string `arg:"" help:"The unique key that identifies the value."`
	Value string `arg:"" help:"The value."`

	Namespace string `default:"default" help:"The namespace to store the value in."`
}

// Run the set command.
func (c *Set) Run(appCtx *actx.Context) error {
	return appCtx.Store.Set(appCtx.Ctx, c.Namespace, c.Key, []byte(c.Value))
}
