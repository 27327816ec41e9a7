package cli

import (
	actx "go.hackfix.me/hello/app/context"
)

// The Rm command deletes a key.
type Rm struct {
	Key       string `arg:"" help:"The key to delete."`
	Namespace string `default:"default" help:"The namespace the key exists in."`
}

// Run the rm command.
func (c *Rm) Run(appCtx *actx.Context) error {
	return appCtx.Store.Delete(appCtx.Ctx, c.Namespace, c.Key)
}
