package cli

import (
	"fmt"
	"slices"

	actx "go.hackfix.me/hello/app/context"
	"go.hackfix.me/hello/store"
)

// The Ls command prints keys.
type Ls struct {
	KeyPrefix string `arg:"" optional:"" help:"An optional key prefix."`

	Namespace string `default:"default" help:"The namespace to retrieve the keys from.\n If '*' is specified, keys in all namespaces are listed. "`
}

// Run the ls command.
func (c *Ls) Run(appCtx *actx.Context) error {
	keysPerNS, err := appCtx.Store.List(appCtx.Ctx, c.Namespace, c.KeyPrefix)
	if err != nil {
		return err
	}
	if len(keysPerNS) == 0 {
		return nil
	}

	if c.Namespace != store.AllNamespaces {
		for _, key := range keysPerNS[c.Namespace] {
			fmt.Fprintf(appCtx.Stdout, "%s\n", key)
		}
		return nil
	}

	namespaces := make([]string, 0, len(keysPerNS))
	for ns := range keysPerNS {
		namespaces = append(namespaces, ns)
	}
	slices.Sort(namespaces)

	data := make([][]string, 0)
	for _, ns := range namespaces {
		for i, key := range keysPerNS[ns] {
			row := []string{ns, key}
			if i > 0 {
				row[0] = ""
			}
			data = append(data, row)
		}
	}

	renderTable(appCtx.Stdout, []string{"Namespace", "Key"}, data)

	return nil
}
