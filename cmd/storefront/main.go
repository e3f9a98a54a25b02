// @title           Storefront API
// @version         1.0
// @description     Role-gated storefront: admin and distributor portals over a shared catalog.
// @BasePath        /
// @securityDefinitions.apikey  SessionCookie
// @in                          cookie
// @name                        sid
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront portal server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newSeedUserCmd())
	return root
}
