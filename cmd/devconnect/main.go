package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title           devconnect API
// @version         1.0
// @description     Profiles, articles, direct messages and the shop.

// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	rootCmd := &cobra.Command{
		Use:          "devconnect",
		Short:        "Developer network: profiles, articles, chat and shop",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newProductCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
