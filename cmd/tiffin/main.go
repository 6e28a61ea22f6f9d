// Command tiffin runs the API server and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Migrations register themselves in init.
	_ "github.com/tiffinbox/tiffin/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tiffin",
	Short:         "Tiffin food ordering API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, runCmd, routeListCmd)
	rootCmd.AddCommand(migrateCmd, migrateRollbackCmd, migrateStatusCmd, seedCmd)
	rootCmd.AddCommand(queueWorkCmd, scheduleRunCmd, cancelExpiredCmd)
	rootCmd.AddCommand(analyticsCmd)
}
