package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/bajehapp/bajeh_backend/cmd/http"
	systemcmd "github.com/bajehapp/bajeh_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "bajeh",
	Short: "Bajeh branch ticketing backend.",
	Long: `Bajeh runs the queue of a bank branch: it issues numbered tickets,
dispatches waiting customers to counters by priority, and streams queue
events to the lobby displays and staff consoles.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
