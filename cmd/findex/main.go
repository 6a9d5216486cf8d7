package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/findex/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	env      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "findex",
		Short: "findex - faceted hybrid search over Meilisearch",
		Long: `findex compiles search intents into engine queries, serves them over
HTTP and provisions the products and articles indexes.

Run 'findex bootstrap' once, 'findex ingest' to load documents and
'findex serve' to start the API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "environment, selects config/<env>.yaml")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(
		serveCmd(&flags),
		bootstrapCmd(&flags),
		ingestCmd(&flags),
		tasksCmd(&flags),
		searchCmd(&flags),
		versionCmd(),
	)
	return rootCmd
}
