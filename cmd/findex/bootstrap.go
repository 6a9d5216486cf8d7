package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func bootstrapCmd(flags *globalFlags) *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create and configure the search indexes",
		Long: `Create the products and articles indexes with primary key "id",
configure the embedder, apply settings and synonyms. Every step waits
for the engine to finish its tasks before the next one starts.

With --clean both indexes and all their documents are deleted first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info("Bootstrapping indexes", zap.Bool("clean", clean), zap.String("engine_host", a.cfg.Engine.Host))
			rep, err := a.bootstrapService().Run(ctx, clean)

			out := cmd.OutOrStdout()
			for _, s := range rep.Steps {
				fmt.Fprintf(out, "%-20s %3d task(s)  %s\n", s.Name, s.Tasks, s.Elapsed.Round(time.Millisecond))
			}
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			fmt.Fprintln(out, "indexes ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "delete existing indexes and documents first")
	return cmd
}
