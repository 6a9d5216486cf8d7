package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/task"
)

func tasksCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Show the latest engine tasks and index statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			list, err := a.engine.ListTasks(ctx, limit)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			out := cmd.OutOrStdout()
			printTasks(out, list)

			fmt.Fprintln(out)
			for _, name := range collection.All() {
				stats, err := a.engine.IndexStats(ctx, string(name))
				if err != nil {
					fmt.Fprintf(out, "%-9s unavailable: %v\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%-9s %d documents (indexing: %t)\n", name, stats.NumberOfDocuments, stats.IsIndexing)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of tasks to show")
	return cmd
}

func printTasks(out io.Writer, list task.List) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tSTATUS\tTYPE\tINDEX\tDETAIL")
	for i := range list.Results {
		t := &list.Results[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.UID, t.Status, t.Type, t.IndexUID, taskDetail(t))
	}
	_ = tw.Flush()

	counts := list.CountByStatus()
	statuses := make([]task.Status, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	slices.Sort(statuses)

	fmt.Fprintf(out, "\n%d of %d task(s):", len(list.Results), list.Total)
	for _, s := range statuses {
		fmt.Fprintf(out, " %s=%d", s, counts[s])
	}
	fmt.Fprintln(out)
}

func taskDetail(t *task.Task) string {
	switch {
	case t.Error != nil:
		return t.Error.Code + ": " + t.Error.Message
	case t.Status.IsTerminal():
		return t.Duration().Round(time.Millisecond).String()
	}
	return "-"
}
