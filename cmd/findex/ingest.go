package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	ingestuc "github.com/kailas-cloud/findex/internal/usecase/ingest"
)

func ingestCmd(flags *globalFlags) *cobra.Command {
	var (
		coll      string
		file      string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a JSON array of documents into a collection",
		Example: `  findex ingest --collection products --file data/products.json
  cat articles.json | findex ingest --collection articles --file -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := collection.Parse(coll)
			if err != nil {
				return err //nolint:wrapcheck // message names the flag value
			}

			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(filepath.Clean(file))
				if err != nil {
					return fmt.Errorf("open documents: %w", err)
				}
				defer f.Close()
				r = f
			}
			docs, err := ingestuc.DecodeDocuments(r)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info("Ingesting documents", zap.String("collection", coll), zap.Int("documents", len(docs)))
			rep, err := a.ingestService(batchSize).Ingest(ctx, name, docs)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "collection: %s\ndocuments:  %d\nbatches:    %d\ntasks:      %d\n",
				rep.Collection, rep.Documents, rep.Batches, len(rep.TaskUIDs))
			if rep.Outcome.Polls > 0 {
				fmt.Fprintf(out, "waited:     %s (%d polls, %s)\n",
					rep.Outcome.Elapsed.Round(time.Millisecond), rep.Outcome.Polls, rep.Outcome.State)
			}
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			fmt.Fprintf(out, "indexed:    %d documents (indexing: %t)\n",
				rep.Stats.NumberOfDocuments, rep.Stats.IsIndexing)
			return nil
		},
	}
	cmd.Flags().StringVar(&coll, "collection", "", "target collection (products, articles)")
	cmd.Flags().StringVar(&file, "file", "", "JSON file with an array of documents, - for stdin")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "documents per batch (overrides ingest.batch_size)")
	_ = cmd.MarkFlagRequired("collection")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
