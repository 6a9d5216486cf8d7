package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/filter"
	"github.com/kailas-cloud/findex/internal/domain/search/mode"
	"github.com/kailas-cloud/findex/internal/domain/search/request"
)

func searchCmd(flags *globalFlags) *cobra.Command {
	var (
		page     int
		pageSize int
		modeName string
		ratio    float64
		filters  []string
		sorts    []string
		facets   []string
	)

	cmd := &cobra.Command{
		Use:   "search <collection> [query]",
		Short: "Run one search and print the normalized result as JSON",
		Example: `  findex search products "wireless headphones" --filter "in_stock = true" --sort price:asc
  findex search articles --facets topics,author`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.close()

			m, err := mode.Parse(modeName)
			if err != nil {
				return err //nolint:wrapcheck // message names the flag value
			}
			text := request.NoQuery()
			if len(args) == 2 {
				text = request.Query(args[1])
			}
			if pageSize == 0 {
				pageSize = a.cfg.Search.DefaultPageSize
			}
			if !cmd.Flags().Changed("ratio") {
				ratio = a.cfg.SemanticRatio()
			}

			intent, err := request.NewIntent(request.Params{
				Collection:    collection.Name(args[0]),
				Text:          text,
				Facets:        facets,
				Filter:        filter.RawGroups(groups(filters)),
				Sort:          sorts,
				Page:          page,
				PageSize:      pageSize,
				Mode:          m,
				SemanticRatio: ratio,
				ShowScore:     true,
			})
			if err != nil {
				return err //nolint:wrapcheck // validation message is shown as is
			}

			res, err := a.searchService().Search(ctx, intent)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res) //nolint:wrapcheck // writing to stdout
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "hits per page (default search.default_page_size)")
	cmd.Flags().StringVar(&modeName, "mode", string(mode.Hybrid), "hybrid, semantic or keyword")
	cmd.Flags().Float64Var(&ratio, "ratio", mode.DefaultSemanticRatio, "semantic ratio for hybrid mode")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter expression, repeatable (ANDed)")
	cmd.Flags().StringSliceVar(&sorts, "sort", nil, "sort clauses, e.g. price:asc")
	cmd.Flags().StringSliceVar(&facets, "facets", nil, "facet distributions to compute")
	return cmd
}

func groups(filters []string) [][]string {
	out := make([][]string, len(filters))
	for i, f := range filters {
		out[i] = []string{f}
	}
	return out
}
