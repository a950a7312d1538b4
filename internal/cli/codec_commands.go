package cli

import (
	"fmt"

	"github.com/jengzang/zonemap-backend-go/internal/codec"
	"github.com/jengzang/zonemap-backend-go/internal/models"
	"github.com/spf13/cobra"
)

type encodeOptions struct {
	filter    string
	search    string
	minArea   float64
	maxArea   float64
	viability []string
	statuses  []string
	heatmap   bool
}

func newEncodeCommand() *cobra.Command {
	opts := &encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode filter flags into a share query string",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state := codec.Normalize(models.FilterState{
				Search:        opts.search,
				OccupancyBand: models.OccupancyBand(opts.filter),
				AreaRange:     models.AreaRange{Min: opts.minArea, Max: opts.maxArea},
				Viability:     opts.viability,
				Statuses:      opts.statuses,
				Heatmap:       opts.heatmap,
			})
			fmt.Fprintln(cmd.OutOrStdout(), codec.Encode(state))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.filter, "filter", string(models.OccupancyAll), "occupancy band: all, high, medium, low")
	f.StringVar(&opts.search, "search", "", "free-text search on zone names")
	f.Float64Var(&opts.minArea, "min-area", models.DefaultAreaMin, "minimum area in hectares")
	f.Float64Var(&opts.maxArea, "max-area", models.DefaultAreaMax, "maximum area in hectares")
	f.StringSliceVar(&opts.viability, "viability", nil, "viability bands: complete, partial, none")
	f.StringSliceVar(&opts.statuses, "status", nil, "zone statuses to keep")
	f.BoolVar(&opts.heatmap, "heatmap", false, "show the heat layer")
	return cmd
}

type decodedState struct {
	State models.FilterState `json:"state"`
	Query string             `json:"query"`
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <query>",
		Short: "Decode a share query string or URL into its filter state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			state := codec.Decode(queryArg(args))
			out := decodedState{State: state, Query: codec.Encode(state)}
			if cliCtx.JSONOutput() {
				return PrintJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "filter     %s\n", state.OccupancyBand)
			fmt.Fprintf(w, "search     %q\n", state.Search)
			fmt.Fprintf(w, "area       %g-%g ha\n", state.AreaRange.Min, state.AreaRange.Max)
			fmt.Fprintf(w, "viability  %v\n", state.Viability)
			fmt.Fprintf(w, "status     %v\n", state.Statuses)
			fmt.Fprintf(w, "heatmap    %t\n", state.Heatmap)
			fmt.Fprintf(w, "canonical  %s\n", out.Query)
			return nil
		},
	}
}
