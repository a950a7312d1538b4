package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jengzang/zonemap-backend-go/internal/classify"
	"github.com/jengzang/zonemap-backend-go/internal/cluster"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/snapshot"
	"github.com/jengzang/zonemap-backend-go/internal/statestore"
	"github.com/jengzang/zonemap-backend-go/internal/zonemap"
	"github.com/spf13/cobra"
)

// openView builds a view seeded with the query argument and loads zones
// into it from the configured source.
func openView(cmd *cobra.Command, args []string) (*CLIContext, *zonemap.View, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, err
	}

	view := zonemap.NewView(zonemap.ViewConfig{
		BaseURL:   cliCtx.Config.PublicBaseURL,
		Store:     statestore.NewMemoryStore(queryArg(args)),
		Clipboard: cliCtx.Clipboard,
		Logger:    cliCtx.Logger,
		Viewport:  cliCtx.Viewport(),
	})
	if err := view.Refresh(cmd.Context(), cliCtx.Source); err != nil {
		view.Close()
		return nil, nil, fmt.Errorf("failed to fetch zones: %w", err)
	}
	return cliCtx, view, nil
}

func newSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [query]",
		Short: "Print counts and occupancy statistics for the filtered zones",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, view, err := openView(cmd, args)
			if err != nil {
				return err
			}
			defer view.Close()

			ds := view.Dataset()
			if cliCtx.JSONOutput() {
				return PrintJSON(cmd, ds.Summary)
			}
			writeSummary(cmd.OutOrStdout(), ds)
			return nil
		},
	}
}

func writeSummary(w io.Writer, ds zonemap.Dataset) {
	s := ds.Summary
	query := ds.Query
	if query == "" {
		query = "(none)"
	}
	fmt.Fprintf(w, "filters     %s\n", query)
	fmt.Fprintf(w, "zones       %d shown of %d\n", s.Filtered, s.Total)
	fmt.Fprintf(w, "geometry    %d polygons, %d markers, %d unmappable\n", s.Polygons, s.Markers, s.Unmappable)
	if s.SkippedVertices > 0 {
		fmt.Fprintf(w, "skipped     %d malformed vertices\n", s.SkippedVertices)
	}
	if s.Occupancy.Count > 0 {
		fmt.Fprintf(w, "occupancy   mean %.1f%%  median %.1f%%  area-weighted %.1f%%\n",
			s.Occupancy.Mean, s.Occupancy.Median, s.WeightedOccupancy)
	}
	fmt.Fprintf(w, "area        %.1f ha\n", s.TotalAreaHectares)
	fmt.Fprintf(w, "lots        %d available, %d assigned, %d reserved, %d viabilized\n",
		s.Lots.Available, s.Lots.Assigned, s.Lots.Reserved, s.Lots.Viabilized)
	for _, b := range classify.Bands() {
		if n := s.Bands[b]; n > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", b.Style().Label, n)
		}
	}
	if ds.Heat != nil {
		fmt.Fprintf(w, "heat        %d points\n", len(ds.Heat.Points))
	}
	fmt.Fprintf(w, "clusters    %d\n", len(ds.Clusters))
	if ds.Bounds != nil {
		fmt.Fprintf(w, "extent      %.2f km\n", s.ExtentKm)
	}
}

func newRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render [query]",
		Short: "Print the full render dataset as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, view, err := openView(cmd, args)
			if err != nil {
				return err
			}
			defer view.Close()
			return PrintJSON(cmd, view.Dataset())
		},
	}
}

type clusterRow struct {
	ID     string              `json:"id"`
	Count  int                 `json:"count"`
	Tier   string              `json:"tier"`
	Action cluster.ClickAction `json:"action"`
}

func newClustersCommand() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "clusters [query]",
		Short: "List marker clusters and what clicking each one does",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, view, err := openView(cmd, args)
			if err != nil {
				return err
			}
			defer view.Close()

			ds := view.Dataset()
			vp := cluster.Viewport{Width: width, Height: height}
			rows := make([]clusterRow, 0, len(ds.Clusters))
			for _, c := range ds.Clusters {
				rows = append(rows, clusterRow{
					ID:     c.ID,
					Count:  c.Count,
					Tier:   string(c.Tier),
					Action: cluster.Click(c, ds.Viewport.Zoom, cliCtx.Config.Map.MaxZoom, vp),
				})
			}

			if cliCtx.JSONOutput() {
				return PrintJSON(cmd, rows)
			}
			w := cmd.OutOrStdout()
			for _, r := range rows {
				fmt.Fprintf(w, "%-32s %4d  %-6s  %s", r.ID, r.Count, r.Tier, r.Action.Kind)
				if r.Action.Kind == cluster.ActionZoom {
					fmt.Fprintf(w, " -> z%d", r.Action.Zoom)
				}
				fmt.Fprintln(w)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 1024, "map viewport width in pixels")
	cmd.Flags().IntVar(&height, "height", 768, "map viewport height in pixels")
	return cmd
}

func newShareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "share [query]",
		Short: "Build the share link for a filter state and copy it to the clipboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			view := zonemap.NewView(zonemap.ViewConfig{
				BaseURL:   cliCtx.Config.PublicBaseURL,
				Store:     statestore.NewMemoryStore(queryArg(args)),
				Clipboard: cliCtx.Clipboard,
				Logger:    cliCtx.Logger,
			})
			defer view.Close()

			res, err := view.Share()
			if err != nil {
				return err
			}
			if cliCtx.JSONOutput() {
				return PrintJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			if res.Copied {
				fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
			} else {
				cliCtx.Logger.Debug("[CLI] clipboard unavailable", logging.Err(res.ClipboardErr))
				fmt.Fprintln(cmd.ErrOrStderr(), "clipboard unavailable, copy the link above")
			}
			return nil
		},
	}
}

func newSnapshotCommand() *cobra.Command {
	var out string
	var width, height int
	cmd := &cobra.Command{
		Use:   "snapshot [query]",
		Short: "Render the filtered map to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, view, err := openView(cmd, args)
			if err != nil {
				return err
			}
			defer view.Close()

			opt := snapshot.Options{Width: width, Height: height, MaxZoom: cliCtx.Config.Map.MaxZoom}
			if opt.Width <= 0 {
				opt.Width = cliCtx.Config.Map.SnapshotWidth
			}
			if opt.Height <= 0 {
				opt.Height = cliCtx.Config.Map.SnapshotHeight
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := snapshot.WritePNG(f, view.Dataset(), opt); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%dx%d)\n", out, opt.Width, opt.Height)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "file", "f", "zonemap.png", "output PNG path")
	cmd.Flags().IntVar(&width, "width", 0, "image width in pixels (config default when 0)")
	cmd.Flags().IntVar(&height, "height", 0, "image height in pixels (config default when 0)")
	return cmd
}

func newGeoJSONCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "geojson [query]",
		Short: "Export the filtered zones as a GeoJSON FeatureCollection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, view, err := openView(cmd, args)
			if err != nil {
				return err
			}
			defer view.Close()

			data, err := zonemap.ToFeatureCollection(view.Dataset()).MarshalJSON()
			if err != nil {
				return fmt.Errorf("failed to marshal geojson: %w", err)
			}
			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "file", "f", "", "output file, stdout when empty")
	return cmd
}

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the redis envelope cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop the cached zone envelope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if cliCtx.Cache == nil {
				return errors.New("no redis cache configured (set --redis or redis.addr)")
			}
			if err := cliCtx.Cache.Invalidate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "zonemap %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}
