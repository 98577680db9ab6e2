package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/listing-map/internal/listing"
)

var (
	renderInput   string
	renderOutput  string
	renderLimit   int
	renderDryRun  bool
	renderOffline bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Geocode listings and write the price map",
	Long: `Loads the listing file, cleans each address, geocodes it, and writes an
HTML map with one marker per located listing. Listings that cannot be
located are reported on stdout, one line each.

Examples:
  # Defaults: real_estate_dataset.csv -> ottawa_real_estate_colored_map_with_shades.html
  listing-map render

  # Print cleaned addresses only, no geocoding
  listing-map render --input listings.csv --dry-run

  # Fake coordinates, no network
  listing-map render --offline --output preview.html`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		input := renderInput
		if input == "" {
			input = cfg.Input.Path
		}
		output := renderOutput
		if output == "" {
			output = cfg.Output.Path
		}

		table, err := listing.Load(input, []rune(cfg.Input.Delimiter)[0])
		if err != nil {
			return eris.Wrap(err, "render: load listings")
		}
		zap.L().Info("loaded listings", zap.String("path", input), zap.Int("rows", len(table.Rows)))

		if renderLimit > 0 && renderLimit < len(table.Rows) {
			table = &listing.Table{Header: table.Header, Rows: table.Rows[:renderLimit]}
		}

		p := newPipeline(cfg, renderOffline, cmd.OutOrStdout())

		if renderDryRun {
			return printJSON(cmd.OutOrStdout(), p.Clean(table.Rows))
		}

		result, err := p.Run(ctx, table)
		if err != nil {
			return eris.Wrap(err, "render: run pipeline")
		}

		if err := result.Save(output); err != nil {
			return eris.Wrap(err, "render: save map")
		}
		zap.L().Info("map written",
			zap.String("path", output),
			zap.Int("markers", result.Stats.Placed),
			zap.Int("missing", result.Stats.Missing),
		)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderInput, "input", "", "listing file (default: input.path from config)")
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "HTML output path (default: output.path from config)")
	renderCmd.Flags().IntVar(&renderLimit, "limit", 0, "max listings to process (0 = all)")
	renderCmd.Flags().BoolVar(&renderDryRun, "dry-run", false, "print cleaned listings as JSON, skip geocoding")
	renderCmd.Flags().BoolVar(&renderOffline, "offline", false, "use a stub geocoder (no network)")
	rootCmd.AddCommand(renderCmd)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
