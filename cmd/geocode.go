package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/listing-map/internal/address"
	"github.com/sells-group/listing-map/internal/resilience"
	"github.com/sells-group/listing-map/pkg/geocode"
)

var geocodeRaw bool

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Clean and geocode a single address",
	Long:  "Applies the listing address cleanup to one address, looks it up with the configured provider, and prints the result as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")
		clean := raw
		if !geocodeRaw {
			clean = address.New(cfg.Normalize.City, cfg.Normalize.Aliases).Clean(raw)
		}

		res, err := newGeocoder(cfg).Geocode(cmd.Context(), clean)
		if err != nil {
			return eris.Wrapf(err, "geocode: lookup failed (%s)", resilience.Classify(err))
		}

		return printJSON(cmd.OutOrStdout(), struct {
			Input   string          `json:"input"`
			Cleaned string          `json:"cleaned"`
			Result  *geocode.Result `json:"result"`
		}{raw, clean, res})
	},
}

func init() {
	geocodeCmd.Flags().BoolVar(&geocodeRaw, "raw", false, "skip address cleanup")
	rootCmd.AddCommand(geocodeCmd)
}
