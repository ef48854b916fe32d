package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutu-network/numgen/internal/domain"
)

func init() {
	rootCmd.AddCommand(lengthsCmd)
}

var lengthsCmd = &cobra.Command{
	Use:   "lengths COUNTRY",
	Short: "Show the national-number lengths a country's plan allows",
	Args:  cobra.ExactArgs(1),
	RunE:  runLengths,
}

func runLengths(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	country, err := d.Service.Resolve(args[0], nil)
	if err != nil {
		return err
	}

	lengths := d.Service.Plan.PossibleLengths(country.RegionCode)
	if len(lengths) == 0 {
		return fmt.Errorf("%w: no length data for %s", domain.ErrCountryNotFound, country.RegionCode)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", country, lengths)
	return nil
}
