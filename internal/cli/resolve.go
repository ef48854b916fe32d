package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutu-network/numgen/internal/app/resolver"
)

func init() {
	resolveCmd.Flags().BoolVarP(&resolveInteractive, "interactive", "i", false, "Ask which region to use when a calling code is shared")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the resolution as JSON")
	rootCmd.AddCommand(resolveCmd)
}

var (
	resolveInteractive bool
	resolveJSON        bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve IDENTIFIER",
	Short: "Resolve an ISO code, calling code or country name",
	Example: `  numgen resolve PK
  numgen resolve +44
  numgen resolve "united states"`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	var chooser resolver.Chooser
	if resolveInteractive {
		chooser = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	country, err := d.Service.Resolve(args[0], chooser)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resolveJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(country)
	}
	fmt.Fprintf(out, "%s (region: %s, calling code: +%d)\n",
		country.DisplayName, country.RegionCode, country.CallingCode)
	return nil
}
