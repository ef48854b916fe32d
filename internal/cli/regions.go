package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(regionsCmd)
}

var regionsCmd = &cobra.Command{
	Use:   "regions CALLING_CODE",
	Short: "List the regions that share a calling code",
	Long: `List the regions served by a calling code in resolution order: the
plan's main region first, then the rest alphabetically.`,
	Example: "  numgen regions +1",
	Args:    cobra.ExactArgs(1),
	RunE:    runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	code, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(args[0]), "+"))
	if err != nil || code < 1 {
		return fmt.Errorf("invalid calling code %q", args[0])
	}

	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	options := d.Service.Resolver.Options(code)
	if len(options) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No geographic regions use calling code +%d.\n", code)
		return nil
	}

	mainRegion := d.Service.Plan.MainRegionForCallingCode(code)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREGION\tNAME\t")
	for i, o := range options {
		mark := ""
		if o.RegionCode == mainRegion {
			mark = dim("main")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, o.RegionCode, o.DisplayName, mark)
	}
	return w.Flush()
}
