package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tutu-network/numgen/internal/infra/sqlite"
)

func init() {
	showCmd.Flags().BoolVarP(&showNumbers, "numbers", "n", false, "Also print every stored number")
	rootCmd.AddCommand(showCmd)
}

var showNumbers bool

var showCmd = &cobra.Command{
	Use:   "show DB_FILE",
	Short: "Show the runs stored in a SQLite export",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(args[0]); err != nil {
		return err
	}
	db, err := sqlite.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored in this export.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tCOUNTRY\tMODE\tLENGTH\tSAVED\tATTEMPTS\tSTARTED")
	for _, r := range runs {
		saved := fmt.Sprintf("%d/%d", r.Accepted, r.Requested)
		if r.Exhausted {
			saved += " " + warnLabel("short")
		}
		fmt.Fprintf(w, "%s\t%s +%d\t%s\t%d\t%s\t%d\t%s\n",
			shortID(r.ID), r.Country.RegionCode, r.Country.CallingCode, r.Mode,
			r.LocalLength, saved, r.Attempts, r.StartedAt.Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !showNumbers {
		return nil
	}
	for _, r := range runs {
		records, err := db.ListNumbers(r.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s %s\n", dim("run"), r.ID)
		for _, rec := range records {
			fmt.Fprintln(out, rec.E164Number)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
