package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutu-network/numgen/internal/infra/export"
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output text file (default numbers.txt next to the CSV)")
	rootCmd.AddCommand(exportCmd)
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export CSV_FILE",
	Short: "Convert a generated CSV into a list of +E.164 numbers",
	Long: `Read the e164_number column of a CSV written by 'numgen generate' and write
one number per line, each with a leading '+'.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	path, n, err := export.CSVToText(args[0], exportOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %d numbers to %s\n", okLabel("OK"), n, path)
	return nil
}
