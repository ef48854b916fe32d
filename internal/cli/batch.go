package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tutu-network/numgen/internal/app"
	"github.com/tutu-network/numgen/internal/daemon"
	"github.com/tutu-network/numgen/internal/infra/export"
)

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", "", "Directory for output files (default from config)")
	batchCmd.Flags().IntVarP(&batchParallel, "parallel", "p", 1, "Jobs to run at once")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "Overwrite existing output files")
	rootCmd.AddCommand(batchCmd)
}

var (
	batchOutputDir string
	batchParallel  int
	batchForce     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch JOB_FILE",
	Short: "Run every [[job]] in a TOML job file",
	Long: `Run a batch of generation jobs described in a TOML file:

  [[job]]
  country = "PK"
  count = 100
  local_length = 10

  [[job]]
  country = "+44"
  count = 20
  local_length = 10
  format = "sqlite"

  [job.serial]
  enabled = true
  start = 7700900000
  fixed_prefix_len = 4

Shared calling codes resolve to the plan's main region. Each job writes its
own file; a failed job does not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

type batchResult struct {
	job   app.JobSpec
	path  string
	saved int
	err   error
}

func runBatch(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	jf, err := app.ParseJobFile(f)
	f.Close()
	if err != nil {
		return err
	}

	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	outDir := batchOutputDir
	if outDir == "" {
		outDir = d.Config.Generate.OutputDir
	}

	results := make([]batchResult, len(jf.Jobs))
	g, ctx := errgroup.WithContext(cmd.Context())
	if batchParallel > 0 {
		g.SetLimit(batchParallel)
	}
	for i, spec := range jf.Jobs {
		g.Go(func() error {
			path, saved, err := runBatchJob(ctx, d, i, spec, outDir)
			results[i] = batchResult{job: spec, path: path, saved: saved, err: err}
			// Job failures are reported in the table; only cancellation stops the batch.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCOUNTRY\tSAVED\tSTATUS\tFILE")
	failed := 0
	for i, r := range results {
		status := okLabel("ok")
		if r.err != nil {
			status = errLabel("failed: ") + r.err.Error()
			failed++
		}
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\t%s\n", i+1, r.job.Country, r.saved, r.job.Count, status, r.path)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}

func runBatchJob(ctx context.Context, d *daemon.Daemon, i int, spec app.JobSpec, outDir string) (string, int, error) {
	country, err := d.Service.Resolve(spec.Country, nil)
	if err != nil {
		return "", 0, err
	}

	outcome, err := d.Service.Run(ctx, app.Job{
		Country:      country,
		Count:        spec.Count,
		LocalLength:  spec.LocalLength,
		Policy:       spec.Policy(),
		StrictLength: spec.StrictLength || d.Config.Generate.StrictLength,
	}, nil)
	if err != nil {
		return "", 0, err
	}

	format, err := export.ParseFormat(firstNonEmpty(spec.Format, d.Config.Generate.Format))
	if err != nil {
		return "", 0, err
	}
	prefix := spec.FilenamePrefix
	if prefix == "" {
		prefix = fmt.Sprintf("%s_job%d", d.Config.Generate.FilenamePrefix, i+1)
	}
	path := filepath.Join(outDir, export.BuildFilename(prefix, country, format, time.Now()))

	saved, err := export.Save(path, format, outcome.Run, outcome.Records(), batchForce)
	if err != nil {
		return path, 0, err
	}
	d.Log.Info("batch job saved", "job", i+1, "region", country.RegionCode, "saved", saved, "path", path)
	return path, saved, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
