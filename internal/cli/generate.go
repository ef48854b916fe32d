package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tutu-network/numgen/internal/app"
	"github.com/tutu-network/numgen/internal/app/generator"
	"github.com/tutu-network/numgen/internal/daemon"
	"github.com/tutu-network/numgen/internal/domain"
	"github.com/tutu-network/numgen/internal/infra/export"
)

type generateOptions struct {
	country         string
	count           int
	localLength     int
	serialEnabled   bool
	serialPlacement string
	serialStart     int64
	serialStep      int64
	sequentialOnly  bool
	fixedPrefixLen  int
	strictLength    bool
	filenamePrefix  string
	noProgress      bool
	format          string
	outputDir       string
	interactive     bool
	force           bool
}

var genOpts generateOptions

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genOpts.country, "country", "", "Country: ISO code (US), calling code (+1, 44) or name (Pakistan)")
	f.IntVar(&genOpts.count, "count", 0, "Number of valid numbers to generate")
	f.IntVar(&genOpts.localLength, "local-length", 0, "Digits in the local part (without country code)")
	f.BoolVar(&genOpts.serialEnabled, "serial-enabled", false, "Enable serial / fixed-prefix mode")
	f.StringVar(&genOpts.serialPlacement, "serial-placement", "suffix", "Serial placement: prefix or suffix")
	f.Int64Var(&genOpts.serialStart, "serial-start", 0, "Start serial (integer >= 0)")
	f.Int64Var(&genOpts.serialStep, "serial-step", 1, "Serial increment (integer >= 1)")
	f.BoolVar(&genOpts.sequentialOnly, "sequential-only", false, "Use the serial as the whole local part, zero-padded")
	f.IntVar(&genOpts.fixedPrefixLen, "fixed-prefix-len", 0, "Keep the first N digits of --serial-start as a fixed prefix")
	f.BoolVar(&genOpts.strictLength, "strict-length", false, "Fail when the local length is unusual for the region")
	f.StringVar(&genOpts.filenamePrefix, "filename-prefix", "", "Output filename prefix (default from config)")
	f.BoolVar(&genOpts.noProgress, "no-progress", false, "Disable progress output")
	f.StringVar(&genOpts.format, "format", "", "Output format: csv, txt or sqlite (default from config)")
	f.StringVarP(&genOpts.outputDir, "output-dir", "o", "", "Directory for the output file (default from config)")
	f.BoolVarP(&genOpts.interactive, "interactive", "i", false, "Ask for every setting interactively")
	f.BoolVar(&genOpts.force, "force", false, "Overwrite an existing output file")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate valid phone numbers for a country",
	Long: `Generate numbering-plan-valid, deduplicated phone numbers and export them.

With --country, --count and --local-length the run is non-interactive.
Without them (or with --interactive) numgen asks for each setting.`,
	Example: `  numgen generate --country PK --count 100 --local-length 10
  numgen generate --country US --count 50 --local-length 10 \
      --serial-enabled --serial-start 2125550000 --fixed-prefix-len 6
  numgen generate -i`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	o := genOpts
	applyGenerateDefaults(cmd, &o, d.Config.Generate)

	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	interactive := o.interactive || o.country == "" || o.count < 1 || o.localLength < 1
	var p *prompter
	var job app.Job
	if interactive {
		p = newPrompter(cmd.InOrStdin(), out)
		printBanner(out)
		job, err = promptJob(p, d.Service, o)
	} else {
		job, err = flagJob(d.Service, o)
	}
	if err != nil {
		return err
	}

	adv, err := d.Service.Check(job)
	if err != nil {
		return err
	}
	if adv != nil {
		fmt.Fprintln(out, warnLabel("WARNING:"), adv)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress generator.ProgressFunc
	var bar *progressBar
	if !o.noProgress {
		fmt.Fprintln(out, "\nStarting generation...")
		fmt.Fprintf(out, "Target valid numbers: %d\n", job.Count)
		fmt.Fprintf(out, "Max attempts: %d\n\n", job.Count*generator.AttemptFactor)
		bar = newProgressBar(cmd.ErrOrStderr())
		progress = bar.callback
	}

	outcome, err := d.Service.Run(ctx, job, progress)
	if bar != nil {
		bar.done()
	}
	if err != nil {
		if outcome != nil {
			fmt.Fprintf(out, "%s generation stopped after %d attempts with %d valid numbers; nothing saved.\n",
				errLabel("ERROR:"), outcome.Run.Attempts, outcome.Run.Accepted)
		}
		if errors.Is(err, domain.ErrSerialOverflow) {
			return fmt.Errorf("serial/fixed-prefix overflowed the local-part length: %w", err)
		}
		return err
	}

	if !o.noProgress {
		if outcome.Run.Exhausted {
			fmt.Fprintf(out, "\nReached attempt limit (%d attempts). Generated %d valid numbers out of requested %d.\n",
				outcome.Run.Attempts, outcome.Run.Accepted, outcome.Run.Requested)
		} else {
			fmt.Fprintf(out, "\nCompleted generation: %d valid numbers.\n", outcome.Run.Accepted)
		}
	}
	if outcome.Run.Accepted == 0 {
		return fmt.Errorf("no valid numbers generated: %w", domain.ErrNothingToExport)
	}

	path := filepath.Join(o.outputDir, export.BuildFilename(o.filenamePrefix, job.Country, format, time.Now()))
	overwrite := o.force
	if export.Exists(path) && !overwrite {
		if p == nil {
			return fmt.Errorf("%w: %s (use --force to replace it)", export.ErrFileExists, path)
		}
		fmt.Fprintf(out, "\nFile '%s' already exists.\n", path)
		overwrite, err = p.YesNo("Overwrite? (y/n): ", false)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "User declined overwrite. Aborting save.")
			return nil
		}
	}

	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	saved, err := export.Save(path, format, outcome.Run, outcome.Records(), overwrite)
	if err != nil {
		return err
	}

	printSummary(out, outcome.Run, saved, path)
	return nil
}

// applyGenerateDefaults fills options the user did not set from config.
func applyGenerateDefaults(cmd *cobra.Command, o *generateOptions, cfg daemon.GenerateConfig) {
	flags := cmd.Flags()
	if !flags.Changed("count") && cfg.Count > 0 {
		o.count = cfg.Count
	}
	if !flags.Changed("local-length") && cfg.LocalLength > 0 {
		o.localLength = cfg.LocalLength
	}
	if !flags.Changed("strict-length") {
		o.strictLength = cfg.StrictLength
	}
	if !flags.Changed("no-progress") {
		o.noProgress = !cfg.Progress
	}
	if o.filenamePrefix == "" {
		o.filenamePrefix = cfg.FilenamePrefix
	}
	if o.format == "" {
		o.format = cfg.Format
	}
	if o.outputDir == "" {
		o.outputDir = cfg.OutputDir
	}
	if o.outputDir == "" {
		o.outputDir = "."
	}
	if !flags.Changed("fixed-prefix-len") {
		o.fixedPrefixLen = -1
	}
}

// flagJob builds a job from command-line flags. Shared calling codes
// resolve to the first region in the plan's order.
func flagJob(svc *app.Service, o generateOptions) (app.Job, error) {
	if o.count < 1 {
		return app.Job{}, fmt.Errorf("%w: --count must be a positive integer", domain.ErrInvalidRequest)
	}
	if o.localLength < 1 {
		return app.Job{}, fmt.Errorf("%w: --local-length must be a positive integer", domain.ErrInvalidRequest)
	}

	policy, err := flagPolicy(o)
	if err != nil {
		return app.Job{}, err
	}
	country, err := svc.Resolve(o.country, nil)
	if err != nil {
		return app.Job{}, err
	}

	return app.Job{
		Country:      country,
		Count:        o.count,
		LocalLength:  o.localLength,
		Policy:       policy,
		StrictLength: o.strictLength,
	}, nil
}

func flagPolicy(o generateOptions) (*domain.SerialPolicy, error) {
	if !o.serialEnabled {
		return domain.RandomPolicy(), nil
	}
	placement, err := domain.ParsePlacement(o.serialPlacement)
	if err != nil {
		return nil, err
	}
	policy := &domain.SerialPolicy{
		Enabled:        true,
		Placement:      placement,
		Start:          o.serialStart,
		Step:           o.serialStep,
		SequentialOnly: o.sequentialOnly,
	}
	if o.fixedPrefixLen >= 0 {
		n := o.fixedPrefixLen
		policy.FixedPrefixLen = &n
		policy.Placement = domain.PlacementPrefix
	}
	if err := policy.Validate(o.localLength); err != nil {
		return nil, err
	}
	return policy, nil
}

// ─── Interactive mode ───────────────────────────────────────────────────────

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintln(w, " Phone Number Generator & Validator")
	fmt.Fprintln(w, "--------------------------------------------------")
}

const resolveHelp = `Could not resolve country. Examples of valid inputs:
  - 'US' or 'GB'
  - 'United States' or 'Pakistan'
  - '+1' or '44'
`

// promptJob asks for country, count, local length and serial settings.
// Values already given as flags are used as-is.
func promptJob(p *prompter, svc *app.Service, o generateOptions) (app.Job, error) {
	country, err := promptCountry(p, svc, o.country)
	if err != nil {
		return app.Job{}, err
	}

	count := int64(o.count)
	if count < 1 {
		if count, err = p.Int("How many numbers to generate? ", 1, 0); err != nil {
			return app.Job{}, err
		}
	}
	length := int64(o.localLength)
	if length < 1 {
		if length, err = p.Int("How many digits in the local part (without country code)? ", 1, 0); err != nil {
			return app.Job{}, err
		}
	}

	policy, err := promptSerial(p, int(length))
	if err != nil {
		return app.Job{}, err
	}

	return app.Job{
		Country:      country,
		Count:        int(count),
		LocalLength:  int(length),
		Policy:       policy,
		StrictLength: o.strictLength,
	}, nil
}

func promptCountry(p *prompter, svc *app.Service, initial string) (domain.CountryResolution, error) {
	ident := initial
	for {
		if ident == "" {
			var err error
			ident, err = p.line("Enter country (ISO code, calling code, or full name): ")
			if err != nil {
				return domain.CountryResolution{}, err
			}
		}

		country, err := svc.Resolve(ident, p)
		ident = ""
		if errors.Is(err, domain.ErrCountryNotFound) {
			fmt.Fprint(p.out, resolveHelp)
			continue
		}
		if err != nil {
			return domain.CountryResolution{}, err
		}

		fmt.Fprintf(p.out, "Selected country: %s (region: %s, calling code: +%d)\n",
			country.DisplayName, country.RegionCode, country.CallingCode)
		ok, err := p.YesNo("Is this correct? (y/n): ", true)
		if err != nil {
			return domain.CountryResolution{}, err
		}
		if ok {
			return country, nil
		}
	}
}

// promptSerial asks for a serial policy and re-asks until it fits
// localLength.
func promptSerial(p *prompter, localLength int) (*domain.SerialPolicy, error) {
	for {
		use, err := p.YesNo("Use serial / prefix mode? (y/n): ", false)
		if err != nil || !use {
			return domain.RandomPolicy(), err
		}

		fixed, err := p.YesNo("Use only first N digits of serial as fixed prefix and randomize the rest? (y/n): ", false)
		if err != nil {
			return nil, err
		}

		var policy *domain.SerialPolicy
		if fixed {
			policy, err = promptFixedPrefix(p)
		} else {
			policy, err = promptClassicSerial(p)
		}
		if err != nil {
			return nil, err
		}

		if err := policy.Validate(localLength); err != nil {
			fmt.Fprintln(p.out, errLabel("ERROR:"), err)
			fmt.Fprintln(p.out, "Please reduce the serial start value or increase the local-part length.")
			continue
		}
		return policy, nil
	}
}

func promptFixedPrefix(p *prompter) (*domain.SerialPolicy, error) {
	start, err := p.Int("Start serial (integer, e.g. 3000000000): ", 0, -1)
	if err != nil {
		return nil, err
	}
	maxLen := int64(len(fmt.Sprint(start)))
	n, err := p.Int(fmt.Sprintf("How many leading digits to keep as fixed prefix? (1-%d): ", maxLen), 1, maxLen)
	if err != nil {
		return nil, err
	}
	prefixLen := int(n)
	return &domain.SerialPolicy{
		Enabled:        true,
		Placement:      domain.PlacementPrefix,
		Start:          start,
		Step:           1,
		FixedPrefixLen: &prefixLen,
	}, nil
}

func promptClassicSerial(p *prompter) (*domain.SerialPolicy, error) {
	placement, err := p.Choice("Serial placement (prefix/suffix): ", []string{"prefix", "suffix"})
	if err != nil {
		return nil, err
	}
	start, err := p.Int("Start serial (integer >= 0): ", 0, -1)
	if err != nil {
		return nil, err
	}
	step, err := p.Int("Serial increment (integer >= 1): ", 1, 0)
	if err != nil {
		return nil, err
	}
	sequential, err := p.YesNo("Use serial as main (sequential) generator (no random part)? (y/n): ", false)
	if err != nil {
		return nil, err
	}
	return &domain.SerialPolicy{
		Enabled:        true,
		Placement:      domain.Placement(placement),
		Start:          start,
		Step:           step,
		SequentialOnly: sequential,
	}, nil
}

// ─── Summary ────────────────────────────────────────────────────────────────

func printSummary(w io.Writer, run domain.Run, saved int, path string) {
	fmt.Fprintln(w, "\n---------------- Summary ----------------")
	fmt.Fprintf(w, "Country: %s (%s), calling code: +%d\n",
		run.Country.DisplayName, run.Country.RegionCode, run.Country.CallingCode)
	fmt.Fprintf(w, "Requested: %d\n", run.Requested)
	fmt.Fprintf(w, "Valid unique numbers saved: %d\n", saved)
	fmt.Fprintf(w, "Output file: %s\n", path)
	fmt.Fprintf(w, "Time taken: %.2f seconds\n", run.Elapsed.Seconds())
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, okLabel("Done."), dim("run "+run.ID))
}
