package cli

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Terminal progress for a generation run, driven by the generator's
// progress callback (every tenth of the target and at completion).
// Shows: [=========>..........] 42% | 420/1000 valid | 3150 attempts | ETA 2s

const barWidth = 30 // Characters for the progress bar

type progressBar struct {
	out     io.Writer
	started time.Time
	now     func() time.Time
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{out: out, started: time.Now(), now: time.Now}
}

// callback matches generator.ProgressFunc.
func (p *progressBar) callback(accepted, target, attempts int) {
	pct := 0.0
	if target > 0 {
		pct = float64(accepted) / float64(target) * 100
	}
	clearLine(p.out)
	fmt.Fprintf(p.out, "  %s %3.0f%% | %d/%d valid | %d attempts | %s",
		renderBar(pct), pct, accepted, target, attempts, p.eta(pct))
}

// done terminates the bar's line.
func (p *progressBar) done() {
	fmt.Fprintln(p.out)
}

func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	switch {
	case filled == barWidth:
		return "[" + strings.Repeat("=", filled) + "]"
	case filled > 0:
		return "[" + strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty) + "]"
	default:
		return "[" + strings.Repeat(".", barWidth) + "]"
	}
}

func (p *progressBar) eta(pct float64) string {
	if pct <= 0 || pct >= 100 {
		return "ETA --"
	}

	elapsed := p.now().Sub(p.started).Seconds()
	if elapsed < 1 {
		return "ETA --"
	}

	totalEstimated := elapsed / (pct / 100)
	remaining := totalEstimated - elapsed

	if remaining < 0 {
		remaining = 0
	}

	if remaining < 60 {
		return fmt.Sprintf("ETA %ds", int(remaining))
	}
	if remaining < 3600 {
		return fmt.Sprintf("ETA %dm%ds", int(remaining)/60, int(remaining)%60)
	}
	return fmt.Sprintf("ETA %dh%dm", int(remaining)/3600, (int(remaining)%3600)/60)
}

func clearLine(w io.Writer) {
	fmt.Fprint(w, "\r\033[K")
}
