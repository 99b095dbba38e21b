// Package batch takes care of the logistics of a run: finding the input grids, deriving
// their output paths, and rendering them one by one. A file that fails is logged, counted
// and skipped; the run goes on with the next one.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pdok/sstmap/grid"
	"github.com/pdok/sstmap/naming"
	"github.com/pdok/sstmap/observability"
	"github.com/pdok/sstmap/render"
)

// GlobSource matches Pattern and sorts the result.
type GlobSource struct {
	Pattern string
}

func (s GlobSource) Paths() ([]string, error) {
	paths, err := filepath.Glob(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("input pattern %q: %w", s.Pattern, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// NetCDFLoader reads variable from NetCDF files.
func NetCDFLoader(variable string, names grid.AxisNames) Loader {
	return func(path string) (*grid.Grid, error) {
		return grid.Load(path, variable, names)
	}
}

type Runner struct {
	Source     Source
	Load       Loader
	Renderer   Renderer
	OutputRoot string
	Metrics    *observability.Metrics
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Summary is the outcome of a run.
type Summary struct {
	Discovered int
	Rendered   int
	// Skipped counts files per reason.
	Skipped map[string]int
	Outputs []string
	Elapsed time.Duration
}

func (s Summary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Run renders every path of the source in order. Only a failing source or a cancelled
// context end the run early.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	metrics := r.Metrics
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	start := clock.Now()
	summary := Summary{Skipped: map[string]int{}}

	log.Println("=== start rendering ===")
	paths, err := r.Source.Paths()
	if err != nil {
		return summary, err
	}
	summary.Discovered = len(paths)
	metrics.FilesDiscovered.Add(float64(len(paths)))
	log.Printf("    discovered %d input files", len(paths))

	for _, path := range paths {
		if err = ctx.Err(); err != nil {
			break
		}
		fileStart := clock.Now()
		out, g, err := r.renderFile(path)
		if err != nil {
			reason := Reason(err)
			summary.Skipped[reason]++
			metrics.FilesSkipped.WithLabelValues(reason).Inc()
			log.Printf("    skipping %s (%s): %v", path, reason, err)
			continue
		}
		elapsed := clock.Since(fileStart)
		summary.Rendered++
		summary.Outputs = append(summary.Outputs, out)
		metrics.FilesRendered.Inc()
		metrics.RenderDuration.Observe(elapsed.Seconds())
		lo, hi := g.Range()
		log.Printf("    rendered %s -> %s (%.2f..%.2f, %d missing, %v)", path, out, lo, hi, g.Missing(), elapsed)
	}

	summary.Elapsed = clock.Since(start)
	metrics.LastRun.Set(float64(clock.Now().Unix()))
	summary.log()
	log.Println("=== done rendering ===")
	return summary, err
}

// renderFile runs the steps of one file: period, grid, drawing, atomic write.
func (r *Runner) renderFile(path string) (string, *grid.Grid, error) {
	period, err := naming.Parse(path)
	if err != nil {
		return "", nil, err
	}
	g, err := r.Load(path)
	if err != nil {
		return "", nil, err
	}
	img, err := r.Renderer.Compose(g, period.Token())
	if err != nil {
		return "", nil, err
	}
	out := period.OutputPath(r.OutputRoot, r.Renderer.Ext())
	err = render.WriteFile(out, func(w io.Writer) error {
		return r.Renderer.Encode(img, w)
	})
	if err != nil {
		return "", nil, err
	}
	return out, g, nil
}

// Reason classifies why a file was skipped.
func Reason(err error) string {
	switch {
	case errors.Is(err, grid.ErrDataFormat), errors.Is(err, naming.ErrNoPeriod):
		return observability.ReasonDataFormat
	case errors.Is(err, render.ErrIO), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return observability.ReasonIO
	default:
		return observability.ReasonOther
	}
}

func (s Summary) log() {
	log.Printf("    discovered: %d", s.Discovered)
	log.Printf("      rendered: %d", s.Rendered)
	log.Printf("       skipped: %d", s.SkippedTotal())
	for _, reason := range []string{observability.ReasonDataFormat, observability.ReasonIO, observability.ReasonOther} {
		if n := s.Skipped[reason]; n > 0 {
			log.Printf("%14s: %d", reason, n)
		}
	}
	log.Printf("       elapsed: %v", s.Elapsed)
}

var _ Renderer = (*render.Composer)(nil)
