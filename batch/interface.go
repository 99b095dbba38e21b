package batch

import (
	"io"

	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pdok/sstmap/grid"
)

// Source lists the input grids of a run, in processing order.
type Source interface {
	Paths() ([]string, error)
}

// Loader reads one input grid.
type Loader func(path string) (*grid.Grid, error)

// Renderer draws a grid and encodes the drawing. *render.Composer implements it.
type Renderer interface {
	Compose(g *grid.Grid, token string) (*vgimg.Canvas, error)
	Encode(img *vgimg.Canvas, w io.Writer) error
	Ext() string
}
