// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/logging"
)

// Renderer draws engine snapshots. Clear starts a frame and Present ends it.
type Renderer interface {
	Clear()
	RenderShape(s engine.ShapeSnapshot)
	Present()
}

// Frame draws one full frame of snapshots with r.
func Frame(r Renderer, snapshots []engine.ShapeSnapshot) {
	r.Clear()
	for _, s := range snapshots {
		r.RenderShape(s)
	}
	r.Present()
}

// NullRenderer draws nothing and logs every call at debug level.
type NullRenderer struct {
	logger *logging.Logger

	Frames int
	Shapes int
}

var _ Renderer = (*NullRenderer)(nil)

// NewNullRenderer creates a new NullRenderer with structured logging. A nil
// logger falls back to the environment-configured one.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// RenderShape implements Renderer.
func (d *NullRenderer) RenderShape(s engine.ShapeSnapshot) {
	d.Shapes++
	d.logger.Debug(context.Background(), "RenderShape called",
		"shape_id", s.Handle.ID(),
		"kind", s.Kind.String(),
		"x", s.Position.X,
		"y", s.Position.Y,
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.Frames++
	d.logger.Debug(context.Background(), "Present called", "frames", d.Frames)
}
