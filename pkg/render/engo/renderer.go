// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-physim/pkg/engine"
	"github.com/opd-ai/go-physim/pkg/physics"
)

// RenderSink receives drawable entities. *common.RenderSystem satisfies it.
type RenderSink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// SnapshotSource produces the shapes to draw.
type SnapshotSource interface {
	Snapshots(out []engine.ShapeSnapshot) []engine.ShapeSnapshot
}

type shapeEntity struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	seen   uint64
}

var (
	dragBorder   = color.RGBA{255, 255, 255, 255}
	staticBorder = color.RGBA{128, 128, 128, 255}
)

// ShapeRenderSystem mirrors engine snapshots into engo render entities,
// one entity per shape handle.
type ShapeRenderSystem struct {
	source SnapshotSource
	sink   RenderSink
	camera *CameraSystem

	entities map[physics.Handle]*shapeEntity
	snaps    []engine.ShapeSnapshot
	frame    uint64
}

// NewShapeRenderSystem creates a system drawing source through sink.
func NewShapeRenderSystem(source SnapshotSource, sink RenderSink, camera *CameraSystem) *ShapeRenderSystem {
	return &ShapeRenderSystem{
		source:   source,
		sink:     sink,
		camera:   camera,
		entities: make(map[physics.Handle]*shapeEntity),
	}
}

// Update syncs entities with the current snapshot set.
func (r *ShapeRenderSystem) Update(dt float32) {
	r.frame++
	r.snaps = r.source.Snapshots(r.snaps[:0])
	for i := range r.snaps {
		r.sync(&r.snaps[i])
	}
	r.cleanupVanished()
}

// Remove satisfies the ecs.System interface
func (r *ShapeRenderSystem) Remove(basic ecs.BasicEntity) {
	for h, ent := range r.entities {
		if ent.basic.ID() == basic.ID() {
			r.sink.Remove(ent.basic)
			delete(r.entities, h)
			return
		}
	}
}

// Len returns the number of live render entities.
func (r *ShapeRenderSystem) Len() int { return len(r.entities) }

func (r *ShapeRenderSystem) sync(snap *engine.ShapeSnapshot) {
	ent, ok := r.entities[snap.Handle]
	if !ok {
		ent = &shapeEntity{
			basic: ecs.NewBasic(),
		}
		ent.render.Drawable = drawableFor(snap.Kind)
		r.updateComponents(ent, snap)
		r.entities[snap.Handle] = ent
		r.sink.Add(&ent.basic, &ent.render, &ent.space)
	} else {
		r.updateComponents(ent, snap)
	}
	ent.seen = r.frame
}

func (r *ShapeRenderSystem) updateComponents(ent *shapeEntity, snap *engine.ShapeSnapshot) {
	topLeft := physics.Vector2D{X: snap.Bounds.Min.X, Y: snap.Bounds.Max.Y}
	ent.space.Position = r.camera.WorldToScreen(topLeft)
	ent.space.Width = r.camera.ScaleLength(snap.Bounds.Width())
	ent.space.Height = r.camera.ScaleLength(snap.Bounds.Height())
	// Screen Y is flipped, so rotation sense is too.
	ent.space.Rotation = float32(-snap.Rotation * 180 / math.Pi)
	ent.render.Color = rgba(snap.Color)
	ent.render.Drawable = withBorder(ent.render.Drawable, borderFor(snap))
}

func (r *ShapeRenderSystem) cleanupVanished() {
	for h, ent := range r.entities {
		if ent.seen != r.frame {
			r.sink.Remove(ent.basic)
			delete(r.entities, h)
		}
	}
}

func drawableFor(kind physics.Kind) common.Drawable {
	switch kind {
	case physics.KindRectangle:
		return common.Rectangle{}
	case physics.KindTriangle:
		return common.Triangle{TriangleType: common.TriangleIsosceles}
	default:
		return common.Circle{}
	}
}

func borderFor(snap *engine.ShapeSnapshot) color.Color {
	switch {
	case snap.Dragging:
		return dragBorder
	case snap.Static:
		return staticBorder
	}
	return nil
}

// withBorder returns a copy of d with its outline set. The legacy shader
// matches on value types.
func withBorder(d common.Drawable, c color.Color) common.Drawable {
	var width float32
	if c != nil {
		width = 2
	}
	switch shape := d.(type) {
	case common.Circle:
		shape.BorderWidth, shape.BorderColor = width, c
		return shape
	case common.Rectangle:
		shape.BorderWidth, shape.BorderColor = width, c
		return shape
	case common.Triangle:
		shape.BorderWidth, shape.BorderColor = width, c
		return shape
	}
	return d
}

func rgba(c physics.Color) color.RGBA {
	ch := func(v float64) uint8 {
		return uint8(math.Round(physics.Clamp(v, 0, 1) * 255))
	}
	return color.RGBA{R: ch(c.R), G: ch(c.G), B: ch(c.B), A: 255}
}
