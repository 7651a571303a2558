// Package tools implements the interactive editing layer: the tool binding
// (persistent plus momentary hold), the gesture lifecycle shared by every
// tool, and the individual tools themselves (draw, slide, warp, erase,
// rigidify, flex, query).
//
// All mutation is synchronous and single-threaded: a gesture begins on
// pointer-down, is recomputed from scratch on every pointer move and
// modifier change, and commits or aborts as a whole. Derived per-frame state
// (crossings, the render scene) is refreshed after structural changes and
// before the next gesture's snapping decisions consult it.
package tools

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/snap"
)

// Tool identifies one of the interactive tools.
type Tool int

const (
	ToolDraw Tool = iota
	ToolSlide
	ToolWarp
	ToolErase
	ToolRigidify
	ToolFlex
	ToolQuery
)

var toolNames = [...]string{"draw", "slide", "warp", "erase", "rigidify", "flex", "query"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// Mods carries the modifier-key state delivered with pointer events.
type Mods struct {
	Shift bool
	Alt   bool
	Ctrl  bool
}

// Operation is one in-flight gesture. Update recomputes the full result from
// the current pointer position and modifiers; it must be idempotent, so a
// mode switch mid-gesture yields the same state as if the mode had been
// active from the start. End commits, Abort restores the pre-gesture state.
type Operation interface {
	Update()
	End()
	Abort()
}

// Editor owns one circuit's interactive state: the tool binding, the
// in-flight operation, and the per-frame derived views.
type Editor struct {
	Circuit *circuit.Circuit
	Cfg     snap.Config

	// AngleSnap selects snapped rotation over free rotation for Shift
	// gestures in the draw tool.
	AngleSnap bool
	// LineType is the line type new segments are drawn with.
	LineType string

	// Rubber is the live rubber-band rectangle of a marquee gesture, nil
	// when no marquee is active. The renderer draws it as-is.
	Rubber *geom.Rect
	// LastQuery holds the query tool's most recent description.
	LastQuery string

	bound    Tool
	held     Tool
	holding  bool
	heldUsed bool

	mouse geom.Vec
	mods  Mods
	op    Operation

	crossings []circuit.Crossing
	scene     *circuit.Scene
}

// NewEditor wraps a circuit with default tool state: the draw tool bound,
// angle snapping on, stock snap distances.
func NewEditor(c *circuit.Circuit, lineType string) *Editor {
	ed := &Editor{
		Circuit:   c,
		Cfg:       snap.DefaultConfig(),
		AngleSnap: true,
		LineType:  lineType,
		bound:     ToolDraw,
	}
	ed.refresh()
	return ed
}

// Active returns the tool the next pointer-down will use: the held tool
// while a momentary hold is in effect, otherwise the bound tool.
func (ed *Editor) Active() Tool {
	if ed.holding {
		return ed.held
	}
	return ed.bound
}

// Bind sets the persistent tool binding.
func (ed *Editor) Bind(t Tool) { ed.bound = t }

// Hold activates a tool for as long as its key is held down.
func (ed *Editor) Hold(t Tool) {
	if ed.holding && ed.held == t {
		return
	}
	ed.held = t
	ed.holding = true
	ed.heldUsed = false
}

// ReleaseHold ends a momentary hold. A hold during which no operation ran
// acts as a tap and rebinds; a hold that was used for an operation leaves
// the previous binding in place.
func (ed *Editor) ReleaseHold() {
	if !ed.holding {
		return
	}
	if !ed.heldUsed {
		ed.bound = ed.held
	}
	ed.holding = false
}

// Busy reports whether a gesture is in flight.
func (ed *Editor) Busy() bool { return ed.op != nil }

// PointerDown begins a gesture with the active tool. A pointer-down while a
// gesture is already in flight is ignored; gestures are not re-entrant.
func (ed *Editor) PointerDown(p geom.Vec, m Mods) {
	if ed.op != nil {
		return
	}
	ed.mouse = p
	ed.mods = m
	ed.refresh()
	ed.op = ed.beginOp()
	if ed.op != nil {
		if ed.holding {
			ed.heldUsed = true
		}
		ed.op.Update()
	}
}

// PointerMove recomputes the in-flight gesture for a new pointer position.
func (ed *Editor) PointerMove(p geom.Vec) {
	ed.mouse = p
	if ed.op != nil {
		ed.op.Update()
	}
}

// SetMods recomputes the in-flight gesture for a modifier change, so a mode
// switch mid-gesture takes effect immediately.
func (ed *Editor) SetMods(m Mods) {
	if m == ed.mods {
		return
	}
	ed.mods = m
	if ed.op != nil {
		ed.op.Update()
	}
}

// PointerUp commits the in-flight gesture.
func (ed *Editor) PointerUp() {
	if ed.op == nil {
		return
	}
	ed.op.End()
	ed.op = nil
	ed.refresh()
}

// CancelOp aborts the in-flight gesture, restoring the pre-gesture state.
func (ed *Editor) CancelOp() {
	if ed.op == nil {
		return
	}
	ed.op.Abort()
	ed.op = nil
	ed.refresh()
}

// ToggleCrossing flips the element under p between its junction and
// crossing renditions: a junction with two collinear pairs becomes a
// crossing, a crossing becomes a real junction.
func (ed *Editor) ToggleCrossing(p geom.Vec) bool {
	c := ed.Circuit
	defer ed.refresh()
	if ref, ok := c.HitTest(p, ed.Cfg.SnapRadius); ok && ref.Kind == circuit.ElemVertex {
		if v := c.Vertex(ref.Vertex); v != nil && v.IsJunction() {
			return c.ConvertToCrossing(ref.Vertex)
		}
	}
	if x, ok := c.CrossingAt(p, ed.Cfg.SnapRadius); ok {
		return c.ConvertToJunction(x.Pair.A, x.Pair.B) != nil
	}
	return false
}

// Crossings returns the crossings as of the last refresh.
func (ed *Editor) Crossings() []circuit.Crossing { return ed.crossings }

// Scene returns the render view, rebuilding it lazily after changes.
func (ed *Editor) Scene() *circuit.Scene {
	if ed.scene == nil {
		ed.scene = circuit.BuildScene(ed.Circuit)
	}
	return ed.scene
}

// Mouse returns the last pointer position the editor saw.
func (ed *Editor) Mouse() geom.Vec { return ed.mouse }

// refresh recomputes derived state after a structural change. Snapping
// decisions in the next gesture consult this, never stale data.
func (ed *Editor) refresh() {
	ed.crossings = ed.Circuit.Crossings()
	ed.scene = nil
}

func (ed *Editor) beginOp() Operation {
	switch ed.Active() {
	case ToolDraw:
		return beginDraw(ed)
	case ToolSlide:
		return beginSlide(ed)
	case ToolWarp:
		return beginWarp(ed)
	case ToolErase:
		return beginMarquee(ed, applyErase)
	case ToolRigidify:
		return beginMarquee(ed, applyFrozen(true))
	case ToolFlex:
		return beginMarquee(ed, applyFrozen(false))
	case ToolQuery:
		return beginMarquee(ed, applyQuery)
	}
	return nil
}
