package main

import (
	"image"
	"image/color"
	"log"
	"os"
	"strconv"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circfile"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/tools"
)

func main() {
	go func() {
		w := new(app.Window)
		w.Option(app.Title("Circuit Editor"))
		w.Option(app.Size(unit.Dp(1200), unit.Dp(800)))

		if err := run(w); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// Camera maps between world coordinates and screen pixels.
type Camera struct {
	Center geom.Vec
	Zoom   float64 // pixels per world unit

	ScreenWidth  int
	ScreenHeight int
}

func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         1.0,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

func (c *Camera) WorldToScreen(p geom.Vec) (float64, float64) {
	x := (p.X-c.Center.X)*c.Zoom + float64(c.ScreenWidth)/2.0
	y := (p.Y-c.Center.Y)*c.Zoom + float64(c.ScreenHeight)/2.0
	return x, y
}

func (c *Camera) ScreenToWorld(screenX, screenY float64) geom.Vec {
	x := (screenX-float64(c.ScreenWidth)/2.0)/c.Zoom + c.Center.X
	y := (screenY-float64(c.ScreenHeight)/2.0)/c.Zoom + c.Center.Y
	return geom.V(x, y)
}

// Pan moves the camera by screen pixel offsets.
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.Center.X -= deltaX / c.Zoom
	c.Center.Y -= deltaY / c.Zoom
}

// ZoomAt zooms in/out keeping the world point under the cursor fixed.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	before := c.ScreenToWorld(screenX, screenY)
	c.Zoom *= factor
	if c.Zoom < 0.05 {
		c.Zoom = 0.05
	}
	if c.Zoom > 50 {
		c.Zoom = 50
	}
	after := c.ScreenToWorld(screenX, screenY)
	c.Center.X += before.X - after.X
	c.Center.Y += before.Y - after.Y
}

// Fit centers and zooms the camera so the rectangle fills the view with a
// margin.
func (c *Camera) Fit(r geom.Rect) {
	w := r.Max.X - r.Min.X
	h := r.Max.Y - r.Min.Y
	if w <= 0 && h <= 0 {
		return
	}
	c.Center = geom.V((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	zx := float64(c.ScreenWidth) * 0.9 / (w + 1)
	zy := float64(c.ScreenHeight) * 0.9 / (h + 1)
	c.Zoom = zx
	if zy < zx {
		c.Zoom = zy
	}
}

type toolButton struct {
	tool  tools.Tool
	key   string
	icon  *widget.Icon
	click widget.Clickable
}

type EditorApp struct {
	window   *app.Window
	theme    *material.Theme
	explorer *explorer.Explorer

	editor *tools.Editor
	camera *Camera

	// UI widgets
	openBtn widget.Clickable
	saveBtn widget.Clickable
	fitBtn  widget.Clickable
	toolBtn []*toolButton

	// Mouse interaction
	editDragging bool
	panDragging  bool
	lastPointer  f32.Point

	filepath string
}

func run(w *app.Window) error {
	ed := &EditorApp{
		window:   w,
		theme:    material.NewTheme(),
		explorer: explorer.NewExplorer(w),
		editor:   tools.NewEditor(circuit.New(circuit.StandardLibrary()), "wire"),
		camera:   NewCamera(1200, 800),
	}
	ed.theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	ed.initToolbar()

	// Load file from command line if provided
	if len(os.Args) > 1 {
		ed.loadSnapshot(os.Args[1])
	}

	var ops op.Ops

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := layout.Context{
				Ops:         &ops,
				Constraints: layout.Exact(e.Size),
				Metric:      e.Metric,
				Now:         e.Now,
				Source:      e.Source,
			}

			ed.camera.ScreenWidth = e.Size.X
			ed.camera.ScreenHeight = e.Size.Y
			ed.handleInput(gtx)
			ed.layout(gtx)
			e.Frame(&ops)
		}
	}
}

func (ea *EditorApp) initToolbar() {
	makeIcon := func(data []byte, name string) *widget.Icon {
		icon, err := widget.NewIcon(data)
		if err != nil {
			log.Printf("failed to load %s icon: %v", name, err)
			return nil
		}
		return icon
	}
	ea.toolBtn = []*toolButton{
		{tool: tools.ToolDraw, key: "D", icon: makeIcon(icons.ContentCreate, "draw")},
		{tool: tools.ToolSlide, key: "S", icon: makeIcon(icons.ActionOpenWith, "slide")},
		{tool: tools.ToolWarp, key: "W", icon: makeIcon(icons.ImageTransform, "warp")},
		{tool: tools.ToolErase, key: "E", icon: makeIcon(icons.ActionDelete, "erase")},
		{tool: tools.ToolRigidify, key: "R", icon: makeIcon(icons.ActionLock, "rigidify")},
		{tool: tools.ToolFlex, key: "F", icon: makeIcon(icons.ActionLockOpen, "flex")},
		{tool: tools.ToolQuery, key: "Q", icon: makeIcon(icons.ActionSearch, "query")},
	}
}

func (ea *EditorApp) handleInput(gtx layout.Context) {
	ed := ea.editor

	if ea.openBtn.Clicked(gtx) {
		ea.openFilePicker()
	}
	if ea.saveBtn.Clicked(gtx) {
		ea.saveSnapshot()
	}
	if ea.fitBtn.Clicked(gtx) {
		ea.fitToView()
	}
	for _, tb := range ea.toolBtn {
		if tb.click.Clicked(gtx) {
			ed.Bind(tb.tool)
			ea.window.Invalidate()
		}
	}

	// Tool keys act as momentary holds: press to switch, release to
	// return, tap to rebind.
	for _, tb := range ea.toolBtn {
		for {
			ev, ok := gtx.Event(key.Filter{Name: key.Name(tb.key)})
			if !ok {
				break
			}
			if ke, ok := ev.(key.Event); ok {
				switch ke.State {
				case key.Press:
					ed.Hold(tb.tool)
				case key.Release:
					ed.ReleaseHold()
				}
				ea.window.Invalidate()
			}
		}
	}

	// X toggles junction/crossing under the cursor
	for {
		ev, ok := gtx.Event(key.Filter{Name: "X"})
		if !ok {
			break
		}
		if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
			ed.ToggleCrossing(ed.Mouse())
			ea.window.Invalidate()
		}
	}

	// A toggles angle snapping
	for {
		ev, ok := gtx.Event(key.Filter{Name: "A"})
		if !ok {
			break
		}
		if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
			ed.AngleSnap = !ed.AngleSnap
			ea.window.Invalidate()
		}
	}

	// Escape aborts the in-flight gesture
	for {
		ev, ok := gtx.Event(key.Filter{Name: key.NameEscape})
		if !ok {
			break
		}
		if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
			ed.CancelOp()
			ea.window.Invalidate()
		}
	}

	// Ctrl+O open, Ctrl+S save
	for {
		ev, ok := gtx.Event(key.Filter{Name: "O", Required: key.ModShortcut})
		if !ok {
			break
		}
		if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
			ea.openFilePicker()
		}
	}
	for {
		ev, ok := gtx.Event(key.Filter{Name: "S", Required: key.ModShortcut})
		if !ok {
			break
		}
		if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
			ea.saveSnapshot()
		}
	}

	// Mouse: primary button drives the active tool, secondary pans,
	// scroll zooms.
	for {
		ev, ok := gtx.Event(
			pointer.Filter{
				Kinds: pointer.Press | pointer.Drag | pointer.Release | pointer.Move | pointer.Scroll,
			},
		)
		if !ok {
			break
		}

		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		world := ea.camera.ScreenToWorld(float64(pe.Position.X), float64(pe.Position.Y))
		mods := tools.Mods{
			Shift: pe.Modifiers.Contain(key.ModShift),
			Alt:   pe.Modifiers.Contain(key.ModAlt),
			Ctrl:  pe.Modifiers.Contain(key.ModCtrl),
		}

		switch pe.Kind {
		case pointer.Press:
			switch pe.Buttons {
			case pointer.ButtonPrimary:
				ea.editDragging = true
				ed.PointerDown(world, mods)
			case pointer.ButtonSecondary:
				ea.panDragging = true
				ea.lastPointer = pe.Position
			}
			ea.window.Invalidate()

		case pointer.Drag:
			if ea.panDragging {
				ea.camera.Pan(float64(pe.Position.X-ea.lastPointer.X),
					float64(pe.Position.Y-ea.lastPointer.Y))
				ea.lastPointer = pe.Position
			} else if ea.editDragging {
				ed.SetMods(mods)
				ed.PointerMove(world)
			}
			ea.window.Invalidate()

		case pointer.Move:
			ed.PointerMove(world)

		case pointer.Release:
			if ea.editDragging {
				ed.PointerUp()
			}
			ea.editDragging = false
			ea.panDragging = false
			ea.window.Invalidate()

		case pointer.Scroll:
			zoomFactor := 1.0 - float64(pe.Scroll.Y)*0.1
			ea.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), zoomFactor)
			ea.window.Invalidate()
		}
	}
}

func (ea *EditorApp) openFilePicker() {
	go func() {
		file, err := ea.explorer.ChooseFile("")
		if err != nil {
			if err != explorer.ErrUserDecline {
				log.Printf("File picker error: %v", err)
			}
			return
		}
		defer file.Close()

		if f, ok := file.(*os.File); ok {
			ea.loadSnapshot(f.Name())
			ea.window.Invalidate()
		}
	}()
}

func (ea *EditorApp) loadSnapshot(filepath string) {
	c, err := circfile.LoadFile(filepath, circuit.StandardLibrary())
	if err != nil {
		log.Printf("Error loading snapshot: %v", err)
		return
	}

	ea.editor = tools.NewEditor(c, ea.editor.LineType)
	ea.filepath = filepath
	ea.window.Option(app.Title("Circuit Editor - " + filepath))
	ea.fitToView()

	log.Printf("Loaded snapshot: %s", filepath)
	log.Printf("  Segments: %d", len(c.SegmentIDs()))
	log.Printf("  Symbols: %d", len(c.SymbolIDs()))
}

func (ea *EditorApp) saveSnapshot() {
	if ea.filepath != "" {
		if err := circfile.SaveFile(ea.filepath, ea.editor.Circuit); err != nil {
			log.Printf("Error saving snapshot: %v", err)
			return
		}
		log.Printf("Saved snapshot: %s", ea.filepath)
		return
	}
	go func() {
		file, err := ea.explorer.CreateFile("untitled.circ")
		if err != nil {
			if err != explorer.ErrUserDecline {
				log.Printf("File picker error: %v", err)
			}
			return
		}
		defer file.Close()
		if err := circfile.Save(file, ea.editor.Circuit); err != nil {
			log.Printf("Error saving snapshot: %v", err)
			return
		}
		if f, ok := file.(*os.File); ok {
			ea.filepath = f.Name()
			ea.window.Option(app.Title("Circuit Editor - " + ea.filepath))
			log.Printf("Saved snapshot: %s", ea.filepath)
		}
	}()
}

func (ea *EditorApp) fitToView() {
	if b, ok := ea.editor.Circuit.Bounds(); ok {
		ea.camera.Fit(b)
		ea.window.Invalidate()
	}
}

func (ea *EditorApp) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 250, G: 250, B: 248, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return ea.layoutToolbar(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			ea.renderCircuit(gtx)
			return layout.Dimensions{Size: gtx.Constraints.Max}
		}),
	)
}

func (ea *EditorApp) layoutToolbar(gtx layout.Context) layout.Dimensions {
	inset := layout.Inset{Top: 8, Bottom: 8, Left: 8, Right: 8}

	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				var children []layout.FlexChild
				children = append(children,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.Button(ea.theme, &ea.openBtn, "Open").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.Button(ea.theme, &ea.saveBtn, "Save").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: 8}.Layout),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return material.Button(ea.theme, &ea.fitBtn, "Fit").Layout(gtx)
					}),
					layout.Rigid(layout.Spacer{Width: 16}.Layout),
				)
				for _, tb := range ea.toolBtn {
					tb := tb
					children = append(children,
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							btn := material.IconButton(ea.theme, &tb.click, tb.icon, tb.tool.String())
							btn.Size = 20
							if ea.editor.Active() == tb.tool {
								btn.Background = ea.theme.Palette.ContrastBg
							} else {
								btn.Background = color.NRGBA{R: 170, G: 170, B: 170, A: 255}
							}
							return btn.Layout(gtx)
						}),
						layout.Rigid(layout.Spacer{Width: 4}.Layout),
					)
				}
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
			}),

			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				info := "Tool: " + ea.editor.Active().String()
				if !ea.editor.AngleSnap {
					info += " | angle snap off"
				}
				info += " | Zoom: " + strconv.FormatFloat(ea.camera.Zoom, 'f', 1, 64) + "x"
				if ea.editor.LastQuery != "" {
					info += " | " + ea.editor.LastQuery
				}
				return material.Body1(ea.theme, info).Layout(gtx)
			}),
		)
	})
}

func (ea *EditorApp) renderCircuit(gtx layout.Context) {
	ed := ea.editor
	c := ed.Circuit
	scene := ed.Scene()

	// Segment sections, skipping glyph splices
	for _, sv := range scene.Segments {
		lt := c.LineType(sv.Type)
		width := 1.5 * ea.camera.Zoom
		col := color.NRGBA{R: 40, G: 40, B: 40, A: 255}
		if lt != nil {
			width = lt.Thickness * ea.camera.Zoom
			col = parseColor(lt.Color)
		}
		if width < 1 {
			width = 1
		}
		for _, sec := range sv.Sections {
			x1, y1 := ea.camera.WorldToScreen(sec.From)
			x2, y2 := ea.camera.WorldToScreen(sec.To)
			renderLine(gtx, x1, y1, x2, y2, width, col)
		}
	}

	// Glyphs as filled markers
	for _, g := range scene.Glyphs {
		x, y := ea.camera.WorldToScreen(g.At)
		r := 3.0 * ea.camera.Zoom
		if r < 2 {
			r = 2
		}
		renderCircle(gtx, x, y, r, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	}

	// Symbol collision outlines
	for _, id := range c.SymbolIDs() {
		b := c.Symbol(id).CollisionBounds()
		ea.renderRectOutline(gtx, b, color.NRGBA{R: 110, G: 80, B: 180, A: 255})
	}

	// Rubber band of an in-flight marquee
	if ed.Rubber != nil {
		ea.renderRectOutline(gtx, *ed.Rubber, color.NRGBA{R: 220, G: 120, B: 40, A: 255})
	}
}

func (ea *EditorApp) renderRectOutline(gtx layout.Context, r geom.Rect, col color.NRGBA) {
	x1, y1 := ea.camera.WorldToScreen(r.Min)
	x2, y2 := ea.camera.WorldToScreen(r.Max)
	renderLine(gtx, x1, y1, x2, y1, 1, col)
	renderLine(gtx, x2, y1, x2, y2, 1, col)
	renderLine(gtx, x2, y2, x1, y2, 1, col)
	renderLine(gtx, x1, y2, x1, y1, 1, col)
}

func renderLine(gtx layout.Context, x1, y1, x2, y2, width float64, lineColor color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(float32(x1), float32(y1)))
	path.LineTo(f32.Pt(float32(x2), float32(y2)))

	stroke := clip.Stroke{
		Path:  path.End(),
		Width: float32(width),
	}.Op()

	paint.FillShape(gtx.Ops, lineColor, stroke)
}

func renderCircle(gtx layout.Context, x, y, radius float64, fillColor color.NRGBA) {
	rect := image.Rectangle{
		Min: image.Pt(int(x-radius), int(y-radius)),
		Max: image.Pt(int(x+radius), int(y+radius)),
	}
	path := clip.Ellipse(rect).Op(gtx.Ops)
	paint.FillShape(gtx.Ops, fillColor, path)
}

// parseColor reads an SVG-style #rrggbb color, falling back to black.
func parseColor(s string) color.NRGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{A: 255}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
