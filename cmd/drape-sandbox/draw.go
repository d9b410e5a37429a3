package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drape/curve"
	"github.com/lixenwraith/drape/vmath"
)

// Samples per rope when smoothing for display
const ropeSamples = 48

var (
	styleTile     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(70, 60, 80))
	styleRope     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 28, 58))
	styleLamp     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 160, 40)).Bold(true)
	styleBead     = tcell.StyleDefault.Foreground(tcell.NewRGBColor(230, 200, 120))
	styleCloth    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(120, 90, 200))
	styleViewer   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	beadGlyphs    = [...]rune{'o', '*', '@'}
	clothGlyphs   = [...]rune{'░', '▒', '▓'}
	decorationRun = '§'
)

func (sb *sandbox) plot(p vmath.Vec2, r rune, style tcell.Style) {
	if !p.IsFinite() {
		return
	}
	x, y := int(p.X/cellWidth), int(p.Y/cellHeight)
	w, h := sb.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h-1 {
		return
	}
	sb.screen.SetContent(x, y, r, nil, style)
}

func (sb *sandbox) drawRope(pts []vmath.Vec2, buf []vmath.Vec2) []vmath.Vec2 {
	buf = curve.AppendSample(buf[:0], pts, ropeSamples)
	for _, p := range buf {
		sb.plot(p, '·', styleRope)
	}
	return buf
}

func (sb *sandbox) draw() {
	sb.screen.Clear()

	for ty := range sb.grid.Height() {
		for tx := range sb.grid.Width() {
			if sb.grid.IsSolid(tx, ty) {
				sb.screen.SetContent(tx*2, ty, '█', nil, styleTile)
				sb.screen.SetContent(tx*2+1, ty, '█', nil, styleTile)
			}
		}
	}

	for _, t := range sb.scene.Tapestries() {
		c := t.Cloth()
		if c == nil {
			sb.plot(t.Anchor(), '…', styleCloth)
			continue
		}
		for y := range c.Height() {
			glyph := clothGlyphs[min(y*len(clothGlyphs)/c.Height(), len(clothGlyphs)-1)]
			for _, p := range c.Row(y) {
				sb.plot(p, glyph, styleCloth)
			}
		}
	}

	var buf []vmath.Vec2
	for _, l := range sb.scene.Lanterns() {
		buf = sb.drawRope(l.Positions(), buf)
		sb.plot(l.Lamp(), 'Ø', styleLamp)
	}
	for _, o := range sb.scene.Ornaments() {
		buf = sb.drawRope(o.Positions(), buf)
		for _, d := range o.Decorations(4) {
			sb.plot(d.Position.Add(vmath.V2(0, cellHeight)), decorationRun, styleLamp)
		}
	}
	for _, p := range sb.scene.Pillars() {
		buf = sb.drawRope(p.Positions(), buf)
		for _, b := range p.Beads() {
			sb.plot(b.Position, beadGlyphs[b.Frame%len(beadGlyphs)], styleBead)
		}
	}

	sb.plot(sb.viewer, '@', styleViewer)

	_, h := sb.screen.Size()
	line := fmt.Sprintf(" ropes %d  wind %+.2f  %s ", sb.scene.Ropes().Len(), sb.scene.Wind().Scalar(), sb.status)
	for i, r := range []rune(line) {
		sb.screen.SetContent(i, h-1, r, nil, styleStatus)
	}

	sb.screen.Show()
}
