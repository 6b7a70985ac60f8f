package game

import (
	"image/color"
	"math"

	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/Garsondee/Heli-Taxi/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// stateColors tints the helicopter by flight state.
var stateColors = [...]color.RGBA{
	heli.StateFlying:      {R: 235, G: 200, B: 60, A: 255},  // yellow
	heli.StateGrounded:    {R: 90, G: 200, B: 90, A: 255},   // green
	heli.StateWallContact: {R: 230, G: 120, B: 40, A: 255},  // orange
	heli.StateSliding:     {R: 200, G: 90, B: 200, A: 255},  // purple
	heli.StateInWater:     {R: 70, G: 150, B: 240, A: 255},  // blue
}

func stateColor(st heli.State) color.RGBA {
	if !st.Valid() {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return stateColors[st]
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 20, B: 28, A: 255})
	v := g.view

	// Sky backdrop inside the border.
	vector.FillRect(screen, float32(v.offX), float32(v.offY), float32(v.width()), float32(v.height()),
		color.RGBA{R: 28, G: 36, B: 52, A: 255}, false)

	for _, w := range g.session.World.Water() {
		x, y, ww, hh := v.rect(w.Min, w.Max)
		vector.FillRect(screen, x, y, ww, hh, color.RGBA{R: 30, G: 90, B: 170, A: 150}, false)
		vector.StrokeLine(screen, x, y, x+ww, y, 1.5, color.RGBA{R: 120, G: 180, B: 240, A: 200}, false)
	}

	for _, b := range g.session.World.Blocks() {
		x, y, ww, hh := v.rect(b.Min, b.Max)
		fill := color.RGBA{R: 70, G: 66, B: 58, A: 255}
		edge := color.RGBA{R: 110, G: 104, B: 90, A: 255}
		if b.Tag == heli.TagHazard {
			fill = color.RGBA{R: 130, G: 36, B: 30, A: 255}
			edge = color.RGBA{R: 220, G: 70, B: 50, A: 255}
		}
		vector.FillRect(screen, x, y, ww, hh, fill, false)
		vector.StrokeLine(screen, x, y, x+ww, y, 1.0, edge, false)
	}

	g.drawPortals(screen)
}

func (g *Game) drawPortals(screen *ebiten.Image) {
	v := g.view
	taxi := g.session.Taxi
	target, hasTarget := taxi.Target()
	padHalf := float32(g.cfg.Game.Taxi.PadRadius * v.scale)
	p := taxi.Passenger()

	for i, portal := range taxi.Portals() {
		sx, sy := v.toScreen(portal.Pos)
		col := color.RGBA{R: 150, G: 150, B: 160, A: 200}
		if hasTarget && portal.Name == target.Name {
			col = color.RGBA{R: 90, G: 230, B: 120, A: 255}
		}
		vector.FillRect(screen, sx-padHalf, sy-3, 2*padHalf, 3, col, false)

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(sx-padHalf), float64(sy)+4)
		op.ColorScale.ScaleWithColor(col)
		text.Draw(screen, portal.Name, g.face, op)

		// Waiting passenger stands on their pad.
		if p != nil && p.State == sim.PassengerWaiting && p.From == i {
			vector.FillRect(screen, sx-3, sy-16, 6, 13, color.RGBA{R: 240, G: 220, B: 180, A: 255}, false)
			vector.FillCircle(screen, sx, sy-19, 4, color.RGBA{R: 240, G: 220, B: 180, A: 255}, true)
		}
	}
}

func (g *Game) drawHeli(screen *ebiten.Image) {
	v := g.view
	body := g.session.Body
	min, max := body.Bounds()
	x, y, w, h := v.rect(min, max)
	col := stateColor(g.session.Heli.State())

	vector.FillRect(screen, x, y+h*0.25, w, h*0.55, col, false)
	// Skids and rotor.
	vector.StrokeLine(screen, x, y+h, x+w, y+h, 2, color.RGBA{R: 40, G: 40, B: 40, A: 255}, false)
	rotor := float32(math.Sin(float64(g.session.Tick())*0.9)) * w * 0.7
	cx := x + w/2
	vector.StrokeLine(screen, cx-rotor, y+h*0.1, cx+rotor, y+h*0.1, 2, color.RGBA{R: 200, G: 200, B: 200, A: 220}, false)
	vector.StrokeLine(screen, cx, y+h*0.1, cx, y+h*0.25, 2, color.RGBA{R: 120, G: 120, B: 120, A: 255}, false)

	if p := g.session.Taxi.Passenger(); p != nil && p.State == sim.PassengerRiding {
		vector.FillCircle(screen, cx, y+h*0.5, 3, color.RGBA{R: 240, G: 220, B: 180, A: 255}, true)
	}

	// Boarding progress bar under the skids.
	if prog := g.session.Taxi.BoardingProgress(); prog > 0 && prog < 1 {
		vector.FillRect(screen, x, y+h+3, w, 3, color.RGBA{R: 40, G: 40, B: 40, A: 200}, false)
		vector.FillRect(screen, x, y+h+3, w*float32(prog), 3, color.RGBA{R: 90, G: 230, B: 120, A: 255}, false)
	}
}

// drawProbes renders the detector's last ray casts.
func (g *Game) drawProbes(screen *ebiten.Image) {
	rd, ok := g.session.Heli.Detector().(*heli.RayDetector)
	if !ok {
		return
	}
	v := g.view
	for _, pr := range rd.Probes() {
		length := pr.Length
		col := color.RGBA{R: 120, G: 120, B: 120, A: 90}
		if pr.Hit {
			length = pr.Distance
			col = color.RGBA{R: 80, G: 230, B: 120, A: 200}
			if pr.Tag == heli.TagHazard {
				col = color.RGBA{R: 240, G: 80, B: 60, A: 220}
			}
		}
		x0, y0 := v.toScreen(pr.Origin)
		x1, y1 := v.toScreen(pr.Origin.Add(pr.Dir.Scale(length)))
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, col, true)
		if pr.Hit {
			vector.FillCircle(screen, x1, y1, 2, col, true)
		}
	}

	// Guide line to the current pad while nothing blocks the way.
	target, ok := g.session.Taxi.Target()
	if !ok {
		return
	}
	from := g.session.Body.Position()
	to := target.Pos.Add(heli.V(0, 0.5))
	if g.session.World.LineOfSight(from, to) {
		x0, y0 := v.toScreen(from)
		x1, y1 := v.toScreen(to)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, color.RGBA{R: 90, G: 230, B: 120, A: 70}, true)
	}
}
