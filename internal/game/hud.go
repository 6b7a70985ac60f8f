package game

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Heli-Taxi/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelWidth     = 320
	panelLineH     = 14
	panelTitleH    = 18
	panelRecentHot = 3 // how many latest entries to highlight
)

var eventColors = map[sim.EventKind]color.RGBA{
	sim.EventState:  {R: 140, G: 190, B: 240, A: 255},
	sim.EventHealth: {R: 240, G: 90, B: 80, A: 255},
	sim.EventTaxi:   {R: 100, G: 220, B: 120, A: 255},
	sim.EventSystem: {R: 180, G: 180, B: 180, A: 255},
}

func (g *Game) drawText(dst *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, g.face, op)
}

// hudLines is the status block in the top-left corner.
func (g *Game) hudLines() []string {
	s := g.session
	data := s.Heli.Data()
	vel := s.Body.Velocity()
	lines := []string{
		fmt.Sprintf("state %-8s %.1fs", data.Current, data.TimeInState),
		fmt.Sprintf("vel   %5.2f %5.2f", vel.X, vel.Y),
		fmt.Sprintf("hp    %3.0f/%.0f  crashes %d", s.Health.Current(), s.Health.Max(), s.Health.Crashes()),
		fmt.Sprintf("fares %d  $%.1f", s.Taxi.Delivered(), s.Taxi.Earnings()),
	}
	if p := s.Taxi.Passenger(); p != nil {
		ports := s.Taxi.Portals()
		if p.State == sim.PassengerWaiting {
			lines = append(lines, "pickup at "+ports[p.From].Name)
		} else {
			lines = append(lines, "deliver to "+ports[p.To].Name)
		}
	}
	lines = append(lines, "arrows/WASD fly  R reset  P pause")
	lines = append(lines, "F1 rays  C copy report  H hud")
	if g.statusLeft > 0 {
		lines = append(lines, "> "+g.status)
	}
	return lines
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	const padX, padY = 6, 4
	lines := g.hudLines()
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	bx := float32(borderWidth + 6)
	by := float32(borderWidth + 6)
	boxW := float32(maxLen*7 + padX*2)
	boxH := float32(len(lines)*panelLineH + padY*2)

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 200}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 70, G: 90, B: 120, A: 180}, false)

	// Health bar along the top edge of the box.
	frac := float32(g.session.Health.Fraction())
	vector.FillRect(screen, bx+1, by+1, (boxW-2)*frac, 2, color.RGBA{R: 220, G: 70, B: 60, A: 230}, false)

	col := stateColor(g.session.Heli.State())
	for i, line := range lines {
		c := color.Color(color.RGBA{R: 220, G: 220, B: 220, A: 255})
		if i == 0 {
			c = col
		}
		g.drawText(screen, line, float64(bx)+padX, float64(by)+padY+float64(i*panelLineH), c)
	}
}

// drawEventPanel renders the event log on the right-hand side, newest at the
// bottom.
func (g *Game) drawEventPanel(screen *ebiten.Image, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, panelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 16, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 80, A: 255}, false)
	vector.FillRect(screen, px, 0, panelWidth, panelTitleH, color.RGBA{R: 20, G: 26, B: 36, A: 255}, false)
	g.drawText(screen, "EVENTS", float64(panelX+8), 3, color.White)

	entries := g.session.Events.Recent()
	maxVisible := (panelH - panelTitleH - 8) / panelLineH
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	y := panelTitleH + 4
	for i, e := range entries {
		recent := i >= len(entries)-panelRecentHot
		if recent {
			vector.FillRect(screen, px+2, float32(y), panelWidth-4, panelLineH, color.RGBA{R: 30, G: 36, B: 48, A: 160}, false)
		}
		col, ok := eventColors[e.Kind]
		if !ok {
			col = eventColors[sim.EventSystem]
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 6, col, false)
		if !recent {
			col.A = 150
		}
		g.drawText(screen, fmt.Sprintf("%5d %s", e.Tick, e.Message), float64(panelX+12), float64(y), col)
		y += panelLineH
	}
}
