package game

import (
	"fmt"
	"math"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/Garsondee/Heli-Taxi/internal/sim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the level.
const borderWidth = 24

// pixelsPerUnit is the level scale: one world unit is this many pixels.
const pixelsPerUnit = 32

// statusTicks is how long a status message stays on screen.
const statusTicks = 150

// Game is the ebiten front end over one sim.Session.
type Game struct {
	cfg     *config.Config
	log     zerolog.Logger
	session *sim.Session
	view    viewport

	width  int
	height int

	face     text.Face
	prevKeys map[ebiten.Key]bool
	paused   bool
	showRays bool
	showHUD  bool

	status     string
	statusLeft int
}

// New builds the session and sizes the window to the level.
func New(cfg *config.Config, log zerolog.Logger) (*Game, error) {
	s, err := sim.NewSession(cfg, log, sim.NewSimLog(false))
	if err != nil {
		return nil, err
	}
	view := fitView(cfg.Level, pixelsPerUnit, borderWidth)
	g := &Game{
		cfg:      cfg,
		log:      log.With().Str("component", "game").Logger(),
		session:  s,
		view:     view,
		width:    int(view.width()) + 2*borderWidth + panelWidth,
		height:   int(view.height()) + 2*borderWidth,
		face:     text.NewGoXFace(basicfont.Face7x13),
		prevKeys: make(map[ebiten.Key]bool),
		showHUD:  true,
	}
	return g, nil
}

// WindowSize is the native window size in pixels.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

// Session exposes the running session.
func (g *Game) Session() *sim.Session { return g.session }

func (g *Game) Update() error {
	g.handleInput()
	if g.statusLeft > 0 {
		g.statusLeft--
	}
	if g.paused {
		return nil
	}
	g.session.Step(stickInput(ebiten.IsKeyPressed))
	return nil
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawWorld(screen)
	if g.showRays {
		g.drawProbes(screen)
	}
	g.drawHeli(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawEventPanel(screen, g.width-panelWidth, g.height)
}

// stickInput maps arrows/WASD to a stick sample in [-1,1]².
func stickInput(pressed func(ebiten.Key) bool) heli.Vec2 {
	var in heli.Vec2
	if pressed(ebiten.KeyArrowUp) || pressed(ebiten.KeyW) {
		in.Y++
	}
	if pressed(ebiten.KeyArrowDown) || pressed(ebiten.KeyS) {
		in.Y--
	}
	if pressed(ebiten.KeyArrowLeft) || pressed(ebiten.KeyA) {
		in.X--
	}
	if pressed(ebiten.KeyArrowRight) || pressed(ebiten.KeyD) {
		in.X++
	}
	return in
}

// handleInput processes toggle keypresses (edge-triggered).
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	edge := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	if edge(ebiten.KeyF1) {
		g.showRays = !g.showRays
	}
	if edge(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if edge(ebiten.KeyP) {
		g.paused = !g.paused
		g.setStatus(map[bool]string{true: "paused", false: "resumed"}[g.paused])
	}
	if edge(ebiten.KeyR) {
		if err := g.session.Reset(); err != nil {
			g.log.Error().Err(err).Msg("reset failed")
			g.setStatus("reset failed: " + err.Error())
		} else {
			g.setStatus("level reset")
		}
	}
	if edge(ebiten.KeyC) {
		g.copyReport()
	}

	g.prevKeys = currentKeys
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusLeft = statusTicks
}

// viewport maps world units (+Y up) onto screen pixels (+Y down).
type viewport struct {
	minX, minY float64
	maxX, maxY float64
	scale      float64
	offX, offY float64
}

// fitView frames every block, water region and portal in the level.
func fitView(lv config.Level, scale, border float64) viewport {
	v := viewport{
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
		scale: scale, offX: border, offY: border,
	}
	grow := func(p config.Point) {
		v.minX = math.Min(v.minX, p[0])
		v.minY = math.Min(v.minY, p[1])
		v.maxX = math.Max(v.maxX, p[0])
		v.maxY = math.Max(v.maxY, p[1])
	}
	for _, b := range lv.Blocks {
		grow(b.Min)
		grow(b.Max)
	}
	for _, w := range lv.Water {
		grow(w.Min)
		grow(w.Max)
	}
	for _, p := range lv.Portals {
		grow(p.Pos)
	}
	grow(lv.Spawn)
	if v.maxX-v.minX < 1 {
		v.maxX = v.minX + 1
	}
	if v.maxY-v.minY < 1 {
		v.maxY = v.minY + 1
	}
	return v
}

func (v viewport) width() float64  { return (v.maxX - v.minX) * v.scale }
func (v viewport) height() float64 { return (v.maxY - v.minY) * v.scale }

// toScreen converts a world point to pixels.
func (v viewport) toScreen(p heli.Vec2) (float32, float32) {
	return float32(v.offX + (p.X-v.minX)*v.scale), float32(v.offY + (v.maxY-p.Y)*v.scale)
}

// rect converts a world box to a pixel rectangle (x, y, w, h).
func (v viewport) rect(min, max heli.Vec2) (float32, float32, float32, float32) {
	x0, y1 := v.toScreen(min)
	x1, y0 := v.toScreen(max)
	return x0, y0, x1 - x0, y1 - y0
}

func (v viewport) String() string {
	return fmt.Sprintf("[%.1f,%.1f]-[%.1f,%.1f] @%.0fpx", v.minX, v.minY, v.maxX, v.maxY, v.scale)
}
