package game

import (
	"strings"
	"testing"

	"github.com/Garsondee/Heli-Taxi/internal/config"
	"github.com/Garsondee/Heli-Taxi/internal/heli"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

func TestStickInput(t *testing.T) {
	cases := []struct {
		name string
		keys []ebiten.Key
		want heli.Vec2
	}{
		{"idle", nil, heli.Vec2{}},
		{"up arrow", []ebiten.Key{ebiten.KeyArrowUp}, heli.V(0, 1)},
		{"wasd diagonal", []ebiten.Key{ebiten.KeyW, ebiten.KeyD}, heli.V(1, 1)},
		{"opposites cancel", []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowRight}, heli.Vec2{}},
		{"arrow and letter do not stack", []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, heli.V(0, -1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pressed := func(k ebiten.Key) bool {
				for _, p := range c.keys {
					if p == k {
						return true
					}
				}
				return false
			}
			if got := stickInput(pressed); got != c.want {
				t.Errorf("stickInput = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestViewport_FlipsY(t *testing.T) {
	lv := config.Level{
		Blocks: []config.Block{{Min: config.Point{0, 0}, Max: config.Point{10, 5}}},
	}
	v := fitView(lv, 10, 4)
	if v.width() != 100 || v.height() != 50 {
		t.Fatalf("view size = %vx%v", v.width(), v.height())
	}
	x, y := v.toScreen(heli.V(0, 0))
	if x != 4 || y != 54 {
		t.Errorf("bottom-left maps to (%v,%v), want (4,54)", x, y)
	}
	x, y = v.toScreen(heli.V(10, 5))
	if x != 104 || y != 4 {
		t.Errorf("top-right maps to (%v,%v), want (104,4)", x, y)
	}
	rx, ry, rw, rh := v.rect(heli.V(1, 1), heli.V(3, 2))
	if rx != 14 || ry != 34 || rw != 20 || rh != 10 {
		t.Errorf("rect = %v,%v %vx%v", rx, ry, rw, rh)
	}
}

func TestNew_SizesWindowToLevel(t *testing.T) {
	g, err := New(config.Default(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w, h := g.WindowSize()
	// Stock level spans x -1..41 and y -3..23.
	if w != 42*pixelsPerUnit+2*borderWidth+panelWidth || h != 26*pixelsPerUnit+2*borderWidth {
		t.Errorf("window = %dx%d", w, h)
	}
	lw, lh := g.Layout(0, 0)
	if lw != w || lh != h {
		t.Errorf("layout %dx%d differs from window %dx%d", lw, lh, w, h)
	}
}

func TestHUDLines(t *testing.T) {
	g, err := New(config.Default(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.session.Step(heli.Vec2{})
	lines := strings.Join(g.hudLines(), "\n")
	for _, want := range []string{"state ", "hp    100/100", "pickup at ", "F1 rays"} {
		if !strings.Contains(lines, want) {
			t.Errorf("HUD missing %q:\n%s", want, lines)
		}
	}
	g.setStatus("hello")
	if !strings.Contains(strings.Join(g.hudLines(), "\n"), "> hello") {
		t.Error("status line not shown")
	}
}

func TestStateColor_Distinct(t *testing.T) {
	seen := map[[4]uint8]heli.State{}
	for _, st := range heli.States {
		c := stateColor(st)
		key := [4]uint8{c.R, c.G, c.B, c.A}
		if prev, dup := seen[key]; dup {
			t.Errorf("%s and %s share a colour", prev, st)
		}
		seen[key] = st
	}
}
