package filter

import (
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/event"
)

const (
	// pulseWindow is how long, in ms, a target takes to reach full strength.
	pulseWindow = 1000

	backOffX = 3096
	backOffY = 2048
)

type point struct{ x, y int64 }

// Dynamic drives navigation from one or two switches. Switch 1 flips
// between an upper and a lower target, switch 2 backs off while held.
type Dynamic struct {
	params   *config.Store
	unpauser Unpauser

	targets [2]point
	target  int
	started bool
	backOff bool
	pulsing bool
	keyTime int64
}

// NewDynamic creates the switch filter. unpauser may be nil.
func NewDynamic(params *config.Store, unpauser Unpauser) *Dynamic {
	d := &Dynamic{
		params:   params,
		unpauser: unpauser,
		targets:  [2]point{{100, 100}, {100, 3996}},
	}
	d.updateStyle()
	return d
}

// ActiveTarget returns the index of the selected target.
func (d *Dynamic) ActiveTarget() int { return d.target }

func (d *Dynamic) Pulsing() bool { return d.pulsing }

func (d *Dynamic) KeyDown(t int64, id int) {
	switch id {
	case SwitchPrimary:
		if d.params.GetBool(config.BoolPaused) {
			if d.unpauser != nil {
				d.unpauser.Unpause(t)
			}
			d.keyTime = t
			return
		}
		d.target = 1 - d.target
		d.started = true
		d.keyTime = t
	case SwitchBackOff:
		d.backOff = true
	}
}

func (d *Dynamic) KeyUp(t int64, id int) {
	if id == SwitchBackOff {
		d.backOff = false
	}
}

// Target returns the point the model should zoom toward at time t.
func (d *Dynamic) Target(t int64) (int64, int64) {
	if d.backOff {
		return backOffX, backOffY
	}
	tgt := d.targets[d.target]
	e := t - d.keyTime
	if !d.pulsing || !d.started || e > pulseWindow {
		return tgt.x, tgt.y
	}
	if e < 0 {
		e = 0
	}
	x := (e*tgt.x + (pulseWindow-e)*centreX) / pulseWindow
	y := (e*tgt.y + (pulseWindow-e)*centreY) / pulseWindow
	return x, y
}

// Decorate draws the two target guides; the active one gets colour 1.
func (d *Dynamic) Decorate(c Canvas) {
	upper := [4]int64{-100, 1000, -200, 4096}
	lower := [4]int64{-100, 0, -200, 3096}
	first, second := upper, lower
	if d.target != 0 {
		first, second = lower, upper
	}
	drawGuide(c, first, 1)
	drawGuide(c, second, 2)
}

func drawGuide(c Canvas, r [4]int64, colour int) {
	x1, y1 := c.NavigationToScreen(r[0], r[1])
	x2, y2 := c.NavigationToScreen(r[2], r[3])
	c.DrawRectangle(x1, y1, x2, y2, colour, colour, 1)
}

// HandleEvent follows changes to the button style parameters.
func (d *Dynamic) HandleEvent(e event.Event) {
	pc, ok := e.(event.ParameterChanged)
	if !ok {
		return
	}
	switch pc.Param {
	case config.BoolButtonSteady, config.BoolButtonPulsing:
		d.updateStyle()
	}
}

func (d *Dynamic) updateStyle() {
	d.pulsing = d.params.GetBool(config.BoolButtonPulsing) && !d.params.GetBool(config.BoolButtonSteady)
}
