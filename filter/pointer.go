package filter

import "github.com/yoanbernabeu/zoomtype/config"

// Pointer follows a continuous pointer already mapped into navigation
// space. Switch 1 starts and stops navigation.
type Pointer struct {
	params *config.Store
	pauser Pauser
	x, y   int64
}

// NewPointer creates a pointer filter resting on the crosshair. pauser
// may be nil.
func NewPointer(params *config.Store, pauser Pauser) *Pointer {
	return &Pointer{params: params, pauser: pauser, x: centreX, y: centreY}
}

// Move records the latest pointer position.
func (p *Pointer) Move(x, y int64) {
	p.x, p.y = x, y
}

func (p *Pointer) KeyDown(t int64, id int) {
	if id != SwitchPrimary || p.pauser == nil {
		return
	}
	if p.params.GetBool(config.BoolPaused) {
		p.pauser.Unpause(t)
		return
	}
	p.pauser.PauseAt(p.x, p.y)
}

func (p *Pointer) KeyUp(int64, int) {}

func (p *Pointer) Target(int64) (int64, int64) {
	return p.x, p.y
}

func (p *Pointer) Decorate(Canvas) {}
