// Package touch turns raw pointer contacts into viewport pans and
// zooms. A Recognizer tracks the set of live contacts over the plot
// area and classifies them by count: one contact pans, two pinch-zoom,
// and any further contacts are recorded but never drive motion.
package touch

import (
	"gioui.org/f32"
	"gioui.org/io/pointer"
	"github.com/chewxy/math32"

	"git.sr.ht/~whereswaldon/zoomchart/viewport"
)

// State describes what kind of gesture is in progress.
type State uint8

const (
	Idle State = iota
	Panning
	Pinching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	default:
		return "unknown"
	}
}

// Geometry reports the current plot area size in pixels. It is invoked
// on every gesture step rather than cached, so resizes between steps
// are always observed.
type Geometry func() f32.Point

type contact struct {
	pos    f32.Point
	source pointer.Source
}

// Recognizer is a state machine over the live contact count. It owns
// each tracked contact from press to release or cancel and retains
// nothing across gestures except the pinch reference scalars needed to
// diff consecutive frames, which are discarded on every contact-count
// transition because a transition has no valid previous frame.
type Recognizer struct {
	vp   *viewport.State
	geom Geometry

	// order preserves press order so the first two tracked contacts
	// keep driving the pinch even while extra fingers come and go.
	order    []pointer.ID
	contacts map[pointer.ID]contact

	prevDist float32
	prevMid  f32.Point
	haveRef  bool
}

// NewRecognizer returns a Recognizer mutating vp. Both arguments are
// required; nil indicates a collaborator wiring bug and panics.
func NewRecognizer(vp *viewport.State, geom Geometry) *Recognizer {
	if vp == nil || geom == nil {
		panic("touch: NewRecognizer requires a viewport and a geometry provider")
	}
	return &Recognizer{
		vp:       vp,
		geom:     geom,
		contacts: make(map[pointer.ID]contact),
	}
}

// State reports the current gesture classification.
func (r *Recognizer) State() State {
	switch len(r.order) {
	case 0:
		return Idle
	case 1:
		return Panning
	default:
		return Pinching
	}
}

// Queue feeds one pointer event into the state machine.
func (r *Recognizer) Queue(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		r.press(ev)
	case pointer.Move, pointer.Drag:
		r.move(ev.PointerID, ev.Position)
	case pointer.Release, pointer.Cancel:
		r.drop(ev.PointerID)
	}
}

// Reset drops all tracked contacts and reference scalars, returning the
// machine to idle. Used when the chart is disposed or loses input
// focus; pending gesture state must not survive either.
func (r *Recognizer) Reset() {
	r.order = r.order[:0]
	clear(r.contacts)
	r.haveRef = false
}

func (r *Recognizer) press(ev pointer.Event) {
	if _, tracked := r.contacts[ev.PointerID]; tracked {
		// A repeated press for a live contact carries no transition;
		// treat it as a position update.
		r.move(ev.PointerID, ev.Position)
		return
	}
	// Mouse contacts only count when the primary button is down.
	if ev.Source != pointer.Touch && !ev.Buttons.Contain(pointer.ButtonPrimary) {
		return
	}
	size := r.geom()
	if ev.Position.X < 0 || ev.Position.Y < 0 || ev.Position.X > size.X || ev.Position.Y > size.Y {
		// Contacts starting outside the plot are never tracked.
		return
	}
	r.order = append(r.order, ev.PointerID)
	r.contacts[ev.PointerID] = contact{pos: ev.Position, source: ev.Source}
	r.haveRef = false
}

func (r *Recognizer) drop(id pointer.ID) {
	if _, tracked := r.contacts[id]; !tracked {
		return
	}
	delete(r.contacts, id)
	for i := range r.order {
		if r.order[i] == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	// The remaining contact (if any) pans from a fresh reference; no
	// velocity carries over from the ended gesture.
	r.haveRef = false
}

func (r *Recognizer) move(id pointer.ID, pos f32.Point) {
	prev, tracked := r.contacts[id]
	if !tracked {
		return
	}
	r.contacts[id] = contact{pos: pos, source: prev.source}
	switch len(r.order) {
	case 0:
	case 1:
		r.pan(prev.pos, pos)
	default:
		if id == r.order[0] || id == r.order[1] {
			r.pinch()
		}
	}
}

// pan converts a horizontal pixel delta into a percent-of-domain delta
// using the current plot width and viewport span, so drag speed tracks
// the finger 1:1 at every zoom level. Dragging right moves the window
// left: the content follows the finger.
func (r *Recognizer) pan(from, to f32.Point) {
	width := r.geom().X
	if width <= 0 {
		return
	}
	span := r.vp.Range().Span()
	delta := float64((to.X-from.X)/width) * span
	r.vp.Pan(-delta)
}

// pinch derives a zoom from the change in inter-contact distance and a
// simultaneous pan from the midpoint translation, so a combined
// pinch+drag both zooms and pans in the same step.
func (r *Recognizer) pinch() {
	a := r.contacts[r.order[0]].pos
	b := r.contacts[r.order[1]].pos
	dist := math32.Hypot(b.X-a.X, b.Y-a.Y)
	mid := a.Add(b).Mul(0.5)
	defer func() {
		r.prevDist = dist
		r.prevMid = mid
		r.haveRef = true
	}()
	if !r.haveRef || r.prevDist <= 0 || dist <= 0 {
		// First frame after a contact-count transition establishes the
		// reference without producing motion.
		return
	}
	width := r.geom().X
	if width <= 0 {
		return
	}
	rng := r.vp.Range()
	center := rng.Start + float64(mid.X/width)*rng.Span()
	if dist > r.prevDist {
		r.vp.ZoomIn(center, float64(dist/r.prevDist))
	} else if dist < r.prevDist {
		r.vp.ZoomOut(center, float64(r.prevDist/dist))
	}
	span := r.vp.Range().Span()
	r.vp.Pan(-float64((mid.X-r.prevMid.X)/width) * span)
}
