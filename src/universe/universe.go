package universe

import "time"

type Universe interface {
	Status() Status
	Options() Options
	Grid() Grid
	Snapshot() Snapshot
	StateCh() chan Status
	RegisterViewer(v Viewer)
	Start() error
	Stop() error
	Step() error
	Restart() error
	Randomize() error
	Resize(rows int, cols int) error
	SetInterval(d time.Duration) error
	ToggleCell(r int, c int) error
	ImportPattern(rows int, cols int, cells [][]Cell) error
	Restore(s Snapshot) error
	Close()
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//Clock schedules the delayed ticks of the running cycle
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

//Timer is the pending tick returned by Clock
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
