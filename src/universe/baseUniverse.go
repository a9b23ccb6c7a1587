package universe

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
)

//Options represents the Universe's configurable options
type Options struct {
	Rows     int
	Cols     int
	Interval time.Duration
	Density  float64
	MaxSteps int    //0 means no limit
	Seed     uint64 //0 means time based seed
	Clock    Clock  //nil means the real time
	Advanced map[string]interface{}
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	Generation    int
	RunningMode   RunningState
	LiveCells     int
	IterationTime time.Duration
	Rows          int
	Cols          int
	Interval      time.Duration
	Imported      bool
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 300
	DefRows               = 50
	DefCols               = 30
)

const (
	RunningStateIdle RunningState = iota
	RunningStateReady
	RunningStateRun
	RunningStateStopped
	RunningStateFinished
)

var runningStateNames = map[RunningState]string{
	RunningStateIdle:     "idle",
	RunningStateReady:    "ready",
	RunningStateRun:      "running",
	RunningStateStopped:  "stopped",
	RunningStateFinished: "finished",
}

func (s RunningState) String() string {
	return runningStateNames[s]
}

var (
	ErrRunning         = errors.New("not permitted while the simulation is running")
	ErrInvalidInterval = errors.New("interval must be a positive whole number of milliseconds")
	ErrClosed          = errors.New("universe is closed")
)

var DefaultUniverseOptions = Options{
	Rows:     DefRows,
	Cols:     DefCols,
	Interval: DefSimulationInterval,
	Density:  DefDensity,
}

//BaseUniverse is the universe's engine, implements Universe interface
//all the state changes are executed one by one by the main loop goroutine,
//so there is never more than one generation in flight
type BaseUniverse struct {
	options Options
	clock   Clock
	rng     *rand.Rand
	state   struct {
		Status
		grid Grid
		sync.RWMutex
	}
	//running and epoch are touched by the main loop only
	running bool
	epoch   int
	timer   Timer

	stateCh   chan Status
	views     []Viewer
	controlCh chan func()
	closeCh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Universe = (*BaseUniverse)(nil)

//NewBaseUniverse creates the BaseUniverse instance with the empty grid
func NewBaseUniverse(o *Options, stateCh chan Status) (*BaseUniverse, error) {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	opts := *o
	if err := CheckDimensions(opts.Rows, opts.Cols); err != nil {
		return nil, errors.Wrap(err, "[NewBaseUniverse] options")
	}
	if err := CheckInterval(opts.Interval); err != nil {
		return nil, errors.Wrap(err, "[NewBaseUniverse]")
	}
	if opts.Density < 0 || opts.Density > 1 {
		return nil, errors.Errorf("[NewBaseUniverse] density %v is outside [0,1]", opts.Density)
	}
	opts.Advanced = map[string]interface{}{
		"Topology": "toroidal",
		"Density":  opts.Density,
	}
	for k, v := range o.Advanced {
		opts.Advanced[k] = v
	}

	u := BaseUniverse{
		options:   opts,
		clock:     opts.Clock,
		rng:       NewRNG(opts.Seed),
		stateCh:   stateCh,
		controlCh: make(chan func()),
		closeCh:   make(chan struct{}),
		done:      make(chan struct{}),
	}
	if u.clock == nil {
		u.clock = realClock{}
	}
	u.state.grid = EmptyGrid(opts.Rows, opts.Cols)
	u.state.Rows = opts.Rows
	u.state.Cols = opts.Cols
	u.state.Interval = opts.Interval
	u.state.RunningMode = RunningStateIdle

	go u.mainLoop()
	return &u, nil
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	v.Register(u)
	_ = u.exec(func() {
		u.views = append(u.views, v)
	})
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.RLock()
	defer u.state.RUnlock()
	return u.state.Status
}

//Options returns the universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Grid returns the current grid, the value is never modified afterwards
func (u *BaseUniverse) Grid() Grid {
	u.state.RLock()
	defer u.state.RUnlock()
	return u.state.grid
}

//Snapshot returns the current session state
func (u *BaseUniverse) Snapshot() Snapshot {
	u.state.RLock()
	defer u.state.RUnlock()
	return Snapshot{
		Grid:       u.state.grid,
		Rows:       u.state.Rows,
		Cols:       u.state.Cols,
		Generation: u.state.Generation,
		Interval:   u.state.Interval,
	}
}

//Start starts the simulation cycle, seeding the grid with random data on the first generation
func (u *BaseUniverse) Start() error {
	return u.command(func() error {
		u.start()
		return nil
	})
}

//Stop stops the simulation cycle, the already scheduled tick does nothing
func (u *BaseUniverse) Stop() error {
	return u.command(func() error {
		u.stop()
		return nil
	})
}

//Step does one generation without starting the cycle
func (u *BaseUniverse) Step() error {
	return u.command(u.step)
}

//Restart stops the simulation, clears the grid and resets the generation counter
func (u *BaseUniverse) Restart() error {
	return u.command(func() error {
		u.restart()
		return nil
	})
}

//Randomize replaces the grid with random data
func (u *BaseUniverse) Randomize() error {
	return u.command(func() error {
		if u.running {
			return errors.Wrap(ErrRunning, "[Randomize]")
		}
		u.seed()
		return nil
	})
}

//Resize changes the grid dimensions and populates the new grid with random data
//the imported pattern is dropped
func (u *BaseUniverse) Resize(rows int, cols int) error {
	return u.command(func() error {
		if u.running {
			return errors.Wrap(ErrRunning, "[Resize]")
		}
		if err := CheckDimensions(rows, cols); err != nil {
			return errors.Wrap(err, "[Resize]")
		}
		u.state.Lock()
		u.state.Rows = rows
		u.state.Cols = cols
		u.state.Imported = false
		u.state.Unlock()
		u.seed()
		return nil
	})
}

//SetInterval changes the delay between the generations, the next scheduled tick uses it
func (u *BaseUniverse) SetInterval(d time.Duration) error {
	return u.command(func() error {
		if err := CheckInterval(d); err != nil {
			return errors.Wrap(err, "[SetInterval]")
		}
		u.state.Lock()
		u.state.Interval = d
		u.state.Unlock()
		return nil
	})
}

//ToggleCell inverses the cell state at r, c
func (u *BaseUniverse) ToggleCell(r int, c int) error {
	return u.command(func() error {
		next, err := Toggle(u.state.grid, r, c)
		if err != nil {
			return errors.Wrap(err, "[ToggleCell]")
		}
		u.publish(next)
		if !u.running {
			u.switchRunningState(u.restingMode())
		}
		return nil
	})
}

//ImportPattern replaces the grid and dimensions with the pattern
//the generation is reset and the pattern is not overwritten by the random data on start
func (u *BaseUniverse) ImportPattern(rows int, cols int, cells [][]Cell) error {
	return u.command(func() error {
		if u.running {
			return errors.Wrap(ErrRunning, "[ImportPattern]")
		}
		g, err := FromCells(cells)
		if err != nil {
			return errors.Wrap(err, "[ImportPattern]")
		}
		if g.Rows != rows || g.Cols != cols {
			return errors.Wrapf(ErrShapeMismatch, "[ImportPattern] pattern is %dx%d, declared %dx%d", g.Rows, g.Cols, rows, cols)
		}
		u.state.Lock()
		u.state.Rows = rows
		u.state.Cols = cols
		u.state.Generation = 0
		u.state.Imported = true
		u.state.Interval = u.options.Interval
		u.state.Unlock()
		u.publish(g)
		u.switchRunningState(u.restingMode())
		return nil
	})
}

//Restore replaces the whole session state with the snapshot
func (u *BaseUniverse) Restore(s Snapshot) error {
	return u.command(func() error {
		if u.running {
			return errors.Wrap(ErrRunning, "[Restore]")
		}
		if err := s.Validate(); err != nil {
			return errors.Wrap(err, "[Restore]")
		}
		u.state.Lock()
		u.state.Rows = s.Rows
		u.state.Cols = s.Cols
		u.state.Generation = s.Generation
		u.state.Interval = s.Interval
		u.state.Imported = true
		u.state.Unlock()
		u.publish(s.Grid)
		u.switchRunningState(u.restingMode())
		return nil
	})
}

//Close stops the main loop and waits for it
func (u *BaseUniverse) Close() {
	u.closeOnce.Do(func() {
		close(u.closeCh)
	})
	<-u.done
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	defer close(u.done)
	for {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case <-u.closeCh:
			u.running = false
			if u.timer != nil {
				u.timer.Stop()
			}
			return
		}
	}
}

//exec runs the command on the main loop and waits for it
func (u *BaseUniverse) exec(cmd func()) error {
	finished := make(chan struct{})
	select {
	case u.controlCh <- func() {
		cmd()
		close(finished)
	}:
	case <-u.done:
		return ErrClosed
	}
	<-finished
	return nil
}

//command runs the state changing command on the main loop and refreshes the views
func (u *BaseUniverse) command(cmd func() error) (err error) {
	if e := u.exec(func() {
		err = cmd()
		u.refreshView()
	}); e != nil {
		return e
	}
	return
}

//post queues the command from another goroutine without waiting for it
func (u *BaseUniverse) post(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.done:
	}
}

//publish makes the grid current
func (u *BaseUniverse) publish(g Grid) {
	u.state.Lock()
	u.state.grid = g
	u.state.Rows = g.Rows
	u.state.Cols = g.Cols
	u.state.LiveCells = g.LiveCells()
	u.state.Unlock()
}

//seed populates the grid with random data using the current dimensions
func (u *BaseUniverse) seed() {
	st := u.Status()
	u.publish(Randomize(st.Rows, st.Cols, u.options.Density, u.rng))
	u.switchRunningState(u.restingMode())
}

//seedIfFresh seeds the grid before the first generation unless the pattern was imported
func (u *BaseUniverse) seedIfFresh() {
	st := u.Status()
	if st.Generation == 0 && !st.Imported {
		u.seed()
	}
}

//restingMode is the running state of the stopped universe
func (u *BaseUniverse) restingMode() RunningState {
	st := u.Status()
	switch {
	case st.Generation > 0:
		return RunningStateStopped
	case st.Imported || st.LiveCells > 0:
		return RunningStateReady
	}
	return RunningStateIdle
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *BaseUniverse) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		select {
		case u.stateCh <- st:
		case <-u.closeCh:
		}
	}
}

//start starts the universe simulation
//the first generation is calculated at once, the next ones are scheduled by tick
func (u *BaseUniverse) start() {
	if u.running {
		return
	}
	u.seedIfFresh()
	u.running = true
	u.epoch++
	u.switchRunningState(RunningStateRun)
	u.tick(u.epoch)
}

//tick does one generation of the running cycle and schedules the next one
//the tick of a stopped cycle or of the previous run does nothing
func (u *BaseUniverse) tick(epoch int) {
	if !u.running || epoch != u.epoch {
		return
	}
	u.advance()
	if u.options.MaxSteps > 0 && u.Status().Generation >= u.options.MaxSteps {
		u.running = false
		u.switchRunningState(RunningStateFinished)
		u.refreshView()
		return
	}
	u.refreshView()
	u.timer = u.clock.AfterFunc(u.Status().Interval, func() {
		u.post(func() {
			u.tick(epoch)
		})
	})
}

//stop stops the universe running cycle
func (u *BaseUniverse) stop() {
	if !u.running {
		return
	}
	u.running = false
	u.switchRunningState(u.restingMode())
}

//step does one generation outside of the running cycle
func (u *BaseUniverse) step() error {
	if u.running {
		return errors.Wrap(ErrRunning, "[Step]")
	}
	u.seedIfFresh()
	u.advance()
	u.switchRunningState(u.restingMode())
	return nil
}

//restart clears the universe data, reset all counters
func (u *BaseUniverse) restart() {
	u.running = false
	u.state.Lock()
	u.state.Generation = 0
	u.state.Imported = false
	u.state.IterationTime = 0
	rows, cols := u.state.Rows, u.state.Cols
	u.state.Unlock()
	u.publish(EmptyGrid(rows, cols))
	u.switchRunningState(RunningStateIdle)
}

//advance replaces the grid with the next generation
func (u *BaseUniverse) advance() {
	start := time.Now()
	next, liveCells, _ := advance(u.Grid())
	u.state.Lock()
	u.state.grid = next
	u.state.Generation++
	u.state.LiveCells = liveCells
	u.state.IterationTime = time.Since(start)
	u.state.Unlock()
}

//refreshView calls Refresh event for all registered views
func (u *BaseUniverse) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}
