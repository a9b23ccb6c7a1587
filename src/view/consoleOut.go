package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"lifeboard/src/universe"
)

//ConsoleOut prints the progress of the headless run
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	every     int
	startTime time.Time
	lastGen   int
	finished  bool
}

//NewConsoleOut creates the viewer printing every n-th generation
func NewConsoleOut(w io.Writer, every int) *ConsoleOut {
	if every < 1 {
		every = 1
	}
	return &ConsoleOut{w: w, every: every, lastGen: -1}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	switch st.RunningMode {
	case universe.RunningStateFinished, universe.RunningStateStopped:
		if c.finished || st.Generation == 0 {
			return
		}
		c.finished = true
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last generation": st.Generation,
			"Total time":      totalTime,
			"Live cells":      st.LiveCells,
		}
		fmt.Fprintln(c.w, "\nFinished:")
		c.printHashData(resultData)
	case universe.RunningStateRun:
		c.finished = false
		if st.Generation != c.lastGen && st.Generation%c.every == 0 {
			c.lastGen = st.Generation
			fmt.Fprintf(c.w, "  Generation %v, live cells: %v\n", st.Generation, st.LiveCells)
		}
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	st := c.u.Status()
	fmt.Fprintln(c.w, "Running configuration:")
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", st.Rows, st.Cols)
	fmt.Fprintf(c.w, "  Interval: %v\n", st.Interval)
	fmt.Fprintf(c.w, "  Max generations: %v\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
