package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"lifeboard/src/config"
	"lifeboard/src/pattern"
	"lifeboard/src/store"
	"lifeboard/src/universe"
	"lifeboard/src/view"
)

type EnvOptions struct {
	configFile  string
	interactive bool
	randomData  bool
	save        bool
	resume      string
	patternFile string
	template    string
}

func main() {
	eo, cfg := initOptions()

	logger, closeLog := initLogger(eo, cfg)
	defer closeLog()

	st := store.New(store.NewFileKV(cfg.StorePath))

	if err := run(eo, cfg, st, logger); err != nil {
		logger.Printf("%+v", err)
		fmt.Fprintln(os.Stderr, err)
		closeLog()
		os.Exit(1)
	}
}

func run(eo *EnvOptions, cfg config.Config, st *store.Store, logger *log.Logger) error {
	uo := universe.Options{
		Rows:     cfg.Rows,
		Cols:     cfg.Cols,
		Interval: cfg.Interval(),
		Density:  cfg.Density,
		MaxSteps: cfg.MaxSteps,
		Seed:     cfg.Seed,
	}

	var stateCh chan universe.Status
	if eo.interactive {
		//the user decides when to stop
		uo.MaxSteps = 0
	} else {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.NewBaseUniverse(&uo, stateCh)
	if err != nil {
		return err
	}
	defer u.Close()

	if err = settle(eo, cfg, u); err != nil {
		return err
	}

	if eo.interactive {
		v, err := view.NewViewTerminal(st, logger, cfg.Rows, cfg.Cols)
		if err != nil {
			return err
		}
		u.RegisterViewer(v)
		v.Start()
		return nil
	}
	return runHeadless(eo, st, u, logger)
}

//settle populates the universe before the first run
func settle(eo *EnvOptions, cfg config.Config, u universe.Universe) error {
	switch {
	case eo.patternFile != "":
		f, err := os.Open(eo.patternFile)
		if err != nil {
			return errors.Wrap(err, "[settle] pattern file")
		}
		defer f.Close()
		g, err := pattern.ParsePlaintext(f)
		if err != nil {
			return errors.Wrapf(err, "[settle] %s", eo.patternFile)
		}
		e, err := pattern.NewEditor(max(g.Rows, cfg.Rows), max(g.Cols, cfg.Cols))
		if err != nil {
			return err
		}
		e.Place(g, 0, 0)
		return e.ImportTo(u)
	case eo.template != "":
		e, err := pattern.NewEditor(cfg.Rows, cfg.Cols)
		if err != nil {
			return err
		}
		if err = e.Stamp(eo.template, 1, 1); err != nil {
			return err
		}
		return e.ImportTo(u)
	case eo.randomData:
		return u.Randomize()
	}
	return nil
}

//runHeadless runs the simulation until it is finished or interrupted
func runHeadless(eo *EnvOptions, st *store.Store, u universe.Universe, logger *log.Logger) error {
	snap, ok, err := st.Resume(func() bool { return eo.resume == "yes" })
	if err != nil {
		logger.Printf("saved session is not restored: %v", err)
	}
	if ok {
		if err = u.Restore(snap); err != nil {
			return err
		}
		logger.Printf("session restored at generation %d", snap.Generation)
	}

	out := view.NewConsoleOut(os.Stdout, 10)
	u.RegisterViewer(out)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		for {
			select {
			case s := <-u.StateCh():
				if s.RunningMode == universe.RunningStateFinished {
					return nil
				}
			case <-ctx.Done():
				logger.Printf("interrupted, stopping the simulation")
				return u.Stop()
			}
		}
	})
	eg.Go(func() error {
		out.Start()
		return u.Start()
	})
	if err = eg.Wait(); err != nil {
		return err
	}

	if eo.save {
		if err = st.Save(u.Snapshot()); err != nil {
			return err
		}
		logger.Printf("session saved at generation %d", u.Status().Generation)
	}
	return nil
}

func initLogger(eo *EnvOptions, cfg config.Config) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	closeLog := func() {}
	if eo.interactive {
		//the terminal belongs to the UI
		w = io.Discard
		if cfg.LogFile != "" {
			f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err == nil {
				w = f
				closeLog = func() { _ = f.Close() }
			}
		}
	}
	logger := log.New(w, "simlife: ", log.LstdFlags)
	logger.Printf("started at %v", time.Now().Format(time.RFC3339))
	return logger, closeLog
}

func initOptions() (eo *EnvOptions, cfg config.Config) {
	eo = &EnvOptions{configFile: "simlife.json", resume: "no"}
	var (
		rows, cols, maxSteps int
		interval             time.Duration
		seed                 uint64
	)

	flaggy.SetName("simlife")
	flaggy.SetDescription("Conway's Game of Life on a toroidal board")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&eo.configFile, "c", "config", "Configuration file in json format")
	flaggy.Int(&rows, "x", "rows", "Number of rows of a simulation field")
	flaggy.Int(&cols, "y", "cols", "Number of columns of a simulation field")
	flaggy.Duration(&interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&maxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.Bool(&eo.save, "", "save", "Save the session when the simulation is finished")
	flaggy.String(&eo.resume, "", "resume", "Restore the saved session [yes|no]")
	flaggy.String(&eo.patternFile, "p", "pattern", "Import the pattern in plaintext format")
	flaggy.String(&eo.template, "t", "template", "Import the builtin pattern")
	flaggy.UInt64(&seed, "", "seed", "Seed of the random data, 0 means time based")

	flaggy.Parse()

	//the missing configuration file means the defaults
	cfg, err := config.LoadConfig(eo.configFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		flaggy.ShowHelpAndExit(err.Error())
	}
	if rows > 0 {
		cfg.Rows = rows
	}
	if cols > 0 {
		cfg.Cols = cols
	}
	if interval > 0 {
		cfg.IntervalMs = int(interval / time.Millisecond)
	}
	if maxSteps > 0 {
		cfg.MaxSteps = maxSteps
	}
	if seed > 0 {
		cfg.Seed = seed
	}
	if eo.resume != "yes" && eo.resume != "no" {
		flaggy.ShowHelpAndExit("resume must be yes or no")
	}
	if eo.template != "" {
		if _, err := pattern.Lookup(eo.template); err != nil {
			flaggy.ShowHelpAndExit(err.Error())
		}
	}
	if err = cfg.Validate(); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	if !eo.interactive {
		flaggy.ShowHelp("")
	}

	return
}
