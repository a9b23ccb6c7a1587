package view

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"lifeboard/src/config"
	"lifeboard/src/pattern"
	"lifeboard/src/store"
	"lifeboard/src/universe"
)

//uiMode selects which keybindings are active
type uiMode int

const (
	modeBoard uiMode = iota
	modeEditor
	modeConfirm
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
	mode     uiMode
}

type bindingKey struct {
	viewName string
	key      interface{}
}

//question is the pending yes/no dialog
type question struct {
	text  string
	onYes func()
	onNo  func()
	back  uiMode
}

type ConsoleUI struct {
	u      universe.Universe
	g      *gocui.Gui
	k      []keyBindings
	store  *store.Store
	logger *log.Logger

	mode     uiMode
	question *question
	editor   *pattern.Editor
	template int
	message  string

	liveFiller string
	deadFiller string
}

var (
	runningStateDescr = map[universe.RunningState]string{
		universe.RunningStateIdle:     aurora.Colorize("idle", aurora.BlueFg).String(),
		universe.RunningStateReady:    aurora.Colorize("ready", aurora.BlueFg).String(),
		universe.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		universe.RunningStateStopped:  aurora.Colorize("stopped", aurora.MagentaFg).String(),
		universe.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

//NewViewTerminal creates the interactive terminal UI
//the editor starts with the rows x cols empty pattern
func NewViewTerminal(st *store.Store, logger *log.Logger, rows int, cols int) (*ConsoleUI, error) {
	editor, err := pattern.NewEditor(rows, cols)
	if err != nil {
		return nil, errors.Wrap(err, "[NewViewTerminal]")
	}
	t := ConsoleUI{
		store:      st,
		logger:     logger,
		editor:     editor,
		liveFiller: aurora.Green("█").String(),
		deadFiller: "░",
	}

	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, errors.Wrap(err, "[NewViewTerminal] failed to init terminal")
	}

	t.g.Mouse = true
	t.g.InputEsc = true
	t.k = []keyBindings{
		{'r', "R", "Start", t.cmdRun, "", modeBoard},
		{'s', "S", "Stop", t.cmdStop, "", modeBoard},
		{'n', "N", "Step", t.cmdNextRound, "", modeBoard},
		{'c', "C", "Restart", t.cmdRestart, "", modeBoard},
		{'w', "W", "Save", t.cmdSave, "", modeBoard},
		{'x', "X", "Random", t.cmdSettleWithRandom, "", modeBoard},
		{'+', "+", "Slower", t.cmdSlower, "", modeBoard},
		{'-', "-", "Faster", t.cmdFaster, "", modeBoard},
		{'k', "K/J", "Rows", t.resizeCmd(1, 0), "", modeBoard},
		{'j', "", "", t.resizeCmd(-1, 0), "", modeBoard},
		{'l', "L/H", "Cols", t.resizeCmd(0, 1), "", modeBoard},
		{'h', "", "", t.resizeCmd(0, -1), "", modeBoard},
		{'e', "E", "Pattern editor", t.cmdOpenEditor, "", modeBoard},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdMouseClick, "battlefield", modeBoard},

		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdEditorClick, "editor", modeEditor},
		{'t', "T", "Stamp template", t.cmdStamp, "", modeEditor},
		{'k', "K/J", "Rows", t.editorResizeCmd(1, 0), "", modeEditor},
		{'j', "", "", t.editorResizeCmd(-1, 0), "", modeEditor},
		{'l', "L/H", "Cols", t.editorResizeCmd(0, 1), "", modeEditor},
		{'h', "", "", t.editorResizeCmd(0, -1), "", modeEditor},
		{'c', "C", "Clear", t.cmdEditorClear, "", modeEditor},
		{gocui.KeyEnter, "ENTER", "Import", t.cmdImport, "", modeEditor},
		{gocui.KeyEsc, "ESC", "Close", t.cmdCloseEditor, "", modeEditor},

		{'y', "Y", "Yes", t.cmdYes, "", modeConfirm},
		{'n', "N", "No", t.cmdNo, "", modeConfirm},
		{gocui.KeyEsc, "ESC", "No", t.cmdNo, "", modeConfirm},
	}
	t.g.SetManagerFunc(t.layout)

	if err = t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}

	return &t, nil
}

//initKeyBindings registers one handler per key, the handler picks the binding of the current mode
func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	if err := t.g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, func(*gocui.Gui, *gocui.View) error {
		return gocui.ErrQuit
	}); err != nil {
		return errors.Wrap(err, "[initKeyBindings]")
	}
	grouped := map[bindingKey][]keyBindings{}
	var order []bindingKey
	for _, kb := range k {
		bk := bindingKey{kb.viewName, kb.key}
		if _, ok := grouped[bk]; !ok {
			order = append(order, bk)
		}
		grouped[bk] = append(grouped[bk], kb)
	}
	for _, bk := range order {
		kbs := grouped[bk]
		if err := t.g.SetKeybinding(bk.viewName, bk.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error {
			for _, kb := range kbs {
				if kb.mode == t.mode {
					return kb.handler(view)
				}
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "[initKeyBindings] key %v", bk.key)
		}
	}
	return nil
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
}

//Start runs the terminal main loop until the user quits
//the saved session is offered for restoring first
func (t *ConsoleUI) Start() {
	if t.store != nil && t.store.Has() {
		t.ask("A saved session exists. Restore it?", t.resume(true), t.resume(false))
	}
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		t.logger.Printf("terminal main loop: %v", err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.g.Update(func(g *gocui.Gui) error {
		t.renderField()
		t.renderConfiguration()
		t.renderStatus()
		return nil
	})
}

func (t *ConsoleUI) renderField() {
	v, e := t.g.View("battlefield")
	if e != nil {
		return
	}
	v.Clear()
	maxW, maxH := v.Size()
	out, crop := renderGrid(t.u.Grid(), maxW, maxH, t.liveFiller, t.deadFiller)
	v.Title = "Board"
	if crop {
		v.Title = "Board (cropped: the grid is larger than the viewing area)"
	}
	_, _ = fmt.Fprint(v, out)
}

func (t *ConsoleUI) renderEditor() {
	v, e := t.g.View("editor")
	if e != nil {
		return
	}
	v.Clear()
	g := t.editor.Grid()
	maxW, maxH := v.Size()
	out, crop := renderGrid(g, maxW, maxH, t.liveFiller, t.deadFiller)
	v.Title = fmt.Sprintf("Pattern %v x %v, template: %s", g.Rows, g.Cols, t.currentTemplate())
	if crop {
		v.Title += " (cropped)"
	}
	_, _ = fmt.Fprint(v, out)
}

func (t *ConsoleUI) renderStatus() {
	s := t.u.Status()
	if v, e := t.g.View("status"); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Generation", "%v", s.Generation))
		_, _ = fmt.Fprintln(v, t.renderProp("Live Cells", "%v", s.LiveCells))
		_, _ = fmt.Fprintln(v, t.renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
		_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
		if s.Imported {
			_, _ = fmt.Fprintln(v, t.renderProp("Pattern", "%v", "imported"))
		}
		if t.message != "" {
			_, _ = fmt.Fprintln(v, "\n "+t.message)
		}
	}
}

func (t *ConsoleUI) renderConfiguration() {
	s := t.u.Status()
	if v, e := t.g.View("configuration"); e == nil {
		v.Clear()
		_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", s.Rows, s.Cols))
		_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", s.Interval))
		_, _ = fmt.Fprintln(v, t.renderProp("Topology", "%v", "toroidal"))
	}
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) renderHelp(v *gocui.View) {
	v.Clear()
	b := bytes.Buffer{}
	b.WriteString("KEYBINDINGS: ^C: Exit")
	for _, k := range t.k {
		if k.mode != t.mode || k.name == "" {
			continue
		}
		b.WriteString(", ")
		b.WriteString(aurora.Green(k.name).String())
		b.WriteString(": ")
		b.WriteString(k.descr)
	}
	_, _ = fmt.Fprintln(v, b.String())
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("battlefield")
		_ = g.DeleteView("editor")
		_ = g.DeleteView("confirm")
		return nil

	} else {
		if _, err := t.headerLayout(g, 3, "Conway's Game of Life on a torus"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
	}
	t.renderConfiguration()

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		v.Wrap = true
	}
	t.renderStatus()

	if v, err := g.SetView("battlefield", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = true
	}
	t.renderField()

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
	}
	if v, err := g.View("help"); err == nil {
		t.renderHelp(v)
	}

	if err := t.editorLayout(g, maxX, maxY); err != nil {
		return err
	}
	return t.confirmLayout(g, maxX, maxY)
}

//editorLayout shows the pattern editor over the board while it is open
func (t *ConsoleUI) editorLayout(g *gocui.Gui, maxX int, maxY int) error {
	if t.mode != modeEditor && !(t.mode == modeConfirm && t.question != nil && t.question.back == modeEditor) {
		_ = g.DeleteView("editor")
		return nil
	}
	eg := t.editor.Grid()
	w := min(eg.Cols+2, maxX-4)
	h := min(eg.Rows+2, maxY-8)
	x0 := (maxX - w) / 2
	y0 := (maxY - 5 - h) / 2
	if v, err := g.SetView("editor", x0, y0, x0+w, y0+h); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = true
	}
	t.renderEditor()
	return nil
}

//confirmLayout shows the pending question on top of everything
func (t *ConsoleUI) confirmLayout(g *gocui.Gui, maxX int, maxY int) error {
	if t.mode != modeConfirm || t.question == nil {
		_ = g.DeleteView("confirm")
		return nil
	}
	w := min(len(t.question.text)+12, maxX-2)
	x0 := (maxX - w) / 2
	y0 := maxY/2 - 2
	v, err := g.SetView("confirm", x0, y0, x0+w, y0+2)
	if err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = true
		v.Title = "Confirm"
	}
	v.Clear()
	_, _ = fmt.Fprintf(v, " %s %s", t.question.text, aurora.Green("(y/n)").String())
	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

//report logs the result of the action and shows it in the status pane
func (t *ConsoleUI) report(action string, err error) error {
	if err != nil {
		t.message = aurora.Red(fmt.Sprintf("%s: %v", action, cause(err))).String()
		t.logger.Printf("%s failed: %v", action, err)
		return nil
	}
	t.message = action
	t.logger.Printf("%s", action)
	return nil
}

//cause trims the wrapping prefixes of the error for the status pane
func cause(err error) error {
	for _, sentinel := range []error{universe.ErrRunning, universe.ErrOutOfRange, universe.ErrInvalidDimensions} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return err
}

func (t *ConsoleUI) ask(text string, onYes func(), onNo func()) {
	t.question = &question{text: text, onYes: onYes, onNo: onNo, back: t.mode}
	t.mode = modeConfirm
}

func (t *ConsoleUI) answer(yes bool) {
	q := t.question
	t.question = nil
	t.mode = q.back
	if yes {
		q.onYes()
	} else if q.onNo != nil {
		q.onNo()
	}
}

//resume restores or discards the saved session
func (t *ConsoleUI) resume(restore bool) func() {
	return func() {
		snap, ok, err := t.store.Resume(func() bool { return restore })
		switch {
		case err != nil:
			_ = t.report("Restore", err)
		case !ok:
			_ = t.report("Saved session discarded", nil)
		default:
			_ = t.report(fmt.Sprintf("Session restored at generation %d", snap.Generation), t.u.Restore(snap))
		}
	}
}

func (t *ConsoleUI) cmdYes(_ *gocui.View) error {
	t.answer(true)
	return nil
}

func (t *ConsoleUI) cmdNo(_ *gocui.View) error {
	t.answer(false)
	return nil
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	return t.report("Step", t.u.Step())
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	return t.report("Start", t.u.Start())
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	return t.report("Stop", t.u.Stop())
}

func (t *ConsoleUI) cmdRestart(_ *gocui.View) error {
	st := t.u.Status()
	if st.RunningMode == universe.RunningStateRun {
		return t.report("Restart", universe.ErrRunning)
	}
	if st.Generation == 0 {
		return nil
	}
	return t.report("Restart", t.u.Restart())
}

func (t *ConsoleUI) cmdSave(_ *gocui.View) error {
	st := t.u.Status()
	if st.RunningMode == universe.RunningStateRun {
		return t.report("Save", universe.ErrRunning)
	}
	if st.Generation == 0 || t.store == nil {
		return nil
	}
	t.ask("Save the session?", func() {
		_ = t.report("Session saved", t.store.Save(t.u.Snapshot()))
	}, nil)
	return nil
}

func (t *ConsoleUI) cmdSettleWithRandom(_ *gocui.View) error {
	return t.report("Random data", t.u.Randomize())
}

func (t *ConsoleUI) cmdSlower(_ *gocui.View) error {
	d := config.ClampInterval(t.u.Status().Interval + config.IntervalStep)
	return t.report(fmt.Sprintf("Interval %v", d), t.u.SetInterval(d))
}

func (t *ConsoleUI) cmdFaster(_ *gocui.View) error {
	d := config.ClampInterval(t.u.Status().Interval - config.IntervalStep)
	return t.report(fmt.Sprintf("Interval %v", d), t.u.SetInterval(d))
}

func (t *ConsoleUI) resizeCmd(dRows int, dCols int) func(*gocui.View) error {
	return func(_ *gocui.View) error {
		st := t.u.Status()
		rows := config.ClampDimension(st.Rows + dRows)
		cols := config.ClampDimension(st.Cols + dCols)
		if rows == st.Rows && cols == st.Cols {
			return nil
		}
		return t.report(fmt.Sprintf("Resize %v x %v", rows, cols), t.u.Resize(rows, cols))
	}
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	r, c, ok := cellAt(t.u.Grid(), cx, cy, ox, oy)
	if !ok {
		return nil
	}
	if err := t.u.ToggleCell(r, c); err != nil {
		return t.report("Toggle", err)
	}
	return nil
}

func (t *ConsoleUI) cmdOpenEditor(_ *gocui.View) error {
	if t.u.Status().RunningMode == universe.RunningStateRun {
		return t.report("Pattern editor", universe.ErrRunning)
	}
	t.mode = modeEditor
	return nil
}

func (t *ConsoleUI) cmdCloseEditor(_ *gocui.View) error {
	t.mode = modeBoard
	return nil
}

func (t *ConsoleUI) cmdEditorClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	r, c, ok := cellAt(t.editor.Grid(), cx, cy, ox, oy)
	if !ok {
		return nil
	}
	if err := t.editor.Toggle(r, c); err != nil {
		return t.report("Toggle", err)
	}
	t.renderEditor()
	return nil
}

func (t *ConsoleUI) currentTemplate() string {
	names := pattern.Names()
	if len(names) == 0 {
		return ""
	}
	return names[t.template%len(names)]
}

//cmdStamp stamps the current template at the cursor and selects the next one
func (t *ConsoleUI) cmdStamp(_ *gocui.View) error {
	r, c := 0, 0
	if v, err := t.g.View("editor"); err == nil {
		cx, cy := v.Cursor()
		ox, oy := v.Origin()
		r, c = cy+oy, cx+ox
	}
	name := t.currentTemplate()
	t.template++
	return t.report("Stamp "+name, t.editor.Stamp(name, r, c))
}

func (t *ConsoleUI) editorResizeCmd(dRows int, dCols int) func(*gocui.View) error {
	return func(_ *gocui.View) error {
		g := t.editor.Grid()
		rows := config.ClampDimension(g.Rows + dRows)
		cols := config.ClampDimension(g.Cols + dCols)
		if rows == g.Rows && cols == g.Cols {
			return nil
		}
		return t.report(fmt.Sprintf("Pattern %v x %v", rows, cols), t.editor.Resize(rows, cols))
	}
}

func (t *ConsoleUI) cmdEditorClear(_ *gocui.View) error {
	t.editor.Clear()
	return nil
}

func (t *ConsoleUI) cmdImport(_ *gocui.View) error {
	if err := t.editor.ImportTo(t.u); err != nil {
		return t.report("Import", err)
	}
	t.mode = modeBoard
	return t.report("Pattern imported", nil)
}
