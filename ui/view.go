package ui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/event"
)

const (
	frameInterval = 50 * time.Millisecond
	maxLogLines   = 200
	hpBarWidth    = 24
)

// slotView is the drawable state of one battle slot
type slotView struct {
	species string
	hpCur   int
	hpMax   int
	status  string
	stages  map[string]int
	fainted bool
	busy    bool
}

// View renders the battle state in the terminal
// It consumes hub events into an internal model under a mutex and
// redraws on a fixed ticker, so observer callbacks never touch the
// screen directly
type View struct {
	screen tcell.Screen

	mu      sync.Mutex
	slots   map[core.SlotID]*slotView
	logs    []string
	weather string
	turn    int
	winner  string

	onQuit   func()
	onMute   func()
	onChoice func(choice string)

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewView creates a view; the screen is opened in Start
func NewView() *View {
	return &View{
		slots:    make(map[core.SlotID]*slotView),
		stopChan: make(chan struct{}),
	}
}

// OnQuit sets the callback for a quit keypress
func (v *View) OnQuit(fn func()) { v.onQuit = fn }

// OnMute sets the callback for the mute toggle key
func (v *View) OnMute(fn func()) { v.onMute = fn }

// OnChoice sets the callback for number-key move choices
func (v *View) OnChoice(fn func(choice string)) { v.onChoice = fn }

// Name implements service.Service
func (v *View) Name() string { return "ui" }

// Init implements service.Service
func (v *View) Init(args ...any) error { return nil }

// Start opens the screen and launches the input and draw loops
func (v *View) Start() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("ui: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("ui: screen init: %w", err)
	}
	v.screen = screen
	v.running.Store(true)
	core.RegisterCrashCleanup(screen.Fini)

	v.wg.Add(2)
	core.Go(v.inputLoop)
	core.Go(v.drawLoop)
	return nil
}

// Stop closes the screen, idempotent
func (v *View) Stop() error {
	v.stopOnce.Do(func() {
		v.running.Store(false)
		close(v.stopChan)
	})
	v.wg.Wait()
	if v.screen != nil {
		v.screen.Fini()
	}
	return nil
}

func (v *View) inputLoop() {
	defer v.wg.Done()
	for {
		select {
		case <-v.stopChan:
			return
		default:
		}
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				if v.onQuit != nil {
					v.onQuit()
				}
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				if v.onQuit != nil {
					v.onQuit()
				}
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'm':
				if v.onMute != nil {
					v.onMute()
				}
			case ev.Key() == tcell.KeyRune && ev.Rune() >= '1' && ev.Rune() <= '4':
				if v.onChoice != nil {
					v.onChoice("move " + string(ev.Rune()))
				}
			}
		case *tcell.EventResize:
			v.screen.Sync()
		}
	}
}

func (v *View) drawLoop() {
	defer v.wg.Done()
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-v.stopChan:
			return
		case <-ticker.C:
			v.draw()
		}
	}
}

func (v *View) slot(id core.SlotID) *slotView {
	sv, ok := v.slots[id]
	if !ok {
		sv = &slotView{stages: make(map[string]int)}
		v.slots[id] = sv
	}
	return sv
}

func (v *View) appendLog(line string) {
	v.logs = append(v.logs, line)
	if len(v.logs) > maxLogLines {
		v.logs = v.logs[len(v.logs)-maxLogLines:]
	}
}

// --- hub observer hooks ---

// ActionStart implements event.ActionObserver
func (v *View) ActionStart(ev event.Action) {
	v.mu.Lock()
	v.slot(ev.Initiator).busy = true
	v.mu.Unlock()
}

// ActionComplete implements event.ActionObserver
func (v *View) ActionComplete(ev event.Action) {
	v.mu.Lock()
	v.slot(ev.Initiator).busy = false
	v.mu.Unlock()
}

// StageFxStart implements event.StageFxObserver
func (v *View) StageFxStart(ev event.StageFx) {}

// StageFxComplete implements event.StageFxObserver
func (v *View) StageFxComplete(ev event.StageFx) {}

// HPDelta implements event.BattleObserver
func (v *View) HPDelta(ev event.HPDelta) {
	v.mu.Lock()
	sv := v.slot(ev.Slot)
	sv.hpCur = ev.Current
	sv.hpMax = ev.Max
	v.mu.Unlock()
}

// SlotEmpty implements event.BattleObserver
func (v *View) SlotEmpty(ev event.SlotEmpty) {
	v.mu.Lock()
	v.slot(ev.Slot).fainted = true
	v.mu.Unlock()
}

// StatusChange implements event.BattleObserver
func (v *View) StatusChange(ev event.Status) {
	v.mu.Lock()
	v.slot(ev.Slot).status = ev.Condition
	v.mu.Unlock()
}

// WeatherChange implements event.BattleObserver
func (v *View) WeatherChange(ev event.Weather) {
	v.mu.Lock()
	v.weather = ev.Name
	v.mu.Unlock()
}

// SwapActive implements event.BattleObserver
func (v *View) SwapActive(ev event.Swap) {
	v.mu.Lock()
	sv := v.slot(ev.Slot)
	sv.species = ev.Species
	sv.fainted = false
	sv.status = ""
	sv.stages = make(map[string]int)
	v.mu.Unlock()
}

// TurnStart implements event.BattleObserver
func (v *View) TurnStart(ev event.Turn) {
	v.mu.Lock()
	v.turn = ev.Number
	v.mu.Unlock()
}

// BattleEnd implements event.BattleObserver
func (v *View) BattleEnd(ev event.Win) {
	v.mu.Lock()
	v.winner = ev.Player
	v.mu.Unlock()
}

// LogLine implements event.LogObserver
func (v *View) LogLine(ev event.Log) {
	v.mu.Lock()
	v.appendLog(ev.Line)
	v.mu.Unlock()
}

// StageApplied records a stat stage for the slot panel
// Called by the wiring layer since stage totals ride on battle state,
// not on the event stream
func (v *View) StageApplied(slot core.SlotID, stat string, total int) {
	v.mu.Lock()
	v.slot(slot).stages[stat] = total
	v.mu.Unlock()
}

// --- drawing ---

func (v *View) draw() {
	if !v.running.Load() {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	s := v.screen
	s.Clear()
	width, height := s.Size()

	header := fmt.Sprintf(" Turn %d ", v.turn)
	if v.weather != "" && v.weather != "none" {
		header += "| " + v.weather + " "
	}
	if v.winner != "" {
		header += "| winner: " + v.winner + " "
	}
	drawText(s, 0, 0, tcell.StyleDefault.Bold(true), header)

	row := 2
	for _, id := range []core.SlotID{core.SlotP1, core.SlotP2} {
		sv, ok := v.slots[id]
		if !ok {
			continue
		}
		row = v.drawSlot(s, row, id, sv)
	}

	logTop := row + 1
	visible := height - logTop - 1
	if visible > 0 {
		start := len(v.logs) - visible
		if start < 0 {
			start = 0
		}
		for i, line := range v.logs[start:] {
			if len(line) > width {
				line = line[:width]
			}
			drawText(s, 0, logTop+i, tcell.StyleDefault, line)
		}
	}

	drawText(s, 0, height-1, tcell.StyleDefault.Dim(true), " q quit  m mute  1-4 choose move")
	s.Show()
}

func (v *View) drawSlot(s tcell.Screen, row int, id core.SlotID, sv *slotView) int {
	name := sv.species
	if name == "" {
		name = "(empty)"
	}
	label := fmt.Sprintf("%s  %s", id, name)
	if sv.fainted {
		label += "  FNT"
	} else if sv.status != "" {
		label += "  [" + strings.ToUpper(sv.status) + "]"
	}
	if sv.busy {
		label += "  *"
	}
	drawText(s, 1, row, tcell.StyleDefault.Bold(true), label)

	drawHPBar(s, 1, row+1, sv.hpCur, sv.hpMax)

	if stages := formatStages(sv.stages); stages != "" {
		drawText(s, 1, row+2, tcell.StyleDefault.Dim(true), stages)
		return row + 4
	}
	return row + 3
}

func drawHPBar(s tcell.Screen, x, y, cur, max int) {
	if max <= 0 {
		max = 1
	}
	if cur < 0 {
		cur = 0
	}
	filled := cur * hpBarWidth / max
	frac := float64(cur) / float64(max)

	var color tcell.Color
	switch {
	case frac > 0.5:
		color = tcell.ColorGreen
	case frac > 0.2:
		color = tcell.ColorYellow
	default:
		color = tcell.ColorRed
	}

	s.SetContent(x, y, '[', nil, tcell.StyleDefault)
	for i := 0; i < hpBarWidth; i++ {
		ch := ' '
		if i < filled {
			ch = '█'
		}
		s.SetContent(x+1+i, y, ch, nil, tcell.StyleDefault.Foreground(color))
	}
	s.SetContent(x+1+hpBarWidth, y, ']', nil, tcell.StyleDefault)
	drawText(s, x+hpBarWidth+3, y, tcell.StyleDefault, fmt.Sprintf("%d/%d", cur, max))
}

// formatStages renders nonzero stat stages like "atk +2  spe -1"
func formatStages(stages map[string]int) string {
	var parts []string
	for _, stat := range []string{"atk", "def", "spa", "spd", "spe", "accuracy", "evasion"} {
		n := stages[stat]
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %+d", stat, n))
	}
	return strings.Join(parts, "  ")
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}
