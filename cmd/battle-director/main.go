package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lixenwraith/battle-director/actor"
	"github.com/lixenwraith/battle-director/audio"
	"github.com/lixenwraith/battle-director/battle"
	"github.com/lixenwraith/battle-director/camera"
	"github.com/lixenwraith/battle-director/choreo"
	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/data"
	"github.com/lixenwraith/battle-director/engine"
	"github.com/lixenwraith/battle-director/event"
	"github.com/lixenwraith/battle-director/service"
	"github.com/lixenwraith/battle-director/simlink"
	"github.com/lixenwraith/battle-director/ui"
	"github.com/lixenwraith/battle-director/vmath"
)

const (
	tickInterval = 15 * time.Millisecond
	stageFxDelay = 600 * time.Millisecond
)

var (
	debugFlag    = flag.Bool("debug", false, "Write debug logs to logs/")
	muteFlag     = flag.Bool("mute", false, "Start with audio muted")
	headlessFlag = flag.Bool("headless", false, "Run without the terminal view")
	dataFlag     = flag.String("data", "assets/tables.yaml", "Move and clip table file")
	serverFlag   = flag.String("server", "", "Simulator websocket URL (empty plays the built-in demo)")
)

// lateClocks breaks the construction cycle between the stage and the
// director: the stage needs a clock source before the director exists
type lateClocks struct {
	d *choreo.Director
}

func (l *lateClocks) ClockFor(a core.ActorID) engine.Clock {
	return l.d.ClockFor(a)
}

// stageMirror pushes settled stat-stage totals into the view panel
// Stage totals live on battle state, not on the event stream
type stageMirror struct {
	state *battle.State
	view  *ui.View
}

func (m *stageMirror) StageFxStart(event.StageFx) {}

func (m *stageMirror) StageFxComplete(ev event.StageFx) {
	if occ, ok := m.state.Occupant(ev.Slot); ok {
		m.view.StageApplied(ev.Slot, ev.Stat, occ.Stages[ev.Stat])
	}
}

// consoleLog prints battle log lines in headless mode
type consoleLog struct{}

func (consoleLog) LogLine(ev event.Log) {
	fmt.Println(ev.Line)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}
	logger := log.Default()

	// Data tables with hot reload
	tables, err := data.Load(*dataFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load tables from %s: %v\n", *dataFlag, err)
		os.Exit(1)
	}
	store := data.NewStore(tables)
	if watcher, err := data.NewWatcher(*dataFlag, store, logger); err != nil {
		logger.Printf("table watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	// Engine: time source, scheduler, tick loop
	provider := engine.NewMonotonicTimeProvider()
	scheduler := engine.NewScheduler(provider)
	loop := engine.NewLoop(scheduler, provider, tickInterval)

	// Stage and animation machine; the director closes the clock cycle
	clocks := &lateClocks{}
	stage := actor.NewHeadlessStage(scheduler, clocks)
	machine := actor.NewMachine(stage, logger, nil)
	stage.SetSink(machine)

	state := battle.NewState()
	hub := event.NewHub()
	rig := camera.NewRig(provider, vmath.Vec3{Y: 4, Z: 10}, vmath.Vec3{}, nil)
	loop.Register(rig)

	director := choreo.NewDirector(choreo.Config{
		Scheduler: scheduler,
		Provider:  provider,
		Stage:     stage,
		Machine:   machine,
		Camera:    rig,
		Effects:   &choreo.TimedEffectRunner{Scheduler: scheduler, Delay: stageFxDelay},
		State:     state,
		Hub:       hub,
		Logger:    logger,
	})
	clocks.d = director

	dispatcher := choreo.NewDispatcher(director, store, logger)
	sequencer := choreo.NewSequencer(director, dispatcher, logger)

	hub.OnBattle(newStageBinder(stage, machine, state, store, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var registry service.Registry

	audioSvc := audio.NewService()
	if err := audioSvc.Init(*muteFlag); err != nil {
		logger.Printf("audio init: %v", err)
	}
	registry.Register(audioSvc)
	cues := audioSvc.Observer()
	hub.OnAction(cues)
	hub.OnStageFx(cues)
	hub.OnBattle(cues)

	// Inbound command batches, from the simulator or the demo script
	batchCh := make(chan []string, 16)

	var link *simlink.Client
	if *serverFlag != "" {
		link = simlink.NewClient(*serverFlag, func(lines []string) {
			select {
			case batchCh <- lines:
			case <-ctx.Done():
			}
		}, logger)
		if err := link.Init(); err != nil {
			logger.Printf("simlink init: %v", err)
		}
		registry.Register(link)
	}

	runDone := make(chan struct{})
	var view *ui.View
	if !*headlessFlag {
		view = ui.NewView()
		view.OnQuit(cancel)
		view.OnMute(func() {
			if e := audioSvc.Engine(); e != nil {
				e.ToggleMute()
			}
		})
		if link != nil {
			view.OnChoice(link.SendChoice)
		}
		hub.OnAction(view)
		hub.OnStageFx(view)
		hub.OnStageFx(&stageMirror{state: state, view: view})
		hub.OnBattle(view)
		hub.OnLog(view)
		if err := view.Init(); err != nil {
			logger.Printf("view init: %v", err)
		}
		registry.Register(view)
	} else {
		hub.OnLog(consoleLog{})
	}

	if err := registry.StartAll(); err != nil {
		registry.StopAll()
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer registry.StopAll()

	loop.Start()
	defer loop.Stop()

	// Playback runner: batches run strictly one after another
	core.Go(func() {
		defer close(runDone)
		if *serverFlag == "" {
			if err := sequencer.Run(ctx, demoCommands); err != nil {
				logger.Printf("playback: %v", err)
			}
			if *headlessFlag {
				// The demo plays once and exits
				cancel()
			}
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case batch := <-batchCh:
				if err := sequencer.Run(ctx, batch); err != nil {
					logger.Printf("playback: %v", err)
					return
				}
			}
		}
	})

	<-ctx.Done()
	<-runDone
}
