package event

// Per-kind observer interfaces replace a stringly-typed event bus
// A view implements only what it draws; the hub fans out synchronously
// in registration order on the engine's logical thread

// ActionObserver receives behavior lifecycle events
type ActionObserver interface {
	ActionStart(ev Action)
	ActionComplete(ev Action)
}

// StageFxObserver receives stat effect lifecycle events
type StageFxObserver interface {
	StageFxStart(ev StageFx)
	StageFxComplete(ev StageFx)
}

// BattleObserver receives battle presentation state changes
type BattleObserver interface {
	HPDelta(ev HPDelta)
	SlotEmpty(ev SlotEmpty)
	StatusChange(ev Status)
	WeatherChange(ev Weather)
	SwapActive(ev Swap)
	TurnStart(ev Turn)
	BattleEnd(ev Win)
}

// LogObserver receives battle log lines
type LogObserver interface {
	LogLine(ev Log)
}

// Hub holds observer registrations and dispatches typed events
// Dispatch is synchronous; observers must not block
type Hub struct {
	actions []ActionObserver
	stageFx []StageFxObserver
	battle  []BattleObserver
	logs    []LogObserver
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{}
}

// OnAction registers an action observer
func (h *Hub) OnAction(o ActionObserver) { h.actions = append(h.actions, o) }

// OnStageFx registers a stage effect observer
func (h *Hub) OnStageFx(o StageFxObserver) { h.stageFx = append(h.stageFx, o) }

// OnBattle registers a battle state observer
func (h *Hub) OnBattle(o BattleObserver) { h.battle = append(h.battle, o) }

// OnLog registers a log observer
func (h *Hub) OnLog(o LogObserver) { h.logs = append(h.logs, o) }

func (h *Hub) PublishActionStart(ev Action) {
	for _, o := range h.actions {
		o.ActionStart(ev)
	}
}

func (h *Hub) PublishActionComplete(ev Action) {
	for _, o := range h.actions {
		o.ActionComplete(ev)
	}
}

func (h *Hub) PublishStageFxStart(ev StageFx) {
	for _, o := range h.stageFx {
		o.StageFxStart(ev)
	}
}

func (h *Hub) PublishStageFxComplete(ev StageFx) {
	for _, o := range h.stageFx {
		o.StageFxComplete(ev)
	}
}

func (h *Hub) PublishHPDelta(ev HPDelta) {
	for _, o := range h.battle {
		o.HPDelta(ev)
	}
}

func (h *Hub) PublishSlotEmpty(ev SlotEmpty) {
	for _, o := range h.battle {
		o.SlotEmpty(ev)
	}
}

func (h *Hub) PublishStatus(ev Status) {
	for _, o := range h.battle {
		o.StatusChange(ev)
	}
}

func (h *Hub) PublishWeather(ev Weather) {
	for _, o := range h.battle {
		o.WeatherChange(ev)
	}
}

func (h *Hub) PublishSwap(ev Swap) {
	for _, o := range h.battle {
		o.SwapActive(ev)
	}
}

func (h *Hub) PublishTurn(ev Turn) {
	for _, o := range h.battle {
		o.TurnStart(ev)
	}
}

func (h *Hub) PublishWin(ev Win) {
	for _, o := range h.battle {
		o.BattleEnd(ev)
	}
}

func (h *Hub) PublishLog(ev Log) {
	for _, o := range h.logs {
		o.LogLine(ev)
	}
}
