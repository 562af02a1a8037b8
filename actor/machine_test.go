package actor

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/lixenwraith/battle-director/core"
	"github.com/lixenwraith/battle-director/vmath"
)

type playRecord struct {
	actor core.ActorID
	clip  string
	fade  time.Duration
}

// fakeStage records plays and serves fixed clip manifests
type fakeStage struct {
	clips map[core.ActorID][]Clip
	plays []playRecord
}

func newFakeStage() *fakeStage {
	return &fakeStage{clips: make(map[core.ActorID][]Clip)}
}

func (f *fakeStage) ListClips(a core.ActorID) []string {
	names := make([]string, 0, len(f.clips[a]))
	for _, c := range f.clips[a] {
		names = append(names, c.Name)
	}
	return names
}

func (f *fakeStage) PlayClip(a core.ActorID, clip string, fade time.Duration) (time.Duration, error) {
	for _, c := range f.clips[a] {
		if c.Name == clip {
			f.plays = append(f.plays, playRecord{actor: a, clip: clip, fade: fade})
			return c.Duration, nil
		}
	}
	return 0, fmt.Errorf("no clip %q", clip)
}

func (f *fakeStage) Move(a core.ActorID, pos vmath.Vec3) {}
func (f *fakeStage) MoveAnimated(a core.ActorID, pos vmath.Vec3, d time.Duration, done func()) {
	if done != nil {
		done()
	}
}
func (f *fakeStage) Home(a core.ActorID) vmath.Vec3     { return vmath.Vec3{} }
func (f *fakeStage) Position(a core.ActorID) vmath.Vec3 { return vmath.Vec3{} }

func testMachine(t *testing.T) (*Machine, *fakeStage) {
	t.Helper()
	stage := newFakeStage()
	stage.clips["p1:garchomp"] = []Clip{
		{Name: "Idle01.glb", Duration: 2 * time.Second},
		{Name: "Attack01.glb", Duration: time.Second},
		{Name: "Faint.glb", Duration: 1500 * time.Millisecond},
	}
	m := NewMachine(stage, nil, rand.New(rand.NewSource(1)))
	return m, stage
}

func TestMachineFirstClipFadesFromNothing(t *testing.T) {
	m, stage := testMachine(t)

	dur, ok := m.Play("p1:garchomp", "attack01")
	if !ok || dur != time.Second {
		t.Fatalf("Play = %v %v", dur, ok)
	}
	if stage.plays[0].fade != 0 {
		t.Errorf("first clip fade = %v, want 0", stage.plays[0].fade)
	}
}

func TestMachineCrossfadesBetweenClips(t *testing.T) {
	m, stage := testMachine(t)

	m.Play("p1:garchomp", "idle01")
	m.Play("p1:garchomp", "attack01")
	if stage.plays[1].fade != DefaultBlend {
		t.Errorf("crossfade = %v, want %v", stage.plays[1].fade, DefaultBlend)
	}
}

func TestMachineIdenticalRetriggerSkipsCrossfade(t *testing.T) {
	m, stage := testMachine(t)

	m.Play("p1:garchomp", "attack01")
	m.Play("p1:garchomp", "Attack01.glb")
	if stage.plays[1].fade != 0 {
		t.Errorf("re-trigger fade = %v, want 0", stage.plays[1].fade)
	}
}

func TestMachinePlayResolvesLogicalNames(t *testing.T) {
	m, stage := testMachine(t)

	if _, ok := m.Play("p1:garchomp", "ATTACK01.GLB"); !ok {
		t.Fatal("normalized name did not resolve")
	}
	if stage.plays[0].clip != "Attack01.glb" {
		t.Errorf("played %q, want the stage's own name", stage.plays[0].clip)
	}
}

func TestMachinePlayUnknownClip(t *testing.T) {
	m, _ := testMachine(t)
	if _, ok := m.Play("p1:garchomp", "dance"); ok {
		t.Error("unknown clip reported ok")
	}
}

func TestMachineFinishRevertsToIdle(t *testing.T) {
	m, stage := testMachine(t)

	m.Play("p1:garchomp", "attack01")
	m.ClipFinished("p1:garchomp", "Attack01.glb")

	last := stage.plays[len(stage.plays)-1]
	if !IsIdleClip(last.clip) {
		t.Errorf("after finish playing %q, want an idle clip", last.clip)
	}
}

func TestMachineIdleFinishDoesNotRetrigger(t *testing.T) {
	m, stage := testMachine(t)

	m.Play("p1:garchomp", "idle01")
	n := len(stage.plays)
	m.ClipFinished("p1:garchomp", "Idle01.glb")
	if len(stage.plays) != n {
		t.Error("idle finish started another clip")
	}
}

func TestMachineFollowUpConsumesFinish(t *testing.T) {
	m, stage := testMachine(t)

	m.Play("p1:garchomp", "faint")
	called := false
	m.OnFinish("p1:garchomp", "Faint.glb", func() { called = true })

	n := len(stage.plays)
	m.ClipFinished("p1:garchomp", "Faint.glb")
	if !called {
		t.Error("follow-up did not run")
	}
	if len(stage.plays) != n {
		t.Error("idle revert ran despite a registered follow-up")
	}
}

func TestMachineObserverDoesNotConsumeFinish(t *testing.T) {
	m, stage := testMachine(t)

	m.Play("p1:garchomp", "attack01")
	called := false
	m.Observe("p1:garchomp", "attack01", func() { called = true })

	m.ClipFinished("p1:garchomp", "Attack01.glb")
	if !called {
		t.Error("observer did not run")
	}
	last := stage.plays[len(stage.plays)-1]
	if !IsIdleClip(last.clip) {
		t.Error("idle revert suppressed by a non-consuming observer")
	}
}

func TestMachineFollowUpCancelIsIdempotent(t *testing.T) {
	m, _ := testMachine(t)

	called := false
	cancel := m.OnFinish("p1:garchomp", "attack01", func() { called = true })
	cancel()
	cancel()
	m.ClipFinished("p1:garchomp", "Attack01.glb")
	if called {
		t.Error("cancelled follow-up ran")
	}
}

func TestMachineFollowUpIsOneShot(t *testing.T) {
	m, _ := testMachine(t)

	calls := 0
	m.OnFinish("p1:garchomp", "attack01", func() { calls++ })
	m.ClipFinished("p1:garchomp", "Attack01.glb")
	m.ClipFinished("p1:garchomp", "Attack01.glb")
	if calls != 1 {
		t.Errorf("follow-up ran %d times, want 1", calls)
	}
}
