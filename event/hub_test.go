package event

import "testing"

type recordingObserver struct {
	name  string
	trace *[]string
}

func (r *recordingObserver) ActionStart(ev Action)    { *r.trace = append(*r.trace, r.name+":start") }
func (r *recordingObserver) ActionComplete(ev Action) { *r.trace = append(*r.trace, r.name+":complete") }

func TestHubFansOutInRegistrationOrder(t *testing.T) {
	h := NewHub()
	var trace []string
	h.OnAction(&recordingObserver{name: "a", trace: &trace})
	h.OnAction(&recordingObserver{name: "b", trace: &trace})

	h.PublishActionStart(Action{ID: 1})
	h.PublishActionComplete(Action{ID: 1})

	want := []string{"a:start", "b:start", "a:complete", "b:complete"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v", trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestHubPublishWithoutObserversIsSafe(t *testing.T) {
	h := NewHub()
	h.PublishActionStart(Action{})
	h.PublishStageFxStart(StageFx{})
	h.PublishHPDelta(HPDelta{})
	h.PublishLog(Log{})
}
