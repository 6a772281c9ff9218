package speech

import "testing"

func TestCaptureCallbackSingleSession(t *testing.T) {
	var events []Event
	cb := captureCallback(func(ev Event) { events = append(events, ev) })

	cb("hello there")
	// The transcriber may call again with per-chunk text; the session
	// already ended, so nothing further may surface.
	cb("late chunk")

	if len(events) != 2 {
		t.Fatalf("got %d events, want transcript + end: %+v", len(events), events)
	}
	if events[0].Transcript != "hello there" || !events[0].Final {
		t.Fatalf("first event = %+v, want final transcript", events[0])
	}
	if !events[1].End {
		t.Fatalf("second event = %+v, want session end", events[1])
	}
}

func TestCaptureCallbackScrubsToNothing(t *testing.T) {
	var events []Event
	cb := captureCallback(func(ev Event) { events = append(events, ev) })

	cb("(silence)")

	if len(events) != 1 || !events[0].End {
		t.Fatalf("events = %+v, want a bare session end", events)
	}
}
