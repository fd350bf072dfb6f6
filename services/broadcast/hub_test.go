package broadcast

import (
	"testing"

	"github.com/trezcool/tathmini/core/exam"
)

func TestHub_fanOut(t *testing.T) {
	hub := NewHub()

	sub1 := hub.Join("ex1")
	sub2 := hub.Join("ex1")
	other := hub.Join("ex2")
	defer sub1.Leave()
	defer sub2.Leave()
	defer other.Leave()

	evt := exam.Event{Name: "exam_started", Data: "ex1"}
	hub.Publish("ex1", evt)

	for i, sub := range []exam.Subscription{sub1, sub2} {
		select {
		case got := <-sub.Events():
			if got != evt {
				t.Errorf("sub%d got %+v, want %+v", i+1, got, evt)
			}
		default:
			t.Errorf("sub%d did not receive the event", i+1)
		}
	}
	select {
	case got := <-other.Events():
		t.Errorf("other room received %+v", got)
	default:
	}
}

func TestHub_leaveClosesEvents(t *testing.T) {
	hub := NewHub()

	sub := hub.Join("ex1")
	sub.Leave()
	sub.Leave() // idempotent

	if _, ok := <-sub.Events(); ok {
		t.Error("events channel still open after Leave()")
	}

	// publishing to an empty room is a no-op
	hub.Publish("ex1", exam.Event{Name: "exam_started"})
}

func TestHub_slowConsumerDropsEvents(t *testing.T) {
	hub := NewHub()

	sub := hub.Join("ex1")
	defer sub.Leave()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish("ex1", exam.Event{Name: "tick", Data: i})
	}

	var received int
	for {
		select {
		case <-sub.Events():
			received++
			continue
		default:
		}
		break
	}
	if received != subscriberBuffer {
		t.Errorf("received %d events, want %d", received, subscriberBuffer)
	}
}
