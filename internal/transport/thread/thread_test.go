package thread

import (
	"testing"
	"time"

	"github.com/rzbill/loom/internal/transport"
)

func TestLoopbackAllocate(t *testing.T) {
	th := New()
	pushes, pull, err := Allocate[string](th, 0)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(pushes) != 1 {
		t.Fatalf("want 1 pusher, got %d", len(pushes))
	}

	msg := "hello"
	if err := pushes[0].Push(&msg); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, err := pull.Pull()
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got == nil || *got != "hello" {
		t.Fatalf("pull = %v, want hello", got)
	}
	if got, _ := pull.Pull(); got != nil {
		t.Fatalf("expected drained channel, got %v", *got)
	}
}

func TestAwaitEventsReturnsWhenQueueNonEmpty(t *testing.T) {
	th := New()
	th.Events().Push(transport.WorkerEvent{Worker: 0})
	start := time.Now()
	th.AwaitEvents(time.Second)
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("await blocked despite pending event")
	}
}

func TestAwaitEventsTimeout(t *testing.T) {
	th := New()
	start := time.Now()
	th.AwaitEvents(30 * time.Millisecond)
	if time.Since(start) < 30*time.Millisecond {
		t.Fatalf("await returned early with empty queue and no buzz")
	}
}

func TestBuzzerInterruptsAwait(t *testing.T) {
	th := New()
	bz := th.Buzzer()
	done := make(chan struct{})
	go func() {
		th.AwaitEvents(0)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	bz.Buzz()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("buzz did not interrupt await")
	}
}

func TestIdentity(t *testing.T) {
	th := New()
	if th.Index() != 0 || th.Peers() != 1 {
		t.Fatalf("thread identity = (%d,%d), want (0,1)", th.Index(), th.Peers())
	}
}
