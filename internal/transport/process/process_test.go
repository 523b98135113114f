package process

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rzbill/loom/internal/transport"
)

// buildCluster builds every worker on its own goroutine, the way real
// worker bring-up runs the buzzer exchange.
func buildCluster(t *testing.T, peers int, opts ...Option) []*Process {
	t.Helper()
	builders, err := NewCluster(peers, opts...)
	if err != nil {
		t.Fatalf("new cluster: %v", err)
	}
	procs := make([]*Process, peers)
	errs := make([]error, peers)
	var wg sync.WaitGroup
	for i := range builders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			procs[i], errs[i] = builders[i].Build()
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("build worker %d: %v", i, err)
		}
	}
	return procs
}

func TestNewClusterRejectsNoWorkers(t *testing.T) {
	if _, err := NewCluster(0); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestSingleWorkerCluster(t *testing.T) {
	procs := buildCluster(t, 1)
	pushes, pull, err := Allocate[int](procs[0], 1)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(pushes) != 1 {
		t.Fatalf("want 1 pusher, got %d", len(pushes))
	}
	v := 5
	if err := pushes[0].Push(&v); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, err := pull.Pull()
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got == nil || *got != 5 {
		t.Fatalf("pull = %v, want 5", got)
	}
}

func TestAllocateShape(t *testing.T) {
	const peers = 3
	procs := buildCluster(t, peers)
	for _, p := range procs {
		pushes, pull, err := Allocate[string](p, 1)
		if err != nil {
			t.Fatalf("worker %d allocate: %v", p.Index(), err)
		}
		if len(pushes) != peers {
			t.Fatalf("worker %d: %d pushers, want %d", p.Index(), len(pushes), peers)
		}
		if pull == nil {
			t.Fatalf("worker %d: nil puller", p.Index())
		}
	}
}

type tagged struct {
	From int
	Seq  int
}

func TestDeliveryExactlyOnceInSendOrder(t *testing.T) {
	const peers = 3
	const msgs = 50
	procs := buildCluster(t, peers)

	pushes := make([][]transport.Push[tagged], peers)
	pulls := make([]transport.Pull[tagged], peers)
	for i, p := range procs {
		var err error
		pushes[i], pulls[i], err = Allocate[tagged](p, 4)
		if err != nil {
			t.Fatalf("worker %d allocate: %v", i, err)
		}
	}

	// Every worker sends an ordered sequence to every destination.
	var wg sync.WaitGroup
	for j := 0; j < peers; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			for k := 0; k < peers; k++ {
				for s := 0; s < msgs; s++ {
					m := tagged{From: j, Seq: s}
					if err := pushes[j][k].Push(&m); err != nil {
						t.Errorf("worker %d push to %d: %v", j, k, err)
						return
					}
				}
			}
		}(j)
	}
	wg.Wait()

	for k := 0; k < peers; k++ {
		next := make([]int, peers)
		total := 0
		for {
			v, err := pulls[k].Pull()
			if err != nil {
				t.Fatalf("worker %d pull: %v", k, err)
			}
			if v == nil {
				break
			}
			if v.Seq != next[v.From] {
				t.Fatalf("worker %d: sender %d out of order: seq %d, want %d", k, v.From, v.Seq, next[v.From])
			}
			next[v.From]++
			total++
		}
		if total != peers*msgs {
			t.Fatalf("worker %d received %d, want %d", k, total, peers*msgs)
		}
	}
}

func TestEntryRemovedOnceDrained(t *testing.T) {
	const peers = 3
	procs := buildCluster(t, peers)
	reg := procs[0].Registry()

	for i, p := range procs {
		if _, _, err := Allocate[int](p, 9); err != nil {
			t.Fatalf("worker %d allocate: %v", i, err)
		}
		if i < peers-1 && !reg.Contains(9) {
			t.Fatalf("entry removed after %d of %d slots consumed", i+1, peers)
		}
	}
	if reg.Contains(9) {
		t.Fatalf("entry for drained channel still present")
	}
	if reg.Len() != 0 {
		t.Fatalf("registry not empty: %d entries", reg.Len())
	}
}

func TestReuseAfterDrainWithDifferentType(t *testing.T) {
	procs := buildCluster(t, 2)
	for _, p := range procs {
		if _, _, err := Allocate[string](p, 5); err != nil {
			t.Fatalf("first allocation: %v", err)
		}
	}
	// Fully drained; the id is free again, with any payload type.
	pushes, pull, err := Allocate[int](procs[0], 5)
	if err != nil {
		t.Fatalf("reuse after drain: %v", err)
	}
	if _, _, err := Allocate[int](procs[1], 5); err != nil {
		t.Fatalf("reuse after drain, second worker: %v", err)
	}
	v := 1
	if err := pushes[0].Push(&v); err != nil {
		t.Fatalf("push on reused channel: %v", err)
	}
	if got, _ := pull.Pull(); got == nil || *got != 1 {
		t.Fatalf("pull on reused channel = %v, want 1", got)
	}
}

func TestLiveReuseWithMismatchedType(t *testing.T) {
	procs := buildCluster(t, 2)
	if _, _, err := Allocate[string](procs[0], 5); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	_, _, err := Allocate[int](procs[1], 5)
	var mismatch *transport.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want TypeMismatchError", err)
	}
	if mismatch.Channel != 5 {
		t.Fatalf("mismatch channel = %d, want 5", mismatch.Channel)
	}

	// The entry is unaffected: the same worker can still take its slot
	// with the agreed type.
	if _, _, err := Allocate[string](procs[1], 5); err != nil {
		t.Fatalf("allocate with agreed type after mismatch: %v", err)
	}
}

func TestDoubleAllocateSameWorker(t *testing.T) {
	procs := buildCluster(t, 2)
	if _, _, err := Allocate[int](procs[0], 2); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if _, _, err := Allocate[int](procs[0], 2); !errors.Is(err, transport.ErrSlotConsumed) {
		t.Fatalf("second allocate: got %v, want ErrSlotConsumed", err)
	}
}

func TestConstructionRunsOnce(t *testing.T) {
	var constructions atomic.Int64
	procs := buildCluster(t, 3, WithConstructHook(func(id uint64) {
		constructions.Add(1)
	}))

	var wg sync.WaitGroup
	for _, p := range procs {
		wg.Add(1)
		go func(p *Process) {
			defer wg.Done()
			if _, _, err := Allocate[string](p, 5); err != nil {
				t.Errorf("worker %d allocate: %v", p.Index(), err)
			}
		}(p)
	}
	wg.Wait()

	if n := constructions.Load(); n != 1 {
		t.Fatalf("construction ran %d times, want exactly 1", n)
	}
}

func TestBuzzerSymmetry(t *testing.T) {
	procs := buildCluster(t, 2)

	// The buzzer worker 1 holds for waking worker 0 must hit the same
	// wake target as worker 0's own buzzer.
	woke := make(chan struct{})
	go func() {
		procs[0].AwaitEvents(0)
		close(woke)
	}()
	time.Sleep(10 * time.Millisecond)
	procs[1].buzzers[0].Buzz()
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatalf("peer-held buzzer did not wake worker 0")
	}
}

func TestProgressEventsFlow(t *testing.T) {
	procs := buildCluster(t, 2)
	pushes0, _, err := Allocate[int](procs[0], 3)
	if err != nil {
		t.Fatalf("worker 0 allocate: %v", err)
	}
	_, pull1, err := Allocate[int](procs[1], 3)
	if err != nil {
		t.Fatalf("worker 1 allocate: %v", err)
	}

	v := 10
	if err := pushes0[1].Push(&v); err != nil {
		t.Fatalf("push: %v", err)
	}

	// The send buzzed worker 1; its await returns without timing out.
	start := time.Now()
	procs[1].AwaitEvents(time.Second)
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("worker 1 not woken by send")
	}

	// Draining the counter inbox surfaces the pushed event.
	procs[1].DrainCounters()
	ev, ok := procs[1].Events().Pop()
	if !ok {
		t.Fatalf("no event after drain")
	}
	if ev.Worker != 0 || ev.Event.Channel != 3 || ev.Event.Kind != transport.EventPushed {
		t.Fatalf("unexpected drained event %+v", ev)
	}

	// Pulling records a local pulled event.
	got, err := pull1.Pull()
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got == nil || *got != 10 {
		t.Fatalf("pull = %v, want 10", got)
	}
	ev, ok = procs[1].Events().Pop()
	if !ok {
		t.Fatalf("no pulled event recorded")
	}
	if ev.Worker != 1 || ev.Event.Kind != transport.EventPulled {
		t.Fatalf("unexpected pulled event %+v", ev)
	}
}

func TestTwoWorkerScenario(t *testing.T) {
	procs := buildCluster(t, 2)

	pushes0, pull0, err := Allocate[int32](procs[0], 7)
	if err != nil {
		t.Fatalf("worker 0 allocate: %v", err)
	}
	_, pull1, err := Allocate[int32](procs[1], 7)
	if err != nil {
		t.Fatalf("worker 1 allocate: %v", err)
	}

	v := int32(42)
	if err := pushes0[1].Push(&v); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, err := pull1.Pull()
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got == nil || *got != 42 {
		t.Fatalf("worker 1 pull = %v, want 42", got)
	}

	// Worker 0 never used its destination-0 handle; its consumer stays
	// empty, without blocking.
	for i := 0; i < 10; i++ {
		got, err := pull0.Pull()
		if err != nil {
			t.Fatalf("worker 0 pull: %v", err)
		}
		if got != nil {
			t.Fatalf("worker 0 consumer yielded %v, want nothing", *got)
		}
	}
}

func TestBuildTwiceFails(t *testing.T) {
	builders, err := NewCluster(1)
	if err != nil {
		t.Fatalf("new cluster: %v", err)
	}
	if _, err := builders[0].Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := builders[0].Build(); !errors.Is(err, transport.ErrBuzzerExchange) {
		t.Fatalf("second build: got %v, want ErrBuzzerExchange", err)
	}
}

func TestFlushDoesNotDeliver(t *testing.T) {
	procs := buildCluster(t, 2)
	pushes0, _, err := Allocate[int](procs[0], 1)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	_, pull1, err := Allocate[int](procs[1], 1)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := pushes0[1].Push(nil); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got, _ := pull1.Pull(); got != nil {
		t.Fatalf("flush delivered %v", *got)
	}
}
