package transport

import (
	"testing"
	"time"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop()
	var got []int
	done := make(chan struct{})

	for i := 1; i <= 3; i++ {
		i := i
		if !loop.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}
	loop.Post(func() {
		loop.Stop()
		close(done)
	})

	loop.Run()
	<-done

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("task order: got %v", got)
	}
}

func TestLoopPostAfterStopIsDropped(t *testing.T) {
	loop := NewLoop()
	loop.Stop()
	if loop.Post(func() { t.Error("task ran after stop") }) {
		t.Fatalf("post accepted after stop")
	}
	if !loop.Stopped() {
		t.Fatalf("loop should report stopped")
	}
}

func TestLoopRunReturnsAfterStop(t *testing.T) {
	loop := NewLoop()
	returned := make(chan struct{})
	go func() {
		loop.Run()
		close(returned)
	}()
	loop.Stop()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Stop")
	}
}
