package queue

import (
	"sync"
	"testing"
)

// testEvent is a simple struct for testing the generic queue
type testEvent struct {
	Tick uint64
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testEvent]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[testEvent]()

	q.Push(testEvent{Tick: 1, Name: "detection"})
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(testEvent{Tick: 2}, testEvent{Tick: 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestQueue_Pop(t *testing.T) {
	q := New[testEvent]()

	// Pop from empty queue returns zero value
	result := q.Pop()
	if result.Tick != 0 || result.Name != "" {
		t.Errorf("expected zero value, got %+v", result)
	}

	q.Push(testEvent{Tick: 1}, testEvent{Tick: 2})
	first := q.Pop()
	if first.Tick != 1 {
		t.Errorf("expected FIFO order, got tick %d", first.Tick)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1 after pop, got %d", q.Len())
	}
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[testEvent]()
	q.Push(testEvent{Tick: 1}, testEvent{Tick: 2}, testEvent{Tick: 3})

	items := q.GetAndEmpty()
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
	if !q.Empty() {
		t.Error("expected queue to be empty after GetAndEmpty")
	}
	if items[0].Tick != 1 || items[2].Tick != 3 {
		t.Error("items out of order")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[testEvent]()
	q.Push(testEvent{Tick: 1})
	q.Clear()
	if !q.Empty() {
		t.Error("expected empty queue after Clear")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[testEvent]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n uint64) {
			defer wg.Done()
			q.Push(testEvent{Tick: n})
		}(uint64(i))
	}
	wg.Wait()

	if q.Len() != 50 {
		t.Errorf("expected 50 items, got %d", q.Len())
	}
}
