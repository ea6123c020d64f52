package buffer

import (
	"context"
	"errors"
	"testing"

	"github.com/myLogic207/boundedbuf/config"
)

var (
	bufferTestStackConfig = map[string]interface{}{
		"MODE": "STACK",
		"SIZE": 2,
	}
	bufferTestQueueConfig = map[string]interface{}{
		"MODE": "QUEUE",
		"SIZE": 2,
	}
)

func newTestBuffer(t *testing.T, values map[string]interface{}) *BoundedBuffer[int] {
	t.Helper()
	ctx := context.Background()
	options, err := config.WithInitialValues(ctx, values)
	if err != nil {
		t.Fatal(err)
	}
	buffer, err := NewBuffer[int](ctx, options)
	if err != nil {
		t.Log(err)
		t.Error("Buffer is not creating correctly")
		t.FailNow()
	}
	return buffer
}

func TestStackBufferStoreRetrieve(t *testing.T) {
	buffer := newTestBuffer(t, bufferTestStackConfig)
	if buffer.Mode() != MODE_STACK || buffer.Cap() != 2 {
		t.Fatalf("Unexpected buffer %s with capacity %d", buffer.Mode(), buffer.Cap())
	}
	buffer.Insert(1)
	buffer.Insert(2)
	if val, err := buffer.Remove(); err != nil || val != 2 {
		t.Log(val)
		t.Log(err)
		t.Error("Buffer is not storing and retrieving correctly")
	}
	if val, err := buffer.Remove(); err != nil || val != 1 {
		t.Log(val)
		t.Log(err)
		t.Error("Buffer is not storing and retrieving correctly")
	}
	if val, err := buffer.Remove(); !errors.Is(err, ErrBufferEmpty) || val != 0 {
		t.Log(val)
		t.Log(err)
		t.Error("Buffer is not storing and retrieving correctly")
	}
}

func TestQueueBufferStoreRetrieve(t *testing.T) {
	buffer := newTestBuffer(t, bufferTestQueueConfig)
	buffer.Insert(1)
	buffer.Insert(2)
	if val, err := buffer.Remove(); err != nil || val != 1 {
		t.Log(val)
		t.Log(err)
		t.Error("Buffer is not storing and retrieving correctly")
	}
	buffer.Insert(3)
	if val, err := buffer.Remove(); err != nil || val != 2 {
		t.Log(val)
		t.Log(err)
		t.Error("Buffer is not storing and retrieving correctly")
	}
	if val, err := buffer.Remove(); err != nil || val != 3 {
		t.Log(val)
		t.Log(err)
		t.Error("Buffer does not wrap around correctly")
	}
	if _, err := buffer.Remove(); !errors.Is(err, ErrBufferEmpty) {
		t.Log(err)
		t.Error("Buffer is not storing and retrieving correctly")
	}
}

func TestStackBufferOverflow(t *testing.T) {
	buffer := newTestBuffer(t, bufferTestStackConfig)
	buffer.Insert(1)
	buffer.Insert(2)
	err := buffer.Insert(3)
	if !errors.Is(err, ErrBufferFull) {
		t.Error("Buffer is not overflowing correctly")
	}
	if buffer.Len() != 2 {
		t.Errorf("Failed insert changed occupancy to %d", buffer.Len())
	}
}

func TestQueueBufferOverflow(t *testing.T) {
	buffer := newTestBuffer(t, bufferTestQueueConfig)
	buffer.Insert(1)
	buffer.Insert(2)
	if err := buffer.Insert(3); !errors.Is(err, ErrBufferFull) {
		t.Error("Buffer is not overflowing correctly")
	}
}

func TestFillAndDrain(t *testing.T) {
	const capacity = 10
	buffer, err := New[int](capacity, MODE_STACK)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < capacity; i++ {
		if err := buffer.Insert(i * 7); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
		if buffer.Len() != i+1 {
			t.Fatalf("Occupancy %d after %d inserts", buffer.Len(), i+1)
		}
	}
	if err := buffer.Insert(-1); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("Insert %d must fail with ErrBufferFull, got %v", capacity+1, err)
	}
	if val, err := buffer.Remove(); err != nil || val != (capacity-1)*7 {
		t.Fatalf("Expected most recent item %d, got %d (%v)", (capacity-1)*7, val, err)
	}
	for i := capacity - 2; i >= 0; i-- {
		if val, err := buffer.Remove(); err != nil || val != i*7 {
			t.Fatalf("Expected %d, got %d (%v)", i*7, val, err)
		}
	}
	if _, err := buffer.Remove(); !errors.Is(err, ErrBufferEmpty) {
		t.Fatalf("Remove on drained buffer must fail with ErrBufferEmpty, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, mode := range []BufferMode{MODE_STACK, MODE_QUEUE} {
		buffer, err := New[int](3, mode)
		if err != nil {
			t.Fatal(err)
		}
		buffer.Insert(11)
		buffer.Insert(-42)
		if mode == MODE_QUEUE {
			buffer.Remove()
		}
		if val, err := buffer.Remove(); err != nil || val != -42 {
			t.Errorf("%s: expected -42, got %d (%v)", mode, val, err)
		}
	}
}

func TestInvalidCapacity(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New[int](size, MODE_STACK); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("Capacity %d must be rejected, got %v", size, err)
		}
	}
	ctx := context.Background()
	options, _ := config.WithInitialValues(ctx, map[string]interface{}{"SIZE": "many"})
	if _, err := NewBuffer[int](ctx, options); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("Non numeric capacity must be rejected, got %v", err)
	}
}

func TestInvalidMode(t *testing.T) {
	if _, err := New[int](1, BufferMode(7)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Unknown mode must be rejected, got %v", err)
	}
	ctx := context.Background()
	options, _ := config.WithInitialValues(ctx, map[string]interface{}{"MODE": "heap"})
	if _, err := NewBuffer[int](ctx, options); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Unknown mode must be rejected, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]BufferMode{
		"stack": MODE_STACK,
		"LIFO":  MODE_STACK,
		"0":     MODE_STACK,
		"queue": MODE_QUEUE,
		" fifo": MODE_QUEUE,
		"1":     MODE_QUEUE,
	}
	for raw, want := range cases {
		if got, err := ParseMode(raw); err != nil || got != want {
			t.Errorf("ParseMode(%q) = %s, %v; want %s", raw, got, err, want)
		}
	}
	if _, err := ParseMode("2"); !errors.Is(err, ErrInvalidMode) {
		t.Error("Mode 2 must be rejected")
	}
}

func TestDefaultConfig(t *testing.T) {
	ctx := context.Background()
	buffer, err := NewBuffer[int](ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if buffer.Cap() != 10 || buffer.Mode() != MODE_STACK || buffer.Name() != "buffer" {
		t.Errorf("Unexpected defaults: %d %s %s", buffer.Cap(), buffer.Mode(), buffer.Name())
	}
	buffer, err = NewBuffer[int](ctx, nil, WithName("override"))
	if err != nil {
		t.Fatal(err)
	}
	if buffer.Name() != "override" {
		t.Errorf("Explicit name must win, got %s", buffer.Name())
	}
}

type observerKey struct{}

func TestObserver(t *testing.T) {
	buffer, err := New[int](2, MODE_STACK)
	if err != nil {
		t.Fatal(err)
	}
	type event struct {
		operation string
		item      int
		tag       interface{}
	}
	var events []event
	buffer.Observe(func(ctx context.Context, operation string, item int) {
		events = append(events, event{operation, item, ctx.Value(observerKey{})})
	})

	ctx := context.WithValue(context.Background(), observerKey{}, "tagged")
	if err := buffer.Produce(ctx, 7); err != nil {
		t.Fatal(err)
	}
	if err := buffer.Insert(8); err != nil {
		t.Fatal(err)
	}
	if err := buffer.Insert(9); !errors.Is(err, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull, got %v", err)
	}
	if _, err := buffer.Consume(ctx); err != nil {
		t.Fatal(err)
	}

	expected := []event{
		{OpInsert, 7, "tagged"},
		{OpInsert, 8, nil},
		{OpRemove, 8, "tagged"},
	}
	if len(events) != len(expected) {
		t.Fatalf("expected %d events, got %v", len(expected), events)
	}
	for i := range expected {
		if events[i] != expected[i] {
			t.Errorf("event %d: expected %v, got %v", i, expected[i], events[i])
		}
	}

	buffer.Observe(nil)
	if _, err := buffer.Remove(); err != nil {
		t.Fatal(err)
	}
	if len(events) != len(expected) {
		t.Error("observer called after removal")
	}
}
