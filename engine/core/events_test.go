package core

import "testing"

type listener struct{ name string }

func TestEventBusRegisterDedup(t *testing.T) {
	b := NewEventBus()
	l := &listener{"a"}
	noop := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }

	if !b.Register(EVENT_CODE_RESIZED, l, noop) {
		t.Fatal("first registration should succeed")
	}
	if b.Register(EVENT_CODE_RESIZED, l, noop) {
		t.Fatal("duplicate listener should be rejected")
	}
	if !b.Register(EVENT_CODE_KEY_PRESSED, l, noop) {
		t.Fatal("same listener on another code should succeed")
	}
	if b.Register(EVENT_CODE_KEY_PRESSED, &listener{"b"}, nil) {
		t.Fatal("nil callback should be rejected")
	}
}

func TestEventBusFireStopsWhenHandled(t *testing.T) {
	b := NewEventBus()
	var calls []string
	mk := func(name string, handled bool) FnOnEvent {
		return func(code SystemEventCode, sender interface{}, inst interface{}, data EventContext) bool {
			calls = append(calls, name)
			if inst.(*listener).name != name {
				t.Errorf("listener instance mismatch: %v", inst)
			}
			return handled
		}
	}
	b.Register(EVENT_CODE_RESIZED, &listener{"first"}, mk("first", false))
	b.Register(EVENT_CODE_RESIZED, &listener{"second"}, mk("second", true))
	b.Register(EVENT_CODE_RESIZED, &listener{"third"}, mk("third", false))

	var ctx EventContext
	ctx.Data.U32[0] = 800
	if !b.Fire(EVENT_CODE_RESIZED, nil, ctx) {
		t.Fatal("event should be reported handled")
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected dispatch order %v", calls)
	}

	if b.Fire(EVENT_CODE_MOUSE_MOVED, nil, ctx) {
		t.Fatal("firing a code without listeners must not report handled")
	}
}

func TestEventBusUnregister(t *testing.T) {
	b := NewEventBus()
	a, c := &listener{"a"}, &listener{"c"}
	count := 0
	cb := func(SystemEventCode, interface{}, interface{}, EventContext) bool { count++; return false }
	b.Register(EVENT_CODE_KEY_PRESSED, a, cb)
	b.Register(EVENT_CODE_KEY_PRESSED, c, cb)

	if !b.Unregister(EVENT_CODE_KEY_PRESSED, a) {
		t.Fatal("unregister of a registered listener should succeed")
	}
	if b.Unregister(EVENT_CODE_KEY_PRESSED, a) {
		t.Fatal("second unregister should fail")
	}
	b.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{})
	if count != 1 {
		t.Fatalf("expected only the remaining listener to fire, got %d calls", count)
	}

	b.Shutdown()
	b.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{})
	if count != 1 {
		t.Fatal("shutdown should drop all listeners")
	}
}
