package core

import "testing"

func TestEventBusRegistration(t *testing.T) {
	bus := NewEventBus()
	noop := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }

	if !bus.Register(EVENT_CODE_APPLICATION_QUIT, "a", noop) {
		t.Fatal("first Register() should succeed")
	}
	if bus.Register(EVENT_CODE_APPLICATION_QUIT, "a", noop) {
		t.Error("duplicate Register() should fail")
	}
	if !bus.Unregister(EVENT_CODE_APPLICATION_QUIT, "a") {
		t.Error("Unregister() of a listener should succeed")
	}
	if bus.Unregister(EVENT_CODE_APPLICATION_QUIT, "a") {
		t.Error("second Unregister() should fail")
	}
}

func TestEventBusFireStopsWhenHandled(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	bus.Register(EVENT_CODE_SHADERS_CHANGED, "first", func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string)+":"+data.Data.C[0])
		return false
	})
	bus.Register(EVENT_CODE_SHADERS_CHANGED, "second", func(code SystemEventCode, sender, listener interface{}, data EventContext) bool {
		calls = append(calls, listener.(string)+":"+data.Data.C[0])
		return true
	})
	bus.Register(EVENT_CODE_SHADERS_CHANGED, "third", func(SystemEventCode, interface{}, interface{}, EventContext) bool {
		calls = append(calls, "third")
		return true
	})

	ctx := EventContext{}
	ctx.Data.C[0] = "x.spv"
	if !bus.Fire(EVENT_CODE_SHADERS_CHANGED, nil, ctx) {
		t.Error("Fire() should report the event as handled")
	}
	if len(calls) != 2 || calls[0] != "first:x.spv" || calls[1] != "second:x.spv" {
		t.Errorf("calls = %v", calls)
	}
	if bus.Fire(EVENT_CODE_APPLICATION_QUIT, nil, EventContext{}) {
		t.Error("Fire() without listeners should not be handled")
	}
}
