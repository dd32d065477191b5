package pod

import (
	"errors"
	"testing"
	"time"
)

func TestEmitRecordRegistered(_ *testing.T) {
	// Should not panic
	emitRecordRegistered("TestType", 3)
}

func TestEmitPackStart(_ *testing.T) {
	emitPackStart("TestType", Canonical)
}

func TestEmitPackComplete_Success(_ *testing.T) {
	emitPackComplete("TestType", Canonical, 64, 100*time.Millisecond, nil)
}

func TestEmitPackComplete_Error(_ *testing.T) {
	emitPackComplete("TestType", Canonical, 0, 100*time.Millisecond, errors.New("test error"))
}

func TestEmitUnpackStart(_ *testing.T) {
	emitUnpackStart("TestType", Auto, 64)
}

func TestEmitUnpackComplete_Success(_ *testing.T) {
	emitUnpackComplete("TestType", ZeroCopy, 100*time.Millisecond, nil)
}

func TestEmitUnpackComplete_Error(_ *testing.T) {
	emitUnpackComplete("TestType", ZeroCopy, 100*time.Millisecond, errors.New("test error"))
}

func TestSignalVariables(t *testing.T) {
	// Verify signals are properly initialized
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalRecordRegistered", SignalRecordRegistered},
		{"SignalPackStart", SignalPackStart},
		{"SignalPackComplete", SignalPackComplete},
		{"SignalUnpackStart", SignalUnpackStart},
		{"SignalUnpackComplete", SignalUnpackComplete},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	// Verify keys are properly initialized
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyTypeName", KeyTypeName},
		{"KeyFormat", KeyFormat},
		{"KeySize", KeySize},
		{"KeyFieldCount", KeyFieldCount},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
