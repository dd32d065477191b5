package pod

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for codec events.
var (
	SignalRecordRegistered = capitan.NewSignal("pod.record.registered", "Record type scanned and registered")
	SignalPackStart        = capitan.NewSignal("pod.pack.start", "Pack operation beginning")
	SignalPackComplete     = capitan.NewSignal("pod.pack.complete", "Pack operation finished")
	SignalUnpackStart      = capitan.NewSignal("pod.unpack.start", "Unpack operation beginning")
	SignalUnpackComplete   = capitan.NewSignal("pod.unpack.complete", "Unpack operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName   = capitan.NewStringKey("type_name")
	KeyFormat     = capitan.NewStringKey("format")
	KeySize       = capitan.NewIntKey("size")
	KeyFieldCount = capitan.NewIntKey("field_count")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// emitRecordRegistered emits an event when a record codec is built.
func emitRecordRegistered(typeName string, fields int) {
	capitan.Emit(context.Background(), SignalRecordRegistered,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}

// emitPackStart emits an event when a top-level pack begins.
func emitPackStart(typeName string, format Format) {
	capitan.Emit(context.Background(), SignalPackStart,
		KeyTypeName.Field(typeName),
		KeyFormat.Field(format.String()),
	)
}

// emitPackComplete emits an event when a top-level pack finishes.
func emitPackComplete(typeName string, format Format, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFormat.Field(format.String()),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(context.Background(), SignalPackComplete, fields...)
	} else {
		capitan.Emit(context.Background(), SignalPackComplete, fields...)
	}
}

// emitUnpackStart emits an event when a top-level unpack begins.
func emitUnpackStart(typeName string, format Format, size int) {
	capitan.Emit(context.Background(), SignalUnpackStart,
		KeyTypeName.Field(typeName),
		KeyFormat.Field(format.String()),
		KeySize.Field(size),
	)
}

// emitUnpackComplete emits an event when a top-level unpack finishes.
func emitUnpackComplete(typeName string, format Format, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFormat.Field(format.String()),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(context.Background(), SignalUnpackComplete, fields...)
	} else {
		capitan.Emit(context.Background(), SignalUnpackComplete, fields...)
	}
}
