package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a driver event for post-mortem analysis
type Event struct {
	EventType uint8  // Event type code
	Port      uint8  // UART port id, 0 for timer events
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtTick        = 1 // DGT match handled (v1 = elapsed ms)
	EvtPeriodicSet = 2 // Periodic timer programmed (v1 = interval ms, v2 = ticks)
	EvtPortUp      = 3 // UART port configured (v1 = base)
	EvtOverrun     = 4 // Overrun cleared (v1 = 0 on TX path, 1 on RX path)
	EvtStaleFlush  = 5 // Partial word forced out of the packer (v1 = byte count)
	EvtRxWord      = 6 // Full word pulled from the RX FIFO (v1 = word)
	EvtInvalidPort = 7 // Access to an unregistered port
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer (non-blocking, for post-mortem)
	eventLock     SpinLock
	eventRing     [EventRingSize]Event
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to the UART console.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures an event in the ring buffer. Safe from interrupt
// context; it never blocks on I/O.
func RecordEvent(eventType, port uint8, value1, value2 uint32) {
	state := eventLock.LockIRQSave()
	idx := eventRingHead
	eventRing[idx] = Event{
		EventType: eventType,
		Port:      port,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
	eventLock.UnlockIRQRestore(state)
}

// Events returns the recorded events, oldest first.
func Events() []Event {
	state := eventLock.LockIRQSave()
	defer eventLock.UnlockIRQRestore(state)

	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

func eventName(t uint8) string {
	switch t {
	case EvtTick:
		return "TICK"
	case EvtPeriodicSet:
		return "PERIODIC"
	case EvtPortUp:
		return "PORT_UP"
	case EvtOverrun:
		return "OVERRUN"
	case EvtStaleFlush:
		return "STALE"
	case EvtRxWord:
		return "RX_WORD"
	case EvtInvalidPort:
		return "BAD_PORT"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring through the debug writer. Call it
// outside interrupt context; the writer may block on the UART.
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENT] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENT] " + eventName(evt.EventType) +
			" port=" + utoa(uint32(evt.Port)) +
			" v1=" + hex32(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EVENT] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	state := eventLock.LockIRQSave()
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
	eventLock.UnlockIRQRestore(state)
}
