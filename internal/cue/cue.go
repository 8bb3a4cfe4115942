package cue

// Kind identifies one of the audible signals played during a workout
type Kind int

const (
	// Countdown is the short high beep at 3, 2 and 1 seconds remaining
	Countdown Kind = iota
	// Go is the rising tone when a work phase starts
	Go
	// Buzzer is the low tone when a work phase ends
	Buzzer
)

// AllKinds lists every cue kind
var AllKinds = []Kind{Countdown, Go, Buzzer}

func (k Kind) String() string {
	switch k {
	case Countdown:
		return "countdown"
	case Go:
		return "go"
	case Buzzer:
		return "buzzer"
	default:
		return "unknown"
	}
}

// Emitter plays cues. Emit must return promptly and never fail the caller;
// playback problems are the emitter's to handle.
type Emitter interface {
	Emit(kind Kind)
}

// NopEmitter discards every cue
type NopEmitter struct{}

func (NopEmitter) Emit(Kind) {}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(kind Kind)

func (f EmitterFunc) Emit(kind Kind) { f(kind) }
