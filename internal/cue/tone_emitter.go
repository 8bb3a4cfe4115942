package cue

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/lowaak/interval-timer/internal/go_func_utils"
)

const (
	DefaultSampleRate = 44100
	readyTimeout      = 5 * time.Second
	pollInterval      = 10 * time.Millisecond
)

var errAudioNotReady = errors.New("audio device did not become ready")

// Options configures the tone emitter
type Options struct {
	SampleRate int
	Volume     float64
	BufferSize time.Duration
}

// ToneEmitter plays synthesized cues through the system audio device.
// Each cue plays on its own goroutine so Emit never blocks the tick loop.
type ToneEmitter struct {
	logger  *log.Logger
	context *oto.Context
	pcm     map[Kind][]byte

	// play is replaced in tests to avoid touching the audio device
	play func(pcm []byte) error
}

// NewToneEmitter opens the audio device and pre-renders every cue
func NewToneEmitter(opts Options, logger *log.Logger) (*ToneEmitter, error) {
	if logger == nil {
		panic("ToneEmitter: logger cannot be nil")
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}

	ctx, readyChan, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   opts.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}

	select {
	case <-readyChan:
	case <-time.After(readyTimeout):
		// oto v3 contexts cannot be closed; it is left to the garbage collector
		return nil, errAudioNotReady
	}

	e := &ToneEmitter{
		logger:  logger,
		context: ctx,
		pcm:     renderTones(opts.SampleRate, opts.Volume),
	}
	e.play = e.playPCM
	logger.Debugf("ToneEmitter: audio ready (%d Hz, volume %.2f)", opts.SampleRate, opts.Volume)
	return e, nil
}

// NewBestEffort returns a ToneEmitter, or a NopEmitter when audio is disabled
// or the device cannot be opened. The timer keeps working either way.
func NewBestEffort(enabled bool, opts Options, logger *log.Logger) Emitter {
	if !enabled {
		logger.Info("ToneEmitter: audio cues disabled")
		return NopEmitter{}
	}
	e, err := NewToneEmitter(opts, logger)
	if err != nil {
		logger.Warnf("ToneEmitter: audio unavailable, continuing silently: %v", err)
		return NopEmitter{}
	}
	return e
}

// Emit starts playback of kind and returns immediately
func (e *ToneEmitter) Emit(kind Kind) {
	pcm, ok := e.pcm[kind]
	if !ok {
		e.logger.Debugf("ToneEmitter: no tone for cue %s", kind)
		return
	}
	go_func_utils.SafeGo(e.logger, func() {
		if err := e.play(pcm); err != nil {
			e.logger.Debugf("ToneEmitter: %s cue failed: %v", kind, err)
		}
	})
}

func (e *ToneEmitter) playPCM(pcm []byte) error {
	player := e.context.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(pollInterval)
	}
	if err := player.Err(); err != nil {
		_ = player.Close()
		return err
	}
	return player.Close()
}

func renderTones(sampleRate int, volume float64) map[Kind][]byte {
	pcm := make(map[Kind][]byte, len(DefaultTones))
	for kind, tone := range DefaultTones {
		pcm[kind] = Synthesize(tone, sampleRate, volume)
	}
	return pcm
}
