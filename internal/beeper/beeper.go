// Package beeper plays the sound timer's beep signal through the speaker.
package beeper

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneHz     = 440
	toneDur    = 80 * time.Millisecond
)

// Beeper owns the speaker and a generated sine tone.
type Beeper struct {
	tone beep.Streamer
}

// New initializes the speaker. Callers should treat failure as "no audio"
// and keep running.
func New() (*Beeper, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	tone, err := generators.SinTone(sampleRate, toneHz)
	if err != nil {
		return nil, err
	}
	return &Beeper{tone: tone}, nil
}

// Beep plays one short tone, called once per sound-timer expiry.
func (b *Beeper) Beep() {
	speaker.Play(beep.Take(sampleRate.N(toneDur), b.tone))
}
