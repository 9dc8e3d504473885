// Package chime plays a short alert tone alongside urgent notifications,
// such as a finished step or a finished recipe.
package chime

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/stepchef/internal/logger"
)

// Audio format of every buffer handed to a Sounder.
const (
	SampleRate     = 24000
	ChannelCount   = 1
	bytesPerSample = 2
)

// Sounder plays raw signed 16-bit little-endian mono PCM.
type Sounder interface {
	Play(pcm []byte) error
	Stop()
}

// Compile-time interface checks.
var (
	_ Sounder = (*Player)(nil)
	_ Sounder = (*Silent)(nil)
)

// Player plays PCM through the system audio device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer initializes the system audio context. Returns an error if the
// audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play blocks until the buffer has played or Stop is called.
func (p *Player) Play(pcm []byte) error {
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("playing %d bytes of PCM", len(pcm))

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the current buffer, if any. Safe to call concurrently and
// when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("playback interrupted")
	}
}

// Silent is a Sounder that plays nothing. Used when the chime is disabled
// or no audio device is present.
type Silent struct {
	log *logger.Logger
}

// NewSilent creates a silent sounder.
func NewSilent(log *logger.Logger) *Silent {
	return &Silent{log: log}
}

// Play discards the buffer.
func (s *Silent) Play(pcm []byte) error {
	s.log.Debug("silent: would play %d bytes", len(pcm))
	return nil
}

// Stop does nothing.
func (s *Silent) Stop() {}
