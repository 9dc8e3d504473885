package chime

import (
	"context"
	"sync"

	"github.com/hammamikhairi/stepchef/internal/domain"
	"github.com/hammamikhairi/stepchef/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*Notifier)(nil)

// Notifier wraps a text notifier and rings a chime on urgent messages.
// Urgent messages that arrive while a chime is still ringing only print.
type Notifier struct {
	text    domain.Notifier
	sounder Sounder
	sound   []byte
	log     *logger.Logger

	mu      sync.Mutex
	ringing bool
	wg      sync.WaitGroup
}

// NewNotifier creates a notifier that prints through text and plays
// StepChime through sounder.
func NewNotifier(text domain.Notifier, sounder Sounder, log *logger.Logger) *Notifier {
	return &Notifier{
		text:    text,
		sounder: sounder,
		sound:   StepChime(),
		log:     log,
	}
}

// Notify prints the message without sound.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	return n.text.Notify(ctx, message)
}

// NotifyUrgent prints the message and starts the chime in the background.
func (n *Notifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}

	n.mu.Lock()
	if n.ringing {
		n.mu.Unlock()
		n.log.Debug("chime already ringing, skipping")
		return nil
	}
	n.ringing = true
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		if err := n.sounder.Play(n.sound); err != nil {
			n.log.Warn("chime failed: %v", err)
		}
		n.mu.Lock()
		n.ringing = false
		n.mu.Unlock()
	}()
	return nil
}

// Close interrupts a ringing chime and waits for it to finish.
func (n *Notifier) Close() {
	n.sounder.Stop()
	n.wg.Wait()
}
