package preview

import (
	"sync"
	"time"

	"github.com/goliatone/go-specviz/pkg/debounce"
)

// CopyAckDuration is how long the "copied" acknowledgement stays visible.
const CopyAckDuration = 2 * time.Second

// CopyAck tracks the transient acknowledgement shown after a copy. Repeated
// copies extend the window.
type CopyAck struct {
	mu     sync.Mutex
	timer  *debounce.Timer
	copied bool
	notify func(copied bool)
}

// NewCopyAck builds an acknowledgement; notify, when set, observes every
// transition.
func NewCopyAck(notify func(copied bool), opts ...debounce.Option) *CopyAck {
	return &CopyAck{
		timer:  debounce.New(CopyAckDuration, opts...),
		notify: notify,
	}
}

// Mark records a copy and schedules the reset.
func (a *CopyAck) Mark() {
	a.set(true)
	a.timer.Arm(func() { a.set(false) })
}

// Copied reports whether the acknowledgement is showing.
func (a *CopyAck) Copied() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copied
}

// Stop cancels the pending reset.
func (a *CopyAck) Stop() {
	a.timer.Stop()
}

func (a *CopyAck) set(copied bool) {
	a.mu.Lock()
	changed := a.copied != copied
	a.copied = copied
	notify := a.notify
	a.mu.Unlock()
	if changed && notify != nil {
		notify(copied)
	}
}
