package application

import (
	"errors"
	"sync"
	"time"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	"github.com/google/uuid"
)

var ErrPendingLoginClosed = errors.New("pending login is no longer available")

// PendingLogin owns a live browser page parked on the second-factor prompt.
// It is single-use and closes itself after an idle timeout.
type PendingLogin struct {
	id      string
	page    ports.Page
	release func()

	mu     sync.Mutex
	timer  *time.Timer
	taken  bool
	closed bool
}

var _ domain.PendingHandle = (*PendingLogin)(nil)

func newPendingLogin(page ports.Page, release func(), idle time.Duration) *PendingLogin {
	p := &PendingLogin{
		id:      uuid.NewString(),
		page:    page,
		release: release,
	}
	if idle > 0 {
		p.timer = time.AfterFunc(idle, p.closeIfIdle)
	}
	return p
}

func (p *PendingLogin) ID() string {
	return p.id
}

// closeIfIdle is the idle timer callback. A timer that fired while take was
// stopping it must not close a page that now belongs to the code submitter.
func (p *PendingLogin) closeIfIdle() {
	p.mu.Lock()
	if p.taken || p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	_ = p.shutdown()
}

// take hands the page to exactly one caller. The idle timer stops; the caller must Close.
func (p *PendingLogin) take() (ports.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.taken {
		return nil, ErrPendingLoginClosed
	}
	p.taken = true
	if p.timer != nil {
		p.timer.Stop()
	}
	return p.page, nil
}

func (p *PendingLogin) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	return p.shutdown()
}

func (p *PendingLogin) shutdown() error {
	err := p.page.Close()
	if p.release != nil {
		p.release()
	}
	return err
}
