package service

import (
	"context"
	"sync"
)

// pageSlots hands out at most one slot per page. The Checkpointer takes a
// slot for every snapshot, whether the scheduler, a tool call or a session
// eviction asked for it.
type pageSlots struct {
	mu   sync.Mutex
	held map[string]chan struct{} // closed on release
}

// acquire claims the slot of pageID. ok is false while someone else holds
// it. release may be called more than once.
func (p *pageSlots) acquire(pageID string) (release func(), ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.held[pageID]; busy {
		return nil, false
	}
	if p.held == nil {
		p.held = make(map[string]chan struct{})
	}
	done := make(chan struct{})
	p.held[pageID] = done

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.held, pageID)
			p.mu.Unlock()
			close(done)
		})
	}, true
}

// drain blocks until no slot is held or ctx is done.
func (p *pageSlots) drain(ctx context.Context) error {
	for {
		p.mu.Lock()
		var next chan struct{}
		for _, done := range p.held {
			next = done
			break
		}
		p.mu.Unlock()
		if next == nil {
			return nil
		}
		select {
		case <-next:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
