package dashboard

import (
	"context"
	"sync"
)

// Surface tracks which drawing elements (grid container, chart canvases) are mounted
// in the rendered page. Waiters block on a per-element channel that is closed exactly
// once when the element mounts.
type Surface struct {
	mu      sync.Mutex
	mounted map[string]bool
	waiters map[string]chan struct{}
}

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{
		mounted: map[string]bool{},
		waiters: map[string]chan struct{}{},
	}
}

// Mount marks the ids as present and wakes their waiters.
func (s *Surface) Mount(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if id == "" || s.mounted[id] {
			continue
		}
		s.mounted[id] = true
		if ch, ok := s.waiters[id]; ok {
			close(ch)
			delete(s.waiters, id)
		}
	}
}

// Unmount removes the ids. Later waiters block again until the next Mount.
func (s *Surface) Unmount(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.mounted, id)
	}
}

// Mounted reports whether id is currently mounted.
func (s *Surface) Mounted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted[id]
}

// MountedIDs lists the mounted element ids.
func (s *Surface) MountedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.mounted))
	for id := range s.mounted {
		ids = append(ids, id)
	}
	return ids
}

// Ready returns a channel closed once id is mounted.
func (s *Surface) Ready(id string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted[id] {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	ch, ok := s.waiters[id]
	if !ok {
		ch = make(chan struct{})
		s.waiters[id] = ch
	}
	return ch
}

// WaitMounted blocks until id mounts or ctx is done.
func (s *Surface) WaitMounted(ctx context.Context, id string) error {
	select {
	case <-s.Ready(id):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
