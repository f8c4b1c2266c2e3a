package gallery

import (
	"sync"

	"github.com/google/uuid"
)

const handlePrefix = "blob:"

// Handles owns the renderable references to image payloads. A handle is
// acquired when an image enters the store and released exactly once when it
// leaves (or when the store is closed).
type Handles struct {
	mu       sync.RWMutex
	live     map[string][]byte
	acquired int
	released int
}

func NewHandles() *Handles {
	return &Handles{live: make(map[string][]byte)}
}

// Acquire registers payload and returns a fresh handle for it.
func (h *Handles) Acquire(payload []byte) string {
	handle := handlePrefix + uuid.New().String()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[handle] = payload
	h.acquired++
	return handle
}

// Release invalidates handle. A second release of the same handle fails with
// ErrHandleReleased.
func (h *Handles) Release(handle string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.live[handle]; !ok {
		return ErrHandleReleased
	}
	delete(h.live, handle)
	h.released++
	return nil
}

// Resolve returns the payload behind a live handle.
func (h *Handles) Resolve(handle string) ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	payload, ok := h.live[handle]
	return payload, ok
}

// Stats reports how many handles were handed out and released so far.
func (h *Handles) Stats() (acquired, released int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.acquired, h.released
}

// Live is the number of handles not yet released.
func (h *Handles) Live() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.live)
}
