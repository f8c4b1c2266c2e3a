package gallery

import "sync"

// Event types published through a Notifier.
const (
	EventUploadProgress = "upload_progress"
	EventUploadDone     = "upload_done"
	EventImageUploaded  = "image_uploaded"
	EventImageRenamed   = "image_renamed"
	EventImageDeleted   = "image_deleted"
)

// Notifier receives store events, e.g. to push them to browsers.
type Notifier interface {
	Publish(eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

// ProgressUpdate is the payload of EventUploadProgress.
type ProgressUpdate struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
}

// Progress tracks in-flight uploads by a transient id.
type Progress struct {
	mu       sync.RWMutex
	items    map[string]int
	notifier Notifier
}

func newProgress(n Notifier) *Progress {
	return &Progress{items: make(map[string]int), notifier: n}
}

func (p *Progress) set(id string, progress int) {
	p.mu.Lock()
	p.items[id] = progress
	p.mu.Unlock()
	p.notifier.Publish(EventUploadProgress, ProgressUpdate{ID: id, Progress: progress})
}

func (p *Progress) done(id string) {
	p.mu.Lock()
	_, ok := p.items[id]
	delete(p.items, id)
	p.mu.Unlock()
	if ok {
		p.notifier.Publish(EventUploadDone, map[string]string{"id": id})
	}
}

// Snapshot returns a copy of the current progress map.
func (p *Progress) Snapshot() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]int, len(p.items))
	for id, v := range p.items {
		out[id] = v
	}
	return out
}
