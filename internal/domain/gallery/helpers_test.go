package gallery

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func instantBackend() *SimulatedBackend {
	return NewSimulatedBackend(Latency{ProgressStep: 20})
}

func newTestStore(t *testing.T, b Backend, opts Options) *Store {
	t.Helper()
	s := NewStore(b, opts)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// MockBackend lets tests script backend outcomes.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Upload(ctx context.Context, img Image, report func(int)) error {
	report(0)
	args := m.Called(ctx, img)
	if err := args.Error(0); err != nil {
		return err
	}
	report(100)
	return nil
}

func (m *MockBackend) Rename(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *MockBackend) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(eventType string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{Type: eventType, Payload: payload})
}

func (n *recordingNotifier) ofType(eventType string) []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedEvent
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
