package gallery

import (
	"context"
	"time"
)

// Backend performs the remote side of each mutation. The Store only changes
// its collection after the backend call returned successfully.
type Backend interface {
	// Upload stores img, calling report with a percentage (0..100) as it goes.
	Upload(ctx context.Context, img Image, report func(progress int)) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// Latency configures SimulatedBackend.
type Latency struct {
	UploadStep   time.Duration // delay after each progress report
	ProgressStep int           // percentage increment, must divide 100
	Rename       time.Duration
	Delete       time.Duration
}

// DefaultLatency mimics a slow network: about one second per upload.
var DefaultLatency = Latency{
	UploadStep:   200 * time.Millisecond,
	ProgressStep: 20,
	Rename:       300 * time.Millisecond,
	Delete:       500 * time.Millisecond,
}

// SimulatedBackend stands in for a real server. It only waits.
type SimulatedBackend struct {
	latency Latency
}

func NewSimulatedBackend(latency Latency) *SimulatedBackend {
	if latency.ProgressStep <= 0 || 100%latency.ProgressStep != 0 {
		latency.ProgressStep = DefaultLatency.ProgressStep
	}
	return &SimulatedBackend{latency: latency}
}

func (b *SimulatedBackend) Upload(ctx context.Context, _ Image, report func(int)) error {
	for progress := 0; progress <= 100; progress += b.latency.ProgressStep {
		report(progress)
		if err := sleep(ctx, b.latency.UploadStep); err != nil {
			return err
		}
	}
	return nil
}

func (b *SimulatedBackend) Rename(ctx context.Context, _, _ string) error {
	return sleep(ctx, b.latency.Rename)
}

func (b *SimulatedBackend) Delete(ctx context.Context, _ string) error {
	return sleep(ctx, b.latency.Delete)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
