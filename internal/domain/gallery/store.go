package gallery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options configures a Store. The zero value is usable.
type Options struct {
	MaxFileSize int64 // 0 means DefaultMaxFileSize, negative disables the limit
	Notifier    Notifier
	Logger      *zerolog.Logger
}

// Store owns one session's ordered image collection.
//
// Backend calls run without holding the lock; the collection only changes
// once a call has returned. A rename or delete that loses a race against a
// delete of the same id fails with ErrNotFound.
type Store struct {
	mu         sync.RWMutex
	images     []Image
	searchTerm string
	uploading  int
	closed     bool

	backend     Backend
	handles     *Handles
	progress    *Progress
	notifier    Notifier
	log         zerolog.Logger
	maxFileSize int64
	now         func() time.Time
}

func NewStore(backend Backend, opts Options) *Store {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = opts.Logger.With().Str("component", "gallery").Logger()
	}
	return &Store{
		backend:     backend,
		handles:     NewHandles(),
		progress:    newProgress(opts.Notifier),
		notifier:    opts.Notifier,
		log:         logger,
		maxFileSize: opts.MaxFileSize,
		now:         time.Now,
	}
}

// Upload adds a single file. It is a batch of one.
func (s *Store) Upload(ctx context.Context, in FileInput) (Image, error) {
	created, err := s.UploadBatch(ctx, []FileInput{in})
	if err != nil {
		return Image{}, err
	}
	return created[0], nil
}

// UploadBatch uploads files concurrently. Every file is validated before any
// upload starts. Items are appended in input order, each as soon as it and
// every item before it have finished. The first failure cancels the items
// still pending and is returned together with the images that already made
// it in. Nothing is rolled back.
func (s *Store) UploadBatch(ctx context.Context, files []FileInput) ([]Image, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	pending := make([]Image, len(files))
	for i, f := range files {
		img, err := checkFile(f, s.maxFileSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		pending[i] = img
	}

	if err := s.beginUpload(); err != nil {
		return nil, err
	}
	defer s.endUpload()

	results := make([]*Image, len(pending))
	turns := make([]chan struct{}, len(pending))
	for i := range turns {
		turns[i] = make(chan struct{})
	}
	var failed atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	for i := range pending {
		i := i
		img := pending[i]
		img.ID = uuid.New().String()
		img.UploadedAt = s.now()
		var prev <-chan struct{}
		if i > 0 {
			prev = turns[i-1]
		}
		g.Go(func() error {
			defer close(turns[i])
			created, err := s.uploadOne(gctx, img, prev, &failed)
			if err != nil {
				failed.Store(true)
				return err
			}
			results[i] = &created
			return nil
		})
	}
	err := g.Wait()

	created := make([]Image, 0, len(results))
	for _, r := range results {
		if r != nil {
			created = append(created, *r)
		}
	}
	if err != nil {
		s.log.Error().Err(err).Int("batch_size", len(files)).Int("completed", len(created)).Msg("batch upload failed")
		return created, err
	}
	return created, nil
}

// uploadOne runs the backend upload for img and commits it once prev (the
// previous item of the batch) is resolved. Nothing is committed once any item
// of the batch has failed.
func (s *Store) uploadOne(ctx context.Context, img Image, prev <-chan struct{}, failed *atomic.Bool) (Image, error) {
	tempID := uuid.New().String()
	s.progress.set(tempID, 0)
	defer s.progress.done(tempID)

	err := s.backend.Upload(ctx, img, func(p int) { s.progress.set(tempID, p) })
	if err != nil {
		return Image{}, fmt.Errorf("upload %s: %w: %w", img.OriginalName, ErrBackend, err)
	}
	if prev != nil {
		<-prev
	}
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	if failed.Load() {
		return Image{}, context.Canceled
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Image{}, ErrStoreClosed
	}
	img.URL = s.handles.Acquire(img.payload)
	s.images = append(s.images, img)
	s.mu.Unlock()

	s.log.Info().Str("image_id", img.ID).Str("name", img.Name).Int64("size", img.Size).Msg("image uploaded")
	s.notifier.Publish(EventImageUploaded, img)
	return img, nil
}

func (s *Store) beginUpload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.uploading++
	return nil
}

func (s *Store) endUpload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading--
}

// Rename changes the display name of image id. The name is trimmed and must
// not be empty.
func (s *Store) Rename(ctx context.Context, id, newName string) (Image, error) {
	name, err := ValidateName(newName)
	if err != nil {
		return Image{}, err
	}
	if _, err := s.Get(id); err != nil {
		return Image{}, err
	}

	if err := s.backend.Rename(ctx, id, name); err != nil {
		s.log.Error().Err(err).Str("image_id", id).Msg("rename failed")
		return Image{}, fmt.Errorf("rename %s: %w: %w", id, ErrBackend, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Image{}, ErrStoreClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Image{}, ErrNotFound
	}
	s.images[i].Name = name
	img := s.images[i]
	s.mu.Unlock()

	s.log.Info().Str("image_id", id).Str("name", name).Msg("image renamed")
	s.notifier.Publish(EventImageRenamed, img)
	return img, nil
}

// Remove deletes image id and releases its display handle. Removing an id
// twice fails with ErrNotFound.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	if err := s.backend.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Str("image_id", id).Msg("delete failed")
		return fmt.Errorf("delete %s: %w: %w", id, ErrBackend, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	img := s.images[i]
	s.images = append(s.images[:i:i], s.images[i+1:]...)
	releaseErr := s.handles.Release(img.URL)
	s.mu.Unlock()

	if releaseErr != nil {
		s.log.Error().Err(releaseErr).Str("image_id", id).Str("handle", img.URL).Msg("handle release failed")
	}
	s.log.Info().Str("image_id", id).Msg("image deleted")
	s.notifier.Publish(EventImageDeleted, map[string]string{"id": id})
	return nil
}

// Get returns a copy of image id.
func (s *Store) Get(id string) (Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Image{}, ErrStoreClosed
	}
	i := s.indexOf(id)
	if i < 0 {
		return Image{}, ErrNotFound
	}
	return s.images[i], nil
}

// Images returns the whole collection in upload order.
func (s *Store) Images() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Image, len(s.images))
	copy(out, s.images)
	return out
}

// Search sets the session search term.
func (s *Store) Search(term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()
}

func (s *Store) ClearSearch() { s.Search("") }

func (s *Store) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

// Filtered applies the current search term to the current collection.
// It is recomputed on every call.
func (s *Store) Filtered() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.images, s.searchTerm)
}

func (s *Store) IsUploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading > 0
}

// UploadProgress maps each in-flight upload to its percentage.
func (s *Store) UploadProgress() map[string]int {
	return s.progress.Snapshot()
}

// Handles exposes the display handle registry, e.g. to serve payloads.
func (s *Store) Handles() *Handles {
	return s.handles
}

// Snapshot is the full observable state of a Store.
type Snapshot struct {
	Images         []Image        `json:"images"`
	FilteredImages []Image        `json:"filtered_images"`
	SearchTerm     string         `json:"search_term"`
	IsUploading    bool           `json:"is_uploading"`
	UploadProgress map[string]int `json:"upload_progress"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	images := make([]Image, len(s.images))
	copy(images, s.images)
	snap := Snapshot{
		Images:         images,
		FilteredImages: Filter(images, s.searchTerm),
		SearchTerm:     s.searchTerm,
		IsUploading:    s.uploading > 0,
	}
	s.mu.RUnlock()
	snap.UploadProgress = s.progress.Snapshot()
	return snap
}

// Close drops every image and releases its handle. Later operations fail
// with ErrStoreClosed. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, img := range s.images {
		if err := s.handles.Release(img.URL); err != nil {
			s.log.Error().Err(err).Str("image_id", img.ID).Msg("handle release failed")
		}
	}
	s.log.Info().Int("released", len(s.images)).Msg("store closed")
	s.images = nil
	return nil
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.images {
		if s.images[i].ID == id {
			return i
		}
	}
	return -1
}
