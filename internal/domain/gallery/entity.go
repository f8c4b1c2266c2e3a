package gallery

import "time"

// Image is one uploaded picture held by the Store.
// ID, UploadedAt and the payload are fixed at creation; only Name changes afterwards.
type Image struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	URL          string    `json:"url"` // display handle, valid while the image is in the store
	UploadedAt   time.Time `json:"uploaded_at"`

	payload []byte
}

// Payload returns the original uploaded bytes.
func (i Image) Payload() []byte { return i.payload }

// FileInput is a raw file handed to Upload: the bytes, the file name it was
// selected under and an optional display name.
type FileInput struct {
	Filename string
	Content  []byte
	Name     string
}
