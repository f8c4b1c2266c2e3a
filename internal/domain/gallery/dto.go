package gallery

// RenameRequest is the body of PATCH /images/:id.
type RenameRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// SearchRequest is the body of PUT /search.
type SearchRequest struct {
	Term string `json:"term" validate:"max=255"`
}

// UploadResponse lists the images created by one batch.
type UploadResponse struct {
	Images []Image `json:"images"`
}
