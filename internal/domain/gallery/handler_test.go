package gallery

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadPart struct {
	filename string
	content  []byte
	name     string
}

func setupTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newTestStore(t, instantBackend(), Options{MaxFileSize: 64 * 1024})
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), NewHandler(store))
	return r, store
}

func doJSONRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doUpload(t *testing.T, r http.Handler, parts ...uploadPart) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile("files", p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	for _, p := range parts {
		require.NoError(t, mw.WriteField("names", p.name))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body=%s", rr.Body.String())
	return env
}

func TestGalleryEndpoints_FullFlow(t *testing.T) {
	r, store := setupTestRouter(t)

	rr := doUpload(t, r,
		uploadPart{filename: "vacation.jpg", content: jpegBytes(t, 2, 2)},
		uploadPart{filename: "beach.png", content: pngBytes(t, 2, 2), name: "Beach Day"},
	)
	require.Equal(t, http.StatusCreated, rr.Code, "body=%s", rr.Body.String())
	created := decode[UploadResponse](t, rr)
	require.True(t, created.Success)
	require.Len(t, created.Data.Images, 2)
	assert.Equal(t, "vacation", created.Data.Images[0].Name)
	assert.Equal(t, "Beach Day", created.Data.Images[1].Name)
	vacationID := created.Data.Images[0].ID

	// stateless filter
	rr = doJSONRequest(r, http.MethodGet, "/api/v1/images?q=beach", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Beach Day"}, names(decode[[]Image](t, rr).Data))

	// session search
	rr = doJSONRequest(r, http.MethodPut, "/api/v1/search", map[string]any{"term": "VACA"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = doJSONRequest(r, http.MethodGet, "/api/v1/gallery", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decode[Snapshot](t, rr).Data
	assert.Len(t, snap.Images, 2)
	assert.Equal(t, []string{"vacation"}, names(snap.FilteredImages))
	assert.Equal(t, "VACA", snap.SearchTerm)

	rr = doJSONRequest(r, http.MethodDelete, "/api/v1/search", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, store.SearchTerm())

	// rename
	rr = doJSONRequest(r, http.MethodPatch, "/api/v1/images/"+vacationID, map[string]any{"name": " Summer "})
	require.Equal(t, http.StatusOK, rr.Code, "body=%s", rr.Body.String())
	assert.Equal(t, "Summer", decode[Image](t, rr).Data.Name)

	// blob
	img, err := store.Get(vacationID)
	require.NoError(t, err)
	rr = doJSONRequest(r, http.MethodGet, "/api/v1/blobs/"+img.URL, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, img.Payload(), rr.Body.Bytes())

	// delete, then everything about that id is gone
	rr = doJSONRequest(r, http.MethodDelete, "/api/v1/images/"+vacationID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSONRequest(r, http.MethodDelete, "/api/v1/images/"+vacationID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doJSONRequest(r, http.MethodGet, "/api/v1/images/"+vacationID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = doJSONRequest(r, http.MethodGet, "/api/v1/blobs/"+img.URL, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSONRequest(r, http.MethodGet, "/api/v1/images", nil)
	assert.Equal(t, []string{"Beach Day"}, names(decode[[]Image](t, rr).Data))
}

func TestRenameRejectsBlankName(t *testing.T) {
	r, store := setupTestRouter(t)
	rr := doUpload(t, r, uploadPart{filename: "a.png", content: pngBytes(t, 1, 1)})
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[UploadResponse](t, rr).Data.Images[0].ID

	for _, body := range []any{
		map[string]any{"name": ""},
		map[string]any{"name": "   "},
		map[string]any{},
	} {
		rr = doJSONRequest(r, http.MethodPatch, "/api/v1/images/"+id, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body=%v", body)
		assert.Equal(t, "VALIDATION_ERROR", decode[any](t, rr).Error.Code)
	}

	img, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "a", img.Name)
}

func TestRenameUnknownImage(t *testing.T) {
	r, _ := setupTestRouter(t)
	rr := doJSONRequest(r, http.MethodPatch, "/api/v1/images/nope", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, rr).Error.Code)
}

func TestUploadRejectsInvalidFiles(t *testing.T) {
	r, store := setupTestRouter(t)

	rr := doUpload(t, r, uploadPart{filename: "notes.txt", content: []byte("just some text")})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doUpload(t, r, uploadPart{filename: "huge.png", content: make([]byte, 65*1024)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rr = doUpload(t, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Empty(t, store.Images())
}
