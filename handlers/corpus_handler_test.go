package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"nyayasahaya-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const adminToken = "s3cret-admin-token"

type stubIndexer struct {
	paths []string
	err   error
}

func (s *stubIndexer) IngestDocument(ctx context.Context, path string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.paths = append(s.paths, path)
	return 4, nil
}

type stubChunkRemover struct {
	removed map[string]int64
	err     error
}

func (s *stubChunkRemover) DeleteByDocument(ctx context.Context, sourceDocument string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	n := s.removed[sourceDocument]
	delete(s.removed, sourceDocument)
	return n, nil
}

func newCorpusRouter(t *testing.T, indexer DocumentIndexer) (*gin.Engine, storage.Storage) {
	return newCorpusRouterWithChunks(t, indexer, nil)
}

func newCorpusRouterWithChunks(t *testing.T, indexer DocumentIndexer, chunks ChunkRemover) (*gin.Engine, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	r := gin.New()
	Routes{
		Chat:           NewChatHandler(nil, nil, log),
		Corpus:         NewCorpusHandler(store, indexer, chunks, log),
		AdminTokenHash: string(hash),
	}.Register(r)
	return r, store
}

func uploadRequest(t *testing.T, filename, content, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/corpus", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestCorpus_UploadAndList(t *testing.T) {
	indexer := &stubIndexer{}
	r, _ := newCorpusRouter(t, indexer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "indian_penal_code.txt", "Section 378. Theft.", adminToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			Path    string `json:"path"`
			Indexed bool   `json:"indexed"`
			Chunks  int    `json:"chunks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.True(t, created.Data.Indexed)
	assert.Equal(t, 4, created.Data.Chunks)
	assert.Equal(t, []string{created.Data.Path}, indexer.paths)

	req := httptest.NewRequest(http.MethodGet, "/api/corpus", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Data []struct {
			Path string `json:"path"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, created.Data.Path, listed.Data[0].Path)
	assert.Equal(t, "indian_penal_code.txt", listed.Data[0].Name)
}

func TestCorpus_IndexFailureKeepsUpload(t *testing.T) {
	r, store := newCorpusRouter(t, &stubIndexer{err: errors.New("embedding quota exceeded")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "crpc.txt", "Section 41. When police may arrest.", adminToken))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"indexed":false`)

	paths, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestCorpus_RejectsBadUploads(t *testing.T) {
	r, _ := newCorpusRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "scan.pdf", "%PDF-1.4", adminToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_FILE_TYPE")

	req := httptest.NewRequest(http.MethodPost, "/api/corpus", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILE")
}

func TestCorpus_RequiresAdminToken(t *testing.T) {
	r, _ := newCorpusRouter(t, nil)

	for _, token := range []string{"", "wrong-token"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "ipc.txt", "Section 1.", token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/corpus", nil)
	req.Header.Set("Authorization", "Basic "+adminToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCorpus_RoutesAbsentWithoutHash(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	Routes{
		Chat:   NewChatHandler(nil, nil, nil),
		Corpus: NewCorpusHandler(store, nil, nil, nil),
	}.Register(r)

	req := httptest.NewRequest(http.MethodGet, "/api/corpus", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func deleteRequest(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/corpus/"+path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestCorpus_DeleteDocument(t *testing.T) {
	chunks := &stubChunkRemover{removed: map[string]int64{}}
	r, store := newCorpusRouterWithChunks(t, nil, chunks)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "crpc.txt", "Section 41. When police may arrest.", adminToken))
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data struct {
			Path string `json:"path"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	chunks.removed[created.Data.Path] = 7

	w = httptest.NewRecorder()
	r.ServeHTTP(w, deleteRequest(created.Data.Path, adminToken))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var deleted struct {
		Data struct {
			Path          string `json:"path"`
			ChunksRemoved int64  `json:"chunks_removed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, created.Data.Path, deleted.Data.Path)
	assert.Equal(t, int64(7), deleted.Data.ChunksRemoved)

	paths, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, paths)

	// Deleting again finds nothing
	w = httptest.NewRecorder()
	r.ServeHTTP(w, deleteRequest(created.Data.Path, adminToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCorpus_DeleteDocumentGuards(t *testing.T) {
	r, _ := newCorpusRouterWithChunks(t, nil, &stubChunkRemover{removed: map[string]int64{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, deleteRequest("acts/ipc.txt", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, deleteRequest("", adminToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PATH")
}

func TestCorpus_DeleteKeepsDocumentWhenUnindexFails(t *testing.T) {
	chunks := &stubChunkRemover{err: errors.New("connection reset")}
	r, store := newCorpusRouterWithChunks(t, nil, chunks)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "ipc.txt", "Section 378. Theft.", adminToken))
	require.Equal(t, http.StatusCreated, w.Code)
	paths, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, deleteRequest(paths[0], adminToken))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")

	paths, err = store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}
