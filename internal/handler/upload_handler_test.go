package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/amptron-th/testdoc-api/internal/service"
	"github.com/amptron-th/testdoc-api/pkg/compose"
	"github.com/amptron-th/testdoc-api/pkg/response"
	"github.com/amptron-th/testdoc-api/pkg/storage"
)

type fakeStore struct {
	puts int
}

func (s *fakeStore) EnsureFolder(_ context.Context, name string) (string, error) {
	return "folder-" + name, nil
}

func (s *fakeStore) Put(_ context.Context, obj storage.Object) (*storage.StoredObject, error) {
	s.puts++
	id := fmt.Sprintf("file-%d", s.puts)
	return &storage.StoredObject{
		RemoteID:    id,
		ViewURL:     "https://drive.google.com/file/d/" + id + "/view",
		DownloadURL: "https://drive.google.com/uc?id=" + id,
	}, nil
}

type fakeCodes struct{}

func (fakeCodes) Generate(string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func fixturePDF(t *testing.T) []byte {
	t.Helper()
	data, _, err := compose.NewCompositor(nil).TextToPage("fixture")
	require.NoError(t, err)
	return data
}

func newUploadRouter(store storage.ObjectStore, maxFileSize int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	uploads := service.NewUploadService(nil, store, fakeCodes{}, nil)
	h := NewUploadHandler(uploads, nil, nil, maxFileSize)
	r := gin.New()
	r.POST("/upload", h.Upload)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadEndpointIndividualMode(t *testing.T) {
	store := &fakeStore{}
	router := newUploadRouter(store, 0)

	body, contentType := multipartBody(t,
		map[string]string{"uploadMode": "individual"},
		map[string][]byte{"a.pdf": fixturePDF(t), "b.pdf": fixturePDF(t)})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Nil(t, envelope.Error)
	require.EqualValues(t, 2, envelope.Meta["succeeded"])
	require.EqualValues(t, 0, envelope.Meta["failed"])
	require.Equal(t, 2, store.puts)
}

func TestUploadEndpointCombinedMode(t *testing.T) {
	store := &fakeStore{}
	router := newUploadRouter(store, 0)

	body, contentType := multipartBody(t,
		map[string]string{"uploadMode": "combined"},
		map[string][]byte{"a.pdf": fixturePDF(t), "b.pdf": fixturePDF(t)})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.puts)

	var envelope struct {
		Data struct {
			Results []struct {
				FileName string `json:"fileName"`
				Kind     string `json:"type"`
				QRCode   string `json:"qrCode"`
			} `json:"results"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Results, 1)
	require.Equal(t, "combined-pdf", envelope.Data.Results[0].Kind)
	require.Contains(t, envelope.Data.Results[0].FileName, "testreport-")
	require.NotEmpty(t, envelope.Data.Results[0].QRCode)
}

func TestUploadEndpointRejectsEmptyBatch(t *testing.T) {
	router := newUploadRouter(&fakeStore{}, 0)

	body, contentType := multipartBody(t, map[string]string{"uploadMode": "individual"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadEndpointEnforcesSizeLimit(t *testing.T) {
	router := newUploadRouter(&fakeStore{}, 16)

	body, contentType := multipartBody(t, nil, map[string][]byte{"big.pdf": fixturePDF(t)})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	require.Contains(t, envelope.Error.Message, "big.pdf")
}

func TestUploadEndpointUnsupportedKindGetsErrorSlot(t *testing.T) {
	store := &fakeStore{}
	router := newUploadRouter(store, 0)

	body, contentType := multipartBody(t,
		map[string]string{"uploadMode": "individual"},
		map[string][]byte{"good.pdf": fixturePDF(t), "bad.exe": {1, 2, 3}})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.EqualValues(t, 1, envelope.Meta["succeeded"])
	require.EqualValues(t, 1, envelope.Meta["failed"])
	require.Equal(t, 1, store.puts)
}
