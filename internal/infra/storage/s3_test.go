package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Store_PutUsesPathStyleEndpoint(t *testing.T) {
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewS3Store(S3Config{
		Bucket:    "prescripto",
		Region:    "ap-south-1",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
		PublicURL: "https://cdn.prescripto.in/",
	})

	url, err := store.Put(context.Background(), "doctors/3/profile.webp", "image/webp", []byte("RIFF"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.prescripto.in/doctors/3/profile.webp", url)
	assert.Equal(t, "/prescripto/doctors/3/profile.webp", gotPath)
	assert.Equal(t, "image/webp", gotType)
	assert.Equal(t, []byte("RIFF"), gotBody)
}

func TestS3Store_PutWrapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store := NewS3Store(S3Config{Bucket: "b", Region: "us-east-1", Endpoint: srv.URL, AccessKey: "k", SecretKey: "s"})

	_, err := store.Put(context.Background(), "x.pdf", "application/pdf", []byte("%PDF"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "put object x.pdf")
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()

	url, err := m.Put(context.Background(), "a/b.pdf", "application/pdf", []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "memory://a/b.pdf", url)
	assert.Equal(t, []byte("%PDF"), m.Objects["a/b.pdf"])
}
