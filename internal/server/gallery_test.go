// ABOUTME: Tests for the gallery HTTP handlers: list, upload, delete
// ABOUTME: Covers kind defaulting, ordering, and validation errors

package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleGallery_EmptyList(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/gallery", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decodeBody[[]galleryEntryResponse](t, rec)
	assert.Empty(t, entries)
}

func TestHandleGalleryUpload(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/gallery/upload", map[string]string{
		"imageUrl": "data:image/png;base64,cGhvdG8=",
		"prompt":   "my drawing",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/gallery", nil, nil)
	entries := decodeBody[[]galleryEntryResponse](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "uploaded", entries[0].Type)
	assert.Equal(t, "data:image/png;base64,cGhvdG8=", entries[0].ImageURL)
	assert.Equal(t, "my drawing", entries[0].Prompt)
	assert.NotEmpty(t, entries[0].CreatedAt)
}

func TestHandleGalleryUpload_ExplicitType(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/gallery/upload", map[string]string{
		"imageUrl": "data:image/png;base64,cGhvdG8=",
		"type":     "generated",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/gallery", nil, nil)
	entries := decodeBody[[]galleryEntryResponse](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "generated", entries[0].Type)
}

func TestHandleGalleryUpload_MissingImageURL(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/gallery/upload", map[string]string{
		"prompt": "no picture here",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "imageUrl is required", resp["error"])
}

func TestHandleGalleryUpload_InvalidType(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/gallery/upload", map[string]string{
		"imageUrl": "data:image/png;base64,cGhvdG8=",
		"type":     "doodled",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "type must be uploaded or generated", resp["error"])
}

func TestHandleGallery_NewestFirst(t *testing.T) {
	srv := newTestServer(t)

	for _, prompt := range []string{"first", "second"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/gallery/upload", map[string]string{
			"imageUrl": "data:image/png;base64,cGhvdG8=",
			"prompt":   prompt,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/gallery", nil, nil)
	entries := decodeBody[[]galleryEntryResponse](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Prompt)
	assert.Equal(t, "first", entries[1].Prompt)
}

func TestHandleGalleryDelete(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/gallery/upload", map[string]string{
		"imageUrl": "data:image/png;base64,cGhvdG8=",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/gallery", nil, nil)
	entries := decodeBody[[]galleryEntryResponse](t, rec)
	require.Len(t, entries, 1)

	path := fmt.Sprintf("/api/gallery/%d", entries[0].ID)
	rec = doJSON(t, srv, http.MethodDelete, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting again reports not found
	rec = doJSON(t, srv, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "gallery entry not found", resp["error"])
}

func TestHandleGalleryByID_InvalidID(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/api/gallery/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
