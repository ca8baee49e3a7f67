package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStoreUploadAndPublicURL(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "http://localhost:8080/files/")
	require.NoError(t, err)

	path, err := store.Upload("course-1/1700000000000.mp4", []byte("video-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "course-1/1700000000000.mp4", path)
	assert.Equal(t, "http://localhost:8080/files/course-1/1700000000000.mp4", store.PublicURL(path))

	file, err := store.Open(path)
	require.NoError(t, err)
	defer file.Close()

	info, err := file.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(len("video-bytes")), info.Size())
}

func TestBlobStoreRejectsPathTraversal(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)

	_, err = store.Upload("../outside.txt", []byte("nope"))
	require.Error(t, err)

	_, err = store.Upload("/etc/passwd", []byte("nope"))
	require.Error(t, err)
}

func TestBlobStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	require.NoError(t, store.Delete("course-1/missing.pdf"))
}

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, expiresAt, err := signer.Generate("mat-1", "course-1/lecture.mp4")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	materialID, objectPath, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "mat-1", materialID)
	assert.Equal(t, "course-1/lecture.mp4", objectPath)
	assert.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, _, err := signer.Generate("mat-1", "course-1/lecture.mp4")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	require.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := &SignedURLSigner{secret: []byte("test-secret"), ttl: -time.Minute}

	token, _, err := signer.Generate("mat-1", "course-1/lecture.mp4")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	require.Error(t, err)
}
