package services

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"

	"gorm.io/gorm"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/config"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
)

type fakeObjectStore struct {
	objects   map[string]bool
	removeErr error
	removed   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]bool)}
}

func (f *fakeObjectStore) Put(ctx context.Context, key, contentType string, body multipart.File) error {
	f.objects[key] = true
	return nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

func setupMediaTest(t *testing.T) (*MediaService, *fakeObjectStore, *gorm.DB) {
	t.Helper()
	config.AppConfig = &config.Config{
		R2BucketName: "test-bucket",
		R2PublicURL:  "https://media.example.com",
	}
	db := setupTestDB(t)
	store := newFakeObjectStore()
	return NewMediaServiceWithStore(db, store), store, db
}

func uploadHeader(filename, contentType string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: filename,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
		Size:     2048,
	}
}

func TestMediaUpload_RecordsDescriptor(t *testing.T) {
	svc, store, _ := setupMediaTest(t)

	media, err := svc.Upload(context.Background(), nil, uploadHeader("photo.png", "image/png"), "wedding/chat")
	assert.NoError(t, err)
	assert.NotEmpty(t, media.ID)
	assert.Contains(t, media.URL, "https://media.example.com/wedding/chat/")
	assert.Equal(t, "image/png", media.Mimetype)
	assert.Equal(t, int64(2048), media.Size)
	assert.True(t, store.objects[media.Key])

	resolved, err := svc.FindByIDs([]string{media.ID, "missing"})
	assert.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, media.ID, resolved[0].ID)
}

func TestMediaDelete_RemovesObjectAndRow(t *testing.T) {
	svc, store, _ := setupMediaTest(t)

	media, err := svc.Upload(context.Background(), nil, uploadHeader("doc.pdf", "application/pdf"), "wedding/chat")
	assert.NoError(t, err)

	assert.NoError(t, svc.Delete(context.Background(), media.ID))
	assert.Equal(t, []string{media.Key}, store.removed)

	resolved, err := svc.FindByIDs([]string{media.ID})
	assert.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestMediaDelete_StorageFailureKeepsRow(t *testing.T) {
	svc, store, db := setupMediaTest(t)

	media, err := svc.Upload(context.Background(), nil, uploadHeader("doc.pdf", "application/pdf"), "wedding/chat")
	assert.NoError(t, err)

	store.removeErr = apperrors.Upstream("storage unavailable")

	err = svc.Delete(context.Background(), media.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindUpstream))

	// The descriptor row survives so the delete can be retried.
	var row models.Media
	assert.NoError(t, db.First(&row, "id = ?", media.ID).Error)
}

func TestMediaDelete_MissingRow(t *testing.T) {
	svc, _, _ := setupMediaTest(t)

	err := svc.Delete(context.Background(), "missing")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
