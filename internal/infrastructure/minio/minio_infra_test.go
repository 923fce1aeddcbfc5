package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memImageRepo struct {
	mu          sync.Mutex
	objects     map[string]*domain.Image
	failUpload  bool
	deleteFails int
	deletes     int
}

func newMemImageRepo() *memImageRepo {
	return &memImageRepo{objects: map[string]*domain.Image{}}
}

func (m *memImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpload {
		return "", errors.New("upload failed")
	}
	m.objects[image.ObjectKey] = image
	return image.ObjectKey, nil
}

func (m *memImageRepo) Get(_ context.Context, key string) (*usecase.ImageObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.objects[key]
	if !ok {
		return nil, e.ErrImageNotFound
	}
	return &usecase.ImageObject{Body: io.NopCloser(bytes.NewReader(img.Data)), ContentType: img.ContentType, Size: img.Size}, nil
}

func (m *memImageRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteFails > 0 {
		m.deleteFails--
		return errors.New("temporary failure")
	}
	delete(m.objects, key)
	return nil
}

func (m *memImageRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func newInfra(repo *memImageRepo) *MinioInfrastructure {
	infra := NewMinioInfrastructure(repo, logger.Nop{}, context.Background())
	infra.retryBase = time.Millisecond
	return infra
}

func TestUploadImagesAndOpen(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)

	res, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("users/alice", []usecase.UserImage{
		{Data: []byte("one"), MimeType: "image/png", Name: "a.png"},
		{Data: []byte("two"), MimeType: "image/jpeg", Name: "b.jpg"},
	}))
	require.NoError(t, err)
	require.Len(t, res.ImagesKeys, 2)
	assert.True(t, strings.HasPrefix(res.ImagesKeys[0], "users/alice/"))
	assert.True(t, strings.HasSuffix(res.ImagesKeys[0], ".png"))
	assert.True(t, strings.HasSuffix(res.ImagesKeys[1], ".jpg"))

	obj, err := infra.OpenImage(context.Background(), res.ImagesKeys[1])
	require.NoError(t, err)
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "two", string(body))
	assert.Equal(t, "image/jpeg", obj.ContentType)

	_, err = infra.OpenImage(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrImageNotFound)
}

func TestUploadImages_UnsupportedMimeCleansUp(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("users/bob", []usecase.UserImage{
		{Data: []byte("ok"), MimeType: "image/png", Name: "a.png"},
		{Data: []byte("bad"), MimeType: "text/plain", Name: "b.txt"},
	}))
	require.ErrorIs(t, err, e.ErrUnsupportedMediaType)

	require.NoError(t, infra.WaitForCleanup(context.Background()))
	assert.Zero(t, repo.count())
}

func TestUploadImages_RepoFailure(t *testing.T) {
	repo := newMemImageRepo()
	repo.failUpload = true
	infra := newInfra(repo)

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("users/x", []usecase.UserImage{
		{Data: []byte("a"), MimeType: "image/png", Name: "a.png"},
	}))
	require.Error(t, err)
	require.NoError(t, infra.WaitForCleanup(context.Background()))
	assert.Zero(t, repo.deletes)
}

func TestCleanupImages_RetriesDelete(t *testing.T) {
	repo := newMemImageRepo()
	repo.objects["k1"] = domain.NewImage("k1", "image/png", []byte("x"))
	repo.deleteFails = 2
	infra := newInfra(repo)

	infra.CleanupImages([]string{"k1"})
	require.NoError(t, infra.WaitForCleanup(context.Background()))

	assert.Zero(t, repo.count())
	assert.Equal(t, 3, repo.deletes)
}

func TestCleanupImages_Empty(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)

	infra.CleanupImages(nil)
	require.NoError(t, infra.WaitForCleanup(context.Background()))
	assert.Zero(t, repo.deletes)
}

func TestWaitForCleanup_Timeout(t *testing.T) {
	repo := newMemImageRepo()
	infra := newInfra(repo)
	infra.wg.Add(1)
	defer infra.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, infra.WaitForCleanup(ctx), context.DeadlineExceeded)
}
