package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/infrastructure"
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/jitter"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultUploadLimit = 4
	cleanupTimeout     = 30 * time.Second
	cleanupAttempts    = 3
	cleanupBaseBackoff = time.Second
	cleanupMaxBackoff  = 4 * time.Second
)

// MinioInfrastructure управляет загрузкой, выдачей и очисткой изображений в MinIO.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	uploadLimit int
	// retryBase — начальная задержка между попытками удаления; в тестах уменьшается
	retryBase time.Duration
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		uploadLimit: defaultUploadLimit,
		retryBase:   cleanupBaseBackoff,
	}
}

// UploadImages загружает изображения параллельно с ограничением одновременных операций.
// Ключ объекта: <prefix>/<uuid>.<ext>. При первой ошибке остальные загрузки отменяются,
// а уже загруженные файлы удаляются в фоне.
func (m *MinioInfrastructure) UploadImages(ctx context.Context, req *usecase.UploadImagesReq) (*usecase.UploadImagesRes, error) {
	const op = "MinioInfrastructure.UploadImages"

	keys := make([]string, len(req.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.uploadLimit)

	for i, image := range req.Images {
		g.Go(func() error {
			ext, err := infrastructure.GetExtensionFromMIME(image.MimeType)
			if err != nil {
				return fmt.Errorf("invalid mime type %s for %s: %w", image.MimeType, image.Name, err)
			}

			objKey := fmt.Sprintf("%s/%s.%s", req.Prefix, uuid.NewString(), ext)
			key, err := m.minioRepo.Upload(gctx, domain.NewImage(objKey, image.MimeType, image.Data))
			if err != nil {
				return fmt.Errorf("upload %s failed: %w", image.Name, err)
			}

			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.CleanupImages(uploadedKeys(keys))
		return nil, e.Wrap(op, err)
	}

	return usecase.NewUploadImagesRes(keys), nil
}

// OpenImage открывает изображение на чтение. Body закрывает вызывающий.
func (m *MinioInfrastructure) OpenImage(ctx context.Context, key string) (*usecase.ImageObject, error) {
	const op = "MinioInfrastructure.OpenImage"

	obj, err := m.minioRepo.Get(ctx, key)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return obj, nil
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и jitter между попытками.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: Cleaning up %d uploaded key(s)", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		err := jitter.Retry(ctx, cleanupAttempts, m.retryBase, cleanupMaxBackoff, func(ctx context.Context) error {
			return m.minioRepo.Delete(ctx, key)
		})
		if err != nil {
			if ctx.Err() != nil {
				m.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}
			m.logger.Errorf(e.Wrap(op, err), "failed to delete orphaned image, key=%v", key)
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

func uploadedKeys(keys []string) []string {
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			res = append(res, k)
		}
	}
	return res
}
