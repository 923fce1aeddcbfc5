package clients

import (
	"context"

	config "github.com/DRSN-tech/pos-backend/internal/cfg"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinIOClient создаёт клиент S3-хранилища изображений профилей.
func NewMinIOClient(cfg *config.MinIOCfg) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return client, nil
}

// EnsureImageBucket создаёт бакет изображений, если его ещё нет.
// Бакет остаётся приватным, изображения отдаются через /uploads.
func EnsureImageBucket(ctx context.Context, client *minio.Client, cfg *config.MinIOCfg, log logger.Logger) error {
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return e.Wrap(cfg.BucketName, err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return e.Wrap(cfg.BucketName, err)
	}

	log.Infof("created image bucket %s in %s", cfg.BucketName, cfg.Region)
	return nil
}
