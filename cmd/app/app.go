package main

import (
	"os"

	"github.com/DRSN-tech/pos-backend/internal/app"
	config "github.com/DRSN-tech/pos-backend/internal/cfg"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	log.Infof("pos-backend: postgres %s:%s/%s, redis %s, image bucket %s at %s, kafka enabled: %t",
		cfg.Db.Host, cfg.Db.Port, cfg.Db.DBName, cfg.Redis.Addr, cfg.Minio.BucketName, cfg.Minio.MinioEndpoint, cfg.Kafka.Enabled())

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize POS backend")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
