package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/service/blob"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the recorded audio store. A bucket selects Cloud Storage, a
// directory selects the local filesystem; with neither, voice uploads are refused.
type Storage struct {
	bucket string
	prefix string
	dir    string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Category:    "Storage",
			Usage:       "Cloud Storage bucket for recorded audio",
			Sources:     cli.EnvVars("STOREVOICE_STORAGE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Category:    "Storage",
			Usage:       "Object name prefix within the bucket",
			Sources:     cli.EnvVars("STOREVOICE_STORAGE_PREFIX"),
			Destination: &x.prefix,
		},
		&cli.StringFlag{
			Name:        "storage-dir",
			Category:    "Storage",
			Usage:       "Local directory for recorded audio (used when no bucket is set)",
			Sources:     cli.EnvVars("STOREVOICE_STORAGE_DIR"),
			Destination: &x.dir,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
		slog.String("dir", x.dir),
	)
}

// Configure returns the blob store and a closer, or a nil store when storage is not configured
func (x *Storage) Configure(ctx context.Context) (blob.Store, func(), error) {
	switch {
	case x.bucket != "":
		var opts []blob.GCSOption
		if x.prefix != "" {
			opts = append(opts, blob.WithPrefix(x.prefix))
		}
		store, err := blob.NewGCS(ctx, x.bucket, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize Cloud Storage", goerr.V("bucket", x.bucket))
		}
		logging.Default().Info("Using Cloud Storage for recorded audio", "bucket", x.bucket)
		return store, func() {
			if err := store.Close(); err != nil {
				logging.Default().Error("failed to close storage client", logging.ErrAttr(err))
			}
		}, nil

	case x.dir != "":
		store, err := blob.NewFS(x.dir)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize local audio storage", goerr.V("dir", x.dir))
		}
		logging.Default().Info("Using local storage for recorded audio", "dir", x.dir)
		return store, func() {}, nil

	default:
		logging.Default().Info("Audio storage not configured, voice uploads are disabled")
		return nil, func() {}, nil
	}
}
