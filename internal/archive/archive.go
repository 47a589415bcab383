// Package archive keeps a copy of every comparison document in a local
// directory, an S3 bucket or an Azure blob container.
package archive

import (
	"context"
	"fmt"
	nethttp "net/http"
	"path"
	"strings"

	"github.com/kyaw-zaya123/checking/internal/config"
	"github.com/kyaw-zaya123/checking/internal/logging"
)

// Store saves documents under a key.
type Store interface {
	// Put stores data under key and returns where it ended up.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Name identifies the backend in logs.
	Name() string
}

// New builds the store selected by output.archive_backend. It returns nil
// and no error when archiving is disabled. httpClient carries the proxy
// configuration for the cloud backends.
func New(ctx context.Context, cfg *config.Config, httpClient *nethttp.Client, logger *logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	out := cfg.Output
	switch strings.ToLower(out.ArchiveBackend) {
	case "", "none":
		return nil, nil
	case "local":
		return NewLocal(cfg.ArchiveDirectory()), nil
	case "s3":
		store, err := NewS3Store(ctx, S3Options{
			Bucket:          out.S3Bucket,
			Region:          out.S3Region,
			Endpoint:        out.S3Endpoint,
			AccessKeyID:     out.S3AccessKeyID,
			SecretAccessKey: out.S3SecretAccessKey,
			HTTPClient:      httpClient,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "azure":
		store, err := NewAzureStore(out.AzureServiceURL, out.AzureContainer, httpClient, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", out.ArchiveBackend)
	}
}

// Key builds the object key for one attempt's document.
func Key(prefix, attemptID string) string {
	name := attemptID + ".html"
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
