package archive

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/kyaw-zaya123/checking/internal/logging"
)

// AzureStore stores documents in an Azure blob container. The service URL
// carries a SAS token, e.g. https://{account}.blob.core.windows.net/?{sas}.
type AzureStore struct {
	client     *azblob.Client
	serviceURL string
	container  string
	logger     *logging.Logger
}

// NewAzureStore creates the blob client.
func NewAzureStore(serviceURL, container string, httpClient *nethttp.Client, logger *logging.Logger) (*AzureStore, error) {
	if serviceURL == "" || container == "" {
		return nil, fmt.Errorf("azure service URL and container are required")
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}

	opts := &azblob.ClientOptions{}
	if httpClient != nil {
		opts.ClientOptions = azcore.ClientOptions{Transport: httpClient}
	}

	client, err := azblob.NewClientWithNoCredential(serviceURL, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	return &AzureStore{client: client, serviceURL: serviceURL, container: container, logger: logger}, nil
}

func (a *AzureStore) Name() string { return "azure" }

// Put uploads the document as a block blob and returns its URL without the SAS query.
func (a *AzureStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := a.client.UploadBuffer(ctx, a.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob %s/%s: %w", a.container, key, err)
	}

	location := a.blobURL(key)
	a.logger.Debug().Str("location", location).Int("bytes", len(data)).Msg("document archived")
	return location, nil
}

func (a *AzureStore) blobURL(key string) string {
	u, err := url.Parse(a.serviceURL)
	if err != nil {
		return a.container + "/" + key
	}
	u.RawQuery = ""
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + a.container + "/" + key
	return u.String()
}
