// Package cloudinary uploads finished clips to the Cloudinary media CDN.
package cloudinary

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Adapter struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func New(cloudName, apiKey, apiSecret, folder string) (*Adapter, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return &Adapter{cld: cld, folder: folder}, nil
}

// Upload pushes the local video file and returns its public URL.
func (a *Adapter) Upload(ctx context.Context, path string) (string, error) {
	resp, err := a.cld.Upload.Upload(ctx, path, uploader.UploadParams{
		ResourceType: "video",
		Folder:       a.folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: no URL in response")
	}
	return resp.SecureURL, nil
}
