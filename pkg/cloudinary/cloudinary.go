package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

var ErrNotConfigured = errors.New("media storage not configured")

// Upload describes a stored asset.
type Upload struct {
	URL      string
	PublicID string
}

// Client stores song audio and artwork.
type Client interface {
	UploadAudio(ctx context.Context, file io.Reader, folder, publicID string) (*Upload, error)
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (*Upload, error)
}

// Cover art delivered square and compressed.
const imageEager = "q_auto,f_auto,w_800,h_800,c_fill"

var eagerAsyncFalse = false

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

// UploadImage stores cover art and returns the optimized rendition when available.
func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (*Upload, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	url := result.SecureURL
	if len(result.Eager) > 0 && result.Eager[0].SecureURL != "" {
		url = result.Eager[0].SecureURL
	}
	return &Upload{URL: url, PublicID: result.PublicID}, nil
}

// UploadAudio stores a track. Cloudinary files audio under the video resource type.
func (c *clientImpl) UploadAudio(ctx context.Context, file io.Reader, folder, publicID string) (*Upload, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "video",
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	return &Upload{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		uploader:  up,
	}, nil
}
