package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"learnhub/config"
	"learnhub/logger"

	"github.com/google/uuid"
)

// UploadsPath is the URL prefix DiskImages files are served under.
const UploadsPath = "/uploads"

// NewImageStore returns Cloudinary when it is configured and local disk storage otherwise.
func NewImageStore(cfg *config.Config, log *logger.Logger) ImageStore {
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		return NewCloudinary(cfg, log)
	}
	log.Warn("cloudinary is not configured, storing images on disk", "dir", cfg.UploadDir)
	return NewDiskImages(cfg.UploadDir)
}

// DiskImages keeps uploads under Dir. The public id is the path relative to Dir.
type DiskImages struct {
	Dir string
}

func NewDiskImages(dir string) *DiskImages {
	return &DiskImages{Dir: dir}
}

func (d *DiskImages) Upload(_ context.Context, file *multipart.FileHeader, folder string) (*UploadedImage, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	destDir := filepath.Join(d.Dir, filepath.Clean("/"+folder))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return nil, fmt.Errorf("create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	publicID := path.Join(strings.Trim(filepath.ToSlash(filepath.Clean("/"+folder)), "/"), name)
	return &UploadedImage{URL: GetFileURL(publicID), PublicID: publicID}, nil
}

func (d *DiskImages) Destroy(_ context.Context, publicID string) error {
	target := filepath.Join(d.Dir, filepath.Clean("/"+publicID))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// GetFileURL is the URL a stored public id is served at.
func GetFileURL(publicID string) string {
	return UploadsPath + "/" + publicID
}
