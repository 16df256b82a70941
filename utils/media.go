package utils

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"learnhub/config"
	"learnhub/logger"

	"github.com/go-resty/resty/v2"
)

// UploadedImage is what the image host returns for a stored file
type UploadedImage struct {
	URL      string `json:"secure_url"`
	PublicID string `json:"public_id"`
}

// ImageStore uploads and removes hosted images
type ImageStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
}

const cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary talks to the Cloudinary upload API with signed requests
type Cloudinary struct {
	client    *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
	log       *logger.Logger
}

func NewCloudinary(cfg *config.Config, log *logger.Logger) *Cloudinary {
	return NewCloudinaryWithBaseURL(cfg, log, cloudinaryBaseURL)
}

func NewCloudinaryWithBaseURL(cfg *config.Config, log *logger.Logger, baseURL string) *Cloudinary {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(30 * time.Second)

	return &Cloudinary{
		client:    client,
		cloudName: cfg.CloudinaryName,
		apiKey:    cfg.CloudinaryAPIKey,
		apiSecret: cfg.CloudinaryAPISecret,
		now:       time.Now,
		log:       log.With("component", "cloudinary"),
	}
}

func (c *Cloudinary) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadedImage, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	params := map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}
	form := c.signed(params)

	var out UploadedImage
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetFileReader("file", file.Filename, src).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/image/upload", c.cloudName))
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("cloudinary upload: status %d: %s", resp.StatusCode(), resp.String())
	}

	c.log.Debug("image uploaded", "publicId", out.PublicID)
	return &out, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, publicID string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(c.now().Unix(), 10),
	}

	var out struct {
		Result string `json:"result"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(c.signed(params)).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/image/destroy", c.cloudName))
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("cloudinary destroy: status %d: %s", resp.StatusCode(), resp.String())
	}
	if out.Result != "ok" && out.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: unexpected result %q", out.Result)
	}
	return nil
}

// signed adds api_key and signature to params
func (c *Cloudinary) signed(params map[string]string) map[string]string {
	form := make(map[string]string, len(params)+2)
	for k, v := range params {
		form[k] = v
	}
	form["signature"] = cloudinarySignature(params, c.apiSecret)
	form["api_key"] = c.apiKey
	return form
}

// cloudinarySignature is sha1 over the sorted "k=v" pairs joined by "&", followed by the secret
func cloudinarySignature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
