// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/poiesic/newswire/objectstore"
)

// Config holds connection parameters for a MinIO/S3-compatible endpoint.
type Config struct {
	EndpointURL     string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
}

// Client implements objectstore.Store using the minio-go SDK.
// All operations are scoped to the configured bucket.
type Client struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ objectstore.Store = (*Client)(nil)

// NewClient creates a bucket-scoped object store client from config.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.EndpointURL == "" {
		return nil, objectstore.ErrEndpointRequired
	}
	if cfg.Bucket == "" {
		return nil, objectstore.ErrBucketRequired
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, objectstore.ErrCredentialsRequired
	}

	// Accept both bare hosts and full URLs as endpoint.
	endpoint := cfg.EndpointURL
	useSSL := cfg.UseSSL
	if u, err := url.Parse(cfg.EndpointURL); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
		logger: slog.Default().With("component", "objectstore"),
	}, nil
}

// Ping verifies connectivity by checking the configured bucket.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("object store unreachable: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", objectstore.ErrBucketRequired, c.bucket)
	}
	return nil
}

// ListPrefixes enumerates the immediate sub-prefixes under prefix.
func (c *Client) ListPrefixes(ctx context.Context, prefix string) ([]string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var prefixes []string
	objectCh := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, classifyError(obj.Err)
		}
		// Non-recursive listings report sub-prefixes as keys with a
		// trailing delimiter.
		if strings.HasSuffix(obj.Key, "/") {
			sub := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
			if sub != "" {
				prefixes = append(prefixes, sub)
			}
		}
	}
	return prefixes, nil
}

// List returns info for every object under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	var infos []objectstore.ObjectInfo
	objectCh := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, classifyError(obj.Err)
		}
		infos = append(infos, objectstore.ObjectInfo{
			Key:          obj.Key,
			LastModified: obj.LastModified,
		})
	}
	return infos, nil
}

// Get reads an object's full payload.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyError(err)
	}
	return data, nil
}

// Put writes an object with a JSON content type.
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	reader := bytes.NewReader(data)
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// classifyError maps minio-go errors onto the objectstore sentinel set.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchKey":
			return fmt.Errorf("%w: %s", objectstore.ErrObjectNotFound, resp.Key)
		case "NoSuchBucket":
			return fmt.Errorf("%w: %s", objectstore.ErrBucketRequired, resp.BucketName)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "does not exist") {
		return fmt.Errorf("%w: %v", objectstore.ErrObjectNotFound, err)
	}
	return err
}
