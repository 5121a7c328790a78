package minioutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kjk/plainkv/u"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	// use http instead of https, e.g. for a local minio server
	Insecure     bool
	RequestTrace io.Writer
}

// Validate checks that all required fields are set
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("must provide config")
	}
	var missing []string
	if c.Access == "" {
		missing = append(missing, "access")
	}
	if c.Secret == "" {
		missing = append(missing, "secret")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing s3 config fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Client struct {
	Client *minio.Client
	config *Config
	Bucket string
}

// New creates a client and checks that the bucket exists
func New(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := config
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: !c.Insecure,
	})
	if err != nil {
		return nil, err
	}
	if c.RequestTrace != nil {
		mc.TraceOn(c.RequestTrace)
	}
	found, err := mc.BucketExists(ctx, c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", c.Bucket)
	}
	return &Client{
		Client: mc,
		config: config,
		Bucket: c.Bucket,
	}, nil
}

// Exists returns true if remotePath is in the bucket
func (c *Client) Exists(ctx context.Context, remotePath string) bool {
	_, err := c.Client.StatObject(ctx, c.Bucket, remotePath, minio.StatObjectOptions{})
	return err == nil
}

// UploadData uploads data, compressing it first if remotePath ends
// with .gz, .zst or .br
func (c *Client) UploadData(ctx context.Context, remotePath string, data []byte) (minio.UploadInfo, error) {
	d, err := u.CompressDataForPath(remotePath, data)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	opts := minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	}
	if u.IsCompressedPath(remotePath) {
		opts.ContentType = "application/octet-stream"
	}
	r := bytes.NewReader(d)
	return c.Client.PutObject(ctx, c.Bucket, remotePath, r, int64(len(d)), opts)
}

// DownloadData downloads remotePath, decompressing it based on its extension
func (c *Client) DownloadData(ctx context.Context, remotePath string) ([]byte, error) {
	obj, err := c.Client.GetObject(ctx, c.Bucket, remotePath, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	d, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	return u.DecompressDataForPath(remotePath, d)
}

// ListObjects lists objects whose path starts with prefix.
// Errors are reported in ObjectInfo.Err.
func (c *Client) ListObjects(ctx context.Context, prefix string) <-chan minio.ObjectInfo {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}
	return c.Client.ListObjects(ctx, c.Bucket, opts)
}

func (c *Client) Remove(ctx context.Context, remotePath string) error {
	return c.Client.RemoveObject(ctx, c.Bucket, remotePath, minio.RemoveObjectOptions{})
}
