// Package storage uploads and releases portfolio images in an S3 bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
)

// Gateway stores one object per call under a generated key.
type Gateway struct {
	api           S3API
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithPublicBaseURL serves objects from base instead of the bucket's
// virtual-hosted URL (CDN, MinIO).
func WithPublicBaseURL(base string) GatewayOption {
	return func(g *Gateway) { g.publicBaseURL = strings.TrimRight(base, "/") }
}

// WithClock overrides the time source used in keys.
func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a Gateway for bucket.
func NewGateway(api S3API, bucket, region string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		api:    api,
		bucket: bucket,
		region: region,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Put uploads data publicly readable and returns its key.
// When ext is empty it is derived from the sniffed content type.
func (g *Gateway) Put(ctx context.Context, data []byte, field, ext string) (string, error) {
	if len(data) == 0 {
		return "", newObjectError(opPut, g.bucket, "", ErrEmptyObject)
	}

	mt := mimetype.Detect(data)
	if ext == "" {
		ext = mt.Extension()
	}
	key := NewKey(field, ext, g.now())

	_, err := g.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mt.String()),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", newObjectError(opPut, g.bucket, key, err)
	}
	return key, nil
}

// Delete removes key. An empty key is a no-op.
func (g *Gateway) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := g.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return newObjectError(opDelete, g.bucket, key, err)
	}
	return nil
}

// URL returns the public address of key.
func (g *Gateway) URL(key string) string {
	if key == "" {
		return ""
	}
	if g.publicBaseURL != "" {
		return g.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", g.bucket, g.region, key)
}

// Ping checks that the bucket is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(g.bucket)})
	if err != nil {
		return newObjectError(opHead, g.bucket, "", err)
	}
	return nil
}
