package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type mockS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	putErr  error
	delErr  error
	headErr error
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(in.Body)
	m.puts = append(m.puts, in)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.deletes = append(m.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, m.headErr
}

func TestGateway_Put(t *testing.T) {
	t.Parallel()

	api := &mockS3{}
	at := time.UnixMilli(1700000000123)
	g := NewGateway(api, "folio", "eu-west-1", WithClock(func() time.Time { return at }))

	key, err := g.Put(context.Background(), pngHeader, "img_tech", ".PNG")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^img_tech-1700000000123-[0-9a-z]{16}\.png$`), key)
	require.Len(t, api.puts, 1)
	in := api.puts[0]
	assert.Equal(t, "folio", aws.ToString(in.Bucket))
	assert.Equal(t, key, aws.ToString(in.Key))
	assert.Equal(t, types.ObjectCannedACLPublicRead, in.ACL)
	assert.Equal(t, "image/png", aws.ToString(in.ContentType))
	assert.Equal(t, pngHeader, api.bodies[0])
}

func TestGateway_PutDerivesExtension(t *testing.T) {
	t.Parallel()

	g := NewGateway(&mockS3{}, "folio", "eu-west-1")
	key, err := g.Put(context.Background(), pngHeader, "img_exp", "")
	require.NoError(t, err)
	assert.Regexp(t, `\.png$`, key)
}

func TestGateway_PutKeysAreUnique(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000000)
	g := NewGateway(&mockS3{}, "folio", "eu-west-1", WithClock(func() time.Time { return at }))

	seen := make(map[string]bool)
	for range 50 {
		key, err := g.Put(context.Background(), pngHeader, "img_project", ".png")
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestGateway_PutErrors(t *testing.T) {
	t.Parallel()

	g := NewGateway(&mockS3{}, "folio", "eu-west-1")
	_, err := g.Put(context.Background(), nil, "img_tech", ".png")
	assert.ErrorIs(t, err, ErrEmptyObject)
	assert.ErrorIs(t, err, ErrUploadFailed)

	api := &mockS3{putErr: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}
	g = NewGateway(api, "folio", "eu-west-1")
	_, err = g.Put(context.Background(), pngHeader, "img_tech", ".png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.NotErrorIs(t, err, ErrDeleteFailed)

	var objErr *Error
	require.True(t, errors.As(err, &objErr))
	assert.Equal(t, "AccessDenied", objErr.Code())
	assert.Contains(t, err.Error(), "s3.put folio/img_tech-")
}

func TestGateway_Delete(t *testing.T) {
	t.Parallel()

	api := &mockS3{}
	g := NewGateway(api, "folio", "eu-west-1")

	require.NoError(t, g.Delete(context.Background(), ""))
	assert.Empty(t, api.deletes)

	require.NoError(t, g.Delete(context.Background(), "img_tech-1-abc.png"))
	assert.Equal(t, []string{"img_tech-1-abc.png"}, api.deletes)

	api.delErr = errors.New("connection reset")
	err := g.Delete(context.Background(), "img_tech-2-abc.png")
	assert.ErrorIs(t, err, ErrDeleteFailed)
	assert.Empty(t, err.(*Error).Code())
}

func TestGateway_URL(t *testing.T) {
	t.Parallel()

	g := NewGateway(&mockS3{}, "folio", "eu-west-1")
	assert.Equal(t, "https://folio.s3.eu-west-1.amazonaws.com/k.png", g.URL("k.png"))
	assert.Empty(t, g.URL(""))

	g = NewGateway(&mockS3{}, "folio", "eu-west-1", WithPublicBaseURL("http://localhost:9000/folio/"))
	assert.Equal(t, "http://localhost:9000/folio/k.png", g.URL("k.png"))
}

func TestGateway_Ping(t *testing.T) {
	t.Parallel()

	api := &mockS3{}
	g := NewGateway(api, "folio", "eu-west-1")
	assert.NoError(t, g.Ping(context.Background()))

	api.headErr = errors.New("no such bucket")
	assert.ErrorContains(t, g.Ping(context.Background()), "s3.head bucket folio")
}

func TestExtFromName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".jpg", ExtFromName("Photo.JPG"))
	assert.Equal(t, ".gz", ExtFromName("archive.tar.gz"))
	assert.Equal(t, "", ExtFromName("README"))
}
