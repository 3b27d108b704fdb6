package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/netx"
)

// Object is the metadata of one stored object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
	ContentType  string
}

// Content is an object body with its metadata. The caller closes Body.
type Content struct {
	Object
	Body io.ReadCloser
}

const (
	opList         = "list"
	opGet          = "get"
	opHead         = "head"
	opPutDirect    = "put_direct"
	opPutPresigned = "put_presigned"
	opDelete       = "delete"
)

// do runs fn under the retry policy, reports the outcome and wraps the
// final error. Not-found failures of every kind also match
// common.ErrorNotFound.
func (c *Client) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	run := func() error {
		return Retry(ctx, c.retry, fn, func(int, error) {
			c.observer.ObserveRetry(op)
		})
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (any, error) { return nil, run() })
	} else {
		err = run()
	}
	if err == nil {
		c.observer.ObserveOperation(op, "ok")
		return nil
	}

	class := Classify(err)
	c.observer.ObserveOperation(op, class.String())
	if class == ClassNotFound && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s %q: %w: %w", op, key, common.ErrorNotFound, err)
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}

// List enumerates every object whose key starts with prefix, following
// continuation tokens to the end.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	err := c.do(ctx, opList, prefix, func(ctx context.Context) error {
		out = out[:0]
		in := &s3.ListObjectsV2Input{Bucket: aws.String(c.bucket)}
		if prefix != "" {
			in.Prefix = aws.String(prefix)
		}
		p := s3.NewListObjectsV2Paginator(c.api, in)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, o := range page.Contents {
				out = append(out, Object{
					Key:          aws.ToString(o.Key),
					Size:         aws.ToInt64(o.Size),
					LastModified: aws.ToTime(o.LastModified),
					ETag:         aws.ToString(o.ETag),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches the full object.
func (c *Client) Get(ctx context.Context, key string) (*Content, error) {
	var res *Content
	err := c.do(ctx, opGet, key, func(ctx context.Context) error {
		out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		res = &Content{
			Object: Object{
				Key:          key,
				Size:         aws.ToInt64(out.ContentLength),
				LastModified: aws.ToTime(out.LastModified),
				ETag:         aws.ToString(out.ETag),
				ContentType:  aws.ToString(out.ContentType),
			},
			Body: out.Body,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Head fetches object metadata without the body.
func (c *Client) Head(ctx context.Context, key string) (*Object, error) {
	var res *Object
	err := c.do(ctx, opHead, key, func(ctx context.Context) error {
		out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		res = &Object{
			Key:          key,
			Size:         aws.ToInt64(out.ContentLength),
			LastModified: aws.ToTime(out.LastModified),
			ETag:         aws.ToString(out.ETag),
			ContentType:  aws.ToString(out.ContentType),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Exists reports whether key is present. Errors other than not-found are
// returned as is.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Head(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}

// PutDirect streams body to the store through the multipart uploader.
// body is rewound before every attempt.
func (c *Client) PutDirect(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error {
	return c.do(ctx, opPutDirect, key, func(ctx context.Context) error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return err
		}
		in := &s3.PutObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
			Body:   netx.NewProgressReader(body, size, onProgress),
		}
		if contentType != "" {
			in.ContentType = aws.String(contentType)
		}
		_, err := c.uploader.Upload(ctx, in)
		return err
	})
}

// PutPresigned signs a PUT for key and uploads body to the signed URL.
// body is rewound before every attempt.
func (c *Client) PutPresigned(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.do(ctx, opPutPresigned, key, func(ctx context.Context) error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return err
		}
		req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		}, s3.WithPresignExpires(c.presignExpiry))
		if err != nil {
			return fmt.Errorf("presign: %w", err)
		}
		return netx.UploadToPresignedURL(ctx, c.httpClient, req.URL, body, size, contentType, onProgress)
	})
}

// Delete removes key. Deleting an absent key is not an error at this level.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.do(ctx, opDelete, key, func(ctx context.Context) error {
		_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		return err
	})
}
