// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides the S3-compatible object storage used for
// listing images. It wraps the AWS SDK v2 with path-style addressing
// (required by CEPH/Hetzner and MinIO).
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"heritage/internal/slug"
)

// Prefix is the top-level folder of an object kind in the bucket.
type Prefix string

const (
	Covers    Prefix = "covers"
	Gallery   Prefix = "gallery"
	Story     Prefix = "story"
	StoryHero Prefix = "story-hero"
	Home      Prefix = "home"
)

// ObjectStore is what handlers need from storage. *Client implements it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	KeyFromURL(rawURL string) (string, bool)
}

// Client stores public objects in a single bucket.
type Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL for public files
}

var _ ObjectStore = (*Client)(nil)

// New creates a path-style S3 client. Returns (nil, nil) if endpoint or
// credentials are empty, allowing the app to start without storage.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")
	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// SiteKey builds "<prefix>/<siteID>/<millis>-<name>" for a listing image.
// The file name is slugified and keeps its extension.
func SiteKey(p Prefix, siteID uuid.UUID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s", p, siteID, now.UnixMilli(), safeName(filename))
}

// HomeHeroKey builds "home/hero-<millis><ext>".
func HomeHeroKey(filename string, now time.Time) string {
	return fmt.Sprintf("%s/hero-%d%s", Home, now.UnixMilli(), strings.ToLower(path.Ext(filename)))
}

// ThumbKey derives the thumbnail key of an original.
func ThumbKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "-thumb.jpg"
}

func safeName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "image"
	}
	return name + ext
}

// Upload stores a publicly readable object.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=" + strconv.Itoa(int((365 * 24 * time.Hour).Seconds()))),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return nil
}

// Delete removes an object.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// FileURL returns the public URL of key. Uses the configured public URL
// if set, otherwise a path-style endpoint URL.
func (c *Client) FileURL(key string) string {
	return c.base() + key
}

// KeyFromURL extracts the object key from a public URL produced by
// FileURL. It reports false for URLs that belong elsewhere.
func (c *Client) KeyFromURL(rawURL string) (string, bool) {
	if c.publicURL != "" {
		if key, ok := strings.CutPrefix(rawURL, c.publicURL+"/"); ok {
			return key, true
		}
	}
	if key, ok := strings.CutPrefix(rawURL, c.endpoint+"/"+c.bucket+"/"); ok {
		return key, true
	}
	return "", false
}

func (c *Client) base() string {
	if c.publicURL != "" {
		return c.publicURL + "/"
	}
	return c.endpoint + "/" + c.bucket + "/"
}
