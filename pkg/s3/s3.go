// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of media-mgmt-cli.
//
// media-mgmt-cli is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package s3 implements common.ObjectStore on top of AWS S3 using aws-sdk-go-v2.
package s3

import (
	"context"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/common"
)

// DefaultPartSize is the multipart chunk size used for uploads.
const DefaultPartSize = 64 * 1024 * 1024

// serviceAPI is the minimal subset of the S3 client this package calls, which
// keeps the surface small enough to mock by hand.
//
//nolint:lll
type serviceAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	RestoreObject(ctx context.Context, params *s3.RestoreObjectInput, optFns ...func(*s3.Options)) (*s3.RestoreObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// uploader is satisfied by *manager.Uploader.
type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3 is a storage backend for a single AWS S3 bucket.
type S3 struct {
	svc      serviceAPI
	uploader uploader
	bucket   string
	logger   adapters.Logger
}

var _ common.ObjectStore = (*S3)(nil)

// New creates a new S3 backend from settings.
// Required settings:
//   - bucket: the S3 bucket name
//
// Optional settings:
//   - region: AWS region (defaults to the SDK's resolution chain)
//   - endpoint: custom endpoint for S3-compatible services
//   - access_key_id / secret_access_key: static credentials
//   - path_style: "true" to force path-style addressing
func New(ctx context.Context, settings map[string]string, logger adapters.Logger) (*S3, error) {
	bucket := settings["bucket"]
	if bucket == "" {
		return nil, common.ErrBucketNotSet
	}
	if logger == nil {
		logger = adapters.NewNoOpLogger()
	}

	client, err := newClient(ctx, settings)
	if err != nil {
		return nil, err
	}

	up := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = DefaultPartSize
	})

	return &S3{
		svc:      client,
		uploader: up,
		bucket:   bucket,
		logger:   logger.WithFields(adapters.Field{Key: "bucket", Value: bucket}),
	}, nil
}

// ListAllBuckets lists the buckets visible to the configured credentials
// without requiring a bucket setting, for use before one has been chosen.
func ListAllBuckets(ctx context.Context, settings map[string]string) ([]string, error) {
	client, err := newClient(ctx, settings)
	if err != nil {
		return nil, err
	}
	return listBuckets(ctx, client)
}

func newClient(ctx context.Context, settings map[string]string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region := settings["region"]; region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if key, secret := settings["access_key_id"], settings["secret_access_key"]; key != "" && secret != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &common.TransientError{Op: "load aws config", Err: err}
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := settings["endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = settings["path_style"] == "true"
	}), nil
}

// Bucket returns the configured bucket name.
func (s *S3) Bucket() string {
	return s.bucket
}

// HeadObject fetches the object's metadata and decodes it once into a typed snapshot.
func (s *S3) HeadObject(ctx context.Context, key string) (*common.ObjectMetadata, error) {
	if err := common.ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := s.svc.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, handleError("head object", key, err)
	}

	return decodeHead(key, resp), nil
}

// decodeHead converts a HeadObject response into ObjectMetadata with explicit
// optional fields.
func decodeHead(key string, resp *s3.HeadObjectOutput) *common.ObjectMetadata {
	storageClass := string(resp.StorageClass)
	meta := &common.ObjectMetadata{
		Key:          key,
		StorageClass: storageClass,
		StorageTier:  common.ParseStorageTier(storageClass),
		LastModified: resp.LastModified,
		ETag:         aws.ToString(resp.ETag),
		ContentType:  aws.ToString(resp.ContentType),
	}
	if resp.Restore != nil {
		descriptor := *resp.Restore
		meta.RestoreDescriptor = &descriptor
	}
	if resp.ContentLength != nil && *resp.ContentLength >= 0 {
		size := *resp.ContentLength
		meta.Size = &size
	}
	return meta
}

// RestoreObject issues a restore request for an archived object.
func (s *S3) RestoreObject(ctx context.Context, key string, tier common.RestoreTier, days int32) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}

	s.logger.Debug(ctx, "restore object",
		adapters.Field{Key: "key", Value: key},
		adapters.Field{Key: "tier", Value: string(tier)},
		adapters.Field{Key: "days", Value: days})

	_, err := s.svc.RestoreObject(ctx, &s3.RestoreObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		RestoreRequest: &types.RestoreRequest{
			Days: aws.Int32(days),
			GlacierJobParameters: &types.GlacierJobParameters{
				Tier: types.Tier(tier),
			},
		},
	})
	return handleError("restore object", key, err)
}

// GetObject streams the object body.
func (s *S3) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := common.ValidateKey(key); err != nil {
		return nil, err
	}

	resp, err := s.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, handleError("get object", key, err)
	}
	return resp.Body, nil
}

// PutObject uploads body under key, splitting large bodies into multipart uploads.
func (s *S3) PutObject(ctx context.Context, key string, body io.Reader) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return handleError("put object", key, err)
	}

	s.logger.Debug(ctx, "uploaded object",
		adapters.Field{Key: "key", Value: key},
		adapters.Field{Key: "location", Value: out.Location})
	return nil
}

// ListObjects returns every object under prefix, following continuation tokens.
func (s *S3) ListObjects(ctx context.Context, prefix string) ([]common.ObjectInfo, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []common.ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.svc, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, handleError("list objects", prefix, err)
		}
		for _, obj := range page.Contents {
			info := common.ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				StorageClass: string(obj.StorageClass),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			objects = append(objects, info)
		}
	}
	return objects, nil
}

// DeleteObject removes the object from the bucket.
func (s *S3) DeleteObject(ctx context.Context, key string) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}

	_, err := s.svc.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return handleError("delete object", key, err)
}

// ListBuckets returns the sorted names of all buckets visible to the credentials.
func (s *S3) ListBuckets(ctx context.Context) ([]string, error) {
	return listBuckets(ctx, s.svc)
}

func listBuckets(ctx context.Context, svc serviceAPI) ([]string, error) {
	resp, err := svc.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, handleError("list buckets", "", err)
	}

	names := make([]string, 0, len(resp.Buckets))
	for _, b := range resp.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	sort.Strings(names)
	return names, nil
}
