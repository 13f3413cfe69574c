package store

import (
	"bytes"
	"context"
	"io/ioutil"

	"github.com/kennygrant/sanitize"
	"github.com/minio/minio-go"
	"github.com/pkg/errors"
)

// MinioBackend stores the document as one object in an S3 compatible bucket
type MinioBackend struct {
	client *minio.Client
	bucket string
	object string
}

// NewMinioBackend connects to endpoint and creates bucket if it doesn't exist yet
func NewMinioBackend(endpoint, accessKey, secretKey, bucket, object string, secure bool) (*MinioBackend, error) {
	client, err := minio.New(endpoint, accessKey, secretKey, secure)
	if err != nil {
		return nil, errors.Wrap(err, "creating minio client")
	}

	bucketExists, err := client.BucketExists(bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "checking bucket %s", bucket)
	}
	if !bucketExists {
		if err = client.MakeBucket(bucket, ""); err != nil {
			return nil, errors.Wrapf(err, "creating bucket %s", bucket)
		}
	}

	return &MinioBackend{client: client, bucket: bucket, object: sanitize.BaseName(object)}, nil
}

func (m *MinioBackend) Read(ctx context.Context) ([]byte, error) {
	object, err := m.client.GetObject(m.bucket, m.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s/%s", m.bucket, m.object)
	}
	defer object.Close()

	data, err := ioutil.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotExist
		}
		return nil, errors.Wrapf(err, "reading %s/%s", m.bucket, m.object)
	}
	return data, nil
}

func (m *MinioBackend) Write(ctx context.Context, data []byte) error {
	_, err := m.client.PutObject(m.bucket, m.object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return errors.Wrapf(err, "putting %s/%s", m.bucket, m.object)
}

func (m *MinioBackend) String() string {
	return "minio:" + m.bucket + "/" + m.object
}
