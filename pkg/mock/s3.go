package mock

import (
	"bytes"
	"errors"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
)

type s3Object struct {
	data     []byte
	encoding *string
}

// S3Client is in-memory mock of adaptor.S3Client
type S3Client struct {
	Region  string
	objects map[string]map[string]*s3Object
}

func NewS3Mock() (adaptor.S3ClientFactory, *S3Client) {
	client := &S3Client{objects: make(map[string]map[string]*s3Object)}
	return func(region string) (adaptor.S3Client, error) {
		client.Region = region
		return client, nil
	}, client
}

func (x *S3Client) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	bucket, ok := x.objects[aws.StringValue(input.Bucket)]
	if !ok {
		return nil, errors.New(s3.ErrCodeNoSuchBucket)
	}

	obj, ok := bucket[aws.StringValue(input.Key)]
	if !ok {
		return nil, errors.New(s3.ErrCodeNoSuchKey)
	}

	return &s3.GetObjectOutput{
		Body:            ioutil.NopCloser(bytes.NewReader(obj.data)),
		ContentEncoding: obj.encoding,
	}, nil
}

func (x *S3Client) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	bucketName := aws.StringValue(input.Bucket)
	bucket, ok := x.objects[bucketName]
	if !ok {
		bucket = make(map[string]*s3Object)
		x.objects[bucketName] = bucket
	}

	data, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	bucket[aws.StringValue(input.Key)] = &s3Object{
		data:     data,
		encoding: input.ContentEncoding,
	}
	return &s3.PutObjectOutput{}, nil
}
