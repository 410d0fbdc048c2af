package adaptor

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/m-mizutani/honeybadger/pkg/errors"
)

func newSession(region string) (*session.Session, error) {
	ssn, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create AWS session").With("region", region)
	}
	return ssn, nil
}

// SNSClient publishes collection snapshots
type SNSClient interface {
	Publish(input *sns.PublishInput) (*sns.PublishOutput, error)
}

type SNSClientFactory func(region string) (SNSClient, error)

func NewSNSClient(region string) (SNSClient, error) {
	ssn, err := newSession(region)
	if err != nil {
		return nil, err
	}
	return sns.New(ssn), nil
}

// S3Client reads fixture objects. PutObject is used to upload fixtures in tests.
type S3Client interface {
	GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

type S3ClientFactory func(region string) (S3Client, error)

func NewS3Client(region string) (S3Client, error) {
	ssn, err := newSession(region)
	if err != nil {
		return nil, err
	}
	return s3.New(ssn), nil
}

// SecretsManagerClient reads feed credentials
type SecretsManagerClient interface {
	GetSecretValue(input *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
}

type SecretsManagerClientFactory func(region string) (SecretsManagerClient, error)

func NewSecretsManagerClient(region string) (SecretsManagerClient, error) {
	ssn, err := newSession(region)
	if err != nil {
		return nil, err
	}
	return secretsmanager.New(ssn), nil
}
