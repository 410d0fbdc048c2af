package service

import (
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/feed"
)

// SecretsService reads feed credentials from a Secrets Manager secret
type SecretsService struct {
	newSM adaptor.SecretsManagerClientFactory
}

// NewSecretsService is constructor of SecretsService
func NewSecretsService(newSM adaptor.SecretsManagerClientFactory) *SecretsService {
	return &SecretsService{newSM: newSM}
}

func extractSecretsRegion(secretARN string) (string, error) {
	// secretARN sample: arn:aws:secretsmanager:ap-northeast-1:111122223333:secret:name
	arnParts := strings.Split(secretARN, ":")
	if len(arnParts) != 7 {
		return "", errors.New("Invalid secret ARN").With("ARN", secretARN)
	}
	return arnParts[3], nil
}

// GetCredentials fetches the secret and decodes it as feed.Credentials
func (x *SecretsService) GetCredentials(secretARN string) (*feed.Credentials, error) {
	region, err := extractSecretsRegion(secretARN)
	if err != nil {
		return nil, err
	}

	client, err := x.newSM(region)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create SecretsManager client").With("region", region)
	}

	output, err := client.GetSecretValue(&secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretARN),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed GetSecretValue").With("secretARN", secretARN)
	}

	var creds feed.Credentials
	if err := json.Unmarshal([]byte(aws.StringValue(output.SecretString)), &creds); err != nil {
		return nil, errors.Wrap(err, "Failed to decode secret").With("secretARN", secretARN)
	}

	return &creds, nil
}
