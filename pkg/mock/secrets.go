package mock

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
)

// SecretsManagerClient is mock of adaptor.SecretsManagerClient returning SecretString
type SecretsManagerClient struct {
	Region       string
	SecretString string
	Input        []*secretsmanager.GetSecretValueInput
}

func (x *SecretsManagerClient) GetSecretValue(input *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
	x.Input = append(x.Input, input)
	return &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(x.SecretString),
	}, nil
}

// NewSecretsManagerMock returns SecretsManagerClientFactory and the client it returns
func NewSecretsManagerMock(secret string) (adaptor.SecretsManagerClientFactory, *SecretsManagerClient) {
	client := &SecretsManagerClient{SecretString: secret}
	return func(region string) (adaptor.SecretsManagerClient, error) {
		client.Region = region
		return client, nil
	}, client
}
