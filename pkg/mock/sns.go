package mock

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
)

// SNSClient records published inputs. Publish fails with Err if it is set.
type SNSClient struct {
	Region       string
	PublishInput []*sns.PublishInput
	Err          error

	mutex sync.Mutex
}

func (x *SNSClient) Publish(input *sns.PublishInput) (*sns.PublishOutput, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if x.Err != nil {
		return nil, x.Err
	}
	x.PublishInput = append(x.PublishInput, input)
	return &sns.PublishOutput{MessageId: aws.String("msg-" + aws.StringValue(input.TopicArn))}, nil
}

// Messages returns bodies of published messages in order
func (x *SNSClient) Messages() []string {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	msgs := make([]string, len(x.PublishInput))
	for i, input := range x.PublishInput {
		msgs[i] = aws.StringValue(input.Message)
	}
	return msgs
}

// NewSNSMock returns a factory and the client it always returns. Region of the last factory call
// is kept in SNSClient.Region.
func NewSNSMock() (adaptor.SNSClientFactory, *SNSClient) {
	client := &SNSClient{}
	return func(region string) (adaptor.SNSClient, error) {
		client.Region = region
		return client, nil
	}, client
}
