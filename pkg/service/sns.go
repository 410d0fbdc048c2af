package service

import (
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/logging"
)

// SNSService is accessor to SNS
type SNSService struct {
	newSNS adaptor.SNSClientFactory
}

// NewSNSService is constructor of SNSService
func NewSNSService(newSNS adaptor.SNSClientFactory) *SNSService {
	return &SNSService{
		newSNS: newSNS,
	}
}

func extractSNSRegion(topicARN string) (string, error) {
	// topicARN sample: arn:aws:sns:us-east-1:111122223333:my-topic
	arnParts := strings.Split(topicARN, ":")

	if len(arnParts) != 6 {
		return "", errors.New("Invalid SNS topic ARN").With("ARN", topicARN)
	}

	return arnParts[3], nil
}

func publishSNS(client adaptor.SNSClient, topicARN string, msg interface{}, attrs map[string]string) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "Fail to marshal message").With("msg", msg)
	}

	input := sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(string(raw)),
	}
	if len(attrs) > 0 {
		input.MessageAttributes = make(map[string]*sns.MessageAttributeValue)
		for key, value := range attrs {
			input.MessageAttributes[key] = &sns.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(value),
			}
		}
	}

	resp, err := client.Publish(&input)
	if err != nil {
		return errors.Wrap(err, "Fail to publish SNS message").With("topic", topicARN)
	}

	logging.Logger.Trace().Interface("resp", resp).Msg("Sent SNS message")

	return nil
}

// PublishSnapshot sends snapshot to the topic. status and stage are set as message attributes so
// that subscribers can filter, e.g. only complete or failed runs.
func (x *SNSService) PublishSnapshot(topicARN string, snapshot *honeybadger.Snapshot) error {
	region, err := extractSNSRegion(topicARN)
	if err != nil {
		return err
	}

	client, err := x.newSNS(region)
	if err != nil {
		return errors.Wrap(err, "Failed to create SNS client").With("region", region)
	}

	attrs := map[string]string{
		"status": string(snapshot.Status),
		"stage":  snapshot.Stage,
	}
	if err := publishSNS(client, topicARN, snapshot, attrs); err != nil {
		return errors.Wrap(err, "Failed to publish snapshot").With("run_id", snapshot.RunID)
	}

	return nil
}
