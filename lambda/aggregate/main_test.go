package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/aggregator"
	"github.com/m-mizutani/honeybadger/pkg/arguments"
	"github.com/m-mizutani/honeybadger/pkg/feed"
	"github.com/m-mizutani/honeybadger/pkg/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	main "github.com/m-mizutani/honeybadger/lambda/aggregate"
)

const topicARN = "arn:aws:sns:us-east-1:111122223333:snapshots"

func publishedSnapshots(t *testing.T, client *mock.SNSClient) []*honeybadger.Snapshot {
	var snapshots []*honeybadger.Snapshot
	for _, msg := range client.Messages() {
		var s honeybadger.Snapshot
		require.NoError(t, json.Unmarshal([]byte(msg), &s))
		snapshots = append(snapshots, &s)
	}
	return snapshots
}

func TestAggregate(t *testing.T) {
	newSNS, snsClient := mock.NewSNSMock()
	args := &arguments.Arguments{
		ReturnMockData:   true,
		FixtureDir:       "../../pkg/aggregator/testdata",
		SnapshotTopicARN: topicARN,
		NewSNS:           newSNS,
		Guard:            aggregator.NewLocalGuard(),
	}

	result, err := main.Handler(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, honeybadger.RunComplete, result.Status)
	assert.Equal(t, 1, result.Entities)

	snapshots := publishedSnapshots(t, snsClient)
	require.Equal(t, 4, len(snapshots))
	entity, ok := snapshots[3].Entities.Get("1.1.1.1")
	require.True(t, ok)
	assert.Equal(t, int64(987), entity.ObservationCount)
	require.NotNil(t, entity.Origin)
	assert.Equal(t, int64(16276), entity.Origin.NumericID)
	require.NotNil(t, entity.Location)
	assert.Equal(t, "X", entity.Location.Country)
}

func TestAggregateFailureAlert(t *testing.T) {
	// geoip_batch.json is not uploaded, so the location stage fails
	newS3, s3Client := mock.NewS3Mock()
	for _, name := range []string{feed.FixtureBadHosts, feed.FixtureASBatch, feed.FixtureBadIPBatch} {
		raw, err := ioutil.ReadFile(filepath.Join("../../pkg/aggregator/testdata", name))
		require.NoError(t, err)
		_, err = s3Client.PutObject(&s3.PutObjectInput{
			Bucket: aws.String("fixtures"),
			Key:    aws.String("mock/" + name),
			Body:   bytes.NewReader(raw),
		})
		require.NoError(t, err)
	}

	newSNS, snsClient := mock.NewSNSMock()
	slack := &mock.HTTPClient{RespCode: http.StatusOK}
	args := &arguments.Arguments{
		ReturnMockData:   true,
		FixtureBucket:    "fixtures",
		FixturePrefix:    "mock",
		SnapshotTopicARN: topicARN,
		SlackWebhookURL:  "https://hooks.slack.com/services/xxx",
		NewS3:            newS3,
		NewSNS:           newSNS,
		HTTP:             slack,
		Guard:            aggregator.NewLocalGuard(),
	}

	_, err := main.Handler(context.Background(), args)
	require.Error(t, err)

	snapshots := publishedSnapshots(t, snsClient)
	require.Equal(t, 3, len(snapshots))
	assert.Equal(t, honeybadger.RunFailed, snapshots[2].Status)
	assert.Equal(t, "locationInfo", snapshots[2].Stage)

	require.Equal(t, 1, len(slack.Requests))
	assert.Equal(t, "https://hooks.slack.com/services/xxx", slack.Requests[0].URL.String())
}

func TestAggregateSkipWhileRunning(t *testing.T) {
	guard := aggregator.NewLocalGuard()
	release, err := guard.Acquire(context.Background(), "other-run")
	require.NoError(t, err)
	defer release()

	newSNS, snsClient := mock.NewSNSMock()
	args := &arguments.Arguments{
		ReturnMockData:   true,
		FixtureDir:       "../../pkg/aggregator/testdata",
		SnapshotTopicARN: topicARN,
		NewSNS:           newSNS,
		Guard:            guard,
	}

	result, err := main.Handler(context.Background(), args)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, len(snsClient.PublishInput))
}
