package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/errors"

	"github.com/slack-go/slack"
)

type AlertServiceArguments struct {
	SlackIncomingWebhookURL string
	HTTPClient              adaptor.HTTPClient
}

type AlertService struct {
	args *AlertServiceArguments
}

func NewAlertService(args *AlertServiceArguments) *AlertService {
	return &AlertService{
		args: args,
	}
}

// Up to 5 entities of the last collection in slack message
const maxItemDisplaySlack = 5

func defang(s string) string {
	return strings.Replace(s, ".", "[.]", -1)
}

// BuildRunFailureMessage builds a block message of failed snapshot
func BuildRunFailureMessage(snapshot *honeybadger.Snapshot, cause error) *slack.Message {
	newField := func(title, value string) *slack.TextBlockObject {
		return slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*\n%s", title, value), false, false)
	}

	title := fmt.Sprintf(":warning: Aggregation failed at %s", snapshot.Stage)
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			newField("RunID", snapshot.RunID),
			newField("Kind", string(errors.KindOf(cause))),
			newField("PublishedAt", time.Unix(snapshot.PublishedAt, 0).UTC().Format("2006-01-02 15:04:05")),
			newField("Entities", fmt.Sprintf("%d", snapshot.Entities.Len())),
		}, nil),
		slack.NewSectionBlock(newField("Error", "```"+cause.Error()+"```"), nil, nil),
	}

	entities := snapshot.Entities.Entities()
	if len(entities) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", "*Top entities so far*", false, false), nil, nil))
	}

	for i, entity := range entities {
		if i >= maxItemDisplaySlack {
			break
		}

		origin := "-"
		if entity.Origin != nil {
			origin = fmt.Sprintf("AS%d %s", entity.Origin.NumericID, entity.Origin.Name)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*%s*", defang(entity.Identifier)), false, false),
			[]*slack.TextBlockObject{
				newField("Observations", fmt.Sprintf("%d", entity.ObservationCount)),
				newField("Origin", origin),
			}, nil,
		))
	}

	msg := slack.NewBlockMessage(blocks...)
	return &msg
}

// EmitRunFailure posts failure of an aggregation run to Slack incoming webhook
func (x *AlertService) EmitRunFailure(snapshot *honeybadger.Snapshot, cause error) error {
	if x.args.HTTPClient == nil {
		return errors.New("HTTPClient is required in AlertServiceArguments to emit Slack, but not set")
	}
	if x.args.SlackIncomingWebhookURL == "" {
		return errors.New("SlackIncomingWebhookURL is required in AlertServiceArguments to emit Slack, but not set")
	}

	msg := BuildRunFailureMessage(snapshot, cause)
	raw, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal slack message").With("msg", msg)
	}

	req, err := http.NewRequest("POST", x.args.SlackIncomingWebhookURL, bytes.NewBuffer(raw))
	if err != nil {
		return errors.Wrap(err, "Failed to create a new HTTP request to Slack")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.args.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "Failed to post message to slack in communication").With("msg", msg)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := ioutil.ReadAll(resp.Body)
		return errors.New("Failed to post message to slack in API").
			With("msg", msg).With("code", resp.StatusCode).With("body", string(body))
	}

	return nil
}
