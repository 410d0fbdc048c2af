package arguments

import (
	"context"
	"time"

	"github.com/Netflix/go-env"
	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/fixtures"
	"github.com/m-mizutani/honeybadger/pkg/adaptor"
	"github.com/m-mizutani/honeybadger/pkg/aggregator"
	"github.com/m-mizutani/honeybadger/pkg/errors"
	"github.com/m-mizutani/honeybadger/pkg/feed"
	"github.com/m-mizutani/honeybadger/pkg/gateway"
	"github.com/m-mizutani/honeybadger/pkg/logging"
	"github.com/m-mizutani/honeybadger/pkg/service"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	runLockName        = "aggregate"
)

// Run guard of this process. It outlives Arguments because Lambda reuses a container across
// invocations.
var processGuard = aggregator.NewLocalGuard()

// Arguments are passed to Handler. It includes environment variables and factories.
type Arguments struct {
	ReturnMockData   bool   `env:"RETURN_MOCK_DATA"`
	FixtureDir       string `env:"FIXTURE_DIR"`
	FixtureBucket    string `env:"FIXTURE_BUCKET"`
	FixturePrefix    string `env:"FIXTURE_PREFIX"`
	MaxEntities      int    `env:"MAX_ENTITIES"`
	SecretsARN       string `env:"SECRETS_ARN"`
	SnapshotTopicARN string `env:"SNAPSHOT_TOPIC_ARN"`
	LockTableName    string `env:"LOCK_TABLE_NAME"`
	SlackWebhookURL  string `env:"SLACK_WEBHOOK_URL"`
	SentryDSN        string `env:"SENTRY_DSN"`
	SentryEnv        string `env:"SENTRY_ENVIRONMENT"`
	EndpointsConfig  string `env:"ENDPOINTS_CONFIG"`
	AwsRegion        string `env:"AWS_REGION"`

	// Set them only in tests. nil means the real client.
	NewS3         adaptor.S3ClientFactory             `env:"-"`
	NewSNS        adaptor.SNSClientFactory            `env:"-"`
	NewSM         adaptor.SecretsManagerClientFactory `env:"-"`
	NewRepository adaptor.RepositoryFactory           `env:"-"`
	HTTP          adaptor.HTTPClient                  `env:"-"`
	Guard         aggregator.Guard                    `env:"-"`
}

// -----------------------
// Data binding

// New is constructor of Arguments bound from environment variables
func New() (*Arguments, error) {
	args := &Arguments{}
	if err := args.BindEnv(); err != nil {
		return nil, err
	}
	return args, nil
}

// BindEnv overwrites fields with environment variables
func (x *Arguments) BindEnv() error {
	if _, err := env.UnmarshalFromEnviron(x); err != nil {
		return errors.Wrap(err, "Unmarshal environ vars")
	}
	return nil
}

// -----------------------
// Clients

// HTTPClient returns Arguments.HTTP or a new HTTP/2 enabled client
func (x *Arguments) HTTPClient() (adaptor.HTTPClient, error) {
	if x.HTTP != nil {
		return x.HTTP, nil
	}

	client, err := adaptor.NewHTTPClient(defaultHTTPTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create HTTP client")
	}
	return client, nil
}

func (x *Arguments) s3Factory() adaptor.S3ClientFactory {
	if x.NewS3 != nil {
		return x.NewS3
	}
	return adaptor.NewS3Client
}

// -----------------------
// Services

// SNSService returns a new *service.SNSService
func (x *Arguments) SNSService() *service.SNSService {
	factory := x.NewSNS
	if factory == nil {
		factory = adaptor.NewSNSClient
	}
	return service.NewSNSService(factory)
}

// SecretsService returns a new *service.SecretsService
func (x *Arguments) SecretsService() *service.SecretsService {
	factory := x.NewSM
	if factory == nil {
		factory = adaptor.NewSecretsManagerClient
	}
	return service.NewSecretsService(factory)
}

// AlertService returns a new *service.AlertService posting to SLACK_WEBHOOK_URL
func (x *Arguments) AlertService() (*service.AlertService, error) {
	httpClient, err := x.HTTPClient()
	if err != nil {
		return nil, err
	}
	return service.NewAlertService(&service.AlertServiceArguments{
		HTTPClient:              httpClient,
		SlackIncomingWebhookURL: x.SlackWebhookURL,
	}), nil
}

// RunLockService returns a run guard backed by LOCK_TABLE_NAME
func (x *Arguments) RunLockService() (*service.RunLockService, error) {
	if x.LockTableName == "" {
		return nil, errors.New("LOCK_TABLE_NAME is required for RunLockService")
	}

	factory := x.NewRepository
	if factory == nil {
		factory = adaptor.NewDynamoRepository
	}
	repo, err := factory(x.AwsRegion, x.LockTableName)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create repository").With("table", x.LockTableName)
	}

	return service.NewRunLockService(repo, runLockName, service.DefaultRunLockTTL), nil
}

// -----------------------
// Pipeline

// FixtureLoader returns S3 loader if FIXTURE_BUCKET is set, directory loader if FIXTURE_DIR is
// set, and the fixtures built into the binary otherwise
func (x *Arguments) FixtureLoader() feed.FixtureLoader {
	if x.FixtureBucket != "" {
		return feed.NewS3Loader(x.s3Factory(), x.AwsRegion, x.FixtureBucket, x.FixturePrefix)
	}

	if x.FixtureDir != "" {
		return feed.DirLoader(x.FixtureDir)
	}
	return &feed.FSLoader{FS: fixtures.Files}
}

// Feeds chooses live or fixture adapters by RETURN_MOCK_DATA. Credentials are read only for live
// adapters.
func (x *Arguments) Feeds() (*feed.Feeds, error) {
	if x.ReturnMockData {
		logging.Logger.Debug().Msg("Using fixture feeds")
		return feed.NewFixtureFeeds(x.FixtureLoader()), nil
	}

	if x.SecretsARN == "" {
		return nil, errors.New("SECRETS_ARN is required for live feeds")
	}
	creds, err := x.SecretsService().GetCredentials(x.SecretsARN)
	if err != nil {
		return nil, err
	}

	endpoints := feed.DefaultEndpoints()
	if x.EndpointsConfig != "" {
		if endpoints, err = feed.LoadEndpoints(x.EndpointsConfig); err != nil {
			return nil, err
		}
	}

	httpClient, err := x.HTTPClient()
	if err != nil {
		return nil, err
	}

	return feed.NewLiveFeeds(httpClient, endpoints, creds), nil
}

// Gateway returns a new *gateway.Gateway with MAX_ENTITIES cap
func (x *Arguments) Gateway() (*gateway.Gateway, error) {
	feeds, err := x.Feeds()
	if err != nil {
		return nil, err
	}

	return gateway.New(&gateway.Arguments{
		Feeds:       feeds,
		MaxEntities: x.MaxEntities,
	}), nil
}

// Publisher logs every snapshot and also sends it to SNAPSHOT_TOPIC_ARN if set
func (x *Arguments) Publisher() aggregator.Publisher {
	publishers := aggregator.Publishers{
		aggregator.PublisherFunc(func(ctx context.Context, snapshot *honeybadger.Snapshot) error {
			logging.Logger.Info().Str("run_id", snapshot.RunID).Str("stage", snapshot.Stage).
				Str("status", string(snapshot.Status)).Int("entities", snapshot.Entities.Len()).
				Msg("Snapshot")
			logging.Logger.Debug().Interface("snapshot", snapshot).Msg("Snapshot body")
			return nil
		}),
	}

	if x.SnapshotTopicARN != "" {
		snsSvc := x.SNSService()
		publishers = append(publishers, aggregator.PublisherFunc(func(ctx context.Context, snapshot *honeybadger.Snapshot) error {
			return snsSvc.PublishSnapshot(x.SnapshotTopicARN, snapshot)
		}))
	}

	return publishers
}

// RunGuard returns Arguments.Guard, the DynamoDB lease if LOCK_TABLE_NAME is set, or the guard
// of this process
func (x *Arguments) RunGuard() (aggregator.Guard, error) {
	if x.Guard != nil {
		return x.Guard, nil
	}
	if x.LockTableName != "" {
		return x.RunLockService()
	}
	return processGuard, nil
}

// Aggregator returns a new *aggregator.Aggregator wired with Gateway, Publisher and RunGuard
func (x *Arguments) Aggregator() (*aggregator.Aggregator, error) {
	gw, err := x.Gateway()
	if err != nil {
		return nil, err
	}
	guard, err := x.RunGuard()
	if err != nil {
		return nil, err
	}

	return aggregator.New(&aggregator.Arguments{
		Gateway:   gw,
		Publisher: x.Publisher(),
		Guard:     guard,
	}), nil
}
