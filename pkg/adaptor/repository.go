package adaptor

import (
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/guregu/dynamo"
	"github.com/m-mizutani/honeybadger/pkg/errors"
)

// RunLock is a lease on the single aggregation slot
type RunLock struct {
	Name       string `dynamo:"-"`
	RunID      string `dynamo:"run_id"`
	AcquiredAt int64  `dynamo:"acquired_at"`
	ExpiresAt  int64  `dynamo:"expires_at"`
}

// Repository stores run locks. AcquireRunLock returns false without error when another
// unexpired lock holds the slot.
type Repository interface {
	AcquireRunLock(lock *RunLock, now time.Time) (bool, error)
	ReleaseRunLock(name, runID string) error
}

type RepositoryFactory func(region, tableName string) (Repository, error)

func NewDynamoRepository(region, tableName string) (Repository, error) {
	ssn, err := newSession(region)
	if err != nil {
		return nil, err
	}

	return &DynamoRepository{
		table: dynamo.New(ssn).Table(tableName),
	}, nil
}

type DynamoRepository struct {
	table dynamo.Table
}

const (
	dynamoHashKey  = "pk"
	dynamoRangeKey = "sk"
	runLockSKey    = "lock"
)

type dynamoItem struct {
	PK string `dynamo:"pk"`
	SK string `dynamo:"sk"`
}

func (x *dynamoItem) HashKey() interface{}  { return x.PK }
func (x *dynamoItem) RangeKey() interface{} { return x.SK }

type runLockItem struct {
	dynamoItem
	RunLock
}

func makeRunLockPKey(name string) string {
	return "run_lock/" + name
}

func isCondCheckFailed(err error) bool {
	aerr, ok := err.(awserr.Error)
	return ok && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}

func (x *DynamoRepository) AcquireRunLock(lock *RunLock, now time.Time) (bool, error) {
	item := &runLockItem{
		dynamoItem: dynamoItem{
			PK: makeRunLockPKey(lock.Name),
			SK: runLockSKey,
		},
		RunLock: *lock,
	}

	q := x.table.Put(item).If("attribute_not_exists($) OR $ < ?", dynamoHashKey, "expires_at", now.Unix())
	if err := q.Run(); err != nil {
		if isCondCheckFailed(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "Failed to put run lock").With("lock", lock)
	}

	return true, nil
}

func (x *DynamoRepository) ReleaseRunLock(name, runID string) error {
	pk := makeRunLockPKey(name)
	q := x.table.Delete(dynamoHashKey, pk).
		Range(dynamoRangeKey, runLockSKey).
		If("run_id = ?", runID)

	if err := q.Run(); err != nil {
		if isCondCheckFailed(err) {
			// Lease expired and was taken by another run
			return nil
		}
		return errors.Wrap(err, "Failed to delete run lock").With("pk", pk).With("run_id", runID)
	}

	return nil
}
