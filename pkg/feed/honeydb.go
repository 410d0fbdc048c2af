package feed

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/honeybadger"
	"github.com/m-mizutani/honeybadger/pkg/errors"
)

type honeyDBBadHost struct {
	RemoteHost string  `json:"remote_host"`
	Count      *number `json:"count"`
	LastSeen   string  `json:"last_seen"`
}

// HoneyDB is adapter of HoneyDB bad-hosts API, hosts seen by honeypots in the last 24 hours
type HoneyDB struct {
	src Source
}

// NewHoneyDB is constructor of HoneyDB
func NewHoneyDB(src Source) *HoneyDB {
	return &HoneyDB{src: src}
}

// TopEntities returns bad hosts in the order HoneyDB returned them
func (x *HoneyDB) TopEntities(ctx context.Context) ([]*honeybadger.Observation, error) {
	raw, err := x.src.Fetch(ctx, nil)
	if err != nil {
		return nil, err
	}

	var hosts []*honeyDBBadHost
	if err := json.Unmarshal(raw, &hosts); err != nil {
		return nil, errors.Wrap(err, "Decoding HoneyDB response").
			WithKind(errors.ErrUpstream).With("body", truncate(raw))
	}

	observations := make([]*honeybadger.Observation, 0, len(hosts))
	for i, host := range hosts {
		if host == nil || host.RemoteHost == "" {
			return nil, errors.New("remote_host is missing in HoneyDB bad host").
				WithKind(errors.ErrNormalization).With("index", i)
		}
		if host.Count == nil {
			return nil, errors.New("count is missing in HoneyDB bad host").
				WithKind(errors.ErrNormalization).With("index", i).With("remote_host", host.RemoteHost)
		}

		count, err := host.Count.Int64()
		if err != nil || count < 0 {
			return nil, errors.New("count is not a non-negative integer in HoneyDB bad host").
				WithKind(errors.ErrNormalization).With("index", i).With("count", string(*host.Count))
		}

		observations = append(observations, &honeybadger.Observation{
			Identifier: host.RemoteHost,
			Count:      count,
		})
	}

	return observations, nil
}

const maxLoggedPayloadSize = 512

func truncate(raw []byte) string {
	if len(raw) > maxLoggedPayloadSize {
		return string(raw[:maxLoggedPayloadSize])
	}
	return string(raw)
}
