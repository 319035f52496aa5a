package scanstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/evelynko/skinsight/internal/domain/scan"
)

// ValkeyStore caches the latest analysis per user in a Valkey-compatible
// database so scan results survive process restarts.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "scan"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Put stores the serialized analysis under the user's key.
func (s *ValkeyStore) Put(ctx context.Context, userID int64, a scan.Analysis, ttl time.Duration) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.latestKey(userID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

// Get returns the cached analysis for the user.
func (s *ValkeyStore) Get(ctx context.Context, userID int64) (scan.Analysis, bool, error) {
	cmd := s.client.B().Get().Key(s.latestKey(userID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return scan.Analysis{}, false, nil
		}
		return scan.Analysis{}, false, err
	}
	var a scan.Analysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return scan.Analysis{}, false, err
	}
	return a, true, nil
}

func (s *ValkeyStore) latestKey(userID int64) string {
	return fmt.Sprintf("%s:latest:%d", s.prefix, userID)
}

var _ scan.AnalysisStore = (*ValkeyStore)(nil)
