package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

type stubSweepService struct {
	staleErr   error
	candidates []string
	staleCalls int
	limits     []int64
}

func (s *stubSweepService) FailStaleDistributions(ctx context.Context, limit int64) (int64, error) {
	s.staleCalls++
	s.limits = append(s.limits, limit)
	return 1, s.staleErr
}

func (s *stubSweepService) RestartCandidates(ctx context.Context, limit int64) ([]string, error) {
	s.limits = append(s.limits, limit)
	return s.candidates, nil
}

type stubPublisher struct {
	failFor   string
	published []string
}

func (p *stubPublisher) PublishRestartEvent(ctx context.Context, transactionID string) error {
	if transactionID == p.failFor {
		return errors.New("channel closed")
	}
	p.published = append(p.published, transactionID)
	return nil
}

var sweeperConfig = &config.AutoRestartConfig{Enabled: true, Interval: time.Minute, BatchSize: 25}

func TestSweepPublishesCandidates(t *testing.T) {
	service := &stubSweepService{candidates: []string{"a", "b", "c"}}
	publisher := &stubPublisher{failFor: "b"}
	sweeper := NewRestartSweeper(sweeperConfig, service, publisher)

	published, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	assert.Equal(t, []string{"a", "c"}, publisher.published)
	assert.Equal(t, 1, service.staleCalls)
	assert.Equal(t, []int64{25, 25}, service.limits)
}

func TestSweepStopsWhenStaleSweepFails(t *testing.T) {
	service := &stubSweepService{staleErr: errors.New("db down"), candidates: []string{"a"}}
	publisher := &stubPublisher{}
	sweeper := NewRestartSweeper(sweeperConfig, service, publisher)

	_, err := sweeper.Sweep(context.Background())
	assert.Error(t, err)
	assert.Empty(t, publisher.published)
}
