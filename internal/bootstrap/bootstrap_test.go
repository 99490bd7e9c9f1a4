package bootstrap

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkaad "propmatch/internal/adapters/kafka"
	"propmatch/internal/adapters/observability"
	redisad "propmatch/internal/adapters/redis"
	"propmatch/internal/adapters/webhook"
	"propmatch/internal/domain"
	"propmatch/internal/matching"
	"propmatch/internal/shared"
)

func TestNewNotifier_Sinks(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	n, closeFn, err := NewNotifier(shared.Config{NotifySink: "log"}, rc)
	require.NoError(t, err)
	assert.IsType(t, &observability.LogNotifier{}, n)
	assert.NoError(t, closeFn())

	n, _, err = NewNotifier(shared.Config{NotifySink: "redis", RedisStream: "s"}, rc)
	require.NoError(t, err)
	assert.IsType(t, &redisad.StreamNotifier{}, n)

	n, _, err = NewNotifier(shared.Config{NotifySink: "webhook", WebhookURL: "http://127.0.0.1:1/hook"}, rc)
	require.NoError(t, err)
	assert.IsType(t, &webhook.Client{}, n)

	n, closeFn, err = NewNotifier(shared.Config{NotifySink: "kafka", KafkaBrokers: []string{"127.0.0.1:9092"}, KafkaTopic: "t"}, rc)
	require.NoError(t, err)
	assert.IsType(t, &kafkaad.Producer{}, n)
	assert.NoError(t, closeFn())
}

func TestNewNotifier_Errors(t *testing.T) {
	_, _, err := NewNotifier(shared.Config{NotifySink: "webhook"}, nil)
	assert.Error(t, err)

	_, _, err = NewNotifier(shared.Config{NotifySink: "redis"}, nil)
	assert.Error(t, err)

	_, closeFn, err := NewNotifier(shared.Config{NotifySink: "pigeon"}, nil)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}

func TestWeights_ConfigOverrides(t *testing.T) {
	def := matching.DefaultWeights()
	assert.Equal(t, def, Weights(shared.Config{}))

	w := Weights(shared.Config{MatchThreshold: 60, BudgetTolerancePct: 10})
	assert.Equal(t, 60, w.Threshold)
	assert.Equal(t, 10, w.TolerancePct)
	assert.Equal(t, def.Location, w.Location)

	// out-of-range values keep the defaults
	w = Weights(shared.Config{MatchThreshold: 150, BudgetTolerancePct: 100})
	assert.Equal(t, def.Threshold, w.Threshold)
	assert.Equal(t, def.TolerancePct, w.TolerancePct)
}

func TestWeights_ThresholdDropsLocationOnlyMatch(t *testing.T) {
	p := domain.Property{ID: "p1", Address: "1 Main Road", Suburb: ptr("Ponsonby"), IsActive: true}
	ad := domain.WantedAd{ID: "a1", Budget: 1, IsActive: true,
		TargetLocations: []domain.TargetLocation{{LocationType: domain.LocationSuburb, Name: "Ponsonby"}}}

	_, ok := matching.NewScorer(Weights(shared.Config{})).Evaluate(p, ad)
	assert.True(t, ok, "location alone reaches the default threshold")

	_, ok = matching.NewScorer(Weights(shared.Config{MatchThreshold: 50})).Evaluate(p, ad)
	assert.False(t, ok)
}

func ptr[T any](v T) *T { return &v }
