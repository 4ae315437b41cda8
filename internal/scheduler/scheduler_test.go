package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/MoneyScope/internal/models"
)

type recorder struct {
	mu    sync.Mutex
	pairs []string
}

func (r *recorder) analyze(_ context.Context, pair models.CurrencyPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs = append(r.pairs, pair.String())
	if pair.Base == "EUR" {
		return errors.New("model unavailable")
	}
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.pairs...)
}

func TestRunNowContinuesAfterFailure(t *testing.T) {
	rec := &recorder{}
	s, err := New(context.Background(), "@daily", []string{"usd/inr", "EUR/GBP", "GBP/JPY"}, rec.analyze)
	require.NoError(t, err)

	s.RunNow()
	assert.Equal(t, []string{"USD/INR", "EUR/GBP", "GBP/JPY"}, rec.seen())
}

func TestRunNowStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	s, err := New(ctx, "*/5 * * * *", []string{"USD/INR"}, rec.analyze)
	require.NoError(t, err)

	s.RunNow()
	assert.Empty(t, rec.seen())
}

func TestNewValidates(t *testing.T) {
	rec := &recorder{}
	_, err := New(context.Background(), "not a cron", []string{"USD/INR"}, rec.analyze)
	assert.Error(t, err)

	_, err = New(context.Background(), "@hourly", []string{"USDINR"}, rec.analyze)
	assert.ErrorIs(t, err, models.ErrInvalidPair)

	_, err = New(context.Background(), "@hourly", nil, rec.analyze)
	assert.Error(t, err)

	_, err = New(context.Background(), "@hourly", []string{"USD/INR"}, nil)
	assert.Error(t, err)
}

func TestScheduleFires(t *testing.T) {
	rec := &recorder{}
	s, err := New(context.Background(), "* * * * * *", []string{"USD/INR"}, rec.analyze)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return len(rec.seen()) > 0 }, 3*time.Second, 50*time.Millisecond)
}
