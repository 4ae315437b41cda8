package models

import (
	"errors"
	"testing"
	"time"

	"github.com/dyike/MoneyScope/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBuffer(t *testing.T) {
	b := NewProgressBuffer(3)
	for _, s := range Stages {
		assert.Equal(t, consts.State_Pending, b.Status(s))
	}

	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	b.Observe(StageEvent{Stage: StageExchangeRate, Status: consts.State_Running, At: at})
	b.Observe(StageEvent{Stage: StageExchangeRate, Status: consts.State_Finished, At: at})
	b.Observe(StageEvent{Stage: StageNews, Status: consts.State_Running, At: at})
	b.Observe(StageEvent{Stage: StageNews, Status: consts.State_Failed, Err: errors.New("boom"), At: at})

	assert.Equal(t, StageNews, b.Current())
	assert.Equal(t, 1, b.Completed())
	assert.Equal(t, consts.State_Failed, b.Status(StageNews))

	msgs := b.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "10:00:00", msgs[0].Timestamp)
	assert.Equal(t, "Gathering Financial News: failed (boom)", msgs[2].Content)
}
