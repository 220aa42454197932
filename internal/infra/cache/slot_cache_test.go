package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prescripto/prescripto-api/internal/domain/calendar"
)

func TestSlotKeys(t *testing.T) {
	d := calendar.NewDate(2024, time.June, 3)
	assert.Equal(t, "slots:3:2024-06-03", slotKey(3, d))
	assert.Equal(t, "slots:3:2024-06-03:gen", genKey(3, d))
}

func TestParseGen(t *testing.T) {
	gen, err := parseGen(nil)
	assert.NoError(t, err)
	assert.Zero(t, gen)

	gen, err = parseGen("7")
	assert.NoError(t, err)
	assert.Equal(t, uint64(7), gen)

	_, err = parseGen(int64(7))
	assert.Error(t, err)
}

func TestNewRedisClient_RejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("not a url")
	assert.Error(t, err)

	client, err := NewRedisClient("redis://localhost:6379/2")
	assert.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	_ = client.Close()
}

func TestNoopSlotCache_AlwaysMisses(t *testing.T) {
	var c NoopSlotCache
	d := calendar.NewDate(2024, time.June, 3)

	c.Set(context.Background(), 1, d, 0, nil)
	_, _, ok := c.Get(context.Background(), 1, d)

	assert.False(t, ok)
}
