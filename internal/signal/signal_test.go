package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_Unblocked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliver(cancel)
	assert.Error(t, ctx.Err())
}

func TestDeliver_DeferredUntilOutermostUnblock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	BlockSignals()
	BlockSignals()
	deliver(cancel)
	assert.NoError(t, ctx.Err())

	UnblockSignals()
	assert.NoError(t, ctx.Err(), "still inside the outer section")

	UnblockSignals()
	assert.Error(t, ctx.Err())
}

func TestCritical(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sentinel := errors.New("boom")
	err := Critical(func() error {
		deliver(cancel)
		require.NoError(t, ctx.Err())
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Error(t, ctx.Err())
}

func TestUnblockSignals_Unbalanced(t *testing.T) {
	require.NotPanics(t, UnblockSignals)
}
