package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHookRegistry_RunsInOrderAndStopsOnError(t *testing.T) {
	r := NewHookRegistry[*[]string]()
	boom := errors.New("boom")

	r.On(AfterCreate, func(ctx context.Context, log *[]string) error {
		*log = append(*log, "first")
		return nil
	})
	r.On(AfterCreate, func(ctx context.Context, log *[]string) error {
		*log = append(*log, "second")
		return boom
	})
	r.On(AfterCreate, func(ctx context.Context, log *[]string) error {
		*log = append(*log, "third")
		return nil
	})

	var log []string
	err := r.Run(context.Background(), AfterCreate, &log)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, log)
	assert.NoError(t, r.Run(context.Background(), AfterDelete, &log))
}
