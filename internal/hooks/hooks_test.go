package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesInRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		r.Register(DeployFinished, name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, r.Run(context.Background(), DeployFinished))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRunStopsOnFirstError(t *testing.T) {
	r := NewRegistry(nil)
	boom := errors.New("boom")

	var ran []string
	r.Register(DeployFinished, "ok", func(context.Context) error {
		ran = append(ran, "ok")
		return nil
	})
	r.Register(DeployFinished, "fails", func(context.Context) error {
		ran = append(ran, "fails")
		return boom
	})
	r.Register(DeployFinished, "never", func(context.Context) error {
		ran = append(ran, "never")
		return nil
	})

	err := r.Run(context.Background(), DeployFinished)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails")
	assert.Contains(t, err.Error(), DeployFinished)
	assert.Equal(t, []string{"ok", "fails"}, ran)
}

func TestRunUnknownEventIsNoop(t *testing.T) {
	r := NewRegistry(nil)
	assert.NoError(t, r.Run(context.Background(), "deploy:rollback"))
}

func TestEventsSorted(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(DeployFinished, "notify", func(context.Context) error { return nil })
	r.Register(DeployStarting, "check", func(context.Context) error { return nil })

	// Lexicographic, not registration or lifecycle order.
	assert.Equal(t, []string{DeployFinished, DeployStarting}, r.Events())
}
