// internal/job/job_test.go
package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesStagesInOrder(t *testing.T) {
	var order []string

	stage := func(name string) Stage {
		return Stage{Name: name, Run: func(context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	j := New("test", []Stage{stage("one"), stage("two"), stage("three")}, nil, nil)

	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, []string{"one", "two", "three"}, order)
}

func TestRunStopsAndCleansUpOnFailure(t *testing.T) {
	boom := errors.New("boom")

	var ran []string
	cleaned := false

	j := New("test", []Stage{
		{Name: "ok", Run: func(context.Context) error {
			ran = append(ran, "ok")
			return nil
		}},
		{Name: "broken", Run: func(context.Context) error {
			return boom
		}},
		{Name: "never", Run: func(context.Context) error {
			ran = append(ran, "never")
			return nil
		}},
	}, func(context.Context) error {
		cleaned = true
		return nil
	}, nil)

	err := j.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"ok"}, ran)
	assert.True(t, cleaned)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cleaned := false

	j := New("test", []Stage{
		{Name: "cancel", Run: func(context.Context) error {
			cancel()
			return nil
		}},
		{Name: "never", Run: func(context.Context) error {
			t.Fatal("stage ran after cancellation")
			return nil
		}},
	}, func(context.Context) error {
		cleaned = true
		return nil
	}, nil)

	err := j.Run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, cleaned)
}

func TestStages(t *testing.T) {
	j := New("test", []Stage{
		{Name: "a"}, {Name: "b"},
	}, nil, nil)

	assert.Equal(t, []string{"a", "b"}, j.Stages())
}
