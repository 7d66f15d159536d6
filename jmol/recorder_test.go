package jmol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuftsBCB/featureviz/pose"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder("rotate x 10; zoom 100;")
	r.Pose = "moveto 0 {1 0 0 10} 100;"

	require.NoError(t, r.ApplyCommands(ctx, pose.Script{"a", "b"}))
	require.NoError(t, r.ApplyBestRotation(ctx))
	assert.Equal(t, pose.Script{"a", "b", BestRotationCommand}, r.Commands())

	o, err := r.CurrentOrientation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotate x 10; zoom 100;", o)

	p, err := r.PoseScript(ctx)
	require.NoError(t, err)
	assert.Equal(t, "moveto 0 {1 0 0 10} 100;", p)

	r.Reset()
	assert.Empty(t, r.Commands())
}

func TestRecorderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRecorder("")
	assert.ErrorIs(t, r.ApplyCommands(ctx, pose.Script{"a"}), context.Canceled)
	_, err := r.CurrentOrientation(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.PoseScript(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.Commands())
}
