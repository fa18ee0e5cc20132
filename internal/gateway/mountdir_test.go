package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMountDirDefaultsWhenUnset(t *testing.T) {
	t.Parallel()
	require.Equal(t, "/mnt/workspace", MountDir(context.Background(), "/mnt/workspace"))
}

func TestMountDirOverride(t *testing.T) {
	t.Parallel()
	ctx := WithMountDir(context.Background(), "/mnt/other")
	require.Equal(t, "/mnt/other", MountDir(ctx, "/mnt/workspace"))
}

func TestMountDirIgnoresEmptyOverride(t *testing.T) {
	t.Parallel()
	ctx := WithMountDir(context.Background(), "")
	require.Equal(t, "/mnt/workspace", MountDir(ctx, "/mnt/workspace"))
}
