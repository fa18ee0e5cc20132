package gateway

import "context"

// mountDirKey is the unexported context key for the per-request mount
// directory override. Using context.Context rather than a package global or
// goroutine-local avoids a well-known footgun: a concurrent
// request for workspace B must never see workspace A's mount directory.
type mountDirKey struct{}

// WithMountDir returns a child context carrying dir as the mount directory
// override for every operation performed with it.
func WithMountDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, mountDirKey{}, dir)
}

// MountDir returns the mount directory override carried on ctx, or
// defaultDir if none was set.
func MountDir(ctx context.Context, defaultDir string) string {
	if dir, ok := ctx.Value(mountDirKey{}).(string); ok && dir != "" {
		return dir
	}
	return defaultDir
}
