package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingIsNotError(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	base := NewDefaultConfig()
	got, err := LoadFile(base, filepath.Join(t.TempDir(), "codelens.toml"))
	require.NoError(err)
	require.Equal(base, got)
}

func TestLoadFileOverlaysValues(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "codelens.toml")
	toml := `mount_dir = "/srv/app"
bind_addr = ":9000"
auth_enabled = true

[language_binaries]
python = "/opt/pyright"
`
	require.NoError(os.WriteFile(path, []byte(toml), 0o644))

	got, err := LoadFile(NewDefaultConfig(), path)
	require.NoError(err)
	require.Equal("/srv/app", got.MountDir)
	require.Equal(":9000", got.BindAddr)
	require.True(got.AuthEnabled)
	require.Equal("/opt/pyright", got.LanguageBinaries["python"])
}

func TestLoadFileRejectsMalformedTOML(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "codelens.toml")
	require.NoError(os.WriteFile(path, []byte("this = [is not valid"), 0o644))

	_, err := LoadFile(NewDefaultConfig(), path)
	require.Error(err)
}

func TestFromEnvEnablesAuth(t *testing.T) {
	t.Setenv("CODELENS_AUTH_ENABLED", "true")
	t.Setenv("CODELENS_JWT_SECRET", "env-secret")

	got := FromEnv(NewDefaultConfig())
	require.True(t, got.AuthEnabled)
	require.Equal(t, "env-secret", got.JWTSecret)
}

func TestFromEnvLeavesConfigAloneWhenUnset(t *testing.T) {
	t.Setenv("CODELENS_AUTH_ENABLED", "")
	t.Setenv("CODELENS_JWT_SECRET", "")

	base := NewDefaultConfig()
	require.Equal(t, base, FromEnv(base))
}

func TestValidateRequiresSecretWhenAuthEnabled(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	cfg := NewDefaultConfig()
	cfg.AuthEnabled = true
	require.Error(cfg.Validate())

	cfg.JWTSecret = "s3cr3t"
	require.NoError(cfg.Validate())
}
