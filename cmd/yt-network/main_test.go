package main

import (
	"context"
	"testing"

	"yt-network-go/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"YOUTUBE_API_KEY", "YT_API_KEY", "YT_NETWORK_API_KEYS"} {
		t.Setenv(k, "")
	}
}

func TestExecuteWithoutCredentialExitsNonzero(t *testing.T) {
	clearKeys(t)
	dir := t.TempDir()
	code := execute(context.Background(), []string{"--video", "abc", "--outdir", dir, "--config", dir})
	assert.Equal(t, exitNoCredentials, code)
}

func TestExecuteRejectsUnknownFlag(t *testing.T) {
	assert.Equal(t, exitUsage, execute(context.Background(), []string{"--nope"}))
}

func TestChangedFlagsOverrideEnv(t *testing.T) {
	clearKeys(t)
	dir := t.TempDir()
	t.Setenv("YT_NETWORK_OUTDIR", "from-env")
	t.Setenv("YT_NETWORK_TOP_K", "9")

	v := viper.New()
	code := 0
	cmd := newRootCommand(v, &code)
	cmd.SetArgs([]string{"--config", dir, "--mode", "search", "--query", "luta", "--replies", "--top-k", "3"})
	require.NoError(t, cmd.Execute())

	cfg := config.AppConfig
	assert.Equal(t, exitNoCredentials, code)
	assert.Equal(t, "search", cfg.Mode)
	assert.Equal(t, "luta", cfg.Query)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, "from-env", cfg.OutDir)
	require.NotNil(t, cfg.CollectReplies)
	assert.True(t, *cfg.CollectReplies)
}

func TestAPIKeyFlagReplacesEnv(t *testing.T) {
	clearKeys(t)
	t.Setenv("YOUTUBE_API_KEY", "env-key")
	dir := t.TempDir()

	v := viper.New()
	code := 0
	cmd := newRootCommand(v, &code)
	// replies mode without video ids stops before any request
	cmd.SetArgs([]string{"--config", dir, "--outdir", dir, "--api-key", "a,b", "--api-key", "c"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, exitOK, code)
	assert.Equal(t, []string{"a", "b", "c"}, config.AppConfig.APIKeysList())
}
