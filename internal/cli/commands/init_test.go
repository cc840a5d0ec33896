package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/goadmin/internal/cli/config"
)

func runInitCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)
	config.ResetConfig()

	cmd := NewInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	out, err := runInitCommand(t, dir, "--production-url", "https://admin.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "goadmin initialized!")
	assert.Contains(t, out, "goadmin login")

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)

	var got configFile
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, config.EnvDevelopment, got.Environment)
	assert.Equal(t, config.DefaultStateFile, got.StatePath)
	assert.Equal(t, "https://admin.example.com", got.API.BaseURL)
	assert.Equal(t, config.DefaultDevBaseURL, got.API.DevBaseURL)
	assert.Equal(t, "5s", got.API.Timeout)
	assert.Equal(t, config.DefaultUIPort, got.UI.Port)
	assert.Equal(t, "${GOADMIN_SESSION_SECRET}", got.UI.SessionSecret)
	assert.True(t, got.UI.Watch)
}

func TestInit_LoadsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GOADMIN_SESSION_SECRET", "from-env")

	_, err := runInitCommand(t, dir)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(filepath.Join(dir, configFileName), nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDevBaseURL, cfg.ResolveBaseURL())
	assert.Equal(t, filepath.Join(dir, config.DefaultStateFile), cfg.StatePath)
	assert.Equal(t, "from-env", cfg.UI.SessionSecret)
}

func TestInit_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	require.NoError(t, os.WriteFile(path, []byte("environment: production\n"), 0o600))

	_, err := runInitCommand(t, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "environment: production\n", string(data))

	_, err = runInitCommand(t, dir, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dev_base_url")
}
