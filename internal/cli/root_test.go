package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/goadmin/internal/cli/config"
	"github.com/leapstack-labs/goadmin/internal/cli/output"
	"github.com/leapstack-labs/goadmin/internal/cli/testutil"
	backend "github.com/leapstack-labs/goadmin/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfgFile = ""

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{
		"blob", "completion", "init", "login", "logout", "logs", "menus",
		"refresh", "roles", "routes", "ui", "users", "version", "whoami",
	}
	for _, name := range want {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "env", "state", "base-url", "timeout", "public-key", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRoot_LoginFlow(t *testing.T) {
	b := backend.NewBackend(t)
	dir := testutil.SetupTestProject(t, b.URL)
	cfg := filepath.Join(dir, "goadmin.yaml")

	out, errOut, err := execute(t, "--config", cfg, "login", "-u", backend.AdminUsername, "-p", backend.AdminPassword)
	require.NoError(t, err, errOut)
	testutil.AssertContains(t, out, "Logged in as admin")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)

	out, errOut, err = execute(t, "--config", cfg, "-o", "json", "whoami", "--offline")
	require.NoError(t, err, errOut)
	testutil.AssertContains(t, out, `"username": "admin"`)
	testutil.AssertNotContains(t, out, "# ")

	out, _, err = execute(t, "--config", cfg, "routes")
	require.NoError(t, err)
	testutil.AssertContains(t, out, "# Routes (5)")
	testutil.AssertValidMarkdown(t, out)
}

func TestRoot_StateFlag(t *testing.T) {
	b := backend.NewBackend(t)
	dir := testutil.SetupTestProject(t, b.URL)
	cfg := filepath.Join(dir, "goadmin.yaml")
	state := filepath.Join(t.TempDir(), "other.db")

	_, errOut, err := execute(t, "--config", cfg, "--state", state, "login", "-u", "admin", "-p", "123456")
	require.NoError(t, err, errOut)

	// The default session database never saw the login.
	_, _, err = execute(t, "--config", cfg, "whoami", "--offline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, _, err = execute(t, "--config", cfg, "--state", state, "whoami", "--offline")
	assert.NoError(t, err)
}

func TestRoot_Verbose(t *testing.T) {
	b := backend.NewBackend(t)
	dir := testutil.SetupTestProject(t, b.URL)
	cfg := filepath.Join(dir, "goadmin.yaml")

	_, errOut, err := execute(t, "--config", cfg, "-v", "login", "-u", "admin", "-p", "123456")
	require.NoError(t, err)
	assert.Contains(t, errOut, "using config file")
	assert.Contains(t, errOut, "level=DEBUG")

	_, errOut, err = execute(t, "--config", cfg, "logout")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "level=DEBUG")
}

func TestRoot_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(testutil.GetTestdataDir(t), "invalid_output.yaml"), "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRoot_InvalidOutputFlag(t *testing.T) {
	dir := testutil.SetupTestProject(t, "http://127.0.0.1:1")
	_, _, err := execute(t, "--config", filepath.Join(dir, "goadmin.yaml"), "-o", "yaml", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRoot_Completion(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "goadmin")

	_, _, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestRoot_Version(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "goadmin "+Version+"\n", out)
}

func TestGetConfigAndRenderer(t *testing.T) {
	ctx := context.Background()

	cfg := GetConfig(ctx)
	assert.Equal(t, config.DefaultEnv, cfg.Environment)
	assert.Equal(t, config.DefaultDevBaseURL, cfg.ResolveBaseURL())
	assert.Equal(t, output.ModeAuto, GetRenderer(ctx).Mode())

	want := &config.Config{Environment: config.EnvProduction}
	ctx = context.WithValue(ctx, configKey{}, want)
	assert.Same(t, want, GetConfig(ctx))

	r := output.NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, output.ModeJSON)
	ctx = context.WithValue(ctx, rendererKey{}, r)
	assert.Same(t, r, GetRenderer(ctx))
}
