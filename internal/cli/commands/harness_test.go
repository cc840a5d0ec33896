package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/goadmin/internal/cli/config"
	"github.com/leapstack-labs/goadmin/internal/testutil"
)

// harness runs commands against a fake backend with a project config in a
// temp directory. The session database survives between runs.
type harness struct {
	t       *testing.T
	backend *testutil.Backend
	dir     string
	cfgFile string
}

func newHarness(t *testing.T, format string) *harness {
	t.Helper()
	backend := testutil.NewBackend(t)
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "goadmin.yaml")

	yaml := strings.Join([]string{
		"environment: development",
		"output: " + format,
		"state_path: state/session.db",
		"api:",
		"  dev_base_url: " + backend.URL,
		"  timeout: 2s",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgFile, []byte(yaml), 0o600))

	t.Cleanup(config.ResetConfig)
	return &harness{t: t, backend: backend, dir: dir, cfgFile: cfgFile}
}

type result struct {
	out    string
	errOut string
	err    error
}

// run executes args with stdin and returns what the command printed.
func (h *harness) run(stdin string, args ...string) result {
	h.t.Helper()
	config.ResetConfig()

	root := &cobra.Command{
		Use:           "goadmin",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.LoadConfig(h.cfgFile, cmd.Flags()); err != nil {
				return err
			}
			cmd.SetContext(config.WithLogger(cmd.Context(), testutil.NewTestLogger(h.t)))
			return nil
		},
	}
	root.PersistentFlags().StringP("output", "o", "", "Output format")
	root.AddCommand(
		NewLoginCommand(),
		NewLogoutCommand(),
		NewWhoamiCommand(),
		NewRefreshCommand(),
		NewUsersCommand(),
		NewRolesCommand(),
		NewMenusCommand(),
		NewLogsCommand(),
		NewRoutesCommand(),
		NewBlobCommand(),
	)

	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

// login signs in with the fake backend's admin account.
func (h *harness) login() {
	h.t.Helper()
	res := h.run("", "login", "-u", testutil.AdminUsername, "-p", testutil.AdminPassword)
	require.NoError(h.t, res.err, res.errOut)
}
