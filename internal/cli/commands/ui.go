package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/goadmin/internal/auth"
	"github.com/leapstack-labs/goadmin/internal/cli/config"
	"github.com/leapstack-labs/goadmin/internal/ui"
	"github.com/leapstack-labs/goadmin/internal/ui/console"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// devSessionSecret signs console cookies when ui.session_secret is unset.
const devSessionSecret = "goadmin-dev-secret-change-in-production" //nolint:gosec

// UIOptions holds options for the ui command.
// The flags feed the ui.* config keys; the fields are only read for help.
type UIOptions struct {
	Port   int
	Watch  bool
	Open   bool
	Secret string
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Serve the web console",
		Long: `Start a local web server hosting the admin console.

Each browser logs in with its own account. The navigation is generated
from the menus the backend grants that account, and every page is
rendered from the admin API. Failed calls, forbidden pages and session
expiry are reported in the browser.

With --watch the config file is reloaded on change, and the console
switches backend without dropping logins.`,
		Example: `  # Serve on the default port
  goadmin ui

  # Serve on a custom port and open the browser
  goadmin ui --port 3000 --open`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", config.DefaultUIPort, "Port to serve on (ui.port)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the config file on change (ui.watch)")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the console in a browser (ui.auto_open)")
	cmd.Flags().StringVar(&opts.Secret, "secret", "", "Cookie signing secret (ui.session_secret)")

	return cmd
}

func runUI(cmd *cobra.Command) error {
	cc := NewCommandContextWithoutBackend(cmd)
	uiCfg := cc.Cfg.GetUIConfig()

	cipher, err := auth.LoadPasswordCipher(cc.Cfg.API.PublicKey)
	if err != nil {
		return err
	}

	secret := uiCfg.SessionSecret
	if secret == "" {
		if cc.Cfg.IsProduction() {
			return fmt.Errorf("ui.session_secret is required in production")
		}
		cc.Logger.Warn("ui.session_secret not set, using the development secret")
		secret = devSessionSecret
	}

	cfgFile := config.GetConfigFileUsed()
	server := ui.NewServer(ui.Config{
		Backend:       backendOf(cc.Cfg),
		Cipher:        cipher,
		Port:          uiCfg.Port,
		Watch:         uiCfg.Watch,
		ConfigFile:    cfgFile,
		Reload:        reloadBackend(cfgFile, cmd.Flags()),
		SessionSecret: secret,
		Logger:        cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d", uiCfg.Port)
	if uiCfg.AutoOpen {
		go openBrowser(url)
	}

	cc.Renderer.Success("Serving the web console on " + url)
	cc.Renderer.Muted("Backend: " + cc.BaseURL())
	cc.Renderer.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(ctxOf(cmd))
	defer cancel()

	return server.Serve(ctx)
}

func backendOf(cfg *config.Config) console.Backend {
	return console.Backend{BaseURL: cfg.ResolveBaseURL(), Timeout: cfg.Timeout()}
}

// reloadBackend re-reads cfgFile with the same env and flag overrides.
func reloadBackend(cfgFile string, flags *pflag.FlagSet) ui.ReloadFunc {
	if cfgFile == "" {
		return nil
	}
	return func() (console.Backend, error) {
		cfg, err := config.LoadConfig(cfgFile, flags)
		if err != nil {
			return console.Backend{}, err
		}
		return backendOf(cfg), nil
	}
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
