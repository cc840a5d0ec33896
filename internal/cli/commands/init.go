package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/goadmin/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configFileName is the file written by init.
const configFileName = "goadmin.yaml"

// InitOptions holds options for the init command.
type InitOptions struct {
	Force      bool
	BaseURL    string
	DevBaseURL string
	PublicKey  string
}

// configFile mirrors the keys of goadmin.yaml that init writes.
type configFile struct {
	Environment string        `yaml:"environment"`
	StatePath   string        `yaml:"state_path"`
	Output      string        `yaml:"output"`
	API         configFileAPI `yaml:"api"`
	UI          configFileUI  `yaml:"ui"`
}

type configFileAPI struct {
	BaseURL    string `yaml:"base_url,omitempty"`
	DevBaseURL string `yaml:"dev_base_url"`
	Timeout    string `yaml:"timeout"`
	PublicKey  string `yaml:"public_key,omitempty"`
}

type configFileUI struct {
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
	Watch         bool   `yaml:"watch"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default goadmin.yaml",
		Long: `Write a goadmin.yaml with the default settings.

The file selects the backend per environment (development uses
api.dev_base_url, production uses api.base_url), the request timeout, the
session database and the console port. Every key can also be set with a
GOADMIN_* environment variable.`,
		Example: `  # Initialize in current directory
  goadmin init

  # Point production at a deployed backend
  goadmin init --production-url https://admin.example.com

  # Force overwrite existing config
  goadmin init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")
	cmd.Flags().StringVar(&opts.BaseURL, "production-url", "", "Production backend URL (api.base_url)")
	cmd.Flags().StringVar(&opts.DevBaseURL, "development-url", config.DefaultDevBaseURL, "Development backend URL (api.dev_base_url)")
	cmd.Flags().StringVar(&opts.PublicKey, "key-file", "", "PEM public key used to encrypt passwords (api.public_key)")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *InitOptions) error {
	r := NewCommandContextWithoutBackend(cmd).Renderer

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configFileName)
	}

	data, err := yaml.Marshal(configFile{
		Environment: config.DefaultEnv,
		StatePath:   config.DefaultStateFile,
		Output:      config.DefaultOutput,
		API: configFileAPI{
			BaseURL:    opts.BaseURL,
			DevBaseURL: opts.DevBaseURL,
			Timeout:    config.DefaultTimeout.String(),
			PublicKey:  opts.PublicKey,
		},
		UI: configFileUI{
			Port:          config.DefaultUIPort,
			SessionSecret: "${GOADMIN_SESSION_SECRET}",
			Watch:         true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	r.StatusLine(configPath, "success", "")
	r.Println("")
	r.Success("goadmin initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  goadmin login     Sign in to the backend")
	r.Println("  goadmin routes    Show the routes generated for your menus")
	r.Println("  goadmin ui        Open the web console")

	return nil
}
