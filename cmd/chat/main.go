package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/chat/agent"
	"github.com/tailored-agentic-units/chat/chat"
	"github.com/tailored-agentic-units/chat/credential"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// flags holds values shared by the root command and its subcommands.
type flags struct {
	configFile   string
	endpoint     string
	apiKey       string
	apiKeyEnv    string
	baseURL      string
	backend      string
	systemPrompt string
	promptDir    string
	showCost     bool
	showProvider bool
	promptKey    bool
	verbose      bool
}

// newRootCmd builds the chat command. extra options are applied after the
// flag-derived ones, which lets tests inject an agent.
func newRootCmd(extra ...chat.Option) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a hosted model from the terminal",
		Long: "chat keeps a conversation with a model@provider endpoint on the Unify router.\n" +
			"Enter `pause` to pause and `quit` to exit.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, f, extra)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "Path to a JSON or YAML config file")
	pf.StringVar(&f.apiKey, "api-key", "", "API key (overrides the environment)")
	pf.StringVar(&f.apiKeyEnv, "api-key-env", "", "Environment variable holding the API key (default UNIFY_KEY)")
	pf.StringVar(&f.baseURL, "base-url", "", "Backend base URL")
	pf.StringVar(&f.backend, "backend", "", fmt.Sprintf("Inference backend %v", agent.Backends()))
	pf.BoolVar(&f.promptKey, "prompt-key", false, "Prompt for the API key when none is configured")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose logging to stderr")

	fl := cmd.Flags()
	fl.StringVarP(&f.endpoint, "endpoint", "e", "", "Endpoint as <model>@<provider> (overrides config)")
	fl.StringVar(&f.systemPrompt, "system-prompt", "", "System prompt sent with every request (overrides config)")
	fl.StringVar(&f.promptDir, "prompt-dir", "", "Directory of system prompt fragments, joined in name order")
	fl.BoolVar(&f.showCost, "show-cost", false, "Print the credits spent on each reply")
	fl.BoolVar(&f.showProvider, "show-provider", false, "Print the provider that served each reply")

	cmd.AddCommand(newCreditsCmd(f))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runChat(cmd *cobra.Command, f *flags, extra []chat.Option) error {
	cfg, err := f.config()
	if err != nil {
		return err
	}
	setupLogging(cmd.ErrOrStderr(), f.verbose)

	opts := []chat.Option{
		chat.WithInput(cmd.InOrStdin()),
		chat.WithOutput(cmd.OutOrStdout()),
		chat.WithErrorOutput(cmd.ErrOrStderr()),
	}
	if f.promptKey {
		opts = append(opts, chat.WithCredentialResolver(f.resolver(cmd, cfg)))
	}
	opts = append(opts, extra...)

	m, err := chat.New(cfg, opts...)
	if err != nil {
		return err
	}
	slog.Debug("session started", "session", m.ID(), "endpoint", m.Endpoint().String(), "backend", m.Agent().Name())

	ctx := cmd.Context()
	loop := cfg.LoopOptions()
	for {
		if err := m.Run(ctx, loop); err != nil {
			return err
		}
		if m.State() != chat.StatePaused {
			return nil
		}
		if err := m.WaitForResume(ctx); err != nil {
			if errors.Is(err, chat.ErrTerminated) {
				return nil
			}
			return err
		}
	}
}

func newCreditsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "Print the remaining credit balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), f.verbose)

			key, err := f.resolver(cmd, cfg).Resolve(cmd.Context())
			if err != nil {
				return &chat.ConfigurationError{Field: "credential", Err: err}
			}

			a, err := agent.New(cmd.Context(), &cfg.Agent, key)
			if err != nil {
				return &chat.ConfigurationError{Field: "backend", Err: err}
			}

			balance, err := a.CreditBalance(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read credit balance: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f credits\n", balance)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chat %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// config loads the config file, if any, and applies flag overrides.
func (f *flags) config() (*chat.Config, error) {
	cfg := chat.DefaultConfig()
	if f.configFile != "" {
		loaded, err := chat.LoadConfig(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	var overrides chat.Config
	overrides.Agent.Endpoint = f.endpoint
	overrides.Agent.Backend.Name = f.backend
	overrides.Agent.Backend.BaseURL = f.baseURL
	overrides.Agent.Backend.APIKey = f.apiKey
	overrides.Agent.Backend.APIKeyEnv = f.apiKeyEnv
	overrides.SystemPrompt = f.systemPrompt
	overrides.PromptDir = f.promptDir
	overrides.ShowCost = f.showCost
	overrides.ShowProvider = f.showProvider
	cfg.Merge(&overrides)

	return &cfg, nil
}

// resolver returns the configured credential chain, extended with an
// interactive prompt when --prompt-key is set.
func (f *flags) resolver(cmd *cobra.Command, cfg *chat.Config) credential.Resolver {
	r := credential.FromConfig(&cfg.Agent.Backend)
	if !f.promptKey {
		return r
	}
	return credential.Chain{r, credential.NewTerminal(os.Stdin, cmd.ErrOrStderr())}
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func execute(cmd *cobra.Command) int {
	// The first interrupt cancels the streaming reply; a second one at the
	// prompt gets the default behavior.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	context.AfterFunc(ctx, stop)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
