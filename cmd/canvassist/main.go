package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"canvassist/internal/action"
	"canvassist/internal/auth"
	"canvassist/internal/canvas"
	"canvassist/internal/config"
	"canvassist/internal/logging"
	"canvassist/internal/orchestrator"
	"canvassist/internal/permission"
	"canvassist/internal/provider"
)

var (
	version  = "0.1.0"
	cfgFile  string
	model    string
	username string
	password string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "canvassist",
		Short: "Conversational assistant for a shared canvas",
		Long: `Canvassist is a chat loop over a shared canvas of projects, entities,
notes, and charts. It grounds every turn in the current canvas state,
offers each user only the actions their role permits, and asks before
acting when an instruction's target is unclear.`,
		RunE: runApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/canvassist/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model to use")
	rootCmd.Flags().StringVar(&username, "user", "editor", "account to sign in as")
	rootCmd.Flags().StringVar(&password, "password", "", "account password (default accounts use <user>123)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("canvassist version %s\n", version)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List the built-in accounts and their permissions",
		Run: func(cmd *cobra.Command, args []string) {
			for _, role := range []auth.Role{auth.RoleAdmin, auth.RoleEditor, auth.RoleViewer, auth.RoleGuest} {
				perms := auth.RolePermissions(role)
				strs := make([]string, len(perms))
				for i, p := range perms {
					strs[i] = string(p)
				}
				fmt.Printf("%-8s %s\n", role, strings.Join(strs, ", "))
			}
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if model != "" {
		cfg.Model.Name = model
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Configure(logging.ParseLevel(cfg.Logging.Level), os.Stderr)
	if cfg.Logging.File {
		dataDir, err := config.DataDir()
		if err == nil {
			err = os.MkdirAll(dataDir, 0755)
		}
		if err == nil {
			err = logging.EnableFileLogging(dataDir, logging.ParseLevel(cfg.Logging.Level))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		}
		defer logging.Close()
	}

	// Catalog consistency is the one fatal check; everything after
	// startup is recoverable per turn.
	catalog := action.DefaultCatalog()
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("invalid action catalog: %w", err)
	}
	gate := permission.NewGate(catalog.BuildRegistry())

	users := auth.NewMemoryRepository()
	if err := users.SeedDefaults(); err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}
	if password == "" {
		password = username + "123"
	}
	principal, err := users.Authenticate(username, password)
	if err != nil {
		return fmt.Errorf("sign-in failed for %q: %w", username, err)
	}

	store, watcher, err := openStore(cfg)
	if err != nil {
		return err
	}
	if watcher != nil {
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch state file: %w", err)
		}
		defer watcher.Stop()
	}

	ctx := context.Background()
	prov, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer prov.Close()

	var history *orchestrator.HistoryStore
	if cfg.History.Persist {
		dataDir := cfg.History.DataDir
		if dataDir == "" {
			dataDir, err = config.DataDir()
			if err != nil {
				return fmt.Errorf("failed to resolve data directory: %w", err)
			}
		}
		history, err = orchestrator.NewHistoryStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open history store: %w", err)
		}
	}

	orch := orchestrator.New(store, catalog, gate, prov, history, orchestrator.Config{
		HistoryWindow:   cfg.Orchestrator.HistoryWindow,
		DispatchCap:     cfg.Orchestrator.DispatchCap,
		ProviderTimeout: cfg.API.Timeout,
	})

	fmt.Printf("Signed in as %s (%s). Type your instruction, or /quit to exit.\n", principal.Username, principal.Role)
	return repl(ctx, orch, principal)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*canvas.Store, *canvas.Watcher, error) {
	if cfg.State.Path == "" {
		return canvas.NewStore(nil), nil, nil
	}
	store, err := canvas.NewFileStore(cfg.State.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state file: %w", err)
	}
	if !cfg.State.Watch {
		return store, nil, nil
	}
	watcher, err := canvas.NewWatcher(store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create state watcher: %w", err)
	}
	return store, watcher, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.API.Provider {
	case "ollama":
		return provider.NewOllama(cfg)
	default:
		return provider.NewGemini(ctx, cfg)
	}
}

func repl(ctx context.Context, orch *orchestrator.Orchestrator, principal *auth.Principal) error {
	const threadID = "local"
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		out, err := orch.HandleTurn(ctx, orchestrator.Input{
			ThreadID:    threadID,
			Instruction: line,
			Principal:   principal,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		for out.Status == orchestrator.StatusSuspended {
			fmt.Println(out.Interrupt.Content)
			fmt.Print("item id> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			choice := strings.TrimSpace(scanner.Text())
			out, err = orch.Resume(ctx, threadID, choice)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				break
			}
		}
		if err != nil {
			continue
		}
		if out != nil && out.Reply != "" {
			fmt.Println(out.Reply)
		}
	}
}
