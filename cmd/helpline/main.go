package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dotsetgreg/helpline/pkg/agent"
	"github.com/dotsetgreg/helpline/pkg/audit"
	"github.com/dotsetgreg/helpline/pkg/bus"
	"github.com/dotsetgreg/helpline/pkg/channels"
	"github.com/dotsetgreg/helpline/pkg/config"
	"github.com/dotsetgreg/helpline/pkg/logger"
	"github.com/dotsetgreg/helpline/pkg/providers"
	"github.com/dotsetgreg/helpline/pkg/risk"
	"github.com/joho/godotenv"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

const appName = "helpline"

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, formatVersion())
	if buildTime != "" {
		fmt.Printf("  Build: %s\n", buildTime)
	}
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	fmt.Printf("  Go: %s\n", goVer)
}

func main() {
	if err := executeCLI(); err != nil {
		os.Exit(1)
	}
}

func getConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".helpline", "config.json")
}

func loadConfig() (*config.Config, error) {
	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	return config.LoadConfig(getConfigPath())
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// validateRuntimeConfig refuses to start without working credentials: a
// support bot that silently runs without its backend would fail users at
// the worst possible moment.
func validateRuntimeConfig(cfg *config.Config, requireDiscord bool) error {
	configPath := getConfigPath()
	if err := providers.ValidateProviderConfig(cfg); err != nil {
		return fmt.Errorf("%w (set GIGACHAT_AUTH_KEY or GIGACHAT_CLIENT_ID/GIGACHAT_CLIENT_SECRET, or edit %s)", err, configPath)
	}
	if requireDiscord && strings.TrimSpace(cfg.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required in %s or HELPLINE_CHANNELS_DISCORD_TOKEN", configPath)
	}
	return nil
}

func onboard() {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s\n", configPath)
		fmt.Print("Overwrite? (y/n): ")
		reader := bufio.NewReader(os.Stdin)
		response, readErr := reader.ReadString('\n')
		if readErr != nil {
			fmt.Printf("Error reading input: %v\n", readErr)
			fmt.Println("Aborted.")
			return
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Println("Aborted.")
			return
		}
	}

	if err := config.SaveConfig(configPath, config.DefaultConfig()); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s is ready!\n", appName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add GigaChat credentials to", configPath)
	fmt.Println("     (auth_key, or client_id + client_secret)")
	fmt.Println("  2. (Gateway mode) Add your Discord bot token to channels.discord.token")
	fmt.Println("  3. Chat locally: helpline chat")
	fmt.Println("  4. Run gateway: helpline gateway")
	fmt.Println("  5. Check readiness: helpline status")
}

func newAuditStore(cfg *config.Config) (*audit.Store, *audit.Sweeper) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}

	store, err := audit.NewStore(expandHome(cfg.Audit.Path))
	if err != nil {
		fmt.Printf("Warning: audit log disabled: %v\n", err)
		return nil, nil
	}

	retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
	sweeper, err := audit.NewSweeper(store, cfg.Audit.SweepSchedule, retention)
	if err != nil {
		fmt.Printf("Warning: audit sweep disabled: %v\n", err)
		return store, nil
	}
	return store, sweeper
}

func gatewayCmd() {
	args := os.Args[2:]
	for _, arg := range args {
		if arg == "--debug" || arg == "-d" {
			logger.SetLevel(logger.DEBUG)
			fmt.Println("Debug mode enabled")
			break
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := validateRuntimeConfig(cfg, true); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		os.Exit(1)
	}

	provider, err := providers.CreateProvider(cfg)
	if err != nil {
		fmt.Printf("Error creating provider: %v\n", err)
		os.Exit(1)
	}

	msgBus := bus.NewMessageBus()
	auditStore, sweeper := newAuditStore(cfg)

	loop, err := agent.NewLoop(cfg, msgBus, provider, auditStore)
	if err != nil {
		fmt.Printf("Error initializing dialog loop: %v\n", err)
		os.Exit(1)
	}

	channelManager, err := channels.NewManager(cfg, msgBus)
	if err != nil {
		fmt.Printf("Error creating channel manager: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Channels enabled: %s\n", strings.Join(channelManager.GetEnabledChannels(), ", "))
	fmt.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := channelManager.StartAll(ctx); err != nil {
		fmt.Printf("Error starting channels: %v\n", err)
		cancel()
		os.Exit(1)
	}

	if sweeper != nil {
		go sweeper.Run(ctx)
	}
	go loop.Run(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan

	fmt.Println("\nShutting down...")
	cancel()
	loop.Stop()
	channelManager.StopAll(context.Background())
	if auditStore != nil {
		auditStore.Close()
	}
	fmt.Println("Gateway stopped")
}

func chatCmd() {
	message := ""
	sessionKey := "cli:default"

	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--debug", "-d":
			logger.SetLevel(logger.DEBUG)
			fmt.Println("Debug mode enabled")
		case "-m", "--message":
			if i+1 < len(args) {
				message = args[i+1]
				i++
			}
		case "-s", "--session":
			if i+1 < len(args) {
				sessionKey = args[i+1]
				i++
			}
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := validateRuntimeConfig(cfg, false); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		os.Exit(1)
	}

	provider, err := providers.CreateProvider(cfg)
	if err != nil {
		fmt.Printf("Error creating provider: %v\n", err)
		os.Exit(1)
	}

	loop, err := agent.NewLoop(cfg, bus.NewMessageBus(), provider, nil)
	if err != nil {
		fmt.Printf("Error initializing dialog loop: %v\n", err)
		os.Exit(1)
	}

	if message != "" {
		printReplies(loop.ProcessDirect(context.Background(), message, sessionKey))
		return
	}

	fmt.Printf("%s Interactive mode (Ctrl+C to exit)\n\n", appName)
	interactiveMode(loop, sessionKey)
}

func printReplies(replies []agent.Reply) {
	for _, reply := range replies {
		fmt.Printf("\n%s %s\n", appName, reply.Content)
	}
	fmt.Println()
}

func interactiveMode(loop *agent.Loop, sessionKey string) {
	prompt := fmt.Sprintf("%s You: ", appName)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".helpline_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(loop, sessionKey)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		printReplies(loop.ProcessDirect(context.Background(), input, sessionKey))
	}
}

func simpleInteractiveMode(loop *agent.Loop, sessionKey string) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s You: ", appName)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		printReplies(loop.ProcessDirect(context.Background(), input, sessionKey))
	}
}

func resourcesCmd() {
	fmt.Println(risk.ResourcesCard)
}

func statusCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}

	configPath := getConfigPath()

	fmt.Printf("%s Status\n", appName)
	fmt.Printf("Version: %s\n", formatVersion())
	fmt.Println()

	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("Config:", configPath, "ok")
	} else {
		fmt.Println("Config:", configPath, "missing")
	}

	status := func(enabled bool) string {
		if enabled {
			return "ok"
		}
		return "not set"
	}

	backendReady := providers.ValidateProviderConfig(cfg) == nil
	discordReady := strings.TrimSpace(cfg.Channels.Discord.Token) != ""

	fmt.Printf("Model: %s\n", cfg.Providers.GigaChat.Model)
	fmt.Println("GigaChat credentials:", status(backendReady))
	fmt.Println("Discord token:", status(discordReady))
	fmt.Println("Chat ready:", status(backendReady))
	fmt.Println("Gateway ready:", status(backendReady && discordReady))

	if cfg.Audit.Enabled {
		fmt.Printf("Audit log: %s (retention %d days)\n", expandHome(cfg.Audit.Path), cfg.Audit.RetentionDays)
	} else {
		fmt.Println("Audit log: disabled")
	}
}
