package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func executeCLI() error {
	return buildRootCommand().Execute()
}

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "helpline",
		Short: "Crisis-aware emotional support bot with a Discord gateway",
		Long: strings.TrimSpace(`helpline is a conversational support bot: every inbound message passes
through an ordered risk classifier, crisis messages get fixed human-reviewed
responses, and everything else goes to the generative backend with a bounded
conversation history.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newOnboardCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newGatewayCommand())
	root.AddCommand(newResourcesCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func runLegacyWithArgs(args []string, fn func()) error {
	original := os.Args
	os.Args = append([]string{original[0]}, args...)
	defer func() {
		os.Args = original
	}()
	fn()
	return nil
}

func newOnboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "onboard",
		Short:   "Initialize ~/.helpline configuration",
		Example: "  helpline onboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacyWithArgs([]string{"onboard"}, onboard)
		},
	}
}

func newChatCommand() *cobra.Command {
	var (
		message string
		session string
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run a local console session without Discord",
		Long:  "Run an interactive local support session or send a one-shot message.",
		Example: strings.Join([]string{
			"  helpline chat",
			"  helpline chat --message \"мне тревожно\"",
			"  helpline chat --session cli:test",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyArgs := []string{"chat"}
			if debug {
				legacyArgs = append(legacyArgs, "--debug")
			}
			if strings.TrimSpace(message) != "" {
				legacyArgs = append(legacyArgs, "--message", message)
			}
			if strings.TrimSpace(session) != "" {
				legacyArgs = append(legacyArgs, "--session", session)
			}
			return runLegacyWithArgs(legacyArgs, chatCmd)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "One-shot message to send")
	cmd.Flags().StringVarP(&session, "session", "s", "cli:default", "Conversation key for continuity")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

func newGatewayCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "gateway",
		Short:   "Run the Discord gateway and dialog loop",
		Long:    "Start the Discord transport, the risk-aware dialog loop, and the audit sweeper.",
		Example: "  helpline gateway --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			legacyArgs := []string{"gateway"}
			if debug {
				legacyArgs = append(legacyArgs, "--debug")
			}
			return runLegacyWithArgs(legacyArgs, gatewayCmd)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "resources",
		Short:   "Print the emergency contact resources card",
		Example: "  helpline resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacyWithArgs([]string{"resources"}, resourcesCmd)
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show configuration and runtime readiness",
		Example: "  helpline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacyWithArgs([]string{"status"}, statusCmd)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Show build/version metadata",
		Example: "  helpline version",
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion()
			return nil
		},
	}
}
