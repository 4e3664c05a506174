package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/responsio"
	"github.com/aretw0/responsio/internal/presentation/tui"
	"github.com/aretw0/responsio/pkg/adapters/terminal"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the service from the terminal",
	Long: `Starts a conversation with the chat service. Each line typed is sent as a
message; "/toggle" mutes or unmutes the window. End the input (Ctrl-D) or
interrupt (Ctrl-C) to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("metrics-addr"); cmd.Flags().Changed("metrics-addr") {
			s.Metrics.Addr = addr
		}
		markdown, _ := cmd.Flags().GetBool("markdown")

		logger, err := newLogger(s)
		if err != nil {
			return err
		}
		tree, err := s.Tree()
		if err != nil && !errors.Is(err, domain.ErrNoIdentity) {
			return err
		}

		medium, closer, err := openMedium(s.Storage)
		if err != nil {
			return err
		}
		defer closer.Close()

		metrics, stopMetrics := startMetrics(s.Metrics.Addr, logger)
		defer stopMetrics()

		termOpts := []terminal.Option{
			terminal.WithInput(cmd.InOrStdin()),
			terminal.WithOutput(cmd.OutOrStdout()),
		}
		if cmd.Flags().Changed("markdown") {
			termOpts = append(termOpts, terminal.WithMarkdown(markdown))
		}
		term := terminal.New(termOpts...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := responsio.New(ctx, tree,
			responsio.WithSurface(term),
			responsio.WithMedium(medium),
			responsio.WithNamespace(s.Storage.Namespace),
			responsio.WithTimeout(s.Timeout),
			responsio.WithLogger(logger),
			responsio.WithMetrics(metrics),
		)
		if err != nil {
			return err
		}

		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(cmd.OutOrStdout(), responsio.Version)
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- client.Run(ctx) }()

		if err := term.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cancel()
			<-done
			return fmt.Errorf("failed to read input: %w", err)
		}
		cancel()
		return <-done
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	chatCmd.Flags().Bool("banner", true, "Print the banner on start")
	chatCmd.Flags().Bool("markdown", true, "Render bot replies as markdown (default: when stdout is a terminal)")
}
