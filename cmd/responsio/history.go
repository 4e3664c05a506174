package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/responsio/pkg/adapters/dom"
	"github.com/aretw0/responsio/pkg/adapters/terminal"
	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/history"
	"github.com/aretw0/responsio/pkg/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the persisted conversation",
	Long:  `Show, clear or render the message history kept by the configured storage.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return withHistory(cmd, func(log *history.Log, _ *storage.Store) error {
			entries := log.All()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No messages found.")
				return nil
			}
			if raw {
				for _, e := range entries {
					fmt.Fprintln(out, e)
				}
				return nil
			}
			for _, msg := range terminal.Transcript(entries) {
				fmt.Fprintf(out, "%s: %s\n", msg.Role, msg.Text)
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(cmd, func(log *history.Log, store *storage.Store) error {
			n := log.Len()
			if err := log.Clear(); err != nil {
				return err
			}
			if store.Strategy() != storage.Durable {
				return fmt.Errorf("storage unavailable, nothing was cleared")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d messages\n", n)
			return nil
		})
	},
}

var historyRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the conversation as an HTML page",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		style, _ := cmd.Flags().GetString("style")
		dest, _ := cmd.Flags().GetString("out")

		return withHistory(cmd, func(log *history.Log, _ *storage.Store) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			var stylesheets []string
			if tree, err := s.Tree(); err == nil || errors.Is(err, domain.ErrNoIdentity) {
				stylesheets = tree.Stylesheets(style)
			}

			page, err := dom.Render(title, stylesheets, log.All())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			if dest == "" || dest == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), page)
				return err
			}
			return os.WriteFile(dest, []byte(page), 0644)
		})
	},
}

// withHistory opens the configured storage and hands its history log to fn.
func withHistory(cmd *cobra.Command, fn func(*history.Log, *storage.Store) error) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(s)
	if err != nil {
		return err
	}
	medium, closer, err := openMedium(s.Storage)
	if err != nil {
		return err
	}
	defer closer.Close()

	store := storage.New(cmd.Context(), medium,
		storage.WithNamespace(s.Storage.Namespace),
		storage.WithLogger(logger),
	)
	return fn(history.New(store), store)
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the namespaces held by the storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		medium, closer, err := openMedium(s.Storage)
		if err != nil {
			return err
		}
		defer closer.Close()

		l, ok := medium.(lister)
		if !ok {
			return fmt.Errorf("storage driver %q cannot list namespaces", s.Storage.Driver)
		}
		namespaces, err := l.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list namespaces: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(namespaces) == 0 {
			fmt.Fprintln(out, "No namespaces found.")
			return nil
		}
		for _, ns := range namespaces {
			marker := ""
			if ns == s.Storage.Namespace {
				marker = " (current)"
			}
			fmt.Fprintf(out, "- %s%s\n", ns, marker)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyClearCmd, historyRenderCmd, historyLsCmd)

	historyShowCmd.Flags().Bool("raw", false, "Print the stored markup")
	historyRenderCmd.Flags().String("title", "", "Window title")
	historyRenderCmd.Flags().String("style", domain.DefaultStyle, "Stylesheet style")
	historyRenderCmd.Flags().StringP("out", "o", "", "Write the page to this file instead of stdout")
}
