package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tagsearch/internal/actions"
	"github.com/MrSnakeDoc/tagsearch/internal/domain"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches in tag order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(cmd, func(_ context.Context, reg *registry.Registry, _ *actions.Handler) error {
			entries := reg.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved searches")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tQUERY\tSAVED")
			for _, e := range entries {
				saved := e.Record.SavedAt
				if t, err := e.Record.SavedTime(); err == nil {
					saved = humanize.Time(t)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Tag, e.Record.Query, saved)
			}
			return tw.Flush()
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show TAG",
	Short: "Show the query and save time of a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(cmd, func(_ context.Context, reg *registry.Registry, _ *actions.Handler) error {
			e, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", actions.ErrNotFound, args[0])
			}
			menu := make([]string, 0, 3)
			for _, a := range domain.LongPressActions() {
				menu = append(menu, a.String())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tag:     %s\nquery:   %s\ntime:    %s\nactions: %s\n",
				e.Tag, e.Record.Query, e.Record.SavedAt, strings.Join(menu, ", "))
			return nil
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save TAG QUERY...",
	Short: "Save (or overwrite) the query for a tag",
	Long: `Save the query for a tag. Remaining arguments are joined with spaces.
A tag that differs only by case from an existing one updates that entry.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(cmd, func(ctx context.Context, _ *registry.Registry, h *actions.Handler) error {
			e, created, err := h.Save(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			verb := "Updated"
			if created {
				verb = "Saved"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q at %s\n", verb, e.Tag, e.Record.SavedAt)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete TAG",
	Aliases: []string{"rm"},
	Short:   "Delete a saved search",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(cmd, func(ctx context.Context, reg *registry.Registry, h *actions.Handler) error {
			if _, ok := reg.Get(args[0]); !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No saved search %q\n", args[0])
				return nil
			}
			if err := h.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
			return nil
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open TAG",
	Short: "Print the search results URL for a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(cmd, func(_ context.Context, _ *registry.Registry, h *actions.Handler) error {
			url, err := h.Activate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		})
	},
}

var shareCmd = &cobra.Command{
	Use:   "share TAG",
	Short: "Print the share message for a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(cmd, func(_ context.Context, _ *registry.Registry, h *actions.Handler) error {
			msg, err := h.Share(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\n\n%s\n", msg.Subject, msg.Text)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, saveCmd, deleteCmd, openCmd, shareCmd)
}
