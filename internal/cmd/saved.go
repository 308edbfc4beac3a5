package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JanConnect/JanConnect-sub001/internal/engagement"
	"github.com/JanConnect/JanConnect-sub001/internal/output"
)

func newSavedCmd(a *app) *cobra.Command {
	list := func(cmd *cobra.Command, args []string) error {
		sess, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		return a.printer.Posts("Saved posts", sess.SavedPosts())
	}

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List and manage bookmarked posts",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarked posts",
		Args:    cobra.NoArgs,
		RunE:    list,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <post-id>",
		Short: "Bookmark a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.locate(ctx, args[0])
			if err != nil {
				return err
			}
			return a.persistResult(sess.SavePost(ctx, args[0]), "Saved %s", args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <post-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a bookmark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			return a.persistResult(sess.UnsavePost(ctx, args[0]), "Removed %s from saved posts", args[0])
		},
	})
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget all supports, escalations, amplifications and bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Forget every interaction of %s?", a.cfg.User.ID))
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("refusing to reset interactions for %s without --yes", a.cfg.User.ID)
				}
			}
			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			return a.persistResult(sess.Reset(ctx), "Interactions reset for %s", a.cfg.User.ID)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}

// persistResult reports err, downgrading persist failures to a warning
func (a *app) persistResult(err error, msg string, args ...interface{}) error {
	switch {
	case errors.Is(err, engagement.ErrPersistFailed):
		a.printer.Warning("change applied but not saved: %v", err)
		return nil
	case err != nil:
		return err
	}
	if a.printer.Format == output.FormatJSON {
		return a.printer.JSON(map[string]interface{}{"message": fmt.Sprintf(msg, args...), "persisted": true})
	}
	a.printer.Success(msg, args...)
	return nil
}
