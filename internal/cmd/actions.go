package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JanConnect/JanConnect-sub001/internal/engagement"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/output"
	"github.com/JanConnect/JanConnect-sub001/internal/session"
)

func newSupportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "support <post-id>",
		Short: "Support a post (+2 score)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAction(cmd.Context(), args[0], engagement.ActionSupport, "Supported",
				func(ctx context.Context, s *session.Session) (*models.Post, error) {
					return s.Support(ctx, args[0])
				})
		},
	}
}

func newEscalateCmd(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "escalate <post-id>",
		Short: "Escalate a post to the authorities",
		Long: `Escalate a post. A post with more than 10 escalations is marked
critical and stays critical.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAction(cmd.Context(), args[0], engagement.ActionEscalate, "Escalated",
				func(ctx context.Context, s *session.Session) (*models.Post, error) {
					return s.Escalate(ctx, args[0], reason)
				})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why the issue needs escalating")
	return cmd
}

func newAmplifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "amplify <post-id>",
		Short: "Amplify a post (+5 score)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAction(cmd.Context(), args[0], engagement.ActionAmplify, "Amplified",
				func(ctx context.Context, s *session.Session) (*models.Post, error) {
					return s.Amplify(ctx, args[0])
				})
		},
	}
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>...",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.locate(ctx, args[0])
			if err != nil {
				return err
			}
			c, err := sess.AddComment(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.printer.Comment(c)
		},
	}
}

// runAction locates the post, applies the action and prints the result.
// Repeats are reported, not treated as failures.
func (a *app) runAction(ctx context.Context, postID string, action engagement.Action, verb string,
	apply func(context.Context, *session.Session) (*models.Post, error)) error {
	sess, err := a.locate(ctx, postID)
	if err != nil {
		return err
	}
	repeat := sess.HasApplied(postID, action)

	post, err := apply(ctx, sess)
	switch {
	case errors.Is(err, engagement.ErrPersistFailed):
		a.printer.Warning("%s applied but not saved: %v", strings.ToLower(verb), err)
	case err != nil:
		return err
	}

	if a.printer.Format != output.FormatJSON {
		if repeat {
			a.printer.Info("Already %s %s", strings.ToLower(verb), postID)
		} else {
			a.printer.Success("%s %s", verb, postID)
		}
	}
	return a.printer.Post(post)
}
