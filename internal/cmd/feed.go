package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JanConnect/JanConnect-sub001/internal/config"
	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
	"github.com/JanConnect/JanConnect-sub001/internal/session"
)

type feedFlags struct {
	pages        int
	near         string
	municipality string
	radius       float64
}

func (f *feedFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.pages, "pages", "p", 1, "Number of pages to load")
	cmd.Flags().StringVar(&f.near, "near", "", "Your location as \"lat,lng\" for near_me")
	cmd.Flags().StringVar(&f.municipality, "municipality", "", "Municipality name for my_municipality")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "Radius in km for near_me")
}

func newFeedCmd(a *app) *cobra.Command {
	var f feedFlags
	cmd := &cobra.Command{
		Use:   "feed [mode]",
		Short: "Show the ranked community feed",
		Long: `Show the community feed in one of the filter modes:
  trending_today   highest decayed score first
  near_me          posts within --radius km of --near
  my_municipality  posts whose location names --municipality
  most_escalated   most escalated posts first`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.loadFeed(ctx, args, f)
			if err != nil {
				return err
			}
			return a.printer.Feed(sess.View())
		},
	}
	f.register(cmd)
	return cmd
}

func newTopicsCmd(a *app) *cobra.Command {
	var f feedFlags
	var remote bool
	cmd := &cobra.Command{
		Use:   "topics [mode]",
		Short: "Show trending hashtags",
		Long: `Show the top hashtags of the loaded feed, ranked by the combined
score of their posts. --remote asks the API for its own ranking instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if remote {
				sess, err := a.session(ctx)
				if err != nil {
					return err
				}
				topics, err := sess.RemoteTopics(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch trending topics: %w", err)
				}
				return a.printer.Topics(topics)
			}
			sess, err := a.loadFeed(ctx, args, f)
			if err != nil {
				return err
			}
			return a.printer.Topics(sess.View().Topics)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&remote, "remote", false, "Use the API's topic ranking")
	return cmd
}

// resolveMode picks the mode from args or config. Unknown names are kept
// as-is and show the unfiltered feed.
func (a *app) resolveMode(args []string) models.FilterMode {
	raw := a.cfg.Feed.Mode
	if len(args) > 0 {
		raw = args[0]
	}
	mode, ok := models.ParseFilterMode(raw)
	if !ok {
		a.printer.Warning("unknown mode %q, showing the unfiltered feed", raw)
	}
	return mode
}

// loadFeed refreshes the feed and loads the requested number of pages
func (a *app) loadFeed(ctx context.Context, args []string, f feedFlags) (*session.Session, error) {
	mode := a.resolveMode(args)
	sess, err := a.session(ctx)
	if err != nil {
		return nil, err
	}

	if f.near != "" || f.municipality != "" || f.radius > 0 {
		loc, err := a.cfg.UserLocation()
		if err != nil {
			return nil, err
		}
		if f.near != "" {
			if loc, err = config.ParseLocation(f.near); err != nil {
				return nil, err
			}
		}
		municipality := a.cfg.Feed.Municipality
		if f.municipality != "" {
			municipality = f.municipality
		}
		radius := a.cfg.Feed.RadiusKm
		if f.radius > 0 {
			radius = f.radius
		}
		sess.SetFilterContext(loc, municipality, radius)
	}

	if err := sess.Refresh(ctx, mode); err != nil {
		return nil, err
	}
	for i := 1; i < f.pages; i++ {
		if err := sess.LoadMore(ctx); err != nil {
			if errors.Is(err, feed.ErrNoMore) {
				break
			}
			return nil, err
		}
	}
	return sess, nil
}

// maxLookupPages bounds how far locate pages through the feed
const maxLookupPages = 50

// locate loads pages until postID is in the session
func (a *app) locate(ctx context.Context, postID string) (*session.Session, error) {
	sess, err := a.loadFeed(ctx, nil, feedFlags{pages: 1})
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxLookupPages; i++ {
		if _, ok := sess.Lookup(postID); ok {
			return sess, nil
		}
		if err := sess.LoadMore(ctx); err != nil {
			if errors.Is(err, feed.ErrNoMore) {
				break
			}
			return nil, err
		}
	}
	if _, ok := sess.Lookup(postID); ok {
		return sess, nil
	}
	return nil, fmt.Errorf("post %s not found in the %s feed", postID, sess.View().Mode)
}
