// Package output renders CLI results as colored text, aligned tables or JSON.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"

	"github.com/JanConnect/JanConnect-sub001/internal/feed"
	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format represents the output format type
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatText  Format = "text"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatText, "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or table)", s)
}

// Printer writes results to Out in Format
type Printer struct {
	Format Format
	Out    io.Writer
	Err    io.Writer // warnings only, keeps JSON on Out parseable
	Now    func() time.Time
}

// New creates a printer
func New(format Format, out io.Writer) *Printer {
	return &Printer{Format: format, Out: out, Err: os.Stderr, Now: time.Now}
}

// JSON writes v as indented JSON regardless of format
func (p *Printer) JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

// Feed prints a rendered feed
func (p *Printer) Feed(v feed.View) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(v)
	case FormatTable:
		rows := make([][]string, 0, len(v.Posts))
		for i, post := range v.Posts {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				post.ID,
				fmt.Sprintf("%d", post.TrendingScore),
				string(post.Urgency),
				string(post.Status),
				post.Location.Name,
				truncate(post.Caption, 48),
			})
		}
		return p.table([]string{"#", "ID", "SCORE", "URGENCY", "STATUS", "LOCATION", "CAPTION"}, rows)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	bold.Fprintf(p.Out, "%s feed", modeLabel(v.Mode))
	dim.Fprintf(p.Out, "  (%d loaded, page %d", v.Loaded, v.Page)
	if v.HasMore {
		dim.Fprint(p.Out, ", more available")
	}
	dim.Fprintln(p.Out, ")")
	if v.Err != "" {
		color.New(color.FgRed).Fprintf(p.Out, "last fetch failed: %s\n", v.Err)
	}
	if len(v.Posts) == 0 {
		dim.Fprintln(p.Out, "No posts.")
	}
	for i, post := range v.Posts {
		p.postText(i+1, post)
	}
	if len(v.Topics) > 0 {
		fmt.Fprintln(p.Out)
		return p.Topics(v.Topics)
	}
	return nil
}

func (p *Printer) postText(n int, post *models.Post) {
	fmt.Fprintf(p.Out, "%2d. ", n)
	color.New(color.FgCyan, color.Bold).Fprint(p.Out, post.ID)
	fmt.Fprintf(p.Out, "  score %d  ", post.TrendingScore)
	urgencyColor(post.Urgency).Fprint(p.Out, post.Urgency)
	fmt.Fprintf(p.Out, "  %s\n", post.Status)

	fmt.Fprintf(p.Out, "    %s\n", post.Caption)
	meta := []string{}
	if post.Location.Name != "" {
		meta = append(meta, post.Location.Name)
	}
	if post.Author != "" {
		meta = append(meta, "by "+post.Author)
	}
	meta = append(meta, humanizeAge(p.Now().Sub(post.CreatedAt)))
	color.New(color.Faint).Fprintf(p.Out, "    %s\n", strings.Join(meta, " · "))

	s := post.Stats
	fmt.Fprintf(p.Out, "    ▲ %d  💬 %d  ↗ %d  👁 %d  ⚠ %d", s.Supports, s.Comments, s.Shares, s.Views, s.Escalations)
	if post.Amplifications > 0 {
		fmt.Fprintf(p.Out, "  📣 %d", post.Amplifications)
	}
	fmt.Fprintln(p.Out)
	if len(post.Hashtags) > 0 {
		tags := make([]string, 0, len(post.Hashtags))
		for _, t := range post.Hashtags {
			tags = append(tags, "#"+t)
		}
		color.New(color.FgBlue).Fprintf(p.Out, "    %s\n", strings.Join(tags, " "))
	}
}

// Topics prints trending topics
func (p *Printer) Topics(topics []models.TrendingTopic) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(topics)
	case FormatTable:
		rows := make([][]string, 0, len(topics))
		for i, t := range topics {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), "#" + t.Hashtag, fmt.Sprintf("%d", t.PostCount), fmt.Sprintf("%d", t.AggregateScore)})
		}
		return p.table([]string{"#", "HASHTAG", "POSTS", "SCORE"}, rows)
	}

	color.New(color.Bold).Fprintln(p.Out, "Trending topics")
	if len(topics) == 0 {
		color.New(color.Faint).Fprintln(p.Out, "None yet.")
	}
	for i, t := range topics {
		fmt.Fprintf(p.Out, "%2d. ", i+1)
		color.New(color.FgBlue).Fprintf(p.Out, "#%s", t.Hashtag)
		fmt.Fprintf(p.Out, "  %d posts, score %d\n", t.PostCount, t.AggregateScore)
	}
	return nil
}

// Post prints a single post
func (p *Printer) Post(post *models.Post) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(post)
	case FormatTable:
		return p.table([]string{"FIELD", "VALUE"}, [][]string{
			{"id", post.ID},
			{"score", fmt.Sprintf("%d", post.TrendingScore)},
			{"supports", fmt.Sprintf("%d", post.Stats.Supports)},
			{"escalations", fmt.Sprintf("%d", post.Stats.Escalations)},
			{"amplifications", fmt.Sprintf("%d", post.Amplifications)},
			{"comments", fmt.Sprintf("%d", post.Stats.Comments)},
			{"urgency", string(post.Urgency)},
		})
	}
	p.postText(1, post)
	return nil
}

// Posts prints a list of posts such as saved bookmarks
func (p *Printer) Posts(title string, posts []models.Post) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(posts)
	case FormatTable:
		rows := make([][]string, 0, len(posts))
		for _, post := range posts {
			rows = append(rows, []string{post.ID, string(post.Status), post.Location.Name, truncate(post.Caption, 48)})
		}
		return p.table([]string{"ID", "STATUS", "LOCATION", "CAPTION"}, rows)
	}

	color.New(color.Bold).Fprintln(p.Out, title)
	if len(posts) == 0 {
		color.New(color.Faint).Fprintln(p.Out, "None.")
	}
	for i := range posts {
		p.postText(i+1, &posts[i])
	}
	return nil
}

// Leaderboard prints leaderboard entries
func (p *Printer) Leaderboard(entries []models.LeaderboardEntry) error {
	switch p.Format {
	case FormatJSON:
		return p.JSON(entries)
	case FormatText, FormatTable:
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			name := e.Name
			if name == "" {
				name = e.UserID
			}
			rows = append(rows, []string{fmt.Sprintf("%d", e.Rank), name, fmt.Sprintf("%d", e.Points)})
		}
		return p.table([]string{"RANK", "NAME", "POINTS"}, rows)
	}
	return nil
}

// Comment prints a newly created comment
func (p *Printer) Comment(c *models.Comment) error {
	if p.Format == FormatJSON {
		return p.JSON(c)
	}
	p.Success("Comment %s added to %s", c.ID, c.PostID)
	return nil
}

// Success prints a success message
func (p *Printer) Success(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(p.Out, msg+"\n", args...)
}

// Info prints an info message
func (p *Printer) Info(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(p.Out, msg+"\n", args...)
}

// Warning prints a warning message
func (p *Printer) Warning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(p.Err, "Warning: "+msg+"\n", args...)
}

func (p *Printer) table(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func modeLabel(m models.FilterMode) string {
	switch m {
	case models.FilterTrendingToday:
		return "Trending today"
	case models.FilterNearMe:
		return "Near me"
	case models.FilterMyMunicipality:
		return "My municipality"
	case models.FilterMostEscalated:
		return "Most escalated"
	}
	return "Unfiltered"
}

func urgencyColor(u models.Urgency) *color.Color {
	switch u {
	case models.UrgencyCritical:
		return color.New(color.FgRed, color.Bold)
	case models.UrgencyModerate:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgGreen)
}

func humanizeAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
