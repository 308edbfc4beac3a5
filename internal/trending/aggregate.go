// Package trending derives the trending-topics list from a set of posts.
package trending

import (
	"sort"
	"strings"

	"github.com/JanConnect/JanConnect-sub001/internal/models"
)

// MaxTopics is the number of topics Aggregate returns at most
const MaxTopics = 10

// Aggregate builds the trending topics for posts.
//
// Each post adds 1 to the count of every distinct hashtag it carries and adds
// its full TrendingScore to each of them. Topics are ordered by aggregate score
// descending. Ties keep the order in which hashtags were first seen.
// Callers must refresh TrendingScore before aggregating.
func Aggregate(posts []*models.Post) []models.TrendingTopic {
	index := make(map[string]int)
	topics := make([]models.TrendingTopic, 0)

	for _, post := range posts {
		if post == nil {
			continue
		}
		seen := make(map[string]bool, len(post.Hashtags))
		for _, tag := range post.Hashtags {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true

			i, ok := index[tag]
			if !ok {
				i = len(topics)
				index[tag] = i
				topics = append(topics, models.TrendingTopic{Hashtag: tag})
			}
			topics[i].PostCount++
			topics[i].AggregateScore += post.TrendingScore
		}
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].AggregateScore > topics[j].AggregateScore
	})

	if len(topics) > MaxTopics {
		topics = topics[:MaxTopics]
	}
	return topics
}
