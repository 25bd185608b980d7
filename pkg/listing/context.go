package listing

import (
	"sort"
	"time"

	"github.com/coinwatch/topn/pkg/value"
)

const (
	DefaultProjectName  = "coinmarketcap_top100_bot"
	DefaultHistoryLimit = 3
)

// Params is everything the render context is assembled from.
type Params struct {
	ProjectName string
	TopN        int
	Convert     string
	// Now is the render timestamp. Zero means time.Now.
	Now         time.Time
	NewCoins    []Coin
	ExitedCoins []Coin
	History     History
	// HistoryLimit caps recent_posts. Zero means DefaultHistoryLimit.
	HistoryLimit int
	// Locale is the BCP 47 tag market_cap_text is formatted for.
	Locale string
}

// BuildContext assembles the root mapping templates are rendered against.
func BuildContext(p Params) value.Dict {
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	name := p.ProjectName
	if name == "" {
		name = DefaultProjectName
	}
	limit := p.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	f := newFormatter(p.Locale)

	root := value.Dict{
		"project_name":  value.String(name),
		"timestamp_utc": value.String(now.UTC().Format(time.RFC3339)),
		"top_n":         value.Int(int64(p.TopN)),
		"convert":       value.String(p.Convert),
		"new_coins":     coinList(p.NewCoins, f),
	}
	// An empty sequence is truthy, so optional sections are only present
	// when they have entries.
	if len(p.ExitedCoins) > 0 {
		root["exited_coins"] = coinList(p.ExitedCoins, f)
	}
	// Distinct from the per-coin image_url key.
	if url := FirstImageURL(p.NewCoins); url != "" {
		root["first_image_url"] = value.String(url)
	}
	if posts := RecentPosts(p.History, limit); len(posts) > 0 {
		recent := make(value.List, 0, len(posts))
		for _, post := range posts {
			recent = append(recent, post.value(f))
		}
		root["recent_posts"] = recent
	}
	return root
}

// RecentPosts returns at most limit posts, newest first.
func RecentPosts(h History, limit int) []RecentPost {
	posts := make([]RecentPost, len(h.Posts))
	copy(posts, h.Posts)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}
