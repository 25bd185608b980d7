package listing

import (
	"fmt"
	"time"

	v "github.com/coinwatch/topn/pkg/validator"
	"github.com/coinwatch/topn/pkg/value"
)

// Coin is one entry of a ranked listing.
type Coin struct {
	ID                int64    `yaml:"id"`
	Name              string   `yaml:"name"`
	Symbol            string   `yaml:"symbol"`
	Rank              int64    `yaml:"rank"`
	MarketCap         *float64 `yaml:"market_cap,omitempty"`
	MarketCapCurrency string   `yaml:"market_cap_currency,omitempty"`
	ImageURL          string   `yaml:"image_url,omitempty"`
}

func (c Coin) Validate() error {
	return v.All(
		func() error {
			if c.ID <= 0 {
				return fmt.Errorf("coin %q: id must be positive", c.Symbol)
			}
			return nil
		}(),
		v.NotEmpty(c.Symbol, fmt.Sprintf("coin %d symbol", c.ID)),
	)
}

// value maps the coin into a render context entry. market_cap, its
// formatted market_cap_text and image_url are left out when unknown so %IF%
// can test for them.
func (c Coin) value(f formatter) value.Dict {
	d := value.Dict{
		"id":                  value.Int(c.ID),
		"name":                value.String(c.Name),
		"symbol":              value.String(c.Symbol),
		"rank":                value.Int(c.Rank),
		"market_cap_currency": value.String(c.MarketCapCurrency),
	}
	if c.MarketCap != nil {
		d["market_cap"] = value.Float(*c.MarketCap)
		d["market_cap_text"] = value.String(f.marketCap(*c.MarketCap, c.MarketCapCurrency))
	}
	if c.ImageURL != "" {
		d["image_url"] = value.String(c.ImageURL)
	}
	return d
}

func coinList(coins []Coin, f formatter) value.List {
	out := make(value.List, 0, len(coins))
	for _, c := range coins {
		out = append(out, c.value(f))
	}
	return out
}

// Symbols returns the coin symbols in order, for log lines.
func Symbols(coins []Coin) []string {
	out := make([]string, 0, len(coins))
	for _, c := range coins {
		out = append(out, c.Symbol)
	}
	return out
}

// FirstImageURL returns the first non-empty image URL, or "".
func FirstImageURL(coins []Coin) string {
	for _, c := range coins {
		if c.ImageURL != "" {
			return c.ImageURL
		}
	}
	return ""
}

// Snapshot is a persisted top-N listing.
type Snapshot struct {
	TopN      int       `yaml:"top_n"`
	Convert   string    `yaml:"convert"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
	Coins     []Coin    `yaml:"coins"`
}

func (s Snapshot) IDs() []int64 {
	ids := make([]int64, 0, len(s.Coins))
	for _, c := range s.Coins {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s Snapshot) Validate() error {
	return v.All(
		v.Each(s.Coins),
		v.NoDuplicates(s.IDs(), "coin ids"),
	)
}

// RecentPost is a previously published message.
type RecentPost struct {
	CreatedAt      time.Time `yaml:"created_at"`
	Text           string    `yaml:"text"`
	MentionedCoins []Coin    `yaml:"mentioned_coins,omitempty"`
}

func (p RecentPost) value(f formatter) value.Dict {
	return value.Dict{
		"created_at_utc":  value.String(p.CreatedAt.UTC().Format(time.RFC3339)),
		"text":            value.String(p.Text),
		"mentioned_coins": coinList(p.MentionedCoins, f),
	}
}

// History is the log of published posts, in the order they were written.
type History struct {
	Posts []RecentPost `yaml:"posts"`
}
