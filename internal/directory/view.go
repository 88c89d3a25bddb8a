// Package directory builds the paginated show listing: per-show vote
// aggregates, the per-user detail map, and the global stats block. The
// builder is a pure function over rows the handler fetches, so slicing,
// averaging and the inclusion rules are testable without a database.
package directory

import (
	"fmt"
	"sort"
	"time"

	"github.com/moviecircle/backend/internal/apperr"
	"github.com/moviecircle/backend/internal/reconcile"
	"github.com/moviecircle/backend/internal/repository"
)

// minQueryLen is the shortest accepted filter string.
const minQueryLen = 4

// Params are the listing inputs after JSON binding.
type Params struct {
	Query    string
	Limit    int
	Page     int // 1-indexed
	LazyLoad bool
}

// Normalize validates pagination and applies the filter-length rule: a
// too-short filter is an error on page 1, and silently degrades to "no
// filter" on later pages because the error was already surfaced when the
// user started paging.
func (p *Params) Normalize() error {
	if p.Limit <= 0 {
		return apperr.New(apperr.KindValidation, "limit must be positive")
	}
	if p.Page <= 0 {
		return apperr.New(apperr.KindValidation, "current page must be positive")
	}
	if p.Query != "" && len(p.Query) < minQueryLen {
		if p.Page == 1 {
			return apperr.New(apperr.KindValidation, "Query String too short")
		}
		p.Query = ""
	}
	return nil
}

// VoteDetail is one user's vote as rendered in a show's detail map.
type VoteDetail struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"us_username"`
	Name        string    `json:"us_name"`
	Score       string    `json:"us_vote"`
	Episode     int       `json:"episode"`
	Season      int       `json:"season"`
	Comment     string    `json:"comment"`
	NowWatching bool      `json:"now_watching"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// ShowItem is one show in the listing with its aggregates attached.
type ShowItem struct {
	ID          uint64                `json:"id"`
	Title       string                `json:"title"`
	Media       string                `json:"media"`
	Type        string                `json:"type"`
	TvshowType  string                `json:"tvshow_type"`
	SerieSeason int                   `json:"serie_season"`
	Miniseries  bool                  `json:"miniseries"`
	Link        string                `json:"link"`
	Poster      string                `json:"poster"`
	Username    string                `json:"username"`
	Name        string                `json:"name"`
	Created     time.Time             `json:"created"`
	AvgScore    string                `json:"avg_vote"`
	Votes       map[string]VoteDetail `json:"u_v_dict"`
}

// Stats is the global block accompanying a listing page. Movies and Series
// count over the filtered set; Total is the filtered match count.
type Stats struct {
	Movies int `json:"movies"`
	Series int `json:"series"`
	Total  int `json:"total"`
}

// Page is a rendered listing page.
type Page struct {
	Items       []ShowItem
	HasMore     bool
	Stats       Stats
	Leaderboard []repository.LeaderboardEntry
}

// ShowWithVotes pairs a show row with every vote on it.
type ShowWithVotes struct {
	Show  repository.Show
	Votes []repository.Vote
}

// Build renders a listing page. shows must already be filtered by the
// normalized query and sorted newest first; typeCounts covers the same
// filtered set; leaderboard covers all votes unfiltered.
func Build(shows []ShowWithVotes, typeCounts map[string]int, leaderboard []repository.LeaderboardEntry, p Params) Page {
	total := len(shows)

	var window []ShowWithVotes
	hasMore := false
	if p.LazyLoad {
		lower := p.Limit * (p.Page - 1)
		upper := p.Limit * p.Page
		hasMore = total > upper
		if lower > total {
			lower = total
		}
		if upper > total {
			upper = total
		}
		window = shows[lower:upper]
	} else {
		// Full-list mode: no slicing, and hasMore is forced false.
		window = shows
	}

	items := make([]ShowItem, 0, len(window))
	seen := make(map[uint64]bool, len(window))
	for _, sv := range window {
		items = append(items, buildItem(sv))
		seen[sv.Show.ID] = true
	}

	// Page 1 with no filter always surfaces shows somebody is actively
	// watching, even when they fall outside the slice window.
	if p.LazyLoad && p.Page == 1 && p.Query == "" {
		for _, sv := range shows {
			if seen[sv.Show.ID] || !anyWatching(sv.Votes) {
				continue
			}
			items = append(items, buildItem(sv))
			seen[sv.Show.ID] = true
		}
	}

	// Defensive copy sorted by count descending, name ascending on ties.
	lb := make([]repository.LeaderboardEntry, len(leaderboard))
	copy(lb, leaderboard)
	sort.SliceStable(lb, func(i, j int) bool {
		if lb[i].Count != lb[j].Count {
			return lb[i].Count > lb[j].Count
		}
		return lb[i].Name < lb[j].Name
	})

	return Page{
		Items:   items,
		HasMore: hasMore,
		Stats: Stats{
			Movies: typeCounts["movie"],
			Series: typeCounts["serie"],
			Total:  total,
		},
		Leaderboard: lb,
	}
}

func anyWatching(votes []repository.Vote) bool {
	for _, v := range votes {
		if v.NowWatching {
			return true
		}
	}
	return false
}

func buildItem(sv ShowWithVotes) ShowItem {
	item := ShowItem{
		ID:          sv.Show.ID,
		Title:       sv.Show.Title,
		Media:       sv.Show.Media,
		Type:        sv.Show.Type,
		TvshowType:  sv.Show.TvshowType,
		SerieSeason: sv.Show.SerieSeason,
		Miniseries:  sv.Show.Miniseries,
		Link:        sv.Show.Link,
		Poster:      sv.Show.Poster,
		Username:    sv.Show.OwnerUsername,
		Name:        sv.Show.OwnerName,
		Created:     sv.Show.CreatedAt,
		AvgScore:    AverageScore(sv.Votes),
		Votes:       make(map[string]VoteDetail, len(sv.Votes)),
	}
	// Keyed by username; iteration order is creation order, so the last
	// writer wins if a username somehow appears twice.
	for _, v := range sv.Votes {
		item.Votes[v.Username] = VoteDetail{
			ID:          v.ID,
			Username:    v.Username,
			Name:        v.Name,
			Score:       reconcile.ScoreString(v.Score),
			Episode:     v.Episode,
			Season:      v.Season,
			Comment:     v.Comment,
			NowWatching: v.NowWatching,
			Created:     v.CreatedAt,
			Updated:     v.UpdatedAt,
		}
	}
	return item
}

// AverageScore renders the mean score across votes with the watching flag
// off, two decimals. In-progress watches carry no verdict yet and are
// excluded; with no qualifying votes the literal "0.0" is rendered.
func AverageScore(votes []repository.Vote) string {
	var sum float64
	var n int
	for _, v := range votes {
		if v.NowWatching {
			continue
		}
		sum += v.Score
		n++
	}
	if n == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.2f", sum/float64(n))
}
