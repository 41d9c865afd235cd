package domain

import (
	"strconv"
	"strings"
)

// Rating is the e621 content rating of a post.
type Rating string

const (
	RatingSafe         Rating = "safe"
	RatingExplicit     Rating = "explicit"
	RatingQuestionable Rating = "questionable"
	RatingUnknown      Rating = "unknown"
)

// ParseRating maps the single-letter API rating onto a Rating. Unrecognized
// values become RatingUnknown.
func ParseRating(s string) Rating {
	switch s {
	case "s":
		return RatingSafe
	case "e":
		return RatingExplicit
	case "q":
		return RatingQuestionable
	default:
		return RatingUnknown
	}
}

// Title returns the rating capitalized for display ("Safe", "Explicit", ...).
func (r Rating) Title() string {
	s := string(r)
	if s == "" {
		s = string(RatingUnknown)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Post is one result from the e621 index, reduced to the fields the bot
// consumes.
type Post struct {
	ID         int64
	FileURL    string
	SampleURL  string
	PreviewURL string
	Width      int
	Height     int
	FileExt    string
	FileSize   int64
	Score      int
	FavCount   int
	Rating     Rating
}

// PostURL returns the canonical page URL for the post.
func (p Post) PostURL() string {
	return "https://e621.net/posts/" + strconv.FormatInt(p.ID, 10)
}
