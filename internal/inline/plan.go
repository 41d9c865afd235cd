// Package inline implements the inline-query side of the bot: turning a
// raw query string plus Telegram's opaque offset token into a concrete
// posts request, and shaping the posts that come back into inline results.
//
// Two pagination strategies coexist because the index's before_id cursor
// ignores server-side ordering. Queries with an explicit ordering directive
// paginate by page number; everything else paginates by id boundary, which
// is cheaper and stable under the default id ordering. The strategy is
// re-derived from the query text on every round, so the query itself is
// the only pagination state.
package inline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
	"github.com/jacklul/e621-telegram-bot/internal/e621"
	"github.com/jacklul/e621-telegram-bot/internal/utils"
)

// PageSize is the fixed number of posts requested per inline round.
const PageSize = 25

var (
	postURLRe = regexp.MustCompile(`(e621|e926)\.net.*/(show|posts)/(\d+)`)
	md5URLRe  = regexp.MustCompile(`(e621|e926)\.net.*([a-f0-9]{32})`)
	randomRe  = regexp.MustCompile(`(?i)order:random`)
)

// Plan is a fully resolved inline request: the effective tag query and
// exactly one pagination parameter.
type Plan struct {
	Tags     string
	Page     int    // set when UsePages
	BeforeID string // set when not UsePages and the offset was non-empty
	UsePages bool
}

// BuildPlan derives the request plan for one inline round.
//
// A query that is a direct post URL collapses to an exact id lookup and
// any offset token is discarded, since an id lookup has exactly one
// result. An MD5-bearing site URL likewise collapses to a hash lookup.
func BuildPlan(query, offset string) Plan {
	query = strings.TrimSpace(query)

	if m := postURLRe.FindStringSubmatch(query); m != nil {
		return Plan{Tags: "id:" + m[3]}
	}
	if m := md5URLRe.FindStringSubmatch(query); m != nil {
		return Plan{Tags: "md5:" + m[2]}
	}

	query = strings.TrimSpace(randomRe.ReplaceAllString(query, ""))

	if strings.Contains(strings.ToLower(query), "order") {
		page := utils.AtoiDefault(offset, 1)
		if page < 1 {
			page = 1
		}
		return Plan{Tags: query, Page: page, UsePages: true}
	}
	return Plan{Tags: query, BeforeID: offset}
}

// Request translates the plan into the posts query it stands for.
func (p Plan) Request() e621.PostsRequest {
	req := e621.PostsRequest{Tags: p.Tags, Limit: PageSize}
	if p.UsePages {
		req.Page = p.Page
	} else {
		req.BeforeID = p.BeforeID
	}
	return req
}

// NextOffset computes the continuation token to hand back to Telegram.
//
// Page strategy advances unconditionally; rounds past the end return empty
// pages but keep a valid cursor. Id-boundary strategy returns the last
// post id, or "" on an empty page, which tells Telegram the results are
// exhausted.
func (p Plan) NextOffset(posts []domain.Post) string {
	if p.UsePages {
		return strconv.Itoa(p.Page + 1)
	}
	if len(posts) == 0 {
		return ""
	}
	return strconv.FormatInt(posts[len(posts)-1].ID, 10)
}
