// Package e621 implements the client for the e621.net index: tag search
// against posts.json and reverse image search against iqdb_queries.json.
//
// The client normalizes the API's heterogeneous success/error payloads into
// the closed domain.SearchResult taxonomy, so callers never branch on raw
// HTTP shapes. Outbound traffic is budgeted with a token bucket because the
// API asks clients to stay at or below two requests per second.
package e621

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jacklul/e621-telegram-bot/internal/domain"
)

const (
	defaultBaseURL = "https://e621.net"

	// MaxTags is the server-side cap on space-separated search tags.
	MaxTags = 6

	// Fixed user-visible reasons. ReasonTagLimit is matched verbatim by the
	// random command, which rewrites the tag count because its forced
	// order:random tag consumes one slot.
	ReasonTagLimit    = "You can only search up to 6 tags."
	ReasonInvalidData = "Data received from e621.net API is invalid"
	ReasonConnection  = "Connection to e621.net API failed or timed out"
	ReasonAuth        = "Authorization required for this request"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Options configures a Client.
type Options struct {
	// BaseURL overrides the API host, used by tests.
	BaseURL string
	// Timeout bounds one posts.json request.
	Timeout time.Duration
	// ReverseTimeout bounds one iqdb_queries.json request, which is slower
	// than a tag search.
	ReverseTimeout time.Duration
	// UserAgent identifies the bot, "Telegram Bot: @username".
	UserAgent string
	// Login and APIKey enable basic auth; both or neither.
	Login  string
	APIKey string
	// RPS and Burst set the outbound budget. Zero values fall back to the
	// documented 2 req/s.
	RPS   float64
	Burst int
}

// Client talks to the e621 API. It is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	login     string
	apiKey    string

	httpc    *http.Client
	reversec *http.Client
	limiter  *rate.Limiter
}

// New builds a Client from options, applying defaults for anything unset.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.ReverseTimeout <= 0 {
		opts.ReverseTimeout = 30 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 2
	}
	if opts.Burst < 1 {
		opts.Burst = 2
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		login:     opts.Login,
		apiKey:    opts.APIKey,
		httpc:     &http.Client{Timeout: opts.Timeout},
		reversec:  &http.Client{Timeout: opts.ReverseTimeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
	}
}

// PostsRequest describes one posts.json query. Page and BeforeID are
// mutually exclusive; the paginator decides which applies.
type PostsRequest struct {
	Tags     string
	Limit    int
	Page     int    // 1-based page number; 0 means unset
	BeforeID string // exclusive upper post-id boundary; "" means unset
}

// wire shapes for posts.json.
type postsResponse struct {
	Posts []wirePost `json:"posts"`
}

type wirePost struct {
	ID   int64 `json:"id"`
	File struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Ext    string `json:"ext"`
		Size   int64  `json:"size"`
		URL    string `json:"url"`
	} `json:"file"`
	Preview struct {
		URL string `json:"url"`
	} `json:"preview"`
	Sample struct {
		URL string `json:"url"`
	} `json:"sample"`
	Score struct {
		Total int `json:"total"`
	} `json:"score"`
	FavCount int    `json:"fav_count"`
	Rating   string `json:"rating"`
}

// apiError is the error body e621 returns on non-2xx responses. Older and
// newer API versions disagree on the field name.
type apiError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Message
}

// Posts runs a tag search and normalizes the outcome. It never returns a Go
// error; every failure mode maps onto a SearchError result.
func (c *Client) Posts(ctx context.Context, req PostsRequest) domain.SearchResult {
	tags := strings.TrimSpace(whitespaceRE.ReplaceAllString(req.Tags, " "))
	if tags != "" && strings.Count(tags, " ")+1 > MaxTags {
		return domain.ErrorResult(ReasonTagLimit, "")
	}

	q := url.Values{}
	q.Set("tags", tags)
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	} else if req.BeforeID != "" {
		q.Set("before_id", req.BeforeID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/posts.json?"+q.Encode(), nil)
	if err != nil {
		return domain.ErrorResult(ReasonConnection, err.Error())
	}
	c.prepare(httpReq)

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.ErrorResult(ReasonConnection, err.Error())
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return domain.ErrorResult(ReasonConnection, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.ErrorResult(ReasonConnection, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return classifyHTTPError(resp.StatusCode, resp.Status, body)
	}

	var decoded postsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return domain.ErrorResult(ReasonInvalidData, "response could not be decoded: "+err.Error())
	}

	posts := make([]domain.Post, 0, len(decoded.Posts))
	for _, w := range decoded.Posts {
		posts = append(posts, domain.Post{
			ID:         w.ID,
			FileURL:    w.File.URL,
			SampleURL:  w.Sample.URL,
			PreviewURL: w.Preview.URL,
			Width:      w.File.Width,
			Height:     w.File.Height,
			FileExt:    w.File.Ext,
			FileSize:   w.File.Size,
			Score:      w.Score.Total,
			FavCount:   w.FavCount,
			Rating:     domain.ParseRating(w.Rating),
		})
	}
	return domain.OKResult(posts)
}

// classifyHTTPError maps a non-200 response onto the error taxonomy:
// a decodable JSON error body is passed through as-is, 403 without a body
// becomes the authorization reason, anything else keeps the status line as
// internal detail.
func classifyHTTPError(code int, status string, body []byte) domain.SearchResult {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.text() != "" {
		return domain.ErrorResult(ae.text(), "")
	}
	if code == http.StatusForbidden {
		return domain.ErrorResult(ReasonAuth, "")
	}
	return domain.ErrorResult(ReasonConnection, fmt.Sprintf("request resulted in a `%s` response", status))
}

// prepare sets the identification headers and credentials on a request.
func (c *Client) prepare(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.login != "" && c.apiKey != "" {
		req.SetBasicAuth(c.login, c.apiKey)
	}
}
