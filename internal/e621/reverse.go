package e621

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// ReverseResult is the outcome of one iqdb lookup. When the service itself
// rejected the query, Message carries its error text and PostIDs is empty.
type ReverseResult struct {
	PostIDs []int64
	Message string
}

// iqdb responses come either as a bare match array or wrapped in "posts";
// service errors arrive as {"message": "..."}.
type iqdbEnvelope struct {
	Posts   []iqdbMatch `json:"posts"`
	Message string      `json:"message"`
}

type iqdbMatch struct {
	PostID int64 `json:"post_id"`
}

// ReverseByURL runs a reverse image search for a publicly reachable image
// URL. A missing scheme defaults to http, matching the URL recognizer in
// the dispatcher.
func (c *Client) ReverseByURL(ctx context.Context, imageURL string) (ReverseResult, error) {
	if u, err := url.Parse(imageURL); err == nil && u.Scheme == "" {
		imageURL = "http://" + imageURL
	}

	q := url.Values{}
	q.Set("url", imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/iqdb_queries.json?"+q.Encode(), nil)
	if err != nil {
		return ReverseResult{}, err
	}
	c.prepare(req)
	return c.doReverse(req)
}

// ReverseByFile runs a reverse image search by uploading image bytes.
func (c *Client) ReverseByFile(ctx context.Context, filename string, data []byte) (ReverseResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return ReverseResult{}, err
	}
	if _, err := fw.Write(data); err != nil {
		return ReverseResult{}, err
	}
	if err := mw.Close(); err != nil {
		return ReverseResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/iqdb_queries.json", &buf)
	if err != nil {
		return ReverseResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.prepare(req)
	return c.doReverse(req)
}

func (c *Client) doReverse(req *http.Request) (ReverseResult, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return ReverseResult{}, err
	}

	resp, err := c.reversec.Do(req)
	if err != nil {
		return ReverseResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ReverseResult{}, err
	}

	// The endpoint reports query problems inside the JSON body, so decode
	// before considering the status code.
	var env iqdbEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return ReverseResult{Message: env.Message}, nil
		}
		if env.Posts != nil {
			return ReverseResult{PostIDs: matchIDs(env.Posts)}, nil
		}
	}

	var matches []iqdbMatch
	if err := json.Unmarshal(body, &matches); err == nil {
		return ReverseResult{PostIDs: matchIDs(matches)}, nil
	}

	return ReverseResult{}, fmt.Errorf("iqdb response could not be decoded (status %s)", resp.Status)
}

func matchIDs(matches []iqdbMatch) []int64 {
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		if m.PostID != 0 {
			ids = append(ids, m.PostID)
		}
	}
	return ids
}
