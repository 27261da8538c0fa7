package plex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"cardsync/internal/config"
)

const userAgent = "cardsync/0.1.0"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPClient implements Client against the Plex JSON API.
type HTTPClient struct {
	baseURL          string
	token            string
	clientIdentifier string
	client           HTTPDoer
}

var _ Client = (*HTTPClient)(nil)

// Option customizes the HTTP client.
type Option func(*HTTPClient)

// WithHTTPDoer overrides the HTTP backend (useful for tests).
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *HTTPClient) {
		if doer != nil {
			c.client = doer
		}
	}
}

// NewHTTPClient builds a Plex client from configuration.
func NewHTTPClient(cfg *config.Config, opts ...Option) *HTTPClient {
	timeout := time.Duration(cfg.Plex.RequestTimeout) * time.Second
	client := &HTTPClient{
		baseURL:          strings.TrimRight(cfg.Plex.URL, "/"),
		token:            cfg.Plex.Token,
		clientIdentifier: strings.ReplaceAll(uuid.New().String(), "-", ""),
		client:           &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type metadataItem struct {
	RatingKey   string `json:"ratingKey"`
	Title       string `json:"title"`
	ParentIndex int    `json:"parentIndex"`
	Index       int    `json:"index"`
	ViewCount   int    `json:"viewCount"`
}

type directoryItem struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

type mediaContainer struct {
	MediaContainer struct {
		Size      int             `json:"size"`
		Directory []directoryItem `json:"Directory"`
		Metadata  []metadataItem  `json:"Metadata"`
	} `json:"MediaContainer"`
}

// Section resolves a library section by exact title.
func (c *HTTPClient) Section(ctx context.Context, name string) (*Library, error) {
	var container mediaContainer
	if err := c.getJSON(ctx, "/library/sections", nil, &container); err != nil {
		return nil, err
	}
	for _, dir := range container.MediaContainer.Directory {
		if strings.EqualFold(dir.Title, name) {
			return &Library{Key: dir.Key, Title: dir.Title}, nil
		}
	}
	return nil, fmt.Errorf("library %q: %w", name, ErrNotFound)
}

// ShowByGUID resolves a series by a guid such as "tvdb://81189".
func (c *HTTPClient) ShowByGUID(ctx context.Context, library *Library, guid string) (*Show, error) {
	query := url.Values{"type": {"2"}, "guid": {guid}}
	show, err := c.firstShow(ctx, library, query)
	if err != nil {
		return nil, fmt.Errorf("series guid %q: %w", guid, err)
	}
	return show, nil
}

// ShowByTitle resolves a series by exact title match.
func (c *HTTPClient) ShowByTitle(ctx context.Context, library *Library, title string) (*Show, error) {
	query := url.Values{"type": {"2"}, "title": {title}}
	var container mediaContainer
	path := fmt.Sprintf("/library/sections/%s/all", library.Key)
	if err := c.getJSON(ctx, path, query, &container); err != nil {
		return nil, fmt.Errorf("series title %q: %w", title, err)
	}
	for _, item := range container.MediaContainer.Metadata {
		if strings.EqualFold(item.Title, title) {
			return &Show{RatingKey: item.RatingKey, Title: item.Title}, nil
		}
	}
	return nil, fmt.Errorf("series title %q: %w", title, ErrNotFound)
}

func (c *HTTPClient) firstShow(ctx context.Context, library *Library, query url.Values) (*Show, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/sections/%s/all", library.Key)
	if err := c.getJSON(ctx, path, query, &container); err != nil {
		return nil, err
	}
	if len(container.MediaContainer.Metadata) == 0 {
		return nil, ErrNotFound
	}
	item := container.MediaContainer.Metadata[0]
	return &Show{RatingKey: item.RatingKey, Title: item.Title}, nil
}

// Episodes lists every episode of a show across all seasons.
func (c *HTTPClient) Episodes(ctx context.Context, show *Show) ([]Episode, error) {
	var container mediaContainer
	path := fmt.Sprintf("/library/metadata/%s/allLeaves", show.RatingKey)
	if err := c.getJSON(ctx, path, nil, &container); err != nil {
		return nil, fmt.Errorf("episodes of %q: %w", show.Title, err)
	}

	episodes := make([]Episode, 0, len(container.MediaContainer.Metadata))
	for _, item := range container.MediaContainer.Metadata {
		episodes = append(episodes, Episode{
			RatingKey: item.RatingKey,
			Season:    item.ParentIndex,
			Number:    item.Index,
			Watched:   item.ViewCount > 0,
		})
	}
	return episodes, nil
}

// UploadPoster pushes a card image as the episode's poster.
func (c *HTTPClient) UploadPoster(ctx context.Context, episode Episode, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read card %q: %w", filePath, err)
	}

	path := fmt.Sprintf("/library/metadata/%s/posters", episode.RatingKey)
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	return c.doDiscard(req)
}

// DeletePoster removes the episode's selected poster so Plex falls back to
// its own artwork.
func (c *HTTPClient) DeletePoster(ctx context.Context, episode Episode) error {
	path := fmt.Sprintf("/library/metadata/%s/posters", episode.RatingKey)
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	return c.doDiscard(req)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build plex request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Plex-Client-Identifier", c.clientIdentifier)
	req.Header.Set("X-Plex-Product", "cardsync")
	if c.token != "" {
		req.Header.Set("X-Plex-Token", c.token)
	}
	return req, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode plex response: %w", err)
	}
	return nil
}

func (c *HTTPClient) doDiscard(req *http.Request) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("plex %s %s returned %d: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
}
