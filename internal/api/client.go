package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dexrun/internal/model"
	"dexrun/internal/util"
)

// ErrEntryRejected is returned when /add_entry answers success=false.
var ErrEntryRejected = errors.New("entry rejected")

// RejectedError carries the reason the backend gave for refusing an entry.
// It matches ErrEntryRejected under errors.Is.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return ErrEntryRejected.Error()
	}
	return ErrEntryRejected.Error() + ": " + e.Reason
}

func (e *RejectedError) Unwrap() error {
	return ErrEntryRejected
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API error: status %d", e.Endpoint, e.Code)
}

// Client talks to the tracker backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// TotalPokemon fetches the number of recorded entries.
func (c *Client) TotalPokemon(ctx context.Context) (model.Totals, error) {
	var out model.Totals
	err := c.getJSON(ctx, "/total_pokemon", &out)
	return out, err
}

// Leaderboard fetches per-Pokémon aggregates in server rank order.
func (c *Client) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	out := []model.LeaderboardEntry{}
	err := c.getJSON(ctx, "/leaderboard", &out)
	return out, err
}

// Last10 fetches the ten most recent entries.
func (c *Client) Last10(ctx context.Context) ([]model.RecentEntry, error) {
	out := []model.RecentEntry{}
	err := c.getJSON(ctx, "/last10", &out)
	return out, err
}

// LocationPercentages fetches each location's share of entries.
func (c *Client) LocationPercentages(ctx context.Context) ([]model.LocationShare, error) {
	out := []model.LocationShare{}
	err := c.getJSON(ctx, "/location_percentages", &out)
	return out, err
}

// AddEntry submits the entry form. A success=false answer returns a
// *RejectedError.
func (c *Client) AddEntry(ctx context.Context, e model.NewEntry) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("pokemon", e.Pokemon); err != nil {
		return fmt.Errorf("form encode failed: %w", err)
	}
	if err := w.WriteField("location", e.Location); err != nil {
		return fmt.Errorf("form encode failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("form encode failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/add_entry"), &body)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	// The backend answers 400 with a JSON body for bad forms, so decode
	// before judging the status.
	var result model.AddEntryResult
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode >= 500 || (decodeErr != nil && (resp.StatusCode < 200 || resp.StatusCode >= 300)) {
		return &StatusError{Endpoint: "/add_entry", Code: resp.StatusCode}
	}
	if decodeErr != nil {
		return fmt.Errorf("JSON decode error: %w", decodeErr)
	}
	if !result.Success {
		return &RejectedError{Reason: result.Error}
	}
	return nil
}

// Sprite fetches and decodes the first frame of a Pokémon's sprite.
func (c *Client) Sprite(ctx context.Context, pokemon string, shiny bool) (image.Image, error) {
	path := util.SpritePath(pokemon, shiny)
	resp, err := c.get(ctx, path, "image/gif")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, err := gif.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sprite decode error: %w", err)
	}
	return img, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, path, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: JSON decode error: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: network error: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{Endpoint: path, Code: resp.StatusCode}
	}
	return resp, nil
}
