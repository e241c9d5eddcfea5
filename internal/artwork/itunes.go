package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ITunesCatalog searches the iTunes Search API. It needs no credentials, so
// it is used when no Spotify app is configured.
type ITunesCatalog struct {
	client   *http.Client
	endpoint string
}

// NewITunesCatalog creates a new ITunesCatalog instance
func NewITunesCatalog() *ITunesCatalog {
	return &ITunesCatalog{
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
		endpoint: "https://itunes.apple.com/search",
	}
}

type itunesResponse struct {
	Results []itunesResult `json:"results"`
}

type itunesResult struct {
	ArtworkURL30  string `json:"artworkUrl30"`
	ArtworkURL60  string `json:"artworkUrl60"`
	ArtworkURL100 string `json:"artworkUrl100"`
}

// SearchTrack implements Catalog. The Spotify "artist:" field filter has
// no iTunes equivalent and is folded into the plain search term.
func (c *ITunesCatalog) SearchTrack(ctx context.Context, query string) ([]Result, error) {
	term := strings.Replace(query, " artist:", " ", 1)
	params := url.Values{
		"term":   {term},
		"entity": {"song"},
		"limit":  {"5"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.endpoint, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build itunes request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itunes search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itunes search failed: status %d", resp.StatusCode)
	}

	var body itunesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode itunes response: %w", err)
	}

	results := make([]Result, 0, len(body.Results))
	for _, r := range body.Results {
		var images []Image
		for _, img := range []Image{
			{URL: r.ArtworkURL100, Width: 100},
			{URL: r.ArtworkURL60, Width: 60},
			{URL: r.ArtworkURL30, Width: 30},
		} {
			if img.URL != "" {
				images = append(images, img)
			}
		}
		results = append(results, Result{Images: images})
	}
	return results, nil
}
