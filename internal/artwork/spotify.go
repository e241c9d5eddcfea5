package artwork

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// requestTimeout bounds every catalog request, token fetches included
const requestTimeout = 3 * time.Second

// searchLimit caps the number of tracks requested; only the first result
// is used but the API ranks better with a small page
const searchLimit = 5

// SpotifyCatalog searches the Spotify Web API
type SpotifyCatalog struct {
	client *spotify.Client
}

// NewSpotifyCatalog wraps an authenticated HTTP client
func NewSpotifyCatalog(httpClient *http.Client, opts ...spotify.ClientOption) *SpotifyCatalog {
	return &SpotifyCatalog{client: spotify.New(httpClient, opts...)}
}

// ClientCredentials returns the app-only OAuth2 config for the catalog.
// Tokens from this flow can search but cannot read user data.
func ClientCredentials(clientID, clientSecret string) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
}

// NewSpotifyCatalogFromCredentials builds a catalog that fetches and
// refreshes its token with the client-credentials flow
func NewSpotifyCatalogFromCredentials(ctx context.Context, clientID, clientSecret string) *SpotifyCatalog {
	return NewSpotifyCatalog(credentialsClient(ctx, ClientCredentials(clientID, clientSecret), requestTimeout))
}

// credentialsClient returns an authenticating HTTP client whose requests
// and token fetches give up after timeout
func credentialsClient(ctx context.Context, cfg *clientcredentials.Config, timeout time.Duration) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: cfg.TokenSource(ctx),
			Base:   http.DefaultTransport,
		},
	}
}

// SearchTrack implements Catalog
func (c *SpotifyCatalog) SearchTrack(ctx context.Context, query string) ([]Result, error) {
	res, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(searchLimit))
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	results := make([]Result, 0, len(res.Tracks.Tracks))
	for _, track := range res.Tracks.Tracks {
		images := make([]Image, 0, len(track.Album.Images))
		for _, img := range track.Album.Images {
			images = append(images, Image{URL: img.URL, Width: int(img.Width)})
		}
		results = append(results, Result{Images: images})
	}
	return results, nil
}
