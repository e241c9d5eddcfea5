package artwork

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jfmyers9/toastify/internal/player"
)

// Image is one size of an album cover
type Image struct {
	URL   string
	Width int
}

// Result is a track returned by a catalog search, reduced to the images of
// its album
type Result struct {
	Images []Image
}

// Catalog searches a music catalog for tracks
type Catalog interface {
	// SearchTrack runs a track-type search and returns the results in the
	// order the service ranked them
	SearchTrack(ctx context.Context, query string) ([]Result, error)
}

var (
	// Characters known to break catalog searches
	reSearchChars = regexp.MustCompile(`[/()"]`)

	// Bracketed remarks such as "(Remastered 2009)" often make the search
	// miss. Greedy on purpose: "a (b) c (d)" loses everything from the
	// first "(" to the last ")".
	reBrackets = regexp.MustCompile(`\(.*\)`)
)

// Resolver looks up artwork for songs
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a new Resolver instance
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the URL of the smallest cover image of the song's album,
// or "" when nothing was found. Songs with a blank artist or track are
// usually ads and are not looked up at all. Catalog failures are returned
// so callers can tell "no match" from "lookup failed".
func (r *Resolver) Resolve(ctx context.Context, song *player.Song) (string, error) {
	if song == nil || strings.TrimSpace(song.Artist) == "" || strings.TrimSpace(song.Track) == "" {
		return "", nil
	}

	artist := reSearchChars.ReplaceAllString(song.Artist, "")
	track := reSearchChars.ReplaceAllString(song.Track, "")

	url, err := r.lookup(ctx, artist, track)
	if err != nil {
		return "", err
	}

	if url == "" && (strings.Contains(song.Artist, "(") || strings.Contains(song.Track, "(")) {
		artist = reSearchChars.ReplaceAllString(reBrackets.ReplaceAllString(song.Artist, ""), "")
		track = reSearchChars.ReplaceAllString(reBrackets.ReplaceAllString(song.Track, ""), "")

		url, err = r.lookup(ctx, artist, track)
		if err != nil {
			return "", err
		}
	}

	return url, nil
}

func (r *Resolver) lookup(ctx context.Context, artist, track string) (string, error) {
	query := fmt.Sprintf("%s artist:%s", track, artist)

	results, err := r.catalog.SearchTrack(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to search catalog for %q: %w", query, err)
	}
	if len(results) == 0 {
		return "", nil
	}

	return smallestImage(results[0].Images), nil
}

// smallestImage picks the narrowest image. The smallest is usually the
// last one, but services do not guarantee an order. On equal widths the
// first one seen wins.
func smallestImage(images []Image) string {
	url := ""
	smallest := 0
	for i, img := range images {
		if i == 0 || img.Width < smallest {
			url = img.URL
			smallest = img.Width
		}
	}
	return url
}
