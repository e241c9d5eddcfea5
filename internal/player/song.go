package player

// Window titles the target shows while idle or signed out. The title does
// not change with the UI language.
var idleArtists = map[string]bool{
	"Spotify Free":    true,
	"Spotify Premium": true,
}

// Song represents the "now playing" entry scraped from the target's window
// title. Empty strings mean the field is absent.
type Song struct {
	Artist     string `json:"artist"`
	Track      string `json:"track"`
	Album      string `json:"album,omitempty"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// IsValid reports whether the song describes something actually playing
// rather than the target's idle title.
func (s *Song) IsValid() bool {
	if s == nil {
		return false
	}
	if s.Track != "" {
		return true
	}
	return s.Artist != "" && !idleArtists[s.Artist]
}

// Equal compares artist and track only. Album and artwork are ignored so
// that a song does not look "new" once its artwork has been resolved.
func (s *Song) Equal(o *Song) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Artist == o.Artist && s.Track == o.Track
}

// WithArtwork returns a copy of the song with the artwork URL set
func (s Song) WithArtwork(url string) *Song {
	s.ArtworkURL = url
	return &s
}

// String returns "Artist - Track", or just the track when there is no artist
func (s *Song) String() string {
	if s == nil {
		return ""
	}
	if s.Artist == "" {
		return s.Track
	}
	return s.Artist + " - " + s.Track
}
