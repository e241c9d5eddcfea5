package player

import "strings"

// TitleSeparator separates artist, track and album in the target's title
const TitleSeparator = " - "

// ParseTitle converts a raw window title into a Song.
//
// Titles look like "artist - track" when playing from an artist page and
// "artist - track - album" when playing from a playlist. Everything after
// the second separator is joined with a single space to form the album, so
// names that themselves contain " - " are split incorrectly. That is a
// known limitation of scraping the title.
//
// It returns false when the title is blank or equals the bare application
// name, which the target shows when nothing is loaded.
func ParseTitle(raw, appName string) (*Song, bool) {
	if strings.TrimSpace(raw) == "" || raw == appName {
		return nil, false
	}

	parts := strings.Split(raw, TitleSeparator)

	song := &Song{Artist: parts[0]}
	if len(parts) > 1 {
		song.Track = parts[1]
	}
	if len(parts) > 2 {
		song.Album = strings.Join(parts[2:], " ")
	}

	return song, true
}

// SongFromWindow reads the title of w and parses it. A nil window or a title
// that names no song yields nil.
func SongFromWindow(w *Window, windows WindowService, appName string) *Song {
	if w == nil {
		return nil
	}
	song, ok := ParseTitle(windows.Title(*w), appName)
	if !ok {
		return nil
	}
	return song
}
