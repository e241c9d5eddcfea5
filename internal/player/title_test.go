package player

import "testing"

// TestParseTitle tests the parsing logic with various window titles
func TestParseTitle(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   *Song
		wantOK bool
	}{
		{
			name:   "artist and track",
			input:  "Daft Punk - One More Time",
			want:   &Song{Artist: "Daft Punk", Track: "One More Time"},
			wantOK: true,
		},
		{
			name:   "artist, track and album",
			input:  "Daft Punk - One More Time - Discovery",
			want:   &Song{Artist: "Daft Punk", Track: "One More Time", Album: "Discovery"},
			wantOK: true,
		},
		{
			name:   "extra segments joined into album",
			input:  "A - B - C - D",
			want:   &Song{Artist: "A", Track: "B", Album: "C D"},
			wantOK: true,
		},
		{
			name:   "artist only",
			input:  "Spotify Premium",
			want:   &Song{Artist: "Spotify Premium"},
			wantOK: true,
		},
		{
			name:   "hyphen without spaces is not a separator",
			input:  "Jay-Z - 99 Problems",
			want:   &Song{Artist: "Jay-Z", Track: "99 Problems"},
			wantOK: true,
		},
		{
			name:   "bare app name",
			input:  "Spotify",
			wantOK: false,
		},
		{
			name:   "empty title",
			input:  "",
			wantOK: false,
		},
		{
			name:   "whitespace title",
			input:  "   \t",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTitle(tt.input, "Spotify")
			if ok != tt.wantOK {
				t.Fatalf("ParseTitle(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !tt.wantOK {
				if got != nil {
					t.Errorf("ParseTitle(%q) = %+v, want nil", tt.input, got)
				}
				return
			}
			if *got != *tt.want {
				t.Errorf("ParseTitle(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTitle_TwoSegmentsHaveNoAlbum(t *testing.T) {
	for _, title := range []string{"a - b", "The Knife - Heartbeats", "x - "} {
		song, ok := ParseTitle(title, "Spotify")
		if !ok {
			t.Fatalf("ParseTitle(%q) returned no song", title)
		}
		if song.Album != "" {
			t.Errorf("ParseTitle(%q).Album = %q, want empty", title, song.Album)
		}
	}
}
