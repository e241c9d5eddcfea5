package platform

import "testing"

const sinkInputs = `Sink Input #41
	Driver: protocol-native.c
	Owner Module: 10
	Client: 55
	Sink: 0
	Mute: no
	Properties:
		media.name = "Playback"
		application.name = "Firefox"
		application.process.id = "2011"
		application.process.binary = "firefox"

Sink Input #57
	Driver: protocol-native.c
	Mute: no
	Properties:
		media.name = "Spotify"
		application.name = "spotify"
		application.process.id = "3120"
		application.process.binary = "spotify"

Sink Input #58
	Driver: PipeWire
	Properties:
		application.name = "Chromium"
		application.process.binary = "Spotify"
`

func TestParseSinkInputs(t *testing.T) {
	tests := []struct {
		app  string
		want []int
	}{
		{"Spotify", []int{57, 58}},
		{"firefox", []int{41}},
		{"mpv", nil},
	}

	for _, tt := range tests {
		t.Run(tt.app, func(t *testing.T) {
			got := parseSinkInputs(sinkInputs, tt.app)
			if len(got) != len(tt.want) {
				t.Fatalf("parseSinkInputs(%q) = %v, want %v", tt.app, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("id %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseSinkInputs_Empty(t *testing.T) {
	if got := parseSinkInputs("", "spotify"); len(got) != 0 {
		t.Errorf("expected no ids, got %v", got)
	}
}
