package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jfmyers9/toastify/internal/player"
)

func TestClient_Submit(t *testing.T) {
	c := &fakeController{}
	srv := newTestServer(t, c, nil)

	if err := NewClient(srv.URL).Submit(context.Background(), player.ActionNextTrack); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := c.actions(); len(got) != 1 || got[0] != player.ActionNextTrack {
		t.Errorf("submitted = %v", got)
	}
}

func TestClient_SubmitQueueFull(t *testing.T) {
	srv := newTestServer(t, &fakeController{full: true}, nil)

	err := NewClient(srv.URL).Submit(context.Background(), player.ActionStop)
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit() = %v, want ErrQueueFull", err)
	}
}

func TestClient_SubmitUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Submit(context.Background(), player.ActionStop)
	if err == nil || !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Submit() = %v, want status error", err)
	}
}

func TestClient_Now(t *testing.T) {
	c := &fakeController{song: &player.Song{Artist: "Queen", Track: "Bohemian Rhapsody"}}
	srv := newTestServer(t, c, nil)

	song, err := NewClient(srv.URL).Now(context.Background())
	if err != nil {
		t.Fatalf("Now() error = %v", err)
	}
	if song == nil || song.Artist != "Queen" || song.Track != "Bohemian Rhapsody" {
		t.Errorf("Now() = %+v", song)
	}
}

func TestClient_NowIdle(t *testing.T) {
	srv := newTestServer(t, &fakeController{}, nil)

	song, err := NewClient(srv.URL).Now(context.Background())
	if err != nil || song != nil {
		t.Errorf("Now() = %+v, %v; want nil, nil", song, err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	if _, err := NewClient(addr).Now(context.Background()); err == nil || !strings.Contains(err.Error(), "failed to reach daemon") {
		t.Errorf("Now() = %v, want connection error", err)
	}
}

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		addr, want string
	}{
		{"localhost:52846", "http://localhost:52846"},
		{"http://127.0.0.1:9000/", "http://127.0.0.1:9000"},
		{"https://toastify.local", "https://toastify.local"},
	}

	for _, tt := range tests {
		if got := NewClient(tt.addr).baseURL; got != tt.want {
			t.Errorf("NewClient(%q).baseURL = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
