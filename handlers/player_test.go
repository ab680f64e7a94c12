package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"ihub/models"
	"ihub/services/player"
)

func newPlayerHandler() (*PlayerHandler, *player.Service) {
	svc := player.NewService(time.Minute)
	return NewPlayerHandler(svc, nil), svc
}

func playableMovie() player.MediaRef {
	return player.MediaRef{ID: "603", MediaType: models.KindMovie}
}

func TestPlayerStartReturnsSession(t *testing.T) {
	h, _ := newPlayerHandler()

	body := `{"id":"603","mediaType":"movie"}`
	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var session player.Session
	if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.ID == "" || session.Status != player.StatusLoadingPrimary {
		t.Errorf("unexpected session %+v", session)
	}
	if session.EmbedURL != "https://vidsrc.to/embed/movie/603" {
		t.Errorf("unexpected embed URL %s", session.EmbedURL)
	}
}

func TestPlayerStartRejectsBadBody(t *testing.T) {
	h, _ := newPlayerHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions", strings.NewReader(`{"id":""}`))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestPlayerStartSeriesDefaultsEpisode(t *testing.T) {
	h, _ := newPlayerHandler()

	body := `{"id":"1399","mediaType":"series"}`
	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var session player.Session
	if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.EmbedURL != "https://vidsrc.to/embed/tv/1399/1/1" {
		t.Errorf("unexpected embed URL %s", session.EmbedURL)
	}
}

func TestPlayerStartDeepLink(t *testing.T) {
	h, _ := newPlayerHandler()

	body := `{"id":"1399","mediaType":"series","season":3,"episode":9,"url":"https://vidsrc.to/embed/tv/1399/3/9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var session player.Session
	if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.EmbedURL != "https://vidsrc.to/embed/tv/1399/3/9" {
		t.Errorf("expected deep link honored, got %s", session.EmbedURL)
	}
}

func TestPlayerStartRejectsForeignDeepLink(t *testing.T) {
	h, _ := newPlayerHandler()

	body := `{"id":"603","mediaType":"movie","url":"https://evil.example.com/embed/movie/603"}`
	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for off-provider url, got %d", rr.Code)
	}
}

func TestPlayerEventLoaded(t *testing.T) {
	h, svc := newPlayerHandler()
	session, err := svc.Start(playableMovie())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions/x/event", strings.NewReader(`{"event":"loaded"}`))
	req = mux.SetURLVars(req, map[string]string{"sessionID": session.ID})
	rr := httptest.NewRecorder()
	h.Event(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var updated player.Session
	if err := json.NewDecoder(rr.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != player.StatusLoaded {
		t.Errorf("expected loaded, got %s", updated.Status)
	}
}

func TestPlayerEventErrorAdvances(t *testing.T) {
	h, svc := newPlayerHandler()
	session, err := svc.Start(playableMovie())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions/x/event", strings.NewReader(`{"event":"error","reason":"blocked"}`))
	req = mux.SetURLVars(req, map[string]string{"sessionID": session.ID})
	rr := httptest.NewRecorder()
	h.Event(rr, req)

	var updated player.Session
	if err := json.NewDecoder(rr.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Status != player.StatusLoadingFallback {
		t.Errorf("expected loading_fallback, got %s", updated.Status)
	}
}

func TestPlayerEventRejectsUnknownEvent(t *testing.T) {
	h, svc := newPlayerHandler()
	session, _ := svc.Start(playableMovie())

	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions/x/event", strings.NewReader(`{"event":"paused"}`))
	req = mux.SetURLVars(req, map[string]string{"sessionID": session.ID})
	rr := httptest.NewRecorder()
	h.Event(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown event, got %d", rr.Code)
	}
}

func TestPlayerEventAfterTerminalConflicts(t *testing.T) {
	h, svc := newPlayerHandler()
	session, _ := svc.Start(playableMovie())
	if _, err := svc.HandleLoaded(session.ID); err != nil {
		t.Fatalf("handle loaded: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/player/sessions/x/event", strings.NewReader(`{"event":"error","reason":"late"}`))
	req = mux.SetURLVars(req, map[string]string{"sessionID": session.ID})
	rr := httptest.NewRecorder()
	h.Event(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for settled session, got %d", rr.Code)
	}
}

func TestPlayerStatusUnknownSession(t *testing.T) {
	h, _ := newPlayerHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/player/sessions/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"sessionID": "missing"})
	rr := httptest.NewRecorder()
	h.Status(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestPlayerCheckNavigation(t *testing.T) {
	h, _ := newPlayerHandler()

	cases := map[string]bool{
		"https://vidsrc.to/embed/movie/603": true,
		"https://ads.example.com/popup":     false,
	}
	for rawURL, want := range cases {
		body, _ := json.Marshal(map[string]string{"url": rawURL})
		req := httptest.NewRequest(http.MethodPost, "/api/player/navigation/check", strings.NewReader(string(body)))
		rr := httptest.NewRecorder()
		h.CheckNavigation(rr, req)

		var out map[string]bool
		if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out["allowed"] != want {
			t.Errorf("%s: expected allowed=%v, got %v", rawURL, want, out["allowed"])
		}
	}
}
