package imdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestSearchTitles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/titles" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "example" {
			t.Errorf("query: got %q", got)
		}
		w.Write([]byte(`{"titles":[{"id":"tt001","title":"Example","kind":"movie","year":2024,"rating":7.5}]}`))
	})

	titles, err := client.SearchTitles(context.Background(), "example", 10)
	if err != nil {
		t.Fatalf("SearchTitles: %v", err)
	}
	if len(titles) != 1 {
		t.Fatalf("expected 1 title, got %d", len(titles))
	}
	if titles[0].ID != "tt001" || titles[0].Kind != "movie" {
		t.Errorf("title: got %+v", titles[0])
	}
}

func TestSearchTitlesEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := client.SearchTitles(context.Background(), "  ", 10); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestFetchTitleSeasons(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/titles/tt010" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Write([]byte(`{"id":"tt010","title":"A Series","kind":"tv series","year":2022,"seasons":["3","2","1"]}`))
	})

	title, err := client.FetchTitle(context.Background(), "tt010")
	if err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if !title.HasSeasons() {
		t.Error("expected season structure")
	}
	if title.Seasons[0] != "3" {
		t.Errorf("provider season order not preserved: got %v", title.Seasons)
	}
	if title.DisplayTitle() != "A Series (2022)" {
		t.Errorf("display title: got %q", title.DisplayTitle())
	}
}

func TestFetchEpisodeListOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"seasons":[{"season":"2","episodes":[
			{"id":"ep3","title":"Three","air_date":"1 Jan 2024"},
			{"id":"ep4","title":"Four","air_date":"8 Jan 2024"}]}]}`))
	})

	list, err := client.FetchEpisodeList(context.Background(), "tt010")
	if err != nil {
		t.Fatalf("FetchEpisodeList: %v", err)
	}
	if len(list.Seasons) != 1 || len(list.Seasons[0].Episodes) != 2 {
		t.Fatalf("unexpected shape: %+v", list)
	}
	if list.Seasons[0].Episodes[0].ID != "ep3" {
		t.Errorf("episode order not preserved: %+v", list.Seasons[0].Episodes)
	}
}

func TestFetchEpisodeMissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// No air date, no next-episode link.
		w.Write([]byte(`{"id":"ep9","title":"Finale"}`))
	})

	ep, err := client.FetchEpisode(context.Background(), "ep9")
	if err != nil {
		t.Fatalf("FetchEpisode: %v", err)
	}
	if ep.AirDate != "" || ep.NextEpisodeID != "" {
		t.Errorf("expected zero values for absent fields, got %+v", ep)
	}
}

func TestFetchReleaseDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/titles/tt001/releases" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Write([]byte(`{"releases":[
			{"country":"France","date":"12 June 2024"},
			{"country":"USA","date":"15 June 2024","notes":"premiere"},
			{"country":"USA","date":"20 June 2024"}]}`))
	})

	releases, err := client.FetchReleaseDates(context.Background(), "tt001")
	if err != nil {
		t.Fatalf("FetchReleaseDates: %v", err)
	}
	if len(releases) != 3 {
		t.Fatalf("expected 3 releases, got %d", len(releases))
	}
	if releases[1].Notes != "premiere" {
		t.Errorf("notes: got %q", releases[1].Notes)
	}
}

func TestNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := client.FetchTitle(context.Background(), "tt404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestServerFaultIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := client.FetchTitle(context.Background(), "tt001")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestConnectionFaultIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.Close() // refuse all subsequent connections

	_, err = client.FetchEpisode(context.Background(), "ep1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
