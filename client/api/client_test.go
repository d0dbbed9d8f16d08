package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mysupport/mysupport/pkg/i18n"
)

func TestCallMapsOutcomes(t *testing.T) {
	var gotToken, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Session-Token")
		gotLang = r.Header.Get("Accept-Language")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"entries":[{"id":1}]}`))
		case "/fail":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"error":"bad mood"}`))
		case "/fail-empty":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{}`))
		case "/garbage":
			w.Write([]byte(`<html>`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, srv.Client(), i18n.NewLocalizer("ru"))
	ctx := context.Background()

	var out struct {
		Entries []struct{ ID int64 } `json:"entries"`
	}
	if err := c.Call(ctx, http.MethodGet, "/ok", "tok1", nil, &out); err != nil {
		t.Fatalf("Call(ok) error = %v", err)
	}
	if len(out.Entries) != 1 || gotToken != "tok1" || gotLang != "ru" {
		t.Errorf("out = %+v token = %q lang = %q", out, gotToken, gotLang)
	}

	err := c.Call(ctx, http.MethodPost, "/fail", "", map[string]string{"mood": "x"}, nil)
	var serr *ServerError
	if !errors.As(err, &serr) || serr.Message != "bad mood" || serr.Status != http.StatusBadRequest {
		t.Errorf("Call(fail) error = %#v", err)
	}

	err = c.Call(ctx, http.MethodGet, "/fail-empty", "", nil, nil)
	if !errors.As(err, &serr) || serr.Message != "Произошла ошибка" {
		t.Errorf("Call(fail-empty) error = %v", err)
	}

	err = c.Call(ctx, http.MethodGet, "/garbage", "", nil, nil)
	if !errors.Is(err, ErrUnreachable) || err.Error() != "Не удалось подключиться к серверу" {
		t.Errorf("Call(garbage) error = %v", err)
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, nil, i18n.NewLocalizer("en"))
	_, err := c.Do(context.Background(), http.MethodGet, "/", "", nil)
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("Do() error = %v, want ErrUnreachable", err)
	}
	if err.Error() != "Cannot reach the server" {
		t.Errorf("message = %q", err.Error())
	}
}
