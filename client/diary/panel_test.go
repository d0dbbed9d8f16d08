package diary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/client/api"
	"github.com/mysupport/mysupport/models"
	"github.com/mysupport/mysupport/pkg/i18n"
)

// fakeDiary is an in-memory diary endpoint that requires token "tok1".
type fakeDiary struct {
	mu      sync.Mutex
	entries []models.DiaryEntryView
	posts   atomic.Int32
	fail    bool
	block   chan struct{}
}

func (f *fakeDiary) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Session-Token") != "tok1" || r.Header.Get("X-User-Id") != "" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":"Не авторизован"}`))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false}`))
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(models.DiaryListResponse{Entries: append([]models.DiaryEntryView{}, f.entries...)})
	case http.MethodPost:
		f.posts.Add(1)
		if f.block != nil {
			f.mu.Unlock()
			<-f.block
			f.mu.Lock()
		}
		var req models.CreateDiaryEntryRequest
		json.NewDecoder(r.Body).Decode(&req)
		entry := models.DiaryEntryView{ID: int64(len(f.entries) + 1), Mood: req.Mood, Text: req.Text, Date: "05 March"}
		f.entries = append([]models.DiaryEntryView{entry}, f.entries...)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.CreateDiaryEntryResponse{Success: true, ID: entry.ID, Date: entry.Date})
	}
}

func newPanel(t *testing.T, f *fakeDiary, token string) *Panel {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(api.New(srv.URL, srv.Client(), i18n.NewLocalizer("ru")), token, zap.NewNop())
}

func TestCreateThenList(t *testing.T) {
	f := &fakeDiary{}
	p := newPanel(t, f, "tok1")

	if p.Mood() != models.MoodCalm {
		t.Errorf("default mood = %q", p.Mood())
	}

	p.SetMood(models.MoodHappy)
	p.SetText("Great day")
	if err := p.Create(context.Background()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	entries := p.Entries()
	if len(entries) != 1 || entries[0].Mood != models.MoodHappy || entries[0].Text != "Great day" {
		t.Fatalf("entries = %+v", entries)
	}
	if p.Text() != "" {
		t.Errorf("Text() = %q after save", p.Text())
	}
	if p.Saving() {
		t.Error("Saving() after Create returned")
	}
}

func TestCreateBlankTextIsNoop(t *testing.T) {
	f := &fakeDiary{}
	p := newPanel(t, f, "tok1")

	p.SetText("   \n\t")
	if err := p.Create(context.Background()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.posts.Load() != 0 {
		t.Error("blank text sent a request")
	}
	if p.Text() != "   \n\t" {
		t.Errorf("Text() = %q, want input unchanged", p.Text())
	}
}

func TestListIsIdempotent(t *testing.T) {
	f := &fakeDiary{entries: []models.DiaryEntryView{
		{ID: 2, Mood: models.MoodSad, Text: "b", Date: "02 March"},
		{ID: 1, Mood: models.MoodHappy, Text: "a", Date: "01 March"},
	}}
	p := newPanel(t, f, "tok1")

	if err := p.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := p.Entries()
	if err := p.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := p.Entries()

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("len = %d, %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[0].ID != 2 {
		t.Errorf("server order not kept: %+v", first)
	}
}

func TestListFailureKeepsState(t *testing.T) {
	f := &fakeDiary{entries: []models.DiaryEntryView{{ID: 1, Mood: models.MoodCalm, Text: "a"}}}
	p := newPanel(t, f, "tok1")
	if err := p.List(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.mu.Lock()
	f.fail = true
	f.mu.Unlock()

	err := p.List(context.Background())
	var serr *api.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("List() error = %v, want ServerError", err)
	}
	if len(p.Entries()) != 1 {
		t.Errorf("entries = %+v, want previous list", p.Entries())
	}
}

func TestCreateFailureKeepsText(t *testing.T) {
	p := newPanel(t, &fakeDiary{}, "wrong")
	p.SetText("kept")

	err := p.Create(context.Background())
	var serr *api.ServerError
	if !errors.As(err, &serr) || serr.Message != "Не авторизован" {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Text() != "kept" {
		t.Errorf("Text() = %q", p.Text())
	}
}

func TestCreateInFlight(t *testing.T) {
	f := &fakeDiary{block: make(chan struct{})}
	p := newPanel(t, f, "tok1")
	p.SetText("first")

	done := make(chan error, 1)
	go func() { done <- p.Create(context.Background()) }()

	for f.posts.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := p.Create(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Errorf("second Create() error = %v, want ErrInFlight", err)
	}
	if !p.Saving() {
		t.Error("Saving() = false while in flight")
	}

	close(f.block)
	if err := <-done; err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if f.posts.Load() != 1 {
		t.Errorf("posts = %d, want 1", f.posts.Load())
	}
}

func TestGrouped(t *testing.T) {
	f := &fakeDiary{entries: []models.DiaryEntryView{
		{ID: 4, Mood: models.MoodHappy},
		{ID: 3, Mood: models.MoodSad},
		{ID: 2, Mood: models.MoodHappy},
		{ID: 1, Mood: "unknown"},
	}}
	p := newPanel(t, f, "tok1")
	if err := p.List(context.Background()); err != nil {
		t.Fatal(err)
	}

	groups := p.Grouped()
	if len(groups) != 3 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Mood != models.MoodHappy || len(groups[0].Entries) != 2 || groups[0].Entries[1].ID != 2 {
		t.Errorf("happy group = %+v", groups[0])
	}
	if groups[2].Mood != "unknown" {
		t.Errorf("unknown mood dropped: %+v", groups[2])
	}
}
