// Package diary holds the client-side diary panel: the current draft and the
// last entry list fetched from the server.
package diary

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mysupport/mysupport/client/api"
	"github.com/mysupport/mysupport/models"
)

// ErrInFlight is returned by Create while another save is running.
var ErrInFlight = errors.New("save already in progress")

const path = "/api/diary"

// Group is a run of entries sharing a mood.
type Group struct {
	Mood    models.Mood
	Entries []models.DiaryEntryView
}

// Panel is the diary view model.
type Panel struct {
	client *api.Client
	token  string
	log    *zap.Logger

	mu      sync.Mutex
	entries []models.DiaryEntryView
	mood    models.Mood
	text    string
	saving  bool
}

// New returns a panel that authenticates with token.
func New(client *api.Client, token string, logger *zap.Logger) *Panel {
	return &Panel{
		client: client,
		token:  token,
		log:    logger,
		mood:   models.DefaultMood,
	}
}

// List fetches the entries and replaces the local collection with them.
// On failure the collection is kept and the error is logged and returned.
func (p *Panel) List(ctx context.Context) error {
	var out models.DiaryListResponse
	if err := p.client.Call(ctx, http.MethodGet, path, p.token, nil, &out); err != nil {
		p.log.Warn("failed to load diary entries", zap.Error(err))
		return err
	}
	if out.Entries == nil {
		p.log.Warn("diary response without entries")
		return nil
	}

	p.mu.Lock()
	p.entries = out.Entries
	p.mu.Unlock()
	return nil
}

// Create saves the draft. Blank text is a no-op. On success the text is
// cleared and the list reloaded; on failure the draft stays.
func (p *Panel) Create(ctx context.Context) error {
	p.mu.Lock()
	if strings.TrimSpace(p.text) == "" {
		p.mu.Unlock()
		return nil
	}
	if p.saving {
		p.mu.Unlock()
		return ErrInFlight
	}
	p.saving = true
	req := models.CreateDiaryEntryRequest{Mood: p.mood, Text: p.text}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.saving = false
		p.mu.Unlock()
	}()

	if err := p.client.Call(ctx, http.MethodPost, path, p.token, req, nil); err != nil {
		p.log.Warn("failed to save diary entry", zap.Error(err))
		return err
	}

	p.mu.Lock()
	if p.text == req.Text {
		p.text = ""
	}
	p.mu.Unlock()

	// the entry is stored even if the reload fails
	_ = p.List(ctx)
	return nil
}

// Entries returns a copy of the last fetched list.
func (p *Panel) Entries() []models.DiaryEntryView {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.DiaryEntryView, len(p.entries))
	copy(out, p.entries)
	return out
}

// Grouped returns the entries grouped by mood. Groups are ordered by first
// appearance and entries keep the server order.
func (p *Panel) Grouped() []Group {
	p.mu.Lock()
	defer p.mu.Unlock()

	var groups []Group
	index := make(map[models.Mood]int)
	for _, e := range p.entries {
		i, ok := index[e.Mood]
		if !ok {
			i = len(groups)
			index[e.Mood] = i
			groups = append(groups, Group{Mood: e.Mood})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

func (p *Panel) SetMood(m models.Mood) {
	p.mu.Lock()
	p.mood = m
	p.mu.Unlock()
}

func (p *Panel) Mood() models.Mood {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mood
}

func (p *Panel) SetText(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
}

func (p *Panel) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Saving reports whether a Create is in flight.
func (p *Panel) Saving() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saving
}
