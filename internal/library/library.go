// Package library keeps playlists and per-user listening history.
package library

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediabrowser/internal/apperr"
	"mediabrowser/internal/catalog"
	"mediabrowser/internal/docstore"
	"mediabrowser/internal/events"
	"mediabrowser/internal/identity"
)

const (
	PlaylistsDocument   = "playlists"
	DefaultHistoryLimit = 50
	// AnonymousKey owns the history of callers without a session.
	AnonymousKey = "anonymous"
)

// Playlist holds copies of the catalog entries it was created with. Tracks
// are not updated when the files move or disappear.
type Playlist struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Tracks    []catalog.Entry `json:"tracks"`
	Owner     string          `json:"owner"`
	OwnerName string          `json:"ownerName"`
	Private   bool            `json:"private"`
	CreatedAt time.Time       `json:"createdAt"`
}

type HistoryEntry struct {
	Action    string    `json:"action"`
	Details   any       `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	HistoryLimit int
	Publisher    events.Publisher
	NewID        func() string
	Now          func() time.Time
}

type Service struct {
	store        docstore.Store
	historyLimit int
	publisher    events.Publisher
	newID        func() string
	now          func() time.Time
}

func NewService(store docstore.Store, opts Options) *Service {
	s := &Service{
		store:        store,
		historyLimit: opts.HistoryLimit,
		publisher:    opts.Publisher,
		newID:        opts.NewID,
		now:          opts.Now,
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListPlaylists returns the public playlists plus those owned by p.
func (s *Service) ListPlaylists(ctx context.Context, p *identity.Principal) ([]Playlist, error) {
	all, err := docstore.Get[[]Playlist](ctx, s.store, PlaylistsDocument)
	if err != nil {
		return nil, apperr.Internal("Failed to load playlists", err)
	}

	visible := make([]Playlist, 0, len(all))
	for _, pl := range all {
		if !pl.Private || (p != nil && pl.Owner == p.Username) {
			visible = append(visible, pl)
		}
	}
	return visible, nil
}

func (s *Service) CreatePlaylist(ctx context.Context, p *identity.Principal, name string, tracks []catalog.Entry, private bool) (Playlist, error) {
	if p == nil {
		return Playlist{}, apperr.Unauthorized("Authentication required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Playlist{}, apperr.Validation("Playlist name is required")
	}
	tracks = append([]catalog.Entry{}, tracks...)

	pl := Playlist{
		ID:        s.newID(),
		Name:      name,
		Tracks:    tracks,
		Owner:     p.Username,
		OwnerName: p.Name,
		Private:   private,
		CreatedAt: s.now().UTC(),
	}
	err := docstore.Update(ctx, s.store, PlaylistsDocument, func(all []Playlist) ([]Playlist, error) {
		return append(all, pl), nil
	})
	if err != nil {
		return Playlist{}, apperr.Internal("Failed to save playlist", err)
	}

	s.publisher.Publish(ctx, events.PlaylistCreated, pl)
	return pl, nil
}

// DeletePlaylist removes a playlist owned by p, or any playlist when p is an admin.
func (s *Service) DeletePlaylist(ctx context.Context, p *identity.Principal, id string) error {
	if p == nil {
		return apperr.Unauthorized("Authentication required")
	}

	var removed Playlist
	err := docstore.Update(ctx, s.store, PlaylistsDocument, func(all []Playlist) ([]Playlist, error) {
		for i, pl := range all {
			if pl.ID != id {
				continue
			}
			if pl.Owner != p.Username && !p.IsAdmin() {
				return nil, apperr.Forbidden("Not allowed to delete this playlist")
			}
			removed = pl
			return append(all[:i:i], all[i+1:]...), nil
		}
		return nil, apperr.NotFound("Playlist not found")
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return apperr.Internal("Failed to delete playlist", err)
		}
		return err
	}

	s.publisher.Publish(ctx, events.PlaylistDeleted, map[string]string{"id": removed.ID, "owner": removed.Owner})
	return nil
}

// RecordHistory prepends an entry to the caller's history and keeps only the
// newest entries.
func (s *Service) RecordHistory(ctx context.Context, p *identity.Principal, action string, details any) error {
	key := HistoryKey(p)
	entry := HistoryEntry{
		Action:    action,
		Details:   details,
		Timestamp: s.now().UTC(),
	}

	err := docstore.Update(ctx, s.store, historyDocument(key), func(entries []HistoryEntry) ([]HistoryEntry, error) {
		entries = append([]HistoryEntry{entry}, entries...)
		if len(entries) > s.historyLimit {
			entries = entries[:s.historyLimit]
		}
		return entries, nil
	})
	if err != nil {
		return apperr.Internal("Failed to save history", err)
	}

	s.publisher.Publish(ctx, events.HistoryRecorded, map[string]any{"user": key, "entry": entry})
	return nil
}

// GetHistory returns the caller's history, newest first.
func (s *Service) GetHistory(ctx context.Context, p *identity.Principal) ([]HistoryEntry, error) {
	entries, err := docstore.Get[[]HistoryEntry](ctx, s.store, historyDocument(HistoryKey(p)))
	if err != nil {
		return nil, apperr.Internal("Failed to load history", err)
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return entries, nil
}

// HistoryKey is the identity a history list is stored under.
func HistoryKey(p *identity.Principal) string {
	if p == nil {
		return AnonymousKey
	}
	return p.Username
}

func historyDocument(key string) string {
	return "history_" + key
}
