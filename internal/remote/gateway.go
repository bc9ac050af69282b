// Package remote speaks the HTTP contract of the spreadsheet-backed store
// and converts its loosely typed rows into the engine's entities.
//
// The store offers no transactions: a GET returns the whole snapshot and a
// POST mutates one row of one collection. Nothing here may assume that two
// calls are atomic; callers must always be able to rebuild local state
// from a single GET.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/galan4520/finanzas/internal/domain"
	"github.com/rs/zerolog"
)

// Collection names a spreadsheet tab.
type Collection string

const (
	CollectionCards   Collection = "tarjetas"
	CollectionPending Collection = "pendientes"
	CollectionHistory Collection = "historial"
	CollectionGoals   Collection = "metas"
	CollectionProfile Collection = "perfil"
)

// Action selects the mutation a POST performs. The empty action inserts.
type Action string

const (
	ActionInsert      Action = ""
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionSaveProfile Action = "saveProfile"
)

// Write is one remote mutation: an action against a collection with a row
// payload.
type Write struct {
	Action     Action
	Collection Collection
	Payload    any
}

// Service is the gateway surface the coordinator consumes. A successful
// Submit means "the server accepted the row", not "the next GET already
// reflects it".
type Service interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)
	Submit(ctx context.Context, w Write) error
}

// Gateway is the HTTP implementation of Service. Authentication is the
// shared PIN passed as a query parameter on both verbs; that is the whole
// trust boundary and the gateway cannot strengthen it.
type Gateway struct {
	baseURL string
	pin     string
	client  *http.Client
	log     zerolog.Logger
}

// NewGateway creates a gateway for the given endpoint. The timeout applies
// to every call; without it a hung remote write would hold its goroutine
// forever.
func NewGateway(baseURL, pin string, timeout time.Duration, log zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		pin:     pin,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (g *Gateway) endpoint() string {
	return g.baseURL + "?pin=" + url.QueryEscape(g.pin)
}

// Fetch retrieves and normalizes the authoritative snapshot.
func (g *Gateway) Fetch(ctx context.Context) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint(), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("Fetch: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("Fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Snapshot{}, fmt.Errorf("Fetch: unexpected status %s", resp.Status)
	}

	var raw rawSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("Fetch: decode snapshot: %w", err)
	}

	snap := normalizeSnapshot(raw, g.log)
	g.log.Debug().
		Int("history", len(snap.Transactions)).
		Int("pending", len(snap.Obligations)).
		Int("goals", len(snap.Goals)).
		Int("cards", len(snap.Accounts)).
		Msg("Fetched remote snapshot")
	return snap, nil
}

// postBody is the envelope of every mutation POST.
type postBody struct {
	Action string          `json:"action,omitempty"`
	Tipo   string          `json:"tipo"`
	Data   json.RawMessage `json:"data"`
}

// postResult is what the script answers. It reports failures with a 200
// status and an error field, so the body must be inspected.
type postResult struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Submit sends one mutation. It is fire-and-forget from the caller's point
// of view: the caller's local state is already mutated and stays mutated
// whatever happens here.
func (g *Gateway) Submit(ctx context.Context, w Write) error {
	data, err := json.Marshal(w.Payload)
	if err != nil {
		return fmt.Errorf("Submit %s %s: marshal payload: %w", w.Action, w.Collection, err)
	}
	body, err := json.Marshal(postBody{Action: string(w.Action), Tipo: string(w.Collection), Data: data})
	if err != nil {
		return fmt.Errorf("Submit %s %s: marshal body: %w", w.Action, w.Collection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("Submit %s %s: %w", w.Action, w.Collection, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("Submit %s %s: %w", w.Action, w.Collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Submit %s %s: unexpected status %s", w.Action, w.Collection, resp.Status)
	}

	// Apps-Script web apps answer 200 even on failure; the error rides in
	// the body.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("Submit %s %s: read response: %w", w.Action, w.Collection, err)
	}
	var result postResult
	if err := json.Unmarshal(raw, &result); err == nil && result.Error != "" {
		return fmt.Errorf("Submit %s %s: remote error: %s", w.Action, w.Collection, result.Error)
	}

	g.log.Debug().
		Str("action", string(w.Action)).
		Str("tipo", string(w.Collection)).
		Msg("Remote write accepted")
	return nil
}

var _ Service = (*Gateway)(nil)
