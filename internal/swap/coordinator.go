// Package swap keeps the signed-in user's swap requests and drives their
// lifecycle with optimistic local updates reconciled against the backend.
package swap

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"skillswap/internal/apperr"
	"skillswap/internal/constants"
	"skillswap/internal/logging"
	"skillswap/internal/models"
	"skillswap/internal/validation"
)

// Identity reports the signed-in user.
type Identity interface {
	UserID() (int64, bool)
}

// CreateForm is the swap request form.
type CreateForm struct {
	ToUserID         int64  `json:"to_user_id" validate:"gt=0"`
	OfferedSkillID   int64  `json:"offered_skill_id" validate:"gt=0"`
	RequestedSkillID int64  `json:"requested_skill_id" validate:"gt=0"`
	Message          string `json:"message" validate:"min=10,max=1000"`
	PreferredTime    string `json:"preferred_time" validate:"omitempty,max=100"`
	Duration         string `json:"duration" validate:"omitempty,swap_duration"`
}

// entry is one cached request: the last copy the backend confirmed plus the
// newest optimistic status not yet confirmed.
type entry struct {
	confirmed models.SwapRequest
	pending   *optimistic
}

type optimistic struct {
	seq    uint64
	status models.SwapStatus
}

func (e *entry) view() models.SwapRequest {
	r := e.confirmed
	if e.pending != nil {
		r.Status = e.pending.status
	}
	return r
}

type Coordinator struct {
	api      API
	identity Identity
	logger   *slog.Logger

	mu      sync.Mutex
	entries map[int64]*entry
	seq     uint64
}

func NewCoordinator(api API, identity Identity, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		api:      api,
		identity: identity,
		logger:   logger.With("component", "swap"),
		entries:  make(map[int64]*entry),
	}
}

// Create validates the form locally, sends it and caches the new request.
func (c *Coordinator) Create(ctx context.Context, form CreateForm) (*models.SwapRequest, error) {
	form.Message = strings.TrimSpace(form.Message)
	form.PreferredTime = strings.TrimSpace(form.PreferredTime)
	if err := validation.Form(form); err != nil {
		return nil, err
	}
	if err := validation.PlainText("message", form.Message); err != nil {
		return nil, err
	}

	me, ok := c.identity.UserID()
	if !ok {
		return nil, apperr.Authentication("Please sign in to continue", nil)
	}
	if form.ToUserID == me {
		return nil, apperr.Validation("to_user_id", "you cannot send a swap request to yourself")
	}

	ctx, span := logging.StartSpan(ctx, c.logger, "swap-create")
	rec, err := c.api.Create(ctx, models.NewSwapRequest{
		ToUserID:         form.ToUserID,
		OfferedSkillID:   form.OfferedSkillID,
		RequestedSkillID: form.RequestedSkillID,
		Message:          form.Message,
		PreferredTime:    form.PreferredTime,
		Duration:         form.Duration,
	})
	span.End(err)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.applyLocked(rec)
	view := c.entries[rec.ID].view()
	c.mu.Unlock()
	return &view, nil
}

func (c *Coordinator) Accept(ctx context.Context, id int64) (*models.SwapRequest, error) {
	return c.transition(ctx, id, ActionAccept)
}

func (c *Coordinator) Reject(ctx context.Context, id int64) (*models.SwapRequest, error) {
	return c.transition(ctx, id, ActionReject)
}

func (c *Coordinator) Complete(ctx context.Context, id int64) (*models.SwapRequest, error) {
	return c.transition(ctx, id, ActionComplete)
}

func (c *Coordinator) Cancel(ctx context.Context, id int64) (*models.SwapRequest, error) {
	return c.transition(ctx, id, ActionCancel)
}

func (c *Coordinator) transition(ctx context.Context, id int64, action Action) (*models.SwapRequest, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return nil, &apperr.Error{
			Kind:    apperr.KindNotFound,
			Code:    constants.ErrCodeNotFound,
			Message: "Swap request not found, refresh and try again",
		}
	}
	from := e.view().Status
	to, ok := nextStatus(from, action)
	if !ok {
		c.mu.Unlock()
		return nil, apperr.InvalidTransition(string(action), string(from))
	}
	c.seq++
	op := optimistic{seq: c.seq, status: to}
	e.pending = &op
	c.mu.Unlock()

	ctx, span := logging.StartSpan(ctx, c.logger, "swap-"+string(action))
	rec, err := c.api.Transition(ctx, id, action)

	stale := false
	switch {
	case err == nil && rec.Status != to:
		stale = true
	case isConflict(err):
		stale = true
		if rec == nil {
			rec = c.fetchOne(ctx, id)
		}
	}
	span.End(err)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rec != nil && (err == nil || stale) {
		c.applyLocked(rec)
	}
	if e, ok := c.entries[id]; ok && e.pending != nil && e.pending.seq == op.seq {
		e.pending = nil
	}

	if stale {
		logging.FromContext(ctx).Info("swap request changed concurrently",
			"swap_id", id, "action", action, "server_status", statusOf(rec))
		return c.viewLocked(id), apperr.StaleState("", err)
	}
	if err != nil {
		return nil, err
	}
	return c.viewLocked(id), nil
}

// fetchOne re-reads id from the backend after a conflict that did not carry
// the current record.
func (c *Coordinator) fetchOne(ctx context.Context, id int64) *models.SwapRequest {
	list, err := c.api.List(ctx)
	if err != nil {
		c.logger.Warn("error refetching swap request after conflict", "swap_id", id, "error", err)
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

// applyLocked stores rec unless the cache already holds a newer confirmed copy.
func (c *Coordinator) applyLocked(rec *models.SwapRequest) {
	e, ok := c.entries[rec.ID]
	if !ok {
		c.entries[rec.ID] = &entry{confirmed: *rec}
		return
	}
	if rec.UpdatedAt.Before(e.confirmed.UpdatedAt) {
		c.logger.Debug("ignoring out of date swap response", "swap_id", rec.ID,
			"response_updated_at", rec.UpdatedAt, "cached_updated_at", e.confirmed.UpdatedAt)
		return
	}
	e.confirmed = *rec
}

func (c *Coordinator) viewLocked(id int64) *models.SwapRequest {
	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	v := e.view()
	return &v
}

// Get returns the cached copy of id, including any unconfirmed status.
func (c *Coordinator) Get(id int64) (*models.SwapRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.viewLocked(id)
	return v, v != nil
}

// List filters the cache without touching the network. Newest first.
func (c *Coordinator) List(filter Filter) []models.SwapRequest {
	me, known := c.identity.UserID()

	c.mu.Lock()
	out := make([]models.SwapRequest, 0, len(c.entries))
	for _, e := range c.entries {
		v := e.view()
		if filter.matches(&v, me, known) {
			out = append(out, v)
		}
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Refresh replaces the cache with the backend's collection.
func (c *Coordinator) Refresh(ctx context.Context) error {
	list, err := c.api.List(ctx)
	if err != nil {
		return err
	}

	entries := make(map[int64]*entry, len(list))
	for i := range list {
		entries[list[i].ID] = &entry{confirmed: list[i]}
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.logger.Debug("swap requests refreshed", "count", len(list))
	return nil
}

// Reset drops every cached request.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.entries = make(map[int64]*entry)
	c.mu.Unlock()
}

func isConflict(err error) bool {
	return apperr.StatusOf(err) == http.StatusConflict
}

func statusOf(rec *models.SwapRequest) models.SwapStatus {
	if rec == nil {
		return ""
	}
	return rec.Status
}
