// Package notify caches the signed-in user's notifications and marks them
// read with optimistic updates.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"skillswap/internal/apperr"
	"skillswap/internal/constants"
	"skillswap/internal/models"
	"skillswap/internal/transport"
)

type Centre struct {
	api    *transport.Client
	logger *slog.Logger

	mu    sync.Mutex
	items []models.Notification
}

func NewCentre(api *transport.Client, logger *slog.Logger) *Centre {
	if logger == nil {
		logger = slog.Default()
	}
	return &Centre{api: api, logger: logger.With("component", "notify")}
}

// Refresh re-fetches every notification, newest first.
func (c *Centre) Refresh(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	if err := c.api.Get(ctx, "/notifications", nil, &items); err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return c.List(), nil
}

func (c *Centre) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notification(nil), c.items...)
}

func (c *Centre) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		if !it.IsRead {
			n++
		}
	}
	return n
}

// MarkRead flags id as read locally, then on the backend. A failed call
// restores the unread flag.
func (c *Centre) MarkRead(ctx context.Context, id int64) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return &apperr.Error{Kind: apperr.KindNotFound, Code: constants.ErrCodeNotFound, Message: "Notification not found"}
	}
	wasRead := c.items[idx].IsRead
	c.items[idx].IsRead = true
	c.mu.Unlock()

	if wasRead {
		return nil
	}

	err := c.api.Patch(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
	if err != nil {
		c.mu.Lock()
		if i := c.indexLocked(id); i >= 0 {
			c.items[i].IsRead = false
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

// MarkAllRead flags every cached notification as read. A failed call
// restores the previous flags.
func (c *Centre) MarkAllRead(ctx context.Context) error {
	c.mu.Lock()
	unread := make(map[int64]struct{})
	for i := range c.items {
		if !c.items[i].IsRead {
			unread[c.items[i].ID] = struct{}{}
			c.items[i].IsRead = true
		}
	}
	c.mu.Unlock()

	err := c.api.Patch(ctx, "/notifications/read-all", nil, nil)
	if err != nil {
		c.mu.Lock()
		for i := range c.items {
			if _, ok := unread[c.items[i].ID]; ok {
				c.items[i].IsRead = false
			}
		}
		c.mu.Unlock()
		c.logger.Debug("mark all read failed, restored unread flags", "count", len(unread))
		return err
	}
	return nil
}

// Reset drops the cache.
func (c *Centre) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

func (c *Centre) indexLocked(id int64) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
