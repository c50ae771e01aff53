package session

import (
	"context"
	"net/http"
	"strconv"

	"skillswap/internal/models"
	"skillswap/internal/transport"
	"skillswap/internal/validation"
)

// RefreshProfile re-reads the current user's profile from the backend.
func (m *Manager) RefreshProfile(ctx context.Context) (*models.UserProfile, error) {
	if !m.signedIn() {
		return nil, authRequired()
	}

	var user models.UserProfile
	if err := m.api.Get(ctx, "/users/profile", nil, &user); err != nil {
		return nil, err
	}
	m.replaceUser(ctx, &user)
	return cloneUser(&user), nil
}

// UpdateProfile saves the editable profile fields and replaces the cached
// profile with the backend's copy.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.UserProfile, error) {
	update.normalize()
	if err := validation.Form(update); err != nil {
		return nil, err
	}
	if !m.signedIn() {
		return nil, authRequired()
	}

	req := transport.Request{Method: http.MethodPut, Path: "/users/profile", Auth: true}
	if update.Avatar != nil {
		req.Multipart = profileMultipart(update)
	} else {
		req.Body = update
	}

	var user models.UserProfile
	if err := m.api.Do(ctx, req, &user); err != nil {
		return nil, err
	}
	m.replaceUser(ctx, &user)
	return cloneUser(&user), nil
}

func profileMultipart(update ProfileUpdate) *transport.Multipart {
	fields := map[string][]string{
		"first_name": {update.FirstName},
		"last_name":  {update.LastName},
		"is_private": {strconv.FormatBool(update.IsPrivate)},
	}
	if update.Location != "" {
		fields["location"] = []string{update.Location}
	}
	if update.Bio != "" {
		fields["bio"] = []string{update.Bio}
	}
	if len(update.Availability) > 0 {
		fields["availability"] = update.Availability
	}

	return &transport.Multipart{
		Fields: fields,
		Files: []transport.File{{
			Field:       "profile_image",
			Name:        update.Avatar.Name,
			ContentType: update.Avatar.MimeType,
			Data:        update.Avatar.Data,
		}},
	}
}

func (m *Manager) replaceUser(ctx context.Context, user *models.UserProfile) {
	m.mu.Lock()
	if m.status != models.StatusAuthenticated && m.status != models.StatusRefreshing {
		m.mu.Unlock()
		return
	}
	m.user = cloneUser(user)
	s := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persistUser(ctx, user); err != nil {
		m.logger.Warn("error caching profile", "error", err)
	}
	m.publish(s)
}
