package swap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"skillswap/internal/apperr"
	"skillswap/internal/models"
	"skillswap/internal/transport"
	"skillswap/internal/validation"
)

// API is the backend surface the coordinator drives.
type API interface {
	List(ctx context.Context) ([]models.SwapRequest, error)
	Create(ctx context.Context, req models.NewSwapRequest) (*models.SwapRequest, error)
	// Transition applies action to request id. On a conflict the returned
	// record, when not nil, is the backend's current copy.
	Transition(ctx context.Context, id int64, action Action) (*models.SwapRequest, error)
}

type HTTPAPI struct {
	client *transport.Client
}

func NewHTTPAPI(client *transport.Client) *HTTPAPI {
	return &HTTPAPI{client: client}
}

func (a *HTTPAPI) List(ctx context.Context) ([]models.SwapRequest, error) {
	var out []models.SwapRequest
	if err := a.client.Get(ctx, "/swap-requests", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HTTPAPI) Create(ctx context.Context, req models.NewSwapRequest) (*models.SwapRequest, error) {
	var out models.SwapRequest
	if err := a.client.Post(ctx, "/swap-requests", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAPI) Transition(ctx context.Context, id int64, action Action) (*models.SwapRequest, error) {
	var out models.SwapRequest
	err := a.client.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/swap-requests/%d/%s", id, action),
		Auth:   true,
	}, &out)
	if err == nil {
		return &out, nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Status == http.StatusConflict {
		return conflictRecord(appErr.Body), err
	}
	return nil, err
}

// conflictRecord extracts the backend's current copy from a 409 body.
func conflictRecord(body []byte) *models.SwapRequest {
	var conflict models.SwapConflict
	if err := json.Unmarshal(body, &conflict); err != nil || conflict.SwapRequest == nil {
		return nil
	}
	if err := validation.Response(conflict.SwapRequest); err != nil {
		return nil
	}
	return conflict.SwapRequest
}
