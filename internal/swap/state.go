package swap

import (
	"fmt"

	"skillswap/internal/models"
)

// Action is a swap request state change requested by a participant.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// nextStatus returns the status action leads to from status, and false when
// the state machine has no such edge.
func nextStatus(from models.SwapStatus, action Action) (models.SwapStatus, bool) {
	switch from {
	case models.SwapPending:
		switch action {
		case ActionAccept:
			return models.SwapAccepted, true
		case ActionReject:
			return models.SwapRejected, true
		case ActionCancel:
			return models.SwapCancelled, true
		}
	case models.SwapAccepted:
		switch action {
		case ActionComplete:
			return models.SwapCompleted, true
		case ActionCancel:
			return models.SwapCancelled, true
		}
	}
	return "", false
}

// Filter partitions the cached requests by the caller's relationship to them.
type Filter string

const (
	FilterIncoming  Filter = "incoming"
	FilterOutgoing  Filter = "outgoing"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterCancelled Filter = "cancelled"
	FilterRejected  Filter = "rejected"
	FilterAll       Filter = "all"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterIncoming, FilterOutgoing, FilterActive, FilterCompleted, FilterCancelled, FilterRejected, FilterAll:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

func (f Filter) matches(r *models.SwapRequest, me int64, known bool) bool {
	switch f {
	case FilterIncoming:
		return known && r.ToUserID == me && r.Status == models.SwapPending
	case FilterOutgoing:
		return known && r.FromUserID == me && r.Status == models.SwapPending
	case FilterActive:
		return r.Status == models.SwapAccepted
	case FilterCompleted:
		return r.Status == models.SwapCompleted
	case FilterCancelled:
		return r.Status == models.SwapCancelled
	case FilterRejected:
		return r.Status == models.SwapRejected
	case FilterAll:
		return true
	}
	return false
}
