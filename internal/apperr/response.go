package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"skillswap/internal/constants"
)

const genericServerMessage = "Something went wrong on our side, please try again later"

// FromResponse builds a typed error from a non-2xx backend response.
func FromResponse(status int, body []byte) *Error {
	field, msg := extractMessage(body)

	e := &Error{Status: status, Field: field, Message: msg, Body: body}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind, e.Code = KindAuthentication, constants.ErrCodeAuthFailed
		if e.Message == "" {
			e.Message = "Authentication required"
		}
	case status == http.StatusForbidden:
		e.Kind, e.Code = KindAuthorization, constants.ErrCodeForbidden
		if e.Message == "" {
			e.Message = "You do not have permission to perform this action"
		}
	case status == http.StatusNotFound:
		e.Kind, e.Code = KindNotFound, constants.ErrCodeNotFound
	case status == http.StatusConflict:
		e.Kind, e.Code = KindConflict, constants.ErrCodeConflict
	case status == http.StatusTooManyRequests:
		e.Kind, e.Code = KindBadRequest, constants.ErrCodeRateLimited
		if e.Message == "" {
			e.Message = "Too many requests, please try again later"
		}
	case status >= 500:
		// Backend text is kept for logs only.
		if msg != "" {
			e.Err = errors.New(msg)
		}
		e.Kind, e.Code, e.Field, e.Message = KindServer, constants.ErrCodeInternal, "", genericServerMessage
	default:
		e.Kind, e.Code = KindBadRequest, constants.ErrCodeInvalidRequest
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = "Request failed"
	}
	return e
}

// extractMessage pulls the first usable message out of the body shapes the
// backend produces: message, detail, error (string or {code, message}),
// non_field_errors, or a {"field": ["msg"]} map.
func extractMessage(body []byte) (field, msg string) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ""
	}

	for _, key := range []string{"message", "detail", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		if s := firstString(raw); s != "" {
			return "", s
		}
	}

	if raw, ok := payload["non_field_errors"]; ok {
		if s := firstString(raw); s != "" {
			return "", s
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "code" || k == "status" || k == "swap_request" {
			continue
		}
		if s := firstString(payload[k]); s != "" {
			return k, s
		}
	}

	return "", ""
}

func firstString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if s := firstString(item); s != "" {
				return s
			}
		}
		return ""
	}

	var obj struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return strings.TrimSpace(obj.Message)
		}
		return strings.TrimSpace(obj.Detail)
	}

	return ""
}
