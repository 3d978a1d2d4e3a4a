// Package http exposes the notification pipeline over HTTP: the hook ingest
// endpoint, its middleware and the health endpoint.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"wiki-notify/internal/domain/entity"
	"wiki-notify/internal/handler/http/requestid"
	"wiki-notify/internal/handler/http/respond"
	"wiki-notify/internal/usecase/notify"
)

// HookTokenHeader carries the shared ingest token.
const HookTokenHeader = "X-Hook-Token"

// maxHookBody bounds a single callback payload.
const maxHookBody = 1 << 20

var errTrailingData = errors.New("unexpected data after JSON payload")

// Notifier runs one callback through the pipeline.
type Notifier interface {
	Notify(ctx context.Context, hook notify.Hook) notify.Result
}

// hookDecoders maps the path segment to the callback payload it carries.
var hookDecoders = map[string]func(*json.Decoder) (notify.Hook, error){
	"page-saved":          decodeHook[notify.PageSaveHook],
	"page-deleted":        decodeHook[notify.PageDeleteHook],
	"page-moved":          decodeHook[notify.PageMoveHook],
	"page-protected":      decodeHook[notify.PageProtectHook],
	"user-created":        decodeHook[notify.UserCreateHook],
	"user-blocked":        decodeHook[notify.UserBlockHook],
	"file-uploaded":       decodeHook[notify.FileUploadHook],
	"user-groups-changed": decodeHook[notify.UserGroupsHook],
}

func decodeHook[T notify.Hook](dec *json.Decoder) (notify.Hook, error) {
	var h T
	if err := dec.Decode(&h); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, err
	}
	return h, nil
}

// KnownHook reports whether name is a supported hook path segment.
func KnownHook(name string) bool {
	_, ok := hookDecoders[name]
	return ok
}

// HookResponse is the body returned for an accepted callback.
type HookResponse struct {
	Kind      entity.Kind    `json:"kind"`
	Outcome   notify.Outcome `json:"outcome"`
	RequestID string         `json:"request_id"`
}

// HookHandler serves POST /hooks/{hook}.
//
// Every callback that decodes is answered with 200 and its outcome, or 202
// when dispatch was deferred. Pipeline outcomes such as excluded or failed
// are not HTTP errors: the host never sees notification problems.
type HookHandler struct {
	Notifier Notifier
	// Token, when non-empty, must match the X-Hook-Token header.
	Token string
}

// NewHookHandler creates a HookHandler.
func NewHookHandler(n Notifier, token string) *HookHandler {
	return &HookHandler{Notifier: n, Token: token}
}

// Register mounts the handler on mux.
func (h *HookHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /hooks/{hook}", h)
}

func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Token != "" {
		got := r.Header.Get(HookTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
			respond.Error(w, http.StatusUnauthorized, "invalid hook token")
			return
		}
	}

	decode, ok := hookDecoders[r.PathValue("hook")]
	if !ok {
		respond.Error(w, http.StatusNotFound, "unknown hook")
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxHookBody))
	hook, err := decode(dec)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		respond.SafeError(w, respond.NewAppError(http.StatusBadRequest, "invalid JSON payload", err))
		return
	}

	res := h.Notifier.Notify(r.Context(), hook)

	code := http.StatusOK
	if res.Outcome == notify.OutcomeQueued {
		code = http.StatusAccepted
	}
	requestID := res.RequestID
	if requestID == "" {
		requestID = requestid.FromContext(r.Context())
	}
	respond.JSON(w, code, HookResponse{
		Kind:      res.Kind,
		Outcome:   res.Outcome,
		RequestID: requestID,
	})
}
