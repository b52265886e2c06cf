package commentary

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lampstand/commentary/pkg/identity"
)

// resolveHandler returns a handler for commentary resolution.
// GET /resolve?book=&chapter=&verse=&mode=
func resolveHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)

		book := r.URL.Query().Get("book")
		chapter, err := queryInt(r, "chapter")
		if err != nil {
			writeServiceError(w, err)
			return
		}
		verse, err := queryIntOptional(r, "verse")
		if err != nil {
			writeServiceError(w, err)
			return
		}
		mode := EntryMatchMode(r.URL.Query().Get("mode"))

		res, err := resolver.Resolve(r.Context(), book, chapter, verse, mode, caller)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type createEntryRequest struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   *int   `json:"verse"`
	Content string `json:"content"`
}

// createEntryHandler returns a handler that creates a new DRAFT entry
// owned by the caller.
func createEntryHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)

		var req createEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeServiceError(w, errInvalidInput("body", "invalid request body"))
			return
		}

		entry, err := svc.CreateDraft(r.Context(), caller, req.Book, req.Chapter, req.Verse, req.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

// getEntryHandler returns a handler for a single visibility-checked
// entry fetch.
func getEntryHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)
		entry, err := svc.GetEntry(r.Context(), caller, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

type updateEntryRequest struct {
	Content string `json:"content"`
}

// updateEntryHandler returns a handler for author/admin content edits.
func updateEntryHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)

		var req updateEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeServiceError(w, errInvalidInput("body", "invalid request body"))
			return
		}

		entry, err := svc.UpdateContent(r.Context(), caller, chi.URLParam(r, "id"), req.Content)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

type transitionRequest struct {
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// transitionResponse wraps a transitioned entry with the next states
// the caller could reach from it.
type transitionResponse struct {
	Entry   *CommentaryEntry `json:"entry"`
	Allowed []Status         `json:"allowedTransitions,omitempty"`
}

// transitionHandler returns a handler that moves an entry through the
// lifecycle state machine.
func transitionHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)

		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeServiceError(w, errInvalidInput("body", "invalid request body"))
			return
		}
		target, ok := ParseStatus(req.Target)
		if !ok {
			writeServiceError(w, errInvalidInput("target", "unknown target status"))
			return
		}

		entry, err := svc.Transition(r.Context(), caller, chi.URLParam(r, "id"), target, req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transitionResponse{
			Entry:   entry,
			Allowed: svc.Machine().AllowedTransitions(entry, caller),
		})
	}
}

// listMineHandler returns a handler listing the caller's entries in
// every status.
func listMineHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)
		entries, err := svc.ListMine(r.Context(), caller)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

// reviewQueueHandler returns a handler for the admin review queue.
func reviewQueueHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)
		entries, err := svc.ListPendingReview(r.Context(), caller)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

// historyHandler returns a handler for an entry's audit trail.
func historyHandler(svc *LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromRequest(r)

		pageSize := 0
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}
		events, nextToken, err := svc.EntryHistory(r.Context(), caller, chi.URLParam(r, "id"), pageSize, r.URL.Query().Get("pageToken"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"events":        events,
			"nextPageToken": nextToken,
		})
	}
}

// queryInt parses a required positive integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errInvalidReference(name, "missing required parameter")
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errInvalidReference(name, "must be a positive integer")
	}
	return v, nil
}

// queryIntOptional parses an optional positive integer query parameter,
// returning nil when absent.
func queryIntOptional(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, errInvalidReference(name, "must be a positive integer")
	}
	return &v, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError writes a structured service error, or a generic
// 500 for unexpected failures.
func writeServiceError(w http.ResponseWriter, err error) {
	if e, ok := AsError(err); ok {
		writeJSON(w, HTTPStatus(err), map[string]any{"error": e})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": &Error{Code: "internal", Message: err.Error()},
	})
}
