package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	dashboard "github.com/goliatone/go-analytics-dashboard/components/dashboard"
	"github.com/goliatone/go-analytics-dashboard/components/dashboard/commands"
)

const maxBodyBytes = 1 << 20

// Activator opens dashboard sessions for page requests.
type Activator interface {
	Activate(ctx context.Context, req dashboard.ActivateRequest) (*dashboard.Session, error)
	Session(id string) (*dashboard.Session, error)
}

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	API        Executor
	Sessions   Activator
	Controller *dashboard.Controller
	Events     *dashboard.EventBroadcaster
	Validator  *dashboard.LayoutChangeValidator
}

func (h *Handlers) validator() *dashboard.LayoutChangeValidator {
	if h.Validator == nil {
		h.Validator = dashboard.NewLayoutChangeValidator()
	}
	return h.Validator
}

func readBody(r *http.Request) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// respondState answers an action with the session read model.
func (h *Handlers) respondState(w http.ResponseWriter, r *http.Request, sessionID string, status int) {
	state, err := h.API.State(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, status, state)
}

// HandleDashboard renders the dashboard, reusing ?session= when it is still active.
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if h.Controller == nil || h.Sessions == nil {
		respondError(w, errNotConfigured)
		return
	}
	sessionID, err := ResolvePageSession(r.Context(), h.Sessions, r.URL.Query().Get("session"), r.URL.Query().Get("width"), r.URL.Query().Get("range"))
	if err != nil {
		respondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := h.Controller.RenderTemplate(r.Context(), sessionID, &buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// ResolvePageSession returns the requested session when it is still active, or
// activates a new one sized to width and filtered to dateRange.
func ResolvePageSession(ctx context.Context, sessions Activator, requested, width, dateRange string) (string, error) {
	if requested != "" {
		if session, err := sessions.Session(requested); err == nil {
			return session.ID, nil
		}
	}
	req := dashboard.ActivateRequest{}
	if w, err := strconv.Atoi(width); err == nil && w > 0 {
		req.ViewportWidth = w
	}
	if r, err := dashboard.ParseDateRange(dateRange); err == nil {
		req.DateRange = r
	}
	session, err := sessions.Activate(ctx, req)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.respondState(w, r, sessionID, http.StatusOK)
}

func (h *Handlers) HandleMount(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var payload MountPayload
	if err := DecodePayload(body, &payload); err != nil {
		respondError(w, err)
		return
	}
	if err := h.API.Mount(r.Context(), commands.MountInput{SessionID: sessionID, IDs: payload.IDs}); err != nil {
		respondError(w, err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

// HandleCommand publishes a chrome command. Subscribers react asynchronously, so the
// response is 202.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var payload CommandPayload
	if err := DecodePayload(body, &payload); err != nil {
		respondError(w, err)
		return
	}
	if !payload.Command.Valid() {
		respondError(w, fmt.Errorf("%w: %q", dashboard.ErrUnknownCommand, payload.Command))
		return
	}
	if err := h.API.Dispatch(r.Context(), commands.DispatchInput{SessionID: sessionID, Command: payload.Command}); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handlers) HandleLayout(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	input, err := DecodeLayoutChange(h.validator(), sessionID, body)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.API.ApplyLayout(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

// HandleRange changes the date range. An unknown range is not an error: the previous
// range stays and applied is false.
func (h *Handlers) HandleRange(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var payload RangePayload
	if err := DecodePayload(body, &payload); err != nil {
		respondError(w, err)
		return
	}
	requested := dashboard.DateRange(strings.ToLower(strings.TrimSpace(string(payload.Range))))
	if err := h.API.ChangeRange(r.Context(), commands.ChangeDateRangeInput{SessionID: sessionID, Range: requested}); err != nil {
		respondError(w, err)
		return
	}
	state, err := h.API.State(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RangeResponse{Applied: state.DateRange == requested, State: state})
}

func (h *Handlers) HandleSort(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var payload SortPayload
	if err := DecodePayload(body, &payload); err != nil {
		respondError(w, err)
		return
	}
	if err := h.API.Sort(r.Context(), commands.SortTableInput{SessionID: sessionID, Column: payload.Column}); err != nil {
		respondError(w, err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

func (h *Handlers) HandlePaginate(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var payload PagePayload
	if err := DecodePayload(body, &payload); err != nil {
		respondError(w, err)
		return
	}
	input := commands.PaginateInput{SessionID: sessionID, Action: payload.Action, Page: payload.Page}
	if err := h.API.Paginate(r.Context(), input); err != nil {
		respondError(w, err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

func (h *Handlers) HandleViewport(w http.ResponseWriter, r *http.Request, sessionID string) {
	body, err := readBody(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var payload ViewportPayload
	if err := DecodePayload(body, &payload); err != nil {
		respondError(w, err)
		return
	}
	if payload.Width <= 0 {
		respondError(w, fmt.Errorf("%w: width must be positive", ErrBadRequest))
		return
	}
	if err := h.API.Resize(r.Context(), commands.ResizeViewportInput{SessionID: sessionID, Width: payload.Width}); err != nil {
		respondError(w, err)
		return
	}
	h.respondState(w, r, sessionID, http.StatusOK)
}

// HandleDeactivate tears the session down. The persisted layout is kept.
func (h *Handlers) HandleDeactivate(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := h.API.Deactivate(r.Context(), commands.DeactivateSessionInput{SessionID: sessionID}); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport serves the filtered report as csv or pdf.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request, sessionID, format string) {
	state, err := h.API.State(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	file, err := RenderExport(state, format)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", file.Disposition())
	_, _ = w.Write(file.Body)
}

// HandleEvents streams coordinator events over a websocket.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		respondError(w, errNotConfigured)
		return
	}
	h.Events.ServeWebSocket(w, r)
}

// Mux registers every handler on a ServeMux under basePath.
func (h *Handlers) Mux(basePath string) *http.ServeMux {
	base := strings.TrimRight(basePath, "/") + "/dashboard"
	mux := http.NewServeMux()
	session := func(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, r.PathValue("session"))
		}
	}
	mux.HandleFunc("GET "+base, h.HandleDashboard)
	mux.HandleFunc("GET "+base+"/ws", h.HandleEvents)
	mux.HandleFunc("GET "+base+"/{session}/state", session(h.HandleState))
	mux.HandleFunc("POST "+base+"/{session}/mount", session(h.HandleMount))
	mux.HandleFunc("POST "+base+"/{session}/commands", session(h.HandleCommand))
	mux.HandleFunc("POST "+base+"/{session}/layout", session(h.HandleLayout))
	mux.HandleFunc("POST "+base+"/{session}/range", session(h.HandleRange))
	mux.HandleFunc("POST "+base+"/{session}/sort", session(h.HandleSort))
	mux.HandleFunc("POST "+base+"/{session}/page", session(h.HandlePaginate))
	mux.HandleFunc("POST "+base+"/{session}/viewport", session(h.HandleViewport))
	mux.HandleFunc("DELETE "+base+"/{session}", session(h.HandleDeactivate))
	mux.HandleFunc("GET "+base+"/{session}/export.csv", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("session"), "csv")
	})
	mux.HandleFunc("GET "+base+"/{session}/export.pdf", func(w http.ResponseWriter, r *http.Request) {
		h.HandleExport(w, r, r.PathValue("session"), "pdf")
	})
	return mux
}
