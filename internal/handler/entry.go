package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nadirh/cannalog/internal/apperror"
	"github.com/nadirh/cannalog/internal/auth"
	"github.com/nadirh/cannalog/internal/model"
	"github.com/nadirh/cannalog/internal/service"
)

// EntryHandler exposes the consumption-entry endpoints.
type EntryHandler struct {
	entries *service.EntryService
}

// NewEntryHandler creates an EntryHandler.
func NewEntryHandler(entries *service.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// numericString accepts a JSON number or a JSON string and keeps the raw
// text either way. Existing clients send dose quantities in both forms;
// validation of the value happens in the service, not here.
type numericString string

func (n *numericString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = numericString(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = numericString(num.String())
	return nil
}

type createEntryRequest struct {
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	Method     string        `json:"method"`
	Amount     numericString `json:"amount"`
	Puffs      numericString `json:"puffs"`
	THCPercent numericString `json:"thc_percent"`
	Strain     string        `json:"strain"`
	Mood       *int          `json:"mood"`
	Energy     *int          `json:"energy"`
	Focus      *int          `json:"focus"`
	Creativity *int          `json:"creativity"`
	Anxiety    *int          `json:"anxiety"`
	Activities []string      `json:"activities"`
	Notes      string        `json:"notes"`
}

type updateEntryRequest struct {
	Date       *string        `json:"date"`
	Time       *string        `json:"time"`
	Method     *string        `json:"method"`
	Amount     *numericString `json:"amount"`
	Puffs      *numericString `json:"puffs"`
	THCPercent *numericString `json:"thc_percent"`
	Strain     *string        `json:"strain"`
	Mood       *int           `json:"mood"`
	Energy     *int           `json:"energy"`
	Focus      *int           `json:"focus"`
	Creativity *int           `json:"creativity"`
	Anxiety    *int           `json:"anxiety"`
	Activities *[]string      `json:"activities"`
	Notes      *string        `json:"notes"`
}

// HandleCreate handles POST /api/v1/entries.
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	entry, err := h.entries.Create(r.Context(), userID, service.EntryInput{
		Date:       req.Date,
		Time:       req.Time,
		Method:     req.Method,
		Amount:     string(req.Amount),
		Puffs:      string(req.Puffs),
		THCPercent: string(req.THCPercent),
		Strain:     req.Strain,
		Mood:       req.Mood,
		Energy:     req.Energy,
		Focus:      req.Focus,
		Creativity: req.Creativity,
		Anxiety:    req.Anxiety,
		Activities: req.Activities,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HandleList handles GET /api/v1/entries with optional skip and limit
// query parameters.
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, apperror.ValidationFailed("skip", "skip must be an integer"))
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, apperror.ValidationFailed("limit", "limit must be an integer"))
		return
	}

	entries, err := h.entries.List(r.Context(), userID, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /api/v1/entries/{id}.
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.entries.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleUpdate handles PUT /api/v1/entries/{id}. Only fields present in the
// body change; the service recomputes the dose when a dose field is present.
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	upd := model.EntryUpdate{
		Date:       req.Date,
		Time:       req.Time,
		Method:     req.Method,
		Amount:     rawString(req.Amount),
		Puffs:      rawString(req.Puffs),
		THCPercent: rawString(req.THCPercent),
		Strain:     req.Strain,
		Mood:       req.Mood,
		Energy:     req.Energy,
		Focus:      req.Focus,
		Creativity: req.Creativity,
		Anxiety:    req.Anxiety,
		Activities: req.Activities,
		Notes:      req.Notes,
	}

	entry, err := h.entries.Update(r.Context(), userID, id, upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete handles DELETE /api/v1/entries/{id}.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	id, err := entryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.entries.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "entry deleted"})
}

// HandleStats handles GET /api/v1/entries/stats.
func (h *EntryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	stats, err := h.entries.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func entryID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func rawString(n *numericString) *string {
	if n == nil {
		return nil
	}
	s := string(*n)
	return &s
}
