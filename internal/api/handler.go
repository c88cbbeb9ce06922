// Package api provides HTTP handlers for the chatbot webhook and admin
// endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/masshrc/chatbot/internal/alerts"
	"github.com/masshrc/chatbot/internal/dialogue"
	"github.com/masshrc/chatbot/internal/sms"
	"github.com/masshrc/chatbot/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	engine      *dialogue.Engine
	broadcaster *alerts.Broadcaster
	store       store.Store
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(engine *dialogue.Engine, broadcaster *alerts.Broadcaster, st store.Store) *Handler {
	return &Handler{
		engine:      engine,
		broadcaster: broadcaster,
		store:       st,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes mounts the public webhook and, when admin is non-nil, the
// admin endpoints behind it.
func (h *Handler) RegisterRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/sms", h.SMSWebhook)
	r.Get("/healthz", h.Health)
	if admin != nil {
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Post("/admin/alerts", h.BroadcastAlert)
		})
	}
}

// SMSWebhook handles one inbound message from the carrier. It always answers
// 200 with TwiML; a processing failure gets an apology message so the sender
// is never left without a reply.
func (h *Handler) SMSWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	in := dialogue.Inbound{
		From: r.PostFormValue("From"),
		Body: r.PostFormValue("Body"),
	}

	reply, err := h.engine.HandleMessage(r.Context(), in)
	var doc string
	if err == nil {
		doc, err = sms.RenderReply(reply)
	}
	if err != nil {
		doc, err = sms.RenderApology()
		if err != nil {
			Error(w, http.StatusInternalServerError, "failed to render response")
			return
		}
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

type broadcastRequest struct {
	Message string `json:"message"`
}

type broadcastResponse struct {
	Delivered int `json:"delivered"`
}

// BroadcastAlert sends an emergency alert to every subscriber.
func (h *Handler) BroadcastAlert(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	delivered, err := h.broadcaster.Broadcast(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, alerts.ErrEmptyMessage) {
			Error(w, http.StatusBadRequest, "alert message is empty")
			return
		}
		Error(w, http.StatusInternalServerError, "failed to broadcast alert")
		return
	}
	JSON(w, http.StatusOK, broadcastResponse{Delivered: delivered})
}

// Health reports database connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
