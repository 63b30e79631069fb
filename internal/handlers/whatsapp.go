package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/warehub-io/warehub/internal/models"
)

// listWhatsappLogs returns the bot/provider event trail
func (rt *Router) listWhatsappLogs(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	logs, err := rt.svc.WhatsApp.Logs(req.Context(), req.URL.Query().Get("status"), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

// getWhatsappHealth reports the messaging channel health
func (rt *Router) getWhatsappHealth(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, rt.svc.WhatsApp.Health().Snapshot())
}

// whatsappInbound ingests a customer message. In production this is
// called by the provider webhook bridge; in development it doubles as a
// manual test entry point.
func (rt *Router) whatsappInbound(w http.ResponseWriter, req *http.Request) {
	var payload struct {
		UserPhone string `json:"user_phone"`
		Body      string `json:"body"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.UserPhone == "" {
		respondError(w, http.StatusBadRequest, "user_phone is required")
		return
	}

	conv, err := rt.svc.WhatsApp.HandleInbound(req.Context(), payload.UserPhone, payload.Body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

// listConversations returns conversations, most recently active first
func (rt *Router) listConversations(w http.ResponseWriter, req *http.Request) {
	list, err := rt.svc.WhatsApp.ListConversations(req.Context(), req.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// getConversationMessages returns a conversation's message history
func (rt *Router) getConversationMessages(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	messages, err := rt.svc.WhatsApp.Messages(req.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// assignConversation sets or clears the human agent on a thread.
// A null/absent user_id releases the thread back to the bot.
func (rt *Router) assignConversation(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	var payload struct {
		UserID *string `json:"user_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	conv, err := rt.svc.WhatsApp.Assign(req.Context(), id, payload.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conv)
}

// replyConversation sends an agent reply on a thread
func (rt *Router) replyConversation(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	message, err := rt.svc.WhatsApp.Reply(req.Context(), id, payload.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, message)
}

// setConversationStatus sets the conversation status explicitly
func (rt *Router) setConversationStatus(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	conv, err := rt.svc.WhatsApp.SetStatus(req.Context(), id, models.ConversationStatus(payload.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, conv)
}
