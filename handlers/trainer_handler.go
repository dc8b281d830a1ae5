package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fitQuestAPI/internal/types/message"
	"fitQuestAPI/internal/types/trainer"
	"fitQuestAPI/middleware"
	"fitQuestAPI/services"
)

type TrainerHandler struct {
	trainerService *services.TrainerService
	messageService *services.MessageService
}

func NewTrainerHandler(trainerService *services.TrainerService, messageService *services.MessageService) *TrainerHandler {
	return &TrainerHandler{
		trainerService: trainerService,
		messageService: messageService,
	}
}

func trainerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func (h *TrainerHandler) CreateTrainer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req trainer.UpsertTrainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.trainerService.CreateTrainer(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *TrainerHandler) ListTrainers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	trainers, err := h.trainerService.ListTrainers(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, trainers)
}

func (h *TrainerHandler) GetTrainer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	trainerID, err := trainerIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trainer ID")
		return
	}

	t, err := h.trainerService.GetTrainer(ctx, trainerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, t)
}

func (h *TrainerHandler) UpdateTrainer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainerID, err := trainerIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trainer ID")
		return
	}

	var req trainer.UpsertTrainerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.trainerService.UpdateTrainer(ctx, clerkID, trainerID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *TrainerHandler) DeleteTrainer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainerID, err := trainerIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trainer ID")
		return
	}

	if err := h.trainerService.DeleteTrainer(ctx, clerkID, trainerID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Trainer deleted successfully"})
}

func (h *TrainerHandler) PurchaseTrainer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainerID, err := trainerIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trainer ID")
		return
	}

	result, err := h.trainerService.PurchaseTrainer(ctx, clerkID, trainerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *TrainerHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainerID, err := trainerIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trainer ID")
		return
	}

	var req message.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sent, err := h.messageService.SendMessage(ctx, clerkID, trainerID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sent)
}

func (h *TrainerHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	trainerID, err := trainerIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid trainer ID")
		return
	}

	messages, err := h.messageService.Thread(ctx, clerkID, trainerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}
