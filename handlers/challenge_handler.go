package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/middleware"
	"fitQuestAPI/services"
)

type ChallengeHandler struct {
	challengeService   *services.ChallengeService
	uploadService      *services.UploadService
	leaderboardService *services.LeaderboardService
}

func NewChallengeHandler(challengeService *services.ChallengeService, uploadService *services.UploadService, leaderboardService *services.LeaderboardService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService:   challengeService,
		uploadService:      uploadService,
		leaderboardService: leaderboardService,
	}
}

func challengeIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.challengeService.CreateChallenge(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challenges, err := h.challengeService.ListChallenges(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	details, err := h.challengeService.GetChallengeDetails(ctx, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, details)
}

func (h *ChallengeHandler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	var req challenge.UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.challengeService.UpdateChallenge(ctx, clerkID, id, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	if err := h.challengeService.DeleteChallenge(ctx, clerkID, id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted successfully"})
}

func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	if err := h.challengeService.JoinChallenge(ctx, clerkID, id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Joined challenge"})
}

// UploadProof accepts the daily proof photo for a challenge. Media
// uploads get a longer timeout than the usual handler budget.
func (h *ChallengeHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	id, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	var req challenge.UploadProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.uploadService.SubmitProof(ctx, clerkID, id, &req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyUploadedToday) {
			middleware.CountProofUpload("duplicate")
		} else {
			middleware.CountProofUpload("rejected")
		}
		respondWithServiceError(w, err)
		return
	}

	middleware.CountProofUpload("accepted")
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ChallengeHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	entries, err := h.leaderboardService.ChallengeLeaderboard(ctx, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
