package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fitQuestAPI/services"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps service sentinel errors to HTTP status
// codes. Anything unrecognized becomes a 500 with a generic message so
// internals do not leak to clients.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, services.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrChallengeNotFound):
		respondWithError(w, http.StatusNotFound, "Challenge not found")
	case errors.Is(err, services.ErrTrainerNotFound):
		respondWithError(w, http.StatusNotFound, "Trainer not found")
	case errors.Is(err, services.ErrGoalNotFound):
		respondWithError(w, http.StatusNotFound, "Goal not found")
	case errors.Is(err, services.ErrAlreadyJoined):
		respondWithError(w, http.StatusConflict, "Already joined this challenge")
	case errors.Is(err, services.ErrChallengeExpired):
		respondWithError(w, http.StatusConflict, "Challenge has already ended")
	case errors.Is(err, services.ErrChallengeInactive):
		respondWithError(w, http.StatusConflict, "Challenge is not active")
	case errors.Is(err, services.ErrStreakTooLow):
		respondWithError(w, http.StatusForbidden, "Streak requirement not met")
	case errors.Is(err, services.ErrNotParticipant):
		respondWithError(w, http.StatusForbidden, "Not a participant of this challenge")
	case errors.Is(err, services.ErrAlreadyUploadedToday):
		respondWithError(w, http.StatusConflict, "Proof already uploaded today")
	case errors.Is(err, services.ErrAlreadyFollowing):
		respondWithError(w, http.StatusConflict, "Already following this user")
	case errors.Is(err, services.ErrNotFollowing):
		respondWithError(w, http.StatusConflict, "Not following this user")
	case errors.Is(err, services.ErrSelfFollow):
		respondWithError(w, http.StatusBadRequest, "Cannot follow yourself")
	case errors.Is(err, services.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, "Invalid status change")
	case errors.Is(err, services.ErrMediaUpload):
		respondWithError(w, http.StatusBadGateway, "Failed to store media")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
