package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/pkg/errors"
	"taskhub/internal/platform/models"
	"taskhub/internal/platform/repositories"
)

type TeamHandler struct {
	teamRepo *repositories.TeamRepository
	userRepo *repositories.UserRepository
}

func NewTeamHandler(teamRepo *repositories.TeamRepository, userRepo *repositories.UserRepository) *TeamHandler {
	return &TeamHandler{teamRepo: teamRepo, userRepo: userRepo}
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Name is required", nil)
		return
	}

	team := &models.Team{
		ID:             "team_" + uuid.NewString(),
		OrganizationID: claims.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
		CreatedAt:      time.Now().Unix(),
	}
	if err := h.teamRepo.Create(team); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create team", nil)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)

	teams, err := h.teamRepo.ListByOrg(claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": teams, "total": len(teams)})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	teamID := param(r, "team_id")

	team, err := h.teamRepo.GetByID(teamID, claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Team not found", nil)
		return
	}

	members, err := h.teamRepo.ListMembers(team.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	team.Members = members
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	teamID := param(r, "team_id")

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	team, err := h.teamRepo.GetByID(teamID, claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Team not found", nil)
		return
	}

	user, err := h.userRepo.GetByID(req.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if user == nil || user.OrganizationID != claims.OrganizationID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	if err := h.teamRepo.AddMember(team.ID, user.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to add member", nil)
		return
	}

	members, err := h.teamRepo.ListMembers(team.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	team.Members = members
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	teamID := param(r, "team_id")

	team, err := h.teamRepo.GetByID(teamID, claims.OrganizationID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if team == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Team not found", nil)
		return
	}

	members, err := h.teamRepo.ListMembers(team.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members, "total": len(members)})
}
