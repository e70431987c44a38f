package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/middleware"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/otcheredev/clinic-management/internal/services"
)

type ClinicHandler struct {
	clinicService *services.ClinicService
}

func NewClinicHandler(clinicService *services.ClinicService) *ClinicHandler {
	return &ClinicHandler{clinicService: clinicService}
}

// ListClinics returns the clinics visible to the caller
func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	clinics, err := h.clinicService.List(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, clinics)
}

// GetClinic returns a single clinic
func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid clinic ID"})
		return
	}

	clinic, err := h.clinicService.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, clinic)
}

// CreateClinic creates a new clinic
func (h *ClinicHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	var req models.ClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if req.Name == "" || req.Address == "" || req.ContactEmail == "" || req.ContactPhone == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}

	clinic, err := h.clinicService.Create(r.Context(), caller, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, clinic)
}

// UpdateClinic updates a clinic
func (h *ClinicHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid clinic ID"})
		return
	}

	var req models.ClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if req.Name == "" || req.Address == "" || req.ContactEmail == "" || req.ContactPhone == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing required fields"})
		return
	}

	clinic, err := h.clinicService.Update(r.Context(), caller, id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, clinic)
}

// DeleteClinic deletes a clinic
func (h *ClinicHandler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Not authenticated"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid clinic ID"})
		return
	}

	if err := h.clinicService.Delete(r.Context(), caller, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Clinic deleted successfully"})
}
