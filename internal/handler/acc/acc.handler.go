package acchandler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"account-service/internal/domain"
	"account-service/internal/response"
	accservice "account-service/internal/service/acc"
	"account-service/internal/xerrors"
)

const maxMultipartMemory = 10 << 20

// AccountHandler exposes the profile mutation routes.
type AccountHandler struct {
	service *accservice.AccountService
}

func NewAccountHandler(service *accservice.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation → 400, unknown account → 404, anything else → 500. The
// underlying cause is logged, never returned.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case xerrors.IsValidation(err):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, "User not found")
	default:
		log.Printf("[ERROR] %s: %v", op, err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func requireUserUUID(w http.ResponseWriter, userUUID string) bool {
	if userUUID == "" {
		response.Error(w, http.StatusBadRequest, "userUuid is required")
		return false
	}
	if err := uuid.Validate(userUUID); err != nil {
		response.Error(w, http.StatusBadRequest, "userUuid is not a valid uuid")
		return false
	}
	return true
}

type bioUpdateRequest struct {
	UserUUID string                  `json:"userUuid"`
	Bio      domain.Optional[string] `json:"bio"`
}

// HandleBioUpdate sets or clears the account bio. An absent or blank bio
// clears the field.
func (h *AccountHandler) HandleBioUpdate(w http.ResponseWriter, r *http.Request) {
	var req bioUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserUUID(w, req.UserUUID) {
		return
	}

	bio := req.Bio
	if !bio.Present {
		bio = domain.Null[string]()
	}

	updated, err := h.service.UpdateFields(r.Context(), req.UserUUID, domain.FieldPatch{Bio: bio})
	if err != nil {
		writeServiceError(w, "bio update", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bio":     updated.Bio,
		"message": "Bio updated successfully",
	})
}

type detailsUpdateRequest struct {
	UserUUID       string                  `json:"userUuid"`
	Gender         domain.Optional[string] `json:"gender"`
	Specialization domain.Optional[string] `json:"specialization"`
}

// HandleDetailsUpdate updates gender and/or specialization. Only fields
// present in the request are touched or echoed back.
func (h *AccountHandler) HandleDetailsUpdate(w http.ResponseWriter, r *http.Request) {
	var req detailsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserUUID(w, req.UserUUID) {
		return
	}

	updated, err := h.service.UpdateFields(r.Context(), req.UserUUID, domain.FieldPatch{
		Gender:         req.Gender,
		Specialization: req.Specialization,
	})
	if err != nil {
		writeServiceError(w, "details update", err)
		return
	}

	out := map[string]interface{}{
		"success": true,
		"message": "Account details updated successfully",
	}
	if req.Gender.Present {
		out["gender"] = updated.Gender
	}
	if req.Specialization.Present {
		out["specialization"] = updated.Specialization
	}
	response.JSON(w, http.StatusOK, out)
}

type nameUpdateRequest struct {
	UserUUID string `json:"userUuid"`
	Name     string `json:"name"`
}

// HandleNameUpdate sets the display name.
func (h *AccountHandler) HandleNameUpdate(w http.ResponseWriter, r *http.Request) {
	var req nameUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserUUID == "" || req.Name == "" {
		response.Error(w, http.StatusBadRequest, "userUuid and name are required")
		return
	}
	if !requireUserUUID(w, req.UserUUID) {
		return
	}

	updated, err := h.service.UpdateFields(r.Context(), req.UserUUID, domain.FieldPatch{
		Name: domain.Some(req.Name),
	})
	if err != nil {
		writeServiceError(w, "name update", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"name":    updated.Name,
		"message": "Name updated successfully",
	})
}

// HandlePictureUpload accepts a multipart picture and repoints the
// account at the new object.
func (h *AccountHandler) HandlePictureUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		log.Printf("[ERROR] failed to parse multipart form: %v", err)
		response.Error(w, http.StatusBadRequest, "failed to parse form data")
		return
	}

	userUUID := r.FormValue("userUuid")
	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "File and userUuid are required")
		return
	}
	defer file.Close()

	if userUUID == "" {
		response.Error(w, http.StatusBadRequest, "File and userUuid are required")
		return
	}
	if !requireUserUUID(w, userUUID) {
		return
	}
	log.Printf("[INFO] starting picture upload for uuid=%s file=%s", userUUID, header.Filename)

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[ERROR] failed to read upload for uuid=%s: %v", userUUID, err)
		response.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	url, objectName, err := h.service.UploadPicture(r.Context(), userUUID, data, header.Filename, contentType)
	if err != nil {
		writeServiceError(w, "picture upload", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"url":      url,
		"fileName": objectName,
	})
}

type pictureDeleteRequest struct {
	UserUUID      string `json:"userUuid"`
	CurrentPicURL string `json:"currentPicUrl"`
}

// HandlePictureDelete clears the account picture; a no-op when none is
// set.
func (h *AccountHandler) HandlePictureDelete(w http.ResponseWriter, r *http.Request) {
	var req pictureDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserUUID(w, req.UserUUID) {
		return
	}

	if err := h.service.DeletePicture(r.Context(), req.UserUUID, req.CurrentPicURL); err != nil {
		writeServiceError(w, "picture delete", err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile picture deleted successfully",
	})
}
