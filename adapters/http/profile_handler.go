package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	profileUC "github.com/khoahotran/devprofiles/internal/application/usecase/profile"
	"github.com/khoahotran/devprofiles/pkg/apperror"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

type ProfileHandler struct {
	upsertUseCase *profileUC.UpsertProfileUseCase
	queryUseCase  *profileUC.ProfileQueryUseCase
	deleteUseCase *profileUC.DeleteAccountUseCase
	validator     *RequestValidator
	logger        logger.Logger
}

func NewProfileHandler(
	upsertUC *profileUC.UpsertProfileUseCase,
	queryUC *profileUC.ProfileQueryUseCase,
	deleteUC *profileUC.DeleteAccountUseCase,
	validator *RequestValidator,
	log logger.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		upsertUseCase: upsertUC,
		queryUseCase:  queryUC,
		deleteUseCase: deleteUC,
		validator:     validator,
		logger:        log,
	}
}

// GetOwnProfile handles GET /api/profile/me.
func (h *ProfileHandler) GetOwnProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	output, err := h.queryUseCase.ExecuteGetOwn(c.Request.Context(), profileUC.GetOwnProfileInput{OwnerID: ownerID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

// UpsertProfile handles POST /api/profile.
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile upsert", err))
		return
	}

	if violations := h.validator.Validate(&req); len(violations) > 0 {
		c.Error(apperror.NewValidationFailed(violations))
		return
	}

	input := profileUC.UpsertProfileInput{
		OwnerID: ownerID,
		Fields:  req.ToDomainFields(),
	}
	output, err := h.upsertUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

// ListProfiles handles GET /api/profile.
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	output, err := h.queryUseCase.ExecuteListProfiles(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTOs(output.Profiles))
}

// GetProfileByAccountID handles GET /api/profile/user/:user_id.
func (h *ProfileHandler) GetProfileByAccountID(c *gin.Context) {
	input := profileUC.GetProfileByAccountInput{AccountID: c.Param("user_id")}
	output, err := h.queryUseCase.ExecuteGetByAccountID(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTO(output.Profile))
}

// DeleteAccount handles DELETE /api/profile.
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	if _, err := h.deleteUseCase.Execute(c.Request.Context(), profileUC.DeleteAccountInput{OwnerID: ownerID}); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Msg: "User deleted"})
}
