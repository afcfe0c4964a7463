package handler

import (
	"log/slog"
	"net/http"

	"tracker/internal/delivery/api/response"
	deliverycontext "tracker/internal/delivery/context"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/domain/service"
	"tracker/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	ProfileUC usecase.ProfileUsecase
	Logger    *slog.Logger
}

// AccountHandler serves the caller's account, profile and avatar.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		profileUC: params.ProfileUC,
		logger:    params.Logger,
	}
}

// UpdateProfileRequest is a partial update of both account and profile fields.
type UpdateProfileRequest struct {
	FirstName *string  `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string  `json:"last_name" validate:"omitempty,max=150"`
	Rate      *float64 `json:"rate"`
	Cost      *float64 `json:"cost"`
	WorkHours *string  `json:"work_hours"`

	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	JobTitle *string `json:"job_title" validate:"omitempty,max=100"`
	Company  *string `json:"company" validate:"omitempty,max=100"`
	Bio      *string `json:"bio"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,max=200"`
	Timezone *string `json:"timezone" validate:"omitempty,max=50"`
}

func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	if err := h.accountUC.DeleteAccount(c.Request().Context(), deliverycontext.GetCaller(c)); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Message(c, "Account deleted successfully")
}

func (h *AccountHandler) GetProfile(c echo.Context) error {
	view, err := h.profileUC.GetProfile(c.Request().Context(), deliverycontext.GetCaller(c))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(view))
}

func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if ok, err := decode(c, &req); !ok {
		return err
	}

	view, err := h.profileUC.UpdateProfile(c.Request().Context(), deliverycontext.GetCaller(c), &usecase.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Rate:      req.Rate,
		Cost:      req.Cost,
		WorkHours: req.WorkHours,
		Phone:     req.Phone,
		JobTitle:  req.JobTitle,
		Company:   req.Company,
		Bio:       req.Bio,
		Location:  req.Location,
		Website:   req.Website,
		Timezone:  req.Timezone,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(view))
}

// UploadAvatar stores the multipart "avatar" file as the caller's avatar.
func (h *AccountHandler) UploadAvatar(c echo.Context) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return response.FromAppError(c, domainerrors.ErrValidationFailed.WithDetails("avatar file is required"))
	}
	file, err := fh.Open()
	if err != nil {
		return response.HandleAppError(c, err)
	}
	defer file.Close()

	view, err := h.profileUC.UploadAvatar(c.Request().Context(), deliverycontext.GetCaller(c), &usecase.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     file,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, newProfileResponse(view))
}

// ServeAvatar streams a stored avatar. Keys are content-addressed, so they cache forever.
func (h *AccountHandler) ServeAvatar(c echo.Context) error {
	reader, contentType, err := h.profileUC.OpenAvatar(c.Request().Context(), service.AvatarRoot+c.Param("*"))
	if err != nil {
		return response.HandleAppError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	return c.Stream(http.StatusOK, contentType, reader)
}
