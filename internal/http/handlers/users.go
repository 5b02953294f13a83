package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/MatviieshynO/auth-service/internal/cache"
	"github.com/MatviieshynO/auth-service/internal/config"
	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/MatviieshynO/auth-service/internal/users"
	"github.com/gin-gonic/gin"
)

// UserLifecycle is the slice of the lifecycle service the handlers consume.
type UserLifecycle interface {
	Create(ctx context.Context, in users.CreateInput) (user.Projection, error)
	FindOne(ctx context.Context, id int64) (user.Projection, error)
	GetAll(ctx context.Context) ([]user.Projection, error)
	Update(ctx context.Context, id int64, in users.UpdateInput) (user.Projection, error)
	Delete(ctx context.Context, id int64) (user.Projection, error)
	ChangePassword(ctx context.Context, id int64, in users.ChangePasswordInput) (user.Projection, error)
}

type UsersHandler struct {
	svc   UserLifecycle
	cache *cache.Users // optional; nil disables read caching
}

func NewUsersHandler(svc UserLifecycle, projections *cache.Users) *UsersHandler {
	return &UsersHandler{svc: svc, cache: projections}
}

type CreateUserRequest struct {
	FirstName       string      `json:"first_name" binding:"required"`
	FamilyName      string      `json:"family_name" binding:"required"`
	Email           string      `json:"email" binding:"required,email"`
	Password        string      `json:"password" binding:"required,min=8"`
	ConfirmPassword string      `json:"confirm_password" binding:"required,min=8"`
	Gender          user.Gender `json:"gender" binding:"required,oneof=Male Female"`
	Role            user.Role   `json:"role" binding:"required,oneof=Admin User"`
}

type UpdateUserRequest struct {
	FirstName  *string      `json:"first_name" binding:"omitempty,min=1"`
	FamilyName *string      `json:"family_name" binding:"omitempty,min=1"`
	Gender     *user.Gender `json:"gender" binding:"omitempty,oneof=Male Female"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required,min=8"`
	NewPassword        string `json:"newPassword" binding:"required,min=8"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,min=8"`
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "id must be a positive integer")
		return 0, false
	}

	return id, true
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	projection, err := h.svc.Create(cctx, users.CreateInput{
		FirstName:       req.FirstName,
		FamilyName:      req.FamilyName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Gender:          req.Gender,
		Role:            req.Role,
	})

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.InvalidateList(cctx)
	}

	ctx.JSON(http.StatusCreated, projection)
}

func (h *UsersHandler) FindOne(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	if h.cache != nil {
		if p, hit := h.cache.GetProjection(cctx, id); hit {
			ctx.JSON(http.StatusOK, p)
			return
		}
	}

	projection, err := h.svc.FindOne(cctx, id)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.SetProjection(cctx, projection)
	}

	ctx.JSON(http.StatusOK, projection)
}

func (h *UsersHandler) GetAll(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	if h.cache != nil {
		if ps, hit := h.cache.GetList(cctx); hit {
			ctx.JSON(http.StatusOK, gin.H{"users": ps})
			return
		}
	}

	projections, err := h.svc.GetAll(cctx)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.SetList(cctx, projections)
	}

	ctx.JSON(http.StatusOK, gin.H{"users": projections})
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	projection, err := h.svc.Update(cctx, id, users.UpdateInput{
		FirstName:  req.FirstName,
		FamilyName: req.FamilyName,
		Gender:     req.Gender,
	})

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, id)
	}

	ctx.JSON(http.StatusOK, projection)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	projection, err := h.svc.Delete(cctx, id)

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, id)
	}

	ctx.JSON(http.StatusOK, projection)
}

func (h *UsersHandler) ChangePassword(ctx *gin.Context) {
	id, ok := userIDParam(ctx)

	if !ok {
		return
	}

	var req ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	projection, err := h.svc.ChangePassword(cctx, id, users.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	if h.cache != nil {
		h.cache.Invalidate(cctx, id)
	}

	ctx.JSON(http.StatusOK, projection)
}
