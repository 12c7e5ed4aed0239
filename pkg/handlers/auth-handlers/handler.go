/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package auth_handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/errors"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/middle"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/utils"
)

const defaultRole = "user"

type Handler struct {
	dbClient *dbclient.Client
}

func NewHandler(dbClient *dbclient.Client) *Handler {
	return &Handler{dbClient: dbClient}
}

// Login verifies the credentials and issues an access/refresh token pair.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}

	user, err := h.dbClient.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		utils.AbortWithApiError(c, errors.NewUnauthorized("invalid email or password"))
		return
	}

	accessToken, err := middle.IssueAccessToken(user.Email, user.Role)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	refreshToken, err := middle.IssueRefreshToken(user.Email, user.Role)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:      true,
		User:         toUserInfo(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Refresh validates a refresh token and issues a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}

	claims, err := middle.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		utils.AbortWithApiError(c, err)
		return
	}
	user, err := h.dbClient.GetUserByEmail(c.Request.Context(), claims.Subject)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if user == nil {
		utils.AbortWithApiError(c, errors.NewUserNotRegistered(claims.Subject))
		return
	}

	accessToken, err := middle.IssueAccessToken(user.Email, user.Role)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Success:     true,
		User:        toUserInfo(user),
		AccessToken: accessToken,
	})
}

// CreateUser registers a new user with a hashed password.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}

	existing, err := h.dbClient.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if existing != nil {
		utils.AbortWithApiError(c, errors.NewAlreadyExist("user already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	role := req.Role
	if role == "" {
		role = defaultRole
	}
	user := &model.User{
		Email:          req.Email,
		HashedPassword: string(hashed),
		Name:           req.Name,
		Role:           role,
		Department:     req.Department,
	}
	if err = h.dbClient.CreateUser(c.Request.Context(), user); err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, CreateUserResponse{Success: true, User: user.Email})
}

func toUserInfo(user *model.User) UserInfo {
	return UserInfo{
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
	}
}
