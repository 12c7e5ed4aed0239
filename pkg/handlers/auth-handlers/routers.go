/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package auth_handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openkcloud/kcloud-manage/pkg/common"
)

// InitAuthRouters registers the authentication routes.
func InitAuthRouters(engine *gin.Engine, handler *Handler) {
	group := engine.Group(common.RouterRootPath + "auth")
	group.POST("/login", handler.Login)
	group.POST("/refresh", handler.Refresh)
	group.POST("/create_user", handler.CreateUser)
}
