/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package storage_handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/middle"
)

// InitStorageRouters registers the storage routes, all token-protected.
func InitStorageRouters(engine *gin.Engine, handler *Handler, dbClient *dbclient.Client) {
	group := engine.Group(common.RouterRootPath+"storage", middle.Authorize(dbClient))
	group.POST("/create-nfs-storage", handler.CreateNfsStorage)
	group.GET("/storage-list", handler.StorageList)
	group.DELETE("/storage", handler.DeleteStorage)
}
