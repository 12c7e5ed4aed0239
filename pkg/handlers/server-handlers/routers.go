/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package server_handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/middle"
)

// InitServerRouters registers the workspace routes. Browse and the
// cluster-wide list are open; everything acting on the requesting
// user's resources requires a token.
func InitServerRouters(engine *gin.Engine, handler *Handler, dbClient *dbclient.Client) {
	group := engine.Group(common.RouterRootPath + "server")
	group.GET("/browse", handler.Browse)
	group.GET("/list", handler.List)

	authorized := group.Group("", middle.Authorize(dbClient))
	authorized.GET("/my-server", handler.MyServers)
	authorized.GET("/my-pvcs", handler.MyPvcs)
	authorized.POST("/create-pod", handler.CreatePod)
	authorized.DELETE("/delete-server", handler.DeleteServer)
	authorized.DELETE("/delete-pvc", handler.DeletePvc)
}
