/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package handlers

import (
	"github.com/gin-gonic/gin"

	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/errors"
	auth_handlers "github.com/openkcloud/kcloud-manage/pkg/handlers/auth-handlers"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/middle"
	server_handlers "github.com/openkcloud/kcloud-manage/pkg/handlers/server-handlers"
	storage_handlers "github.com/openkcloud/kcloud-manage/pkg/handlers/storage-handlers"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/utils"
	"github.com/openkcloud/kcloud-manage/pkg/kube"
)

// InitHttpHandlers creates the gin engine, sets up logging, recovery
// and CORS middleware, and registers all API routes.
func InitHttpHandlers(dbClient *dbclient.Client, kubeClient *kube.Client) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(middle.Logger(), gin.Recovery(), middle.Cors())
	engine.NoRoute(func(c *gin.Context) {
		utils.AbortWithApiError(c, errors.NewNotFoundWithMessage(c.Request.RequestURI+" not found"))
	})

	auth_handlers.InitAuthRouters(engine, auth_handlers.NewHandler(dbClient))
	server_handlers.InitServerRouters(engine, server_handlers.NewHandler(dbClient, kubeClient), dbClient)
	storage_handlers.InitStorageRouters(engine, storage_handlers.NewHandler(dbClient, kubeClient), dbClient)

	return engine, nil
}
