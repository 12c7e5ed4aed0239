/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package middle

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/config"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/errors"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/utils"
)

// Logger logs one line per request with status and latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		klog.Infof("Request: Method=%s | Path=%s | Status=%d | IP=%s | Duration=%v",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			time.Since(startTime),
		)
	}
}

// Cors allows the configured frontend origins, or any origin when none
// are configured.
func Cors() gin.HandlerFunc {
	origins := config.GetCorsOrigins()
	return func(c *gin.Context) {
		origin := "*"
		if len(origins) > 0 {
			requestOrigin := c.Request.Header.Get("Origin")
			for _, allowed := range origins {
				if allowed == requestOrigin {
					origin = requestOrigin
					break
				}
			}
			if origin == "*" {
				origin = origins[0]
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Authorization, Accept, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authorize validates the bearer access token and loads the requesting
// user into the context.
func Authorize(dbClient *dbclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if tokenString == "" {
			utils.AbortWithApiError(c, errors.NewUnauthorized("missing authorization token"))
			return
		}
		claims, err := ParseAccessToken(tokenString)
		if err != nil {
			utils.AbortWithApiError(c, err)
			return
		}
		user, err := dbClient.GetUserByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
			return
		}
		if user == nil {
			utils.AbortWithApiError(c, errors.NewUserNotRegistered(claims.Subject))
			return
		}
		c.Set(common.ContextUser, user)
		c.Next()
	}
}

// GetCurrentUser returns the user loaded by Authorize, or nil.
func GetCurrentUser(c *gin.Context) *model.User {
	value, ok := c.Get(common.ContextUser)
	if !ok {
		return nil
	}
	user, ok := value.(*model.User)
	if !ok {
		return nil
	}
	return user
}
