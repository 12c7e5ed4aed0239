/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package storage_handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/config"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/errors"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/middle"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/utils"
	"github.com/openkcloud/kcloud-manage/pkg/kube"
)

type Handler struct {
	dbClient   *dbclient.Client
	kubeClient *kube.Client
}

func NewHandler(dbClient *dbclient.Client, kubeClient *kube.Client) *Handler {
	return &Handler{
		dbClient:   dbClient,
		kubeClient: kubeClient,
	}
}

// CreateNfsStorage provisions a statically bound PV/PVC pair on an NFS
// export and records the claim for the requesting user.
func (h *Handler) CreateNfsStorage(c *gin.Context) {
	var req NfsStorageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}
	user := middle.GetCurrentUser(c)
	ctx := c.Request.Context()

	uniqueId := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	prefix := config.GetDashboardPrefix()
	pvName := fmt.Sprintf("%spv-%s-%s", prefix, req.PvcName, uniqueId)
	pvcName := fmt.Sprintf("%sclaim-%s-%s", prefix, req.PvcName, uniqueId)

	err := h.kubeClient.CreateNfsVolume(ctx, pvName, pvcName, req.NfsServer, req.NfsPath, req.StorageSize)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(fmt.Sprintf("failed to create nfs volume: %v", err)))
		return
	}

	pvc := &model.Pvc{
		UserID:    user.ID,
		PvcName:   pvcName,
		Pv:        pvName,
		Path:      req.NfsPath,
		CreatedAt: time.Now(),
	}
	if err = h.dbClient.CreatePvc(ctx, pvc); err != nil {
		h.kubeClient.CleanupNfsVolume(ctx, pvName, pvcName)
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, NfsStorageCreateResponse{
		Message: "nfs storage created",
		PvName:  pvName,
		PvcName: pvcName,
		NfsPath: req.NfsPath,
		PvcID:   pvc.ID,
	})
}

// StorageList returns the requesting user's claims.
func (h *Handler) StorageList(c *gin.Context) {
	user := middle.GetCurrentUser(c)
	pvcs, err := h.dbClient.ListPvcsByUser(c.Request.Context(), user.ID)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	response := make([]PvcResponse, 0, len(pvcs))
	for _, pvc := range pvcs {
		response = append(response, PvcResponse{
			ID:        pvc.ID,
			PvcName:   pvc.PvcName,
			Pv:        pvc.Pv,
			Path:      pvc.Path,
			CreatedAt: pvc.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// DeleteStorage removes a claim and its backing volume.
func (h *Handler) DeleteStorage(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}
	user := middle.GetCurrentUser(c)
	ctx := c.Request.Context()

	pvc, err := h.dbClient.GetPvcByNameAndUser(ctx, req.Name, user.ID)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if pvc == nil {
		utils.AbortWithApiError(c, errors.NewPvcNotFound(req.Name))
		return
	}

	if err := h.kubeClient.DeletePvc(ctx, pvc.PvcName); err != nil {
		klog.Errorf("failed to delete pvc %s: %v", pvc.PvcName, err)
	}
	if pvc.Pv != "" {
		if err := h.kubeClient.DeletePv(ctx, pvc.Pv); err != nil {
			klog.Errorf("failed to delete pv %s: %v", pvc.Pv, err)
		}
	}
	if err := h.dbClient.DeletePvc(ctx, pvc.ID); err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
