/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package server_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/config"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/errors"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/middle"
	"github.com/openkcloud/kcloud-manage/pkg/handlers/utils"
	"github.com/openkcloud/kcloud-manage/pkg/kube"
)

// gpuResource maps a requested flavor label to the extended resource
// name and count put on the pod.
type gpuResource struct {
	name  string
	count int64
}

var gpuFlavorResources = map[string]gpuResource{
	"2g.20gb":       {"nvidia.com/mig-2g.20gb", 1},
	"3g.40gb":       {"nvidia.com/mig-3g.40gb", 1},
	"4g.40gb":       {"nvidia.com/mig-4g.40gb", 1},
	"A100 80GB":     {"nvidia.com/gpu", 1},
	"A100 80GB x 2": {"nvidia.com/gpu", 2},
}

var digitsPattern = regexp.MustCompile(`\d+`)

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

// Browse proxies a file listing request to the data observer service.
func (h *Handler) Browse(c *gin.Context) {
	endpoint := config.GetDataObserverEndpoint()
	if endpoint == "" {
		utils.AbortWithApiError(c, errors.NewInternalError("data observer endpoint is not configured"))
		return
	}
	path := c.DefaultQuery("path", "/")
	// The UI prepends the storage root; the observer wants the path
	// relative to it.
	parts := strings.Split(path, "/")
	relative := "/"
	if len(parts) > 2 {
		relative += strings.Join(parts[2:], "/")
	}

	browseUrl, err := url.Parse(endpoint + "/browse")
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	query := browseUrl.Query()
	query.Set("path", relative)
	browseUrl.RawQuery = query.Encode()

	httpCli := &http.Client{Timeout: 20 * time.Second}
	resp, err := httpCli.Get(browseUrl.String())
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(fmt.Sprintf("data observer call failed: %v", err)))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if resp.StatusCode != http.StatusOK {
		utils.AbortWithApiError(c, errors.NewInternalError(
			fmt.Sprintf("data observer returned status %d", resp.StatusCode)))
		return
	}
	if json.Valid(body) {
		c.Data(http.StatusOK, "application/json", body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": string(body)})
}

// List returns all pod records with their node placement.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	servers, err := h.dbClient.ListServers(ctx)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	response := make([]EntireServerResponse, 0, len(servers))
	for _, server := range servers {
		nodeInfo, err := h.nodePlacement(c, server.ID)
		if err != nil {
			utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
			return
		}
		userName := ""
		if server.User != nil {
			userName = server.User.Name
		}
		response = append(response, EntireServerResponse{
			UserName:  userName,
			Gpu:       server.Gpu,
			CpuMem:    fmt.Sprintf("%s/%s", server.Cpu, server.Memory),
			CreatedAt: server.RequestTime,
			Status:    server.Status,
			Node:      nodeInfo,
			Tags:      server.Tags,
		})
	}
	c.JSON(http.StatusOK, response)
}

// nodePlacement renders the "worker [gpu]" / "worker [gpu, mig]"
// strings for a server's mapped flavors.
func (h *Handler) nodePlacement(c *gin.Context, serverID int64) ([]string, error) {
	ctx := c.Request.Context()
	mappings, err := h.dbClient.ListMappingsByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	var nodeInfo []string
	for _, mapping := range mappings {
		flavor, err := h.dbClient.GetFlavorByID(ctx, mapping.FlavorID)
		if err != nil {
			return nil, err
		}
		if flavor == nil {
			continue
		}
		if flavor.MigID != nil {
			nodeInfo = append(nodeInfo, fmt.Sprintf("%s [%d, %d]", flavor.WorkerNode, flavor.GpuID, *flavor.MigID))
		} else {
			nodeInfo = append(nodeInfo, fmt.Sprintf("%s [%d]", flavor.WorkerNode, flavor.GpuID))
		}
	}
	if len(nodeInfo) == 0 {
		nodeInfo = []string{"None"}
	}
	return nodeInfo, nil
}

// MyServers returns the requesting user's portal-created workspaces.
func (h *Handler) MyServers(c *gin.Context) {
	user := middle.GetCurrentUser(c)
	servers, err := h.dbClient.ListServersByUserAndTag(c.Request.Context(), user.ID, common.TagLegend)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	response := make([]MyServerResponse, 0, len(servers))
	for _, server := range servers {
		response = append(response, MyServerResponse{
			ID:          server.ID,
			UserName:    user.Name,
			ServerName:  server.ServerName,
			PodName:     server.PodName,
			Description: server.Description,
			Gpu:         server.Gpu,
			Cpu:         server.Cpu,
			Memory:      server.Memory,
			CreatedAt:   server.RequestTime,
			Status:      server.Status,
			InternalIp:  server.InternalIp,
			Tags:        server.Tags,
		})
	}
	c.JSON(http.StatusOK, response)
}

// MyPvcs returns the requesting user's claims for the create-pod dropdown.
func (h *Handler) MyPvcs(c *gin.Context) {
	user := middle.GetCurrentUser(c)
	pvcs, err := h.dbClient.ListPvcsByUser(c.Request.Context(), user.ID)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	response := PvcListResponse{Pvcs: make([]PvcDropdownResponse, 0, len(pvcs))}
	for _, pvc := range pvcs {
		response.Pvcs = append(response.Pvcs, PvcDropdownResponse{
			ID:      pvc.ID,
			PvcName: pvc.PvcName,
			Path:    pvc.Path,
		})
	}
	c.JSON(http.StatusOK, response)
}

// CreatePod provisions a workspace pod with its storage, records it
// with the LEGEND tag and waits until the pod is addressable.
func (h *Handler) CreatePod(c *gin.Context) {
	var req PodCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}
	user := middle.GetCurrentUser(c)
	ctx := c.Request.Context()

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	name := fmt.Sprintf("%s-%s", strings.ReplaceAll(req.Name, " ", "-"), suffix)
	podName := config.GetDashboardPrefix() + name

	pvcObj, freshPvc, err := h.preparePvc(c, &req, user, name)
	if err != nil {
		utils.AbortWithApiError(c, err)
		return
	}

	spec := &kube.WorkspacePodSpec{
		PodName:         podName,
		Image:           req.Image,
		Cpu:             digitsPattern.FindString(req.Cpu),
		Memory:          digitsPattern.FindString(req.Memory) + "Gi",
		PvcName:         pvcObj.PvcName,
		SharedPvcName:   config.GetSharedPvc(),
		ImagePullSecret: config.GetImagePullSecret(),
	}
	if req.Gpu != "" && req.Gpu != "None" {
		resource, ok := gpuFlavorResources[req.Gpu]
		if !ok {
			h.rollbackPvc(ctx, pvcObj, freshPvc)
			utils.AbortWithApiError(c, errors.NewBadRequest(fmt.Sprintf("unknown gpu flavor %q", req.Gpu)))
			return
		}
		spec.GpuResource = resource.name
		spec.GpuCount = resource.count
	}

	if err := h.kubeClient.CreateWorkspacePod(ctx, spec); err != nil {
		h.rollbackPvc(ctx, pvcObj, freshPvc)
		utils.AbortWithApiError(c, errors.NewInternalError(fmt.Sprintf("pod creation failed: %v", err)))
		return
	}

	userID := user.ID
	server := &model.Server{
		UserID:      &userID,
		ServerName:  req.Name,
		PodName:     podName,
		Cpu:         req.Cpu,
		Memory:      req.Memory,
		Gpu:         req.Gpu,
		Description: req.Description,
		Status:      common.StatusCreating,
		Tags:        common.TagLegend,
		RequestTime: time.Now(),
	}
	if err := h.dbClient.CreateServer(ctx, server); err != nil {
		h.rollbackPod(ctx, podName, nil)
		h.rollbackPvc(ctx, pvcObj, freshPvc)
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	internalIp, err := h.kubeClient.WaitForPodIP(ctx, podName)
	if err != nil {
		h.rollbackPod(ctx, podName, server)
		h.rollbackPvc(ctx, pvcObj, freshPvc)
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	server.InternalIp = internalIp
	server.Status = common.StatusRunning
	if err := h.dbClient.SaveServer(ctx, server); err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if err := h.dbClient.AppendServerPvc(ctx, server, pvcObj); err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Success!"})
}

// preparePvc creates a fresh claim or validates the requested existing
// one. The bool result reports whether the claim was created here.
func (h *Handler) preparePvc(c *gin.Context, req *PodCreateRequest, user *model.User, name string) (*model.Pvc, bool, error) {
	ctx := c.Request.Context()
	if req.Pvc {
		pvcName := fmt.Sprintf("%sclaim-%s", config.GetDashboardPrefix(), name)
		pvName, err := h.kubeClient.CreateWorkspacePvc(ctx, pvcName)
		if err != nil {
			return nil, false, errors.NewInternalError(fmt.Sprintf("pvc creation failed: %v", err))
		}
		pvcObj := &model.Pvc{
			UserID:    user.ID,
			PvcName:   pvcName,
			Pv:        pvName,
			Path:      fmt.Sprintf("/nfsvolume/%s-%s-%s", h.kubeClient.Namespace(), pvcName, pvName),
			CreatedAt: time.Now(),
		}
		if err := h.dbClient.CreatePvc(ctx, pvcObj); err != nil {
			if cleanupErr := h.kubeClient.DeletePvc(ctx, pvcName); cleanupErr != nil {
				klog.Errorf("failed to clean up pvc %s: %v", pvcName, cleanupErr)
			}
			return nil, false, errors.NewInternalError(fmt.Sprintf("failed to record pvc: %v", err))
		}
		return pvcObj, true, nil
	}

	pvcObj, err := h.dbClient.GetPvcByID(ctx, req.PvcID)
	if err != nil {
		return nil, false, errors.NewInternalError(err.Error())
	}
	if pvcObj == nil || pvcObj.PvcName != req.PvcName {
		return nil, false, errors.NewPvcNotFound(req.PvcName)
	}
	return pvcObj, false, nil
}

// rollbackPod best-effort removes a half-created pod and its record.
func (h *Handler) rollbackPod(ctx context.Context, podName string, server *model.Server) {
	if err := h.kubeClient.DeletePod(ctx, podName); err != nil {
		klog.Errorf("failed to roll back pod %s: %v", podName, err)
	}
	if server != nil {
		if err := h.dbClient.DeleteServer(ctx, server.ID); err != nil {
			klog.Errorf("failed to roll back server record %s: %v", podName, err)
		}
	}
}

// rollbackPvc best-effort removes a claim that was created for this
// request. Pre-existing claims are left alone.
func (h *Handler) rollbackPvc(ctx context.Context, pvc *model.Pvc, fresh bool) {
	if !fresh || pvc == nil {
		return
	}
	if err := h.kubeClient.DeletePvc(ctx, pvc.PvcName); err != nil {
		klog.Errorf("failed to roll back pvc %s: %v", pvc.PvcName, err)
	}
	if err := h.dbClient.DeletePvc(ctx, pvc.ID); err != nil {
		klog.Errorf("failed to roll back pvc record %s: %v", pvc.PvcName, err)
	}
}

// DeleteServer releases the server's GPUs, drops its record and
// removes the pod from the cluster.
func (h *Handler) DeleteServer(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithApiError(c, errors.NewBadRequest(err.Error()))
		return
	}
	user := middle.GetCurrentUser(c)
	ctx := c.Request.Context()

	server, err := h.dbClient.GetServerByPodNameAndUser(ctx, req.Name, user.ID)
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	if server == nil {
		utils.AbortWithApiError(c, errors.NewServerNotFound(req.Name))
		return
	}

	err = h.dbClient.Transaction(ctx, func(tx *dbclient.Client) error {
		mappings, err := tx.ListMappingsByServer(ctx, server.ID)
		if err != nil {
			return err
		}
		for _, mapping := range mappings {
			if err = tx.UpdateFlavorAvailable(ctx, mapping.FlavorID, 0); err != nil {
				return err
			}
		}
		if err = tx.DeleteMappingsByServer(ctx, server.ID); err != nil {
			return err
		}
		if err = tx.ClearServerPvcs(ctx, server); err != nil {
			return err
		}
		return tx.DeleteServer(ctx, server.ID)
	})
	if err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}

	if err := h.kubeClient.DeletePod(ctx, server.PodName); err != nil {
		klog.Errorf("failed to delete pod %s: %v", server.PodName, err)
	}
	c.Status(http.StatusNoContent)
}

// DeletePvc removes one of the requesting user's claims.
func (h *Handler) DeletePvc(c *gin.Context) {
	var req DeletePvcRequest
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
	if err := h.removePvc(c, pvc, req.Pv); err != nil {
		utils.AbortWithApiError(c, errors.NewInternalError(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// removePvc deletes the claim from the cluster and the record,
// optionally releasing the backing volume.
func (h *Handler) removePvc(c *gin.Context, pvc *model.Pvc, deletePv bool) error {
	ctx := c.Request.Context()
	if err := h.kubeClient.DeletePvc(ctx, pvc.PvcName); err != nil {
		klog.Errorf("failed to delete pvc %s: %v", pvc.PvcName, err)
	}
	if deletePv && pvc.Pv != "" {
		if err := h.kubeClient.DeletePv(ctx, pvc.Pv); err != nil {
			klog.Errorf("failed to delete pv %s: %v", pvc.Pv, err)
		}
	}
	return h.dbClient.DeletePvc(ctx, pvc.ID)
}
