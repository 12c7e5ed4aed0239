/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package gpusync

import (
	"context"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/telemetry"
)

// observedPod aggregates all telemetry samples owned by one pod.
type observedPod struct {
	rawGpuNames []string
	identities  []identityKey
	namespace   string
}

// SyncPods reconciles the servers table and its GPU mappings against
// the sample set. Records tagged LEGEND are owned by the create-pod
// workflow and are never created, mutated or deleted here. All writes
// happen in one transaction; any error rolls back the whole cycle.
func (s *Syncer) SyncPods(ctx context.Context, samples []telemetry.RawSample) error {
	observed := s.groupByPod(samples)

	err := s.db.Transaction(ctx, func(tx *client.Client) error {
		if err := s.deleteVanishedPods(ctx, tx, observed); err != nil {
			return err
		}
		for podName, pod := range observed {
			server, err := s.resolveServer(ctx, tx, podName, pod)
			if err != nil {
				return err
			}
			if server == nil {
				continue
			}
			if err = s.rebuildMappings(ctx, tx, server.ID, pod.identities); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		klog.Errorf("pod state sync failed, rolled back: %v", err)
		return err
	}
	return nil
}

func (s *Syncer) groupByPod(samples []telemetry.RawSample) map[string]*observedPod {
	observed := make(map[string]*observedPod)
	for _, sample := range samples {
		podName, ok := telemetry.OwnerPod(sample)
		if !ok {
			continue
		}
		identity, _, err := telemetry.Normalize(sample)
		if err != nil {
			klog.Warningf("dropping telemetry sample %v: %v", sample.Labels, err)
			continue
		}
		if identity == nil {
			continue
		}
		pod := observed[podName]
		if pod == nil {
			pod = &observedPod{}
			observed[podName] = pod
		}
		pod.rawGpuNames = append(pod.rawGpuNames, telemetry.RawGpuName(sample))
		pod.identities = append(pod.identities, keyOf(identity))
		pod.namespace = telemetry.OwnerNamespace(sample)
	}
	return observed
}

// deleteVanishedPods removes every non-LEGEND record whose pod is no
// longer reported by telemetry, along with its GPU mappings.
func (s *Syncer) deleteVanishedPods(ctx context.Context, tx *client.Client, observed map[string]*observedPod) error {
	servers, err := tx.ListServers(ctx)
	if err != nil {
		return err
	}
	for _, server := range servers {
		if _, ok := observed[server.PodName]; ok || server.Tags == common.TagLegend {
			continue
		}
		if err = tx.DeleteMappingsByServer(ctx, server.ID); err != nil {
			return err
		}
		if err = tx.DeleteServer(ctx, server.ID); err != nil {
			return err
		}
		klog.Infof("removed vanished pod record %s (tag %s)", server.PodName, server.Tags)
	}
	return nil
}

// resolveServer finds or creates the record for an observed pod,
// refreshing its fields for telemetry-discovered pods. A nil return
// with nil error means the pod is skipped (LEGEND-owned, or a
// dashboard pod with no record yet).
func (s *Syncer) resolveServer(ctx context.Context, tx *client.Client, podName string, pod *observedPod) (*model.Server, error) {
	summary := gpuSummary(pod.rawGpuNames)

	if strings.HasPrefix(podName, s.dashboardPrefix) {
		// Pods created through the portal: the record is owned by the
		// create-pod workflow and is never written here. The lookup only
		// anchors the GPU mapping rebuild.
		return tx.GetServerByPodName(ctx, podName)
	}

	cpu, memory, internalIp := s.readPodRuntime(ctx, podName, pod.namespace)
	tag := s.classify(podName)

	server, err := tx.GetNonLegendServerByPodName(ctx, podName)
	if err != nil {
		return nil, err
	}
	if server != nil {
		server.Gpu = summary
		server.Cpu = cpu
		server.Memory = memory
		if internalIp != "" {
			server.InternalIp = internalIp
		}
		server.Tags = tag
		if server.Status != common.StatusRunning {
			server.Status = common.StatusRunning
		}
		if err = tx.SaveServer(ctx, server); err != nil {
			return nil, err
		}
		return server, nil
	}

	legend, err := tx.GetLegendServerByPodName(ctx, podName)
	if err != nil {
		return nil, err
	}
	if legend != nil {
		// Externally owned, authoritative. Leave it alone.
		return nil, nil
	}

	server = &model.Server{
		UserID:      s.resolveOwner(ctx, tx, podName),
		ServerName:  podName,
		PodName:     podName,
		Cpu:         cpu,
		Memory:      memory,
		Gpu:         summary,
		InternalIp:  internalIp,
		Status:      common.StatusRunning,
		Tags:        tag,
		RequestTime: time.Now(),
	}
	if err = tx.CreateServer(ctx, server); err != nil {
		return nil, err
	}
	return server, nil
}

// readPodRuntime fetches live cpu/memory limits and the pod IP. A
// lookup failure degrades to placeholder values so one broken pod does
// not abort the cycle.
func (s *Syncer) readPodRuntime(ctx context.Context, podName, namespace string) (cpu, memory, internalIp string) {
	runtime, err := s.podReader.ReadPodRuntime(ctx, podName, namespace)
	if err != nil {
		klog.Errorf("failed to read runtime of pod %s: %v", podName, err)
		return common.UnknownLimit, common.UnknownLimit, ""
	}
	return runtime.Cpu, runtime.Memory, runtime.InternalIp
}

// resolveOwner derives the owning user from the pod naming convention,
// falling back to the sentinel system user.
func (s *Syncer) resolveOwner(ctx context.Context, tx *client.Client, podName string) *int64 {
	if userName, ok := telemetry.UserNameFromPod(podName, s.notebookPrefix); ok {
		user, err := tx.GetUserByName(ctx, userName)
		if err != nil {
			klog.Errorf("failed to look up user %s: %v", userName, err)
		} else if user != nil {
			return &user.ID
		}
	}
	fallback, err := tx.GetUserByName(ctx, s.fallbackUser)
	if err != nil || fallback == nil {
		return nil
	}
	return &fallback.ID
}

func (s *Syncer) classify(podName string) string {
	switch {
	case strings.HasPrefix(podName, s.notebookPrefix):
		return common.TagJupyter
	case strings.HasPrefix(podName, s.dashboardPrefix):
		return common.TagDashboard
	default:
		return common.TagDev
	}
}

// rebuildMappings replaces the server's GPU mappings with the flavors
// matching the identities observed this cycle. Identities with no
// matching flavor row are skipped; duplicates map once.
func (s *Syncer) rebuildMappings(ctx context.Context, tx *client.Client, serverID int64, identities []identityKey) error {
	if err := tx.DeleteMappingsByServer(ctx, serverID); err != nil {
		return err
	}
	mapped := make(map[int64]bool)
	for _, key := range identities {
		flavor, err := tx.GetFlavorByIdentity(ctx, key.Node, key.GpuIndex, key.migSlice(), key.Product)
		if err != nil {
			return err
		}
		if flavor == nil || mapped[flavor.ID] {
			continue
		}
		err = tx.CreateMapping(ctx, &model.ServerGpuMapping{
			ServerID: serverID,
			FlavorID: flavor.ID,
		})
		if err != nil {
			return err
		}
		mapped[flavor.ID] = true
	}
	return nil
}
