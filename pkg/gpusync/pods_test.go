/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package gpusync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/kube"
	"github.com/openkcloud/kcloud-manage/pkg/telemetry"
)

func TestSyncPods_DiscoverNotebookPod(t *testing.T) {
	syncer, helper := newTestSyncer(t, map[string]*kube.PodRuntime{
		"jupyter-js-lee---a4b212d2": {Cpu: "4", Memory: "16Gi", InternalIp: "10.0.0.5"},
	})
	ctx := helper.CreateTestContext()

	owner := &model.User{Name: "js.lee", Email: "js.lee@example.com", HashedPassword: "x"}
	require.NoError(t, helper.Client.CreateUser(ctx, owner))

	samples := []telemetry.RawSample{
		sample(map[string]string{
			"Hostname":     "Node1",
			"gpu":          "0",
			"modelName":    "NVIDIA A100",
			"exported_pod": "jupyter-js-lee---a4b212d2",
		}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	server, err := helper.Client.GetServerByPodName(ctx, "jupyter-js-lee---a4b212d2")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, common.TagJupyter, server.Tags)
	assert.Equal(t, common.StatusRunning, server.Status)
	assert.Equal(t, "NVIDIA A100", server.Gpu)
	assert.Equal(t, "4", server.Cpu)
	assert.Equal(t, "16Gi", server.Memory)
	assert.Equal(t, "10.0.0.5", server.InternalIp)
	require.NotNil(t, server.UserID)
	assert.Equal(t, owner.ID, *server.UserID)

	mappings, err := helper.Client.ListMappingsByServer(ctx, server.ID)
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	flavor, err := helper.Client.GetFlavorByIdentity(ctx, "node1", 0, nil, "a100")
	require.NoError(t, err)
	require.NotNil(t, flavor)
	assert.Equal(t, flavor.ID, mappings[0].FlavorID)
	assert.Equal(t, 1, flavor.Available)
}

func TestSyncPods_Idempotent(t *testing.T) {
	syncer, helper := newTestSyncer(t, map[string]*kube.PodRuntime{
		"dev-pod": {Cpu: "2", Memory: "8Gi", InternalIp: "10.0.0.9"},
	})
	ctx := helper.CreateTestContext()

	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "dev-pod"}),
	}
	for i := 0; i < 2; i++ {
		_, err := syncer.SyncFlavors(ctx, samples)
		require.NoError(t, err)
		require.NoError(t, syncer.SyncPods(ctx, samples))
	}

	assert.EqualValues(t, 1, helper.Count(model.TableNameServer))
	assert.EqualValues(t, 1, helper.Count(model.TableNameServerGpuMapping))
	assert.EqualValues(t, 1, helper.Count(model.TableNameFlavor))

	server, err := helper.Client.GetServerByPodName(ctx, "dev-pod")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, common.TagDev, server.Tags)
}

func TestSyncPods_DeleteVanished(t *testing.T) {
	syncer, helper := newTestSyncer(t, map[string]*kube.PodRuntime{
		"dev-pod": {Cpu: "2", Memory: "8Gi", InternalIp: "10.0.0.9"},
	})
	ctx := helper.CreateTestContext()

	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "dev-pod"}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))
	require.EqualValues(t, 1, helper.Count(model.TableNameServer))

	// The pod stops occupying any GPU on the next scrape.
	empty := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100"}),
	}
	_, err = syncer.SyncFlavors(ctx, empty)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, empty))

	assert.EqualValues(t, 0, helper.Count(model.TableNameServer))
	assert.EqualValues(t, 0, helper.Count(model.TableNameServerGpuMapping))
}

func TestSyncPods_LegendPodProtected(t *testing.T) {
	syncer, helper := newTestSyncer(t, nil)
	ctx := helper.CreateTestContext()

	legend := &model.Server{
		ServerName: "my-ws",
		PodName:    "my-ws-abc123",
		Cpu:        "8",
		Memory:     "32Gi",
		Status:     common.StatusRunning,
		Tags:       common.TagLegend,
	}
	require.NoError(t, helper.Client.CreateServer(ctx, legend))

	// The pod is absent from telemetry; a portal-created record survives.
	require.NoError(t, syncer.SyncPods(ctx, nil))
	server, err := helper.Client.GetServerByPodName(ctx, "my-ws-abc123")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, common.TagLegend, server.Tags)

	// And when it appears in telemetry, no second record is created and
	// the existing one is left untouched.
	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "my-ws-abc123"}),
	}
	_, err = syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	assert.EqualValues(t, 1, helper.Count(model.TableNameServer))
	server, err = helper.Client.GetServerByPodName(ctx, "my-ws-abc123")
	require.NoError(t, err)
	assert.Equal(t, "8", server.Cpu)
	assert.Equal(t, common.TagLegend, server.Tags)
}

func TestSyncPods_DashboardPodRecordUntouched(t *testing.T) {
	syncer, helper := newTestSyncer(t, nil)
	ctx := helper.CreateTestContext()

	dashboard := &model.Server{
		ServerName: "portal",
		PodName:    "kcloudserver-portal-ab12cd",
		Cpu:        "2",
		Memory:     "4Gi",
		Gpu:        "A100 80GB",
		Status:     common.StatusRunning,
		Tags:       common.TagLegend,
	}
	require.NoError(t, helper.Client.CreateServer(ctx, dashboard))

	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "kcloudserver-portal-ab12cd"}),
		sample(map[string]string{"Hostname": "node1", "gpu": "1", "modelName": "NVIDIA A100", "exported_pod": "kcloudserver-unknown-ffffff"}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	// The known portal pod keeps every field, including its tag; only
	// its GPU mappings are rebuilt. The unknown one is never created.
	assert.EqualValues(t, 1, helper.Count(model.TableNameServer))
	server, err := helper.Client.GetServerByPodName(ctx, "kcloudserver-portal-ab12cd")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, common.TagLegend, server.Tags)
	assert.Equal(t, "A100 80GB", server.Gpu)
	assert.Equal(t, "2", server.Cpu)

	mappings, err := helper.Client.ListMappingsByServer(ctx, server.ID)
	require.NoError(t, err)
	assert.Len(t, mappings, 1)
}

func TestSyncPods_PortalPodSurvivesVanishedMetrics(t *testing.T) {
	syncer, helper := newTestSyncer(t, nil)
	ctx := helper.CreateTestContext()

	workspace := &model.Server{
		ServerName: "ws1",
		PodName:    "kcloudserver-ws1-abc123",
		Status:     common.StatusRunning,
		Tags:       common.TagLegend,
	}
	require.NoError(t, helper.Client.CreateServer(ctx, workspace))

	// First cycle observes the pod's GPU, the next one reports nothing
	// (exporter restart, GPU released). The record must survive both
	// with its tag intact.
	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "kcloudserver-ws1-abc123"}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	_, err = syncer.SyncFlavors(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, nil))

	server, err := helper.Client.GetServerByPodName(ctx, "kcloudserver-ws1-abc123")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, common.TagLegend, server.Tags)
}

func TestSyncPods_EnrichmentFailureUsesPlaceholders(t *testing.T) {
	syncer, helper := newTestSyncer(t, map[string]*kube.PodRuntime{})
	ctx := helper.CreateTestContext()

	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "dev-pod"}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	server, err := helper.Client.GetServerByPodName(ctx, "dev-pod")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, common.UnknownLimit, server.Cpu)
	assert.Equal(t, common.UnknownLimit, server.Memory)
	assert.Empty(t, server.InternalIp)
}

func TestSyncPods_MultiGpuSummary(t *testing.T) {
	syncer, helper := newTestSyncer(t, map[string]*kube.PodRuntime{
		"dev-train": {Cpu: "16", Memory: "64Gi", InternalIp: "10.0.1.2"},
	})
	ctx := helper.CreateTestContext()

	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "dev-train"}),
		sample(map[string]string{"Hostname": "node1", "gpu": "1", "modelName": "NVIDIA A100", "exported_pod": "dev-train"}),
		sample(map[string]string{"Hostname": "node2", "gpu": "0", "GPU_I_PROFILE": "2g.20gb", "GPU_I_ID": "1", "exported_pod": "dev-train"}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	server, err := helper.Client.GetServerByPodName(ctx, "dev-train")
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, "2g.20gb, NVIDIA A100 * 2", server.Gpu)

	mappings, err := helper.Client.ListMappingsByServer(ctx, server.ID)
	require.NoError(t, err)
	assert.Len(t, mappings, 3)
}

func TestSyncPods_FallbackOwner(t *testing.T) {
	syncer, helper := newTestSyncer(t, map[string]*kube.PodRuntime{
		"jupyter-ghost---beef0001": {Cpu: "1", Memory: "2Gi", InternalIp: "10.0.2.2"},
	})
	ctx := helper.CreateTestContext()

	fallback := &model.User{Name: "dev", Email: "dev@example.com", HashedPassword: "x"}
	require.NoError(t, helper.Client.CreateUser(ctx, fallback))

	// Only one dash segment after the notebook prefix, so no username
	// can be extracted and the fallback owner applies.
	samples := []telemetry.RawSample{
		sample(map[string]string{"Hostname": "node1", "gpu": "0", "modelName": "NVIDIA A100", "exported_pod": "jupyter-ghost---beef0001"}),
	}
	_, err := syncer.SyncFlavors(ctx, samples)
	require.NoError(t, err)
	require.NoError(t, syncer.SyncPods(ctx, samples))

	server, err := helper.Client.GetServerByPodName(ctx, "jupyter-ghost---beef0001")
	require.NoError(t, err)
	require.NotNil(t, server)
	require.NotNil(t, server.UserID)
	assert.Equal(t, fallback.ID, *server.UserID)
}
