/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package gpusync

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openkcloud/kcloud-manage/pkg/config"
	"github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/kube"
	"github.com/openkcloud/kcloud-manage/pkg/telemetry"
)

// Syncer reconciles the GPU flavor inventory and the pod records
// against one telemetry sample set.
type Syncer struct {
	db        *client.Client
	podReader kube.PodReader

	dashboardPrefix string
	notebookPrefix  string
	fallbackUser    string
}

func NewSyncer(db *client.Client, podReader kube.PodReader) *Syncer {
	return &Syncer{
		db:              db,
		podReader:       podReader,
		dashboardPrefix: config.GetDashboardPrefix(),
		notebookPrefix:  config.GetNotebookPrefix(),
		fallbackUser:    config.GetGpuSyncFallbackUser(),
	}
}

// identityKey is the comparable form of a GpuIdentity, usable as a map
// key. HasMig keeps nil and zero MIG slices distinct.
type identityKey struct {
	Node     string
	GpuIndex int
	MigSlice int
	HasMig   bool
	Product  string
}

func keyOf(identity *telemetry.GpuIdentity) identityKey {
	key := identityKey{
		Node:     identity.Node,
		GpuIndex: identity.GpuIndex,
		Product:  identity.Product,
	}
	if identity.MigSlice != nil {
		key.HasMig = true
		key.MigSlice = *identity.MigSlice
	}
	return key
}

func (k identityKey) migSlice() *int {
	if !k.HasMig {
		return nil
	}
	slice := k.MigSlice
	return &slice
}

// gpuSummary renders a human-readable summary of the raw GPU names a
// pod occupies, e.g. "2g.20gb * 2, NVIDIA A100".
func gpuSummary(rawNames []string) string {
	counts := make(map[string]int)
	var order []string
	for _, name := range rawNames {
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	sort.Strings(order)
	parts := make([]string, 0, len(order))
	for _, name := range order {
		if counts[name] > 1 {
			parts = append(parts, fmt.Sprintf("%s * %d", name, counts[name]))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
