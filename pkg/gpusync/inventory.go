/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package gpusync

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/openkcloud/kcloud-manage/pkg/database/client"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
	"github.com/openkcloud/kcloud-manage/pkg/telemetry"
)

// SyncResult summarizes one inventory reconciliation pass.
type SyncResult struct {
	Upserted int
	Deleted  int
}

// SyncFlavors reconciles the gpu_flavor table against the sample set:
// update occupancy of known identities, insert new ones, delete rows
// no longer reported. All writes happen in one transaction.
func (s *Syncer) SyncFlavors(ctx context.Context, samples []telemetry.RawSample) (*SyncResult, error) {
	observed := make(map[identityKey]int)
	for _, sample := range samples {
		identity, occupied, err := telemetry.Normalize(sample)
		if err != nil {
			klog.Warningf("dropping telemetry sample %v: %v", sample.Labels, err)
			continue
		}
		if identity == nil {
			continue
		}
		key := keyOf(identity)
		// A GPU reported occupied by any sample stays occupied.
		if occupied {
			observed[key] = 1
		} else if _, ok := observed[key]; !ok {
			observed[key] = 0
		}
	}

	result := &SyncResult{}
	err := s.db.Transaction(ctx, func(tx *client.Client) error {
		flavors, err := tx.ListFlavors(ctx)
		if err != nil {
			return err
		}

		for key, available := range observed {
			flavor, err := tx.GetFlavorByIdentity(ctx, key.Node, key.GpuIndex, key.migSlice(), key.Product)
			if err != nil {
				return err
			}
			if flavor != nil {
				if err = tx.UpdateFlavorAvailable(ctx, flavor.ID, available); err != nil {
					return err
				}
			} else {
				err = tx.CreateFlavor(ctx, &model.Flavor{
					GpuName:    key.Product,
					Available:  available,
					WorkerNode: key.Node,
					GpuID:      key.GpuIndex,
					MigID:      key.migSlice(),
				})
				if err != nil {
					return err
				}
			}
			result.Upserted++
		}

		for _, flavor := range flavors {
			key := identityKey{
				Node:     flavor.WorkerNode,
				GpuIndex: flavor.GpuID,
				Product:  flavor.GpuName,
			}
			if flavor.MigID != nil {
				key.HasMig = true
				key.MigSlice = *flavor.MigID
			}
			if _, ok := observed[key]; !ok {
				if err := tx.DeleteFlavor(ctx, flavor.ID); err != nil {
					return err
				}
				result.Deleted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	klog.Infof("synchronized flavors: %d upserted, %d deleted", result.Upserted, result.Deleted)
	return result, nil
}
