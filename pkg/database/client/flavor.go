/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openkcloud/kcloud-manage/pkg/database/model"
)

// ListFlavors returns every persisted GPU flavor row.
func (c *Client) ListFlavors(ctx context.Context) ([]*model.Flavor, error) {
	var flavors []*model.Flavor
	err := c.db.WithContext(ctx).Find(&flavors).Error
	if err != nil {
		return nil, err
	}
	return flavors, nil
}

// GetFlavorByIdentity returns the flavor matching the full normalized
// identity tuple, or nil when no row matches. The MIG slice id is
// matched by presence: a nil migID only matches rows whose mig_id is
// NULL, and a concrete migID never matches a NULL row.
func (c *Client) GetFlavorByIdentity(ctx context.Context, workerNode string, gpuID int, migID *int, gpuName string) (*model.Flavor, error) {
	query := c.db.WithContext(ctx).
		Where("worker_node = ? AND gpu_id = ? AND gpu_name = ?", workerNode, gpuID, gpuName)
	if migID == nil {
		query = query.Where("mig_id IS NULL")
	} else {
		query = query.Where("mig_id = ?", *migID)
	}
	var flavor model.Flavor
	err := query.First(&flavor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flavor, nil
}

// CreateFlavor inserts a new flavor row.
func (c *Client) CreateFlavor(ctx context.Context, flavor *model.Flavor) error {
	return c.db.WithContext(ctx).Create(flavor).Error
}

// UpdateFlavorAvailable sets the availability flag of a flavor row.
func (c *Client) UpdateFlavorAvailable(ctx context.Context, id int64, available int) error {
	return c.db.WithContext(ctx).
		Model(&model.Flavor{}).
		Where("id = ?", id).
		Update("available", available).Error
}

// DeleteFlavor removes a flavor row by id.
func (c *Client) DeleteFlavor(ctx context.Context, id int64) error {
	return c.db.WithContext(ctx).Delete(&model.Flavor{}, id).Error
}
