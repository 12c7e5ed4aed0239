/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/database/model"
)

// ListServers returns every server row with its owner preloaded.
func (c *Client) ListServers(ctx context.Context) ([]*model.Server, error) {
	var servers []*model.Server
	err := c.db.WithContext(ctx).Preload("User").Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

// ListServersByUserAndTag returns the user's servers carrying the given tag.
func (c *Client) ListServersByUserAndTag(ctx context.Context, userID int64, tag string) ([]*model.Server, error) {
	var servers []*model.Server
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND tags = ?", userID, tag).
		Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

// GetServerByPodName returns the server row with the given pod name, or
// nil when none exists.
func (c *Client) GetServerByPodName(ctx context.Context, podName string) (*model.Server, error) {
	var server model.Server
	err := c.db.WithContext(ctx).Where("pod_name = ?", podName).First(&server).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

// GetServerByPodNameAndUser returns the user's server row with the given
// pod name, or nil when none exists.
func (c *Client) GetServerByPodNameAndUser(ctx context.Context, podName string, userID int64) (*model.Server, error) {
	var server model.Server
	err := c.db.WithContext(ctx).
		Where("pod_name = ? AND user_id = ?", podName, userID).
		First(&server).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

// GetNonLegendServerByPodName returns the server row with the given pod
// name whose tag is not LEGEND, or nil when none exists. Rows with a
// NULL or empty tag count as non-LEGEND.
func (c *Client) GetNonLegendServerByPodName(ctx context.Context, podName string) (*model.Server, error) {
	var server model.Server
	err := c.db.WithContext(ctx).
		Where("pod_name = ? AND (tags IS NULL OR tags <> ?)", podName, common.TagLegend).
		First(&server).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

// GetLegendServerByPodName returns the LEGEND server row with the given
// pod name, or nil when none exists.
func (c *Client) GetLegendServerByPodName(ctx context.Context, podName string) (*model.Server, error) {
	var server model.Server
	err := c.db.WithContext(ctx).
		Where("pod_name = ? AND tags = ?", podName, common.TagLegend).
		First(&server).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &server, nil
}

// CreateServer inserts a new server row.
func (c *Client) CreateServer(ctx context.Context, server *model.Server) error {
	return c.db.WithContext(ctx).Create(server).Error
}

// SaveServer persists every field of the server row.
func (c *Client) SaveServer(ctx context.Context, server *model.Server) error {
	return c.db.WithContext(ctx).Save(server).Error
}

// DeleteServer removes a server row by id.
func (c *Client) DeleteServer(ctx context.Context, id int64) error {
	return c.db.WithContext(ctx).Delete(&model.Server{}, id).Error
}

// ClearServerPvcs drops the server's PVC associations without touching
// the PVC rows themselves.
func (c *Client) ClearServerPvcs(ctx context.Context, server *model.Server) error {
	return c.db.WithContext(ctx).Model(server).Association("Pvcs").Clear()
}

// AppendServerPvc associates a PVC with the server.
func (c *Client) AppendServerPvc(ctx context.Context, server *model.Server, pvc *model.Pvc) error {
	return c.db.WithContext(ctx).Model(server).Association("Pvcs").Append(pvc)
}

// ListMappingsByServer returns the GPU mapping rows of a server.
func (c *Client) ListMappingsByServer(ctx context.Context, serverID int64) ([]*model.ServerGpuMapping, error) {
	var mappings []*model.ServerGpuMapping
	err := c.db.WithContext(ctx).Where("server_id = ?", serverID).Find(&mappings).Error
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// DeleteMappingsByServer removes every GPU mapping row of a server.
func (c *Client) DeleteMappingsByServer(ctx context.Context, serverID int64) error {
	return c.db.WithContext(ctx).
		Where("server_id = ?", serverID).
		Delete(&model.ServerGpuMapping{}).Error
}

// CreateMapping inserts a server-to-flavor mapping row.
func (c *Client) CreateMapping(ctx context.Context, mapping *model.ServerGpuMapping) error {
	return c.db.WithContext(ctx).Create(mapping).Error
}

// GetFlavorByID returns the flavor row by primary key, or nil.
func (c *Client) GetFlavorByID(ctx context.Context, id int64) (*model.Flavor, error) {
	var flavor model.Flavor
	err := c.db.WithContext(ctx).First(&flavor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flavor, nil
}
