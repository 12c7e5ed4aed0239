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

func (c *Client) ListPvcsByUser(ctx context.Context, userID int64) ([]*model.Pvc, error) {
	var pvcs []*model.Pvc
	err := c.db.WithContext(ctx).Where("user_id = ?", userID).Find(&pvcs).Error
	if err != nil {
		return nil, err
	}
	return pvcs, nil
}

func (c *Client) GetPvcByID(ctx context.Context, id int64) (*model.Pvc, error) {
	var pvc model.Pvc
	err := c.db.WithContext(ctx).Where("id = ?", id).First(&pvc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pvc, nil
}

func (c *Client) GetPvcByName(ctx context.Context, pvcName string) (*model.Pvc, error) {
	var pvc model.Pvc
	err := c.db.WithContext(ctx).Where("pvc_name = ?", pvcName).First(&pvc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pvc, nil
}

func (c *Client) GetPvcByNameAndUser(ctx context.Context, pvcName string, userID int64) (*model.Pvc, error) {
	var pvc model.Pvc
	err := c.db.WithContext(ctx).Where("pvc_name = ? AND user_id = ?", pvcName, userID).First(&pvc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pvc, nil
}

func (c *Client) CreatePvc(ctx context.Context, pvc *model.Pvc) error {
	return c.db.WithContext(ctx).Create(pvc).Error
}

func (c *Client) DeletePvc(ctx context.Context, id int64) error {
	return c.db.WithContext(ctx).Delete(&model.Pvc{}, "id = ?", id).Error
}
