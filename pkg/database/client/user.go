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

// GetUserByEmail returns the user with the given email, or nil.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByName returns the user with the given name, or nil.
func (c *Client) GetUserByName(ctx context.Context, name string) (*model.User, error) {
	var user model.User
	err := c.db.WithContext(ctx).Where("name = ?", name).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user row.
func (c *Client) CreateUser(ctx context.Context, user *model.User) error {
	return c.db.WithContext(ctx).Create(user).Error
}
