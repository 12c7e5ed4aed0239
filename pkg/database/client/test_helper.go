/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openkcloud/kcloud-manage/pkg/database/model"
)

// TestHelper provides common test utilities for database tests
type TestHelper struct {
	Client *Client
	DB     *gorm.DB
	T      *testing.T
}

// NewTestHelper creates a new TestHelper with an in-memory SQLite database
func NewTestHelper(t *testing.T) *TestHelper {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open SQLite database")

	err = db.AutoMigrate(
		&model.User{},
		&model.Flavor{},
		&model.Server{},
		&model.ServerGpuMapping{},
		&model.Pvc{},
	)
	require.NoError(t, err, "Failed to auto-migrate models")

	return &TestHelper{
		Client: NewClientWithDB(db),
		DB:     db,
		T:      t,
	}
}

// Cleanup closes the database connection
func (h *TestHelper) Cleanup() {
	sqlDB, err := h.DB.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// CreateTestContext creates a test context
func (h *TestHelper) CreateTestContext() context.Context {
	return context.Background()
}

// Count returns the number of records in a table
func (h *TestHelper) Count(tableName string) int64 {
	var count int64
	h.DB.Table(tableName).Count(&count)
	return count
}
