/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package storage_handlers

import "time"

type NfsStorageCreateRequest struct {
	PvcName     string `json:"pvc_name" binding:"required"`
	NfsServer   string `json:"nfs_server" binding:"required"`
	NfsPath     string `json:"nfs_path" binding:"required"`
	StorageSize string `json:"storage_size" binding:"required"`
}

type NfsStorageCreateResponse struct {
	Message string `json:"message"`
	PvName  string `json:"pv_name"`
	PvcName string `json:"pvc_name"`
	NfsPath string `json:"nfs_path"`
	PvcID   int64  `json:"pvc_id"`
}

type PvcResponse struct {
	ID        int64     `json:"id"`
	PvcName   string    `json:"pvc_name"`
	Pv        string    `json:"pv"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

type DeleteRequest struct {
	Name string `json:"name" binding:"required"`
}
