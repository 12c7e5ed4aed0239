/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package server_handlers

import "time"

type EntireServerResponse struct {
	UserName  string    `json:"userName"`
	Gpu       string    `json:"gpu"`
	CpuMem    string    `json:"cpuMem"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
	Node      []string  `json:"node"`
	Tags      string    `json:"tags"`
}

type MyServerResponse struct {
	ID          int64     `json:"id"`
	UserName    string    `json:"userName"`
	ServerName  string    `json:"serverName"`
	PodName     string    `json:"podName"`
	Description string    `json:"description"`
	Gpu         string    `json:"gpu"`
	Cpu         string    `json:"cpu"`
	Memory      string    `json:"memory"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status"`
	InternalIp  string    `json:"internal_ip"`
	Tags        string    `json:"tags"`
}

type PodCreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Image       string `json:"image" binding:"required"`
	Cpu         string `json:"cpu" binding:"required"`
	Memory      string `json:"memory" binding:"required"`
	Gpu         string `json:"gpu"`
	// Pvc requests a fresh dynamically provisioned claim; otherwise
	// PvcID/PvcName select an existing one.
	Pvc     bool   `json:"pvc"`
	PvcID   int64  `json:"pvc_id"`
	PvcName string `json:"pvc_name"`
}

type DeleteRequest struct {
	Name string `json:"name" binding:"required"`
}

type DeletePvcRequest struct {
	Name string `json:"name" binding:"required"`
	// Pv also releases the backing persistent volume.
	Pv bool `json:"pv"`
}

type PvcDropdownResponse struct {
	ID      int64  `json:"id"`
	PvcName string `json:"pvc_name"`
	Path    string `json:"path"`
}

type PvcListResponse struct {
	Pvcs []PvcDropdownResponse `json:"pvcs"`
}
