/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package model

import "time"

const (
	TableNameServer           = "servers"
	TableNameServerGpuMapping = "server_gpu_mapping"
)

// Server mapped from table <servers>. One row per workspace pod, either
// created through the portal (tag LEGEND) or discovered from telemetry.
type Server struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      *int64    `gorm:"column:user_id;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"-"`
	ServerName  string    `gorm:"column:server_name;size:256;not null" json:"server_name"`
	PodName     string    `gorm:"column:pod_name;size:256;uniqueIndex;not null" json:"pod_name"`
	Cpu         string    `gorm:"column:cpu;size:32" json:"cpu"`
	Memory      string    `gorm:"column:memory;size:32" json:"memory"`
	Gpu         string    `gorm:"column:gpu;size:256" json:"gpu"`
	Description string    `gorm:"column:description;size:1024" json:"description"`
	InternalIp  string    `gorm:"column:internal_ip;size:64" json:"internal_ip"`
	Status      string    `gorm:"column:status;size:32" json:"status"`
	Tags        string    `gorm:"column:tags;size:32;index" json:"tags"`
	RequestTime time.Time `gorm:"column:request_time" json:"request_time"`
	Pvcs        []*Pvc    `gorm:"many2many:server_pvc_mapping" json:"-"`
}

// TableName Server's table name
func (*Server) TableName() string {
	return TableNameServer
}

// ServerGpuMapping mapped from table <server_gpu_mapping>. Association
// row linking a server to one of the GPU flavors it occupies. Rebuilt
// from scratch for each server on every sync cycle.
type ServerGpuMapping struct {
	ID       int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ServerID int64 `gorm:"column:server_id;index;not null" json:"server_id"`
	FlavorID int64 `gorm:"column:flavor_id;index;not null" json:"flavor_id"`
}

// TableName ServerGpuMapping's table name
func (*ServerGpuMapping) TableName() string {
	return TableNameServerGpuMapping
}
