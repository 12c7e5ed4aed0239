/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package model

import "time"

const TableNamePvc = "pvcs"

// Pvc mapped from table <pvcs>. Tracks the persistent volume claims
// created for a user together with the backing PV and NFS path.
type Pvc struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"column:user_id;index;not null" json:"user_id"`
	PvcName   string    `gorm:"column:pvc_name;size:256;uniqueIndex;not null" json:"pvc_name"`
	Pv        string    `gorm:"column:pv;size:256" json:"pv"`
	Path      string    `gorm:"column:path;size:512" json:"path"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName Pvc's table name
func (*Pvc) TableName() string {
	return TableNamePvc
}
