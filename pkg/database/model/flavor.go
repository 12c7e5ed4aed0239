/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package model

const TableNameFlavor = "gpu_flavor"

// Flavor mapped from table <gpu_flavor>. One row per distinct physical
// or MIG-sliced GPU identity observed in telemetry, stored in normalized
// form: worker node and GPU name lower-cased and trimmed, GpuID -1 when
// the index could not be parsed. MigID is nil for non-MIG devices; nil
// and 0 are distinct identities.
type Flavor struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GpuName    string `gorm:"column:gpu_name;size:128;not null" json:"gpu_name"`
	Available  int    `gorm:"column:available;not null" json:"available"`
	WorkerNode string `gorm:"column:worker_node;size:128;not null" json:"worker_node"`
	GpuID      int    `gorm:"column:gpu_id;not null" json:"gpu_id"`
	MigID      *int   `gorm:"column:mig_id" json:"mig_id"`
}

// TableName Flavor's table name
func (*Flavor) TableName() string {
	return TableNameFlavor
}
