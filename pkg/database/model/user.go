/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package model

import "time"

const TableNameUser = "users"

// User mapped from table <users>. Rows are populated by the onboarding
// flow; the GPU sync loop only reads them to resolve pod ownership.
type User struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email          string    `gorm:"column:email;size:256;uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"column:hashed_password;size:256;not null" json:"-"`
	Name           string    `gorm:"column:name;size:128;index;not null" json:"name"`
	Role           string    `gorm:"column:role;size:32;default:'user'" json:"role"`
	Department     string    `gorm:"column:department;size:128" json:"department"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
