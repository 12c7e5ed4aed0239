/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package common

// Pod record tags. TagLegend marks records owned by the portal's own
// create-pod workflow; the GPU sync loop never creates, mutates or
// deletes them. The other tags mark pods discovered from telemetry.
const (
	TagLegend    = "LEGEND"
	TagJupyter   = "JUPYTER"
	TagDashboard = "DASHBOARD"
	TagDev       = "DEV"
)

// Pod record statuses.
const (
	StatusCreating = "Creating"
	StatusRunning  = "Running"
)

// Placeholder for cpu/memory limits that could not be read from the cluster.
const UnknownLimit = "N/A"

// Gin context keys.
const (
	ContextUser = "kcloud/user"
)

// RouterRootPath is the common prefix of all portal API routes.
const RouterRootPath = "/api/v1/"

const (
	DefaultQPS   = 50.0
	DefaultBurst = 100
)
