/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package telemetry

import "strings"

// UserNameFromPod derives a portal user name from a notebook pod name.
// Notebook pods embed the user as two dash-delimited segments right
// after the prefix, e.g. "jupyter-js-lee---a4b212d2" owned by "js.lee".
// Returns false when the name does not follow the convention; callers
// fall back to the configured sentinel user.
func UserNameFromPod(podName, notebookPrefix string) (string, bool) {
	if !strings.HasPrefix(podName, notebookPrefix) {
		return "", false
	}
	parts := strings.Split(strings.TrimPrefix(podName, notebookPrefix), "-")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "." + parts[1], true
}
