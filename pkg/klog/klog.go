/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package klog

import (
	"flag"
	"fmt"
	"strconv"

	"k8s.io/klog/v2"
)

// Init wires klog to the given log file while keeping stderr output.
// A zero maxSizeMb leaves the file size unlimited.
func Init(logfilePath string, maxSizeMb int) error {
	klog.InitFlags(nil)

	settings := map[string]string{
		"log_file":         logfilePath,
		"alsologtostderr":  "true",
		"logtostderr":      "false",
		"skip_log_headers": "true",
	}
	if maxSizeMb > 0 {
		settings["log_file_max_size"] = strconv.Itoa(maxSizeMb)
	}
	for name, value := range settings {
		if err := flag.Set(name, value); err != nil {
			return fmt.Errorf("failed to set log flag %s: %w", name, err)
		}
	}
	flag.Parse()
	return nil
}
