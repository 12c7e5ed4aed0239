/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package main

import (
	"fmt"

	"github.com/openkcloud/kcloud-manage/pkg/server"
)

func main() {
	s, err := server.NewServer()
	if err != nil {
		fmt.Println("failed to new server")
		return
	}
	s.Start()
}
