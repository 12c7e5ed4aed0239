/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package kube

import (
	"context"

	"k8s.io/client-go/kubernetes"
)

// PodRuntime holds the runtime facts read back from a live pod.
type PodRuntime struct {
	Cpu        string
	Memory     string
	InternalIp string
}

// PodReader reads runtime facts of pods. The GPU sync loop depends on
// this interface rather than on a concrete clientset so it can be
// tested without a cluster. An empty namespace means the managed one.
type PodReader interface {
	ReadPodRuntime(ctx context.Context, podName, namespace string) (*PodRuntime, error)
}

// Client wraps the Kubernetes clientset with the portal's namespace.
type Client struct {
	clientset kubernetes.Interface
	namespace string
}

func NewClient(clientset kubernetes.Interface, namespace string) *Client {
	return &Client{
		clientset: clientset,
		namespace: namespace,
	}
}

func (c *Client) Namespace() string {
	return c.namespace
}
