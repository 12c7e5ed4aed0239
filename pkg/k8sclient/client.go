/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package k8sclient

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/openkcloud/kcloud-manage/pkg/common"
	"github.com/openkcloud/kcloud-manage/pkg/config"
)

// NewClientSet creates a Kubernetes clientset. When kubeConfigPath is
// empty it prefers the explicit api-server/bearer-token configuration
// and falls back to the in-cluster service account.
func NewClientSet(kubeConfigPath string) (kubernetes.Interface, *rest.Config, error) {
	restConfig, err := buildRestConfig(kubeConfigPath)
	if err != nil {
		return nil, nil, err
	}
	cli, err := kubernetes.NewForConfig(restConfig)
	return cli, restConfig, err
}

func buildRestConfig(kubeConfigPath string) (*rest.Config, error) {
	var (
		cfg *rest.Config
		err error
	)
	switch {
	case kubeConfigPath != "":
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeConfigPath)
	case config.GetKubeApiServer() != "" && config.GetKubeBearerToken() != "":
		cfg = &rest.Config{
			Host:        config.GetKubeApiServer(),
			BearerToken: config.GetKubeBearerToken(),
			TLSClientConfig: rest.TLSClientConfig{
				Insecure: true,
			},
		}
	default:
		cfg, err = rest.InClusterConfig()
	}
	if err != nil {
		return nil, err
	}
	cfg.QPS = common.DefaultQPS
	cfg.Burst = common.DefaultBurst
	return cfg, nil
}
