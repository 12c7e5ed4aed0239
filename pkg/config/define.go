/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package config

const (
	// server
	serverPrefix = "server."
	serverPort   = serverPrefix + "port"
	corsOrigins  = serverPrefix + "cors_origins"

	// db
	dbPrefix               = "db."
	dbHost                 = dbPrefix + "host"
	dbPort                 = dbPrefix + "port"
	dbName                 = dbPrefix + "name"
	dbUser                 = dbPrefix + "user"
	dbPassword             = dbPrefix + "password"
	dbSslMode              = dbPrefix + "ssl_mode"
	dbMaxOpenConns         = dbPrefix + "max_open_conns"
	dbMaxIdleConns         = dbPrefix + "max_idle_conns"
	dbMaxLifetimeSecond    = dbPrefix + "max_life_time_second"
	dbMaxIdleTimeSecond    = dbPrefix + "max_idle_time_second"
	dbConnectTimeoutSecond = dbPrefix + "connect_timeout_second"

	// auth
	authPrefix              = "auth."
	authSecret              = authPrefix + "secret"
	authTokenExpireSecond   = authPrefix + "token_expire_second"
	authRefreshExpireSecond = authPrefix + "refresh_expire_second"

	// telemetry
	telemetryPrefix   = "telemetry."
	telemetryEndpoint = telemetryPrefix + "endpoint"
	telemetryMetric   = telemetryPrefix + "metric"

	// gpu_sync
	gpuSyncPrefix         = "gpu_sync."
	gpuSyncEnable         = gpuSyncPrefix + "enable"
	gpuSyncIntervalSecond = gpuSyncPrefix + "interval_second"
	gpuSyncFallbackUser   = gpuSyncPrefix + "fallback_user"

	// kubernetes
	kubePrefix          = "kubernetes."
	kubeNamespace       = kubePrefix + "namespace"
	kubeApiServer       = kubePrefix + "api_server"
	kubeBearerToken     = kubePrefix + "bearer_token"
	kubeSharedPvc       = kubePrefix + "shared_pvc"
	kubeImagePullSecret = kubePrefix + "image_pull_secret"

	// naming conventions for pods discovered from telemetry
	namingPrefix          = "naming."
	namingDashboardPrefix = namingPrefix + "dashboard_prefix"
	namingNotebookPrefix  = namingPrefix + "notebook_prefix"

	// data observer (file browser microservice)
	observerPrefix   = "data_observer."
	observerEndpoint = observerPrefix + "endpoint"
)

const (
	defaultMetricName      = "DCGM_FI_DEV_MIG_MODE"
	defaultSyncInterval    = 30
	defaultDashboardPrefix = "kcloudserver-"
	defaultNotebookPrefix  = "jupyter-"
	defaultFallbackUser    = "dev"
	defaultNamespace       = "default"
	defaultTokenExpire     = 36000
	defaultRefreshExpire   = 604800
)
