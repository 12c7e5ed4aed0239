/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// SetValue sets a configuration value for the specified key.
func SetValue(key string, value interface{}) {
	viper.Set(key, value)
}

// LoadConfig loads configuration from the specified file path.
func LoadConfig(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	return viper.ReadInConfig()
}

func getString(key, defaultValue string) string {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetString(key)
}

func getBool(key string, defaultValue bool) bool {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetBool(key)
}

func getInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}
	return viper.GetInt(key)
}

func getStrings(key string) []string {
	val := viper.GetString(key)
	return removeBlank(strings.Split(val, ","))
}

func removeBlank(slice []string) []string {
	var result []string
	for _, val := range slice {
		if trim := strings.TrimSpace(val); trim != "" {
			result = append(result, trim)
		}
	}
	return result
}

// GetServerPort returns the API server port.
func GetServerPort() int {
	return getInt(serverPort, 0)
}

// GetCorsOrigins returns the allowed CORS origins.
func GetCorsOrigins() []string {
	return getStrings(corsOrigins)
}

func GetDBHost() string {
	return getString(dbHost, "")
}

func GetDBPort() int {
	return getInt(dbPort, 5432)
}

func GetDBName() string {
	return getString(dbName, "")
}

func GetDBUser() string {
	return getString(dbUser, "")
}

func GetDBPassword() string {
	return getString(dbPassword, "")
}

func GetDBSslMode() string {
	return getString(dbSslMode, "disable")
}

func GetDBMaxOpenConns() int {
	return getInt(dbMaxOpenConns, 0)
}

func GetDBMaxIdleConns() int {
	return getInt(dbMaxIdleConns, 0)
}

func GetDBMaxLifetimeSecond() int {
	return getInt(dbMaxLifetimeSecond, 0)
}

func GetDBMaxIdleTimeSecond() int {
	return getInt(dbMaxIdleTimeSecond, 0)
}

func GetDBConnectTimeoutSecond() int {
	return getInt(dbConnectTimeoutSecond, 0)
}

// GetAuthSecret returns the signing secret for user tokens.
func GetAuthSecret() string {
	return getString(authSecret, "")
}

// GetTokenExpireSecond returns the access token lifetime in seconds.
func GetTokenExpireSecond() int {
	return getInt(authTokenExpireSecond, defaultTokenExpire)
}

// GetRefreshExpireSecond returns the refresh token lifetime in seconds.
func GetRefreshExpireSecond() int {
	return getInt(authRefreshExpireSecond, defaultRefreshExpire)
}

// GetTelemetryEndpoint returns the Prometheus base URL, e.g. http://prometheus:9090.
func GetTelemetryEndpoint() string {
	return getString(telemetryEndpoint, "")
}

// GetTelemetryMetric returns the GPU occupancy metric name to query.
func GetTelemetryMetric() string {
	return getString(telemetryMetric, defaultMetricName)
}

// IsGpuSyncEnable returns whether the periodic GPU sync loop is enabled.
func IsGpuSyncEnable() bool {
	return getBool(gpuSyncEnable, true)
}

// GetGpuSyncIntervalSecond returns the reconciliation interval in seconds.
func GetGpuSyncIntervalSecond() int {
	return getInt(gpuSyncIntervalSecond, defaultSyncInterval)
}

// GetGpuSyncFallbackUser returns the sentinel user assigned to pods
// whose owner cannot be derived from the pod name.
func GetGpuSyncFallbackUser() string {
	return getString(gpuSyncFallbackUser, defaultFallbackUser)
}

// GetNamespace returns the namespace managed by the portal.
func GetNamespace() string {
	return getString(kubeNamespace, defaultNamespace)
}

// GetKubeApiServer returns the API server host used when running out of cluster.
func GetKubeApiServer() string {
	return getString(kubeApiServer, "")
}

// GetKubeBearerToken returns the bearer token used when running out of cluster.
func GetKubeBearerToken() string {
	return getString(kubeBearerToken, "")
}

// GetSharedPvc returns the name of the cluster-wide shared workspace claim,
// mounted read-write into every created pod. Empty disables the mount.
func GetSharedPvc() string {
	return getString(kubeSharedPvc, "")
}

// GetImagePullSecret returns the registry pull secret attached to created pods.
func GetImagePullSecret() string {
	return getString(kubeImagePullSecret, "")
}

// GetDashboardPrefix returns the reserved prefix of pods created by the portal itself.
func GetDashboardPrefix() string {
	return getString(namingDashboardPrefix, defaultDashboardPrefix)
}

// GetNotebookPrefix returns the prefix of interactive notebook pods.
func GetNotebookPrefix() string {
	return getString(namingNotebookPrefix, defaultNotebookPrefix)
}

// GetDataObserverEndpoint returns the base URL of the file-browser microservice.
func GetDataObserverEndpoint() string {
	return getString(observerEndpoint, "")
}
