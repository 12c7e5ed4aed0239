/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package auth_handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcloud/kcloud-manage/pkg/config"
	dbclient "github.com/openkcloud/kcloud-manage/pkg/database/client"
)

func newTestRouter(t *testing.T) (*gin.Engine, *dbclient.TestHelper) {
	gin.SetMode(gin.TestMode)
	config.SetValue("auth.secret", "unit-test-secret")

	helper := dbclient.NewTestHelper(t)
	t.Cleanup(helper.Cleanup)

	engine := gin.New()
	InitAuthRouters(engine, NewHandler(helper.Client))
	return engine, helper
}

func doJSON(t *testing.T, engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateUserAndLogin(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, "/api/v1/auth/create_user", CreateUserRequest{
		Email:    "js.lee@example.com",
		Password: "secret-pw",
		Name:     "js.lee",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	// Duplicate registration is rejected.
	recorder = doJSON(t, engine, "/api/v1/auth/create_user", CreateUserRequest{
		Email:    "js.lee@example.com",
		Password: "secret-pw",
		Name:     "js.lee",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = doJSON(t, engine, "/api/v1/auth/login", LoginRequest{
		Email:    "js.lee@example.com",
		Password: "secret-pw",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))
	assert.True(t, login.Success)
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, "user", login.User.Role)

	recorder = doJSON(t, engine, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var refreshed LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestLogin_BadPassword(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, "/api/v1/auth/create_user", CreateUserRequest{
		Email:    "js.lee@example.com",
		Password: "secret-pw",
		Name:     "js.lee",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, engine, "/api/v1/auth/login", LoginRequest{
		Email:    "js.lee@example.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, engine, "/api/v1/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret-pw",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	engine, _ := newTestRouter(t)

	recorder := doJSON(t, engine, "/api/v1/auth/create_user", CreateUserRequest{
		Email:    "js.lee@example.com",
		Password: "secret-pw",
		Name:     "js.lee",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, engine, "/api/v1/auth/login", LoginRequest{
		Email:    "js.lee@example.com",
		Password: "secret-pw",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var login LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &login))

	recorder = doJSON(t, engine, "/api/v1/auth/refresh", RefreshRequest{
		RefreshToken: login.AccessToken,
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
