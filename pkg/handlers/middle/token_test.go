/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package middle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcloud/kcloud-manage/pkg/config"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	config.SetValue("auth.secret", "unit-test-secret")

	token, err := IssueAccessToken("js.lee@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "js.lee@example.com", claims.Subject)
	assert.Equal(t, "user", claims.Role)
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	config.SetValue("auth.secret", "unit-test-secret")

	refresh, err := IssueRefreshToken("js.lee@example.com", "user")
	require.NoError(t, err)

	_, err = ParseAccessToken(refresh)
	assert.Error(t, err)

	claims, err := ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "js.lee@example.com", claims.Subject)
}

func TestParseToken_WrongSecret(t *testing.T) {
	config.SetValue("auth.secret", "unit-test-secret")
	token, err := IssueAccessToken("js.lee@example.com", "user")
	require.NoError(t, err)

	config.SetValue("auth.secret", "rotated-secret")
	_, err = ParseAccessToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	config.SetValue("auth.secret", "unit-test-secret")
	_, err := ParseAccessToken("not-a-token")
	assert.Error(t, err)
}
