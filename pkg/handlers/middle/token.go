/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package middle

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openkcloud/kcloud-manage/pkg/config"
	"github.com/openkcloud/kcloud-manage/pkg/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carried by portal tokens. Subject is the user's email.
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived access token for the user.
func IssueAccessToken(email, role string) (string, error) {
	ttl := time.Duration(config.GetTokenExpireSecond()) * time.Second
	return issueToken(email, role, tokenTypeAccess, ttl)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func IssueRefreshToken(email, role string) (string, error) {
	ttl := time.Duration(config.GetRefreshExpireSecond()) * time.Second
	return issueToken(email, role, tokenTypeRefresh, ttl)
}

func issueToken(email, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.GetAuthSecret()))
}

// ParseAccessToken validates an access token and returns its claims.
func ParseAccessToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, tokenTypeAccess)
}

// ParseRefreshToken validates a refresh token and returns its claims.
func ParseRefreshToken(tokenString string) (*Claims, error) {
	return parseToken(tokenString, tokenTypeRefresh)
}

func parseToken(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewUnauthorized("unexpected token signing method")
		}
		return []byte(config.GetAuthSecret()), nil
	})
	if err != nil {
		return nil, errors.NewUnauthorized("invalid or expired token")
	}
	if !token.Valid || claims.TokenType != expectedType {
		return nil, errors.NewUnauthorized("invalid token")
	}
	return claims, nil
}
