/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"fmt"
	"net/http"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const KCloudPrefix = "KCloud."

/*
   5-digit Error Code Convention: [xx][yyy]
   [xx] Business ID (00-99), used to distinguish errors from different business interfaces.
   00: General errors
   01: Server(pod)-related errors
   02: Storage-related errors
   03: GPU-sync-related errors
   [yyy] Error code range (000-999)
*/

// public: 00xxx
const (
	InternalError     = KCloudPrefix + "00001"
	BadRequest        = KCloudPrefix + "00002"
	Forbidden         = KCloudPrefix + "00003"
	AlreadyExist      = KCloudPrefix + "00004"
	NotFound          = KCloudPrefix + "00005"
	Unauthorized      = KCloudPrefix + "00006"
	UserNotRegistered = KCloudPrefix + "00007"
)

// server: 01xxx
const (
	ServerNotFound = KCloudPrefix + "01001"
)

// storage: 02xxx
const (
	PvcNotFound = KCloudPrefix + "02001"
)

// gpu sync: 03xxx
const (
	TelemetryUnavailable = KCloudPrefix + "03001"
)

// IsKCloud returns true if the specified error carries a kcloud error reason.
func IsKCloud(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(string(apierrors.ReasonForError(err)), KCloudPrefix)
}

func IsAlreadyExist(err error) bool {
	return apierrors.ReasonForError(err) == AlreadyExist
}

func IsBadRequest(err error) bool {
	return apierrors.ReasonForError(err) == BadRequest
}

func IsUnauthorized(err error) bool {
	reason := apierrors.ReasonForError(err)
	return reason == Unauthorized || reason == UserNotRegistered
}

func IsNotFound(err error) bool {
	reason := apierrors.ReasonForError(err)
	return reason == NotFound || reason == ServerNotFound || reason == PvcNotFound
}

func IgnoreFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}

func GetErrorCode(err error) string {
	if err == nil || !IsKCloud(err) {
		return ""
	}
	return string(apierrors.ReasonForError(err))
}

func NewBadRequest(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadRequest,
		Reason:  BadRequest,
		Message: fmt.Sprintf("Bad request. %s", message),
	}}
}

func NewInternalError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  InternalError,
		Message: fmt.Sprintf("Internal error. %s", message),
	}}
}

func NewAlreadyExist(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusConflict,
		Reason:  AlreadyExist,
		Message: message,
	}}
}

func NewForbidden(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusForbidden,
		Reason:  Forbidden,
		Message: message,
	}}
}

func NewUnauthorized(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusUnauthorized,
		Reason:  Unauthorized,
		Message: message,
	}}
}

func NewUserNotRegistered(name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusUnauthorized,
		Reason:  UserNotRegistered,
		Message: fmt.Sprintf("the user %s is not registered", name),
	}}
}

func NewNotFoundWithMessage(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusNotFound,
		Reason:  NotFound,
		Message: message,
	}}
}

func NewServerNotFound(name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusNotFound,
		Reason:  ServerNotFound,
		Message: fmt.Sprintf("the server %s is not found", name),
	}}
}

func NewPvcNotFound(name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusNotFound,
		Reason:  PvcNotFound,
		Message: fmt.Sprintf("the pvc %s is not found", name),
	}}
}

func NewTelemetryUnavailable(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadGateway,
		Reason:  TelemetryUnavailable,
		Message: fmt.Sprintf("Telemetry unavailable. %s", message),
	}}
}
