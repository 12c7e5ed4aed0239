/*
 * Copyright (C) 2025-2026, OpenKCloud. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	kclouderrors "github.com/openkcloud/kcloud-manage/pkg/errors"
)

// KCloudApiError defines the unified error response, including HTTP code, error code, and error message.
type KCloudApiError struct {
	HttpCode     int    `json:"-"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// Error returns the error message string.
func (err *KCloudApiError) Error() string {
	return err.ErrorMessage
}

// AbortWithApiError converts the error into the standardized error format
// and aborts the request with a JSON error response.
func AbortWithApiError(c *gin.Context, err error) {
	handleErrors(c, err)
	rsp := convertToErrResponse(err)
	c.AbortWithStatusJSON(rsp.HttpCode, rsp)
}

// convertToErrResponse converts an error into the standardized KCloudApiError format.
// It first checks if the error is already a KCloudApiError, otherwise converts
// standard Kubernetes API errors or other errors into appropriate error responses.
func convertToErrResponse(err error) KCloudApiError {
	var result *KCloudApiError
	if errors.As(err, &result) {
		return *result
	}
	var err2 *apierrors.StatusError
	if !errors.As(err, &err2) {
		switch {
		case apierrors.IsNotFound(err):
			err2 = kclouderrors.NewNotFoundWithMessage(err.Error())
		case apierrors.IsBadRequest(err), apierrors.IsInvalid(err):
			err2 = kclouderrors.NewBadRequest(err.Error())
		case apierrors.IsAlreadyExists(err):
			err2 = kclouderrors.NewAlreadyExist(err.Error())
		case apierrors.IsForbidden(err):
			err2 = kclouderrors.NewForbidden(err.Error())
		default:
			err2 = kclouderrors.NewInternalError(err.Error())
		}
	}
	return KCloudApiError{
		HttpCode:     int(err2.Status().Code),
		ErrorCode:    string(err2.Status().Reason),
		ErrorMessage: err2.Error(),
	}
}

// handleErrors processes single errors or error aggregates and adds them to the gin context.
func handleErrors(c *gin.Context, err error) {
	var errs []error
	if aggregate, ok := err.(utilerrors.Aggregate); ok {
		errs = aggregate.Errors()
	} else {
		errs = []error{err}
	}
	for _, val := range errs {
		if val != nil {
			_ = c.Error(val)
		}
	}
}
