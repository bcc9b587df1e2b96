// Copyright (c) 2025, The nsplugins Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	nserrors "github.com/nsplugins/nsplugins/pkg/errors"
	"github.com/nsplugins/nsplugins/pkg/serializer"
)

// WriteError writes an ErrorResponse with statusCode.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code nserrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID := RequestID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteErrorFromErr writes err as an ErrorResponse. A StructuredError
// supplies the code, message and context; anything else is reported as
// INTERNAL with fallbackMessage. The cause, if any, is added as details.error.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, details map[string]any) {
	var se *nserrors.StructuredError
	if !stderrors.As(err, &se) {
		WriteError(w, r, http.StatusInternalServerError, nserrors.ErrCodeInternal, fallbackMessage,
			retryableFromCode(nserrors.ErrCodeInternal), mergeDetails(details, map[string]any{"error": err.Error()}))
		return
	}

	merged := mergeDetails(se.Context, details)
	if se.Cause != nil {
		merged = mergeDetails(merged, map[string]any{"error": se.Cause.Error()})
	}
	message := se.Message
	if message == "" {
		message = fallbackMessage
	}
	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, message, retryableFromCode(se.Code), merged)
}

// HTTPStatusFromCode maps an error code to an HTTP status.
func HTTPStatusFromCode(code nserrors.ErrorCode) int {
	switch code {
	case nserrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case nserrors.ErrCodeNotFound:
		return http.StatusNotFound
	case nserrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case nserrors.ErrCodeIncompatible:
		return http.StatusConflict
	case nserrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case nserrors.ErrCodeActivationFailed:
		return http.StatusBadGateway
	case nserrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case nserrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code nserrors.ErrorCode) bool {
	switch code {
	case nserrors.ErrCodeTimeout, nserrors.ErrCodeUnavailable,
		nserrors.ErrCodeRateLimitExceeded, nserrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a new map with b's keys overriding a's, or nil when
// both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
