// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"errors"
	"fmt"
	"net/http"
)

// Error variables for the completion API.
var (
	// ErrMissingCredential indicates no API key was supplied. It is returned
	// before any network activity.
	ErrMissingCredential = errors.New("API key not configured")

	// ErrTransport indicates the request could not be sent or the response
	// could not be read.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse indicates a completion response did not contain
	// a string at choices[0].message.content.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrParse indicates the model catalog could not be decoded.
	ErrParse = errors.New("failed to parse response")
)

// StatusError is returned when the API answers with an unexpected status.
type StatusError struct {
	Status int
	Path   string
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	msg := fmt.Sprintf("unexpected status %d %s", e.Status, http.StatusText(e.Status))
	if e.Path != "" {
		msg += " from " + e.Path
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus reports whether err is a StatusError carrying status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
