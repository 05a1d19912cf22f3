// This Source Code Form is subject to the terms of the Mozilla Public
// License, version 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package render sends JSON responses with the cache-control headers the
// token endpoint requires (RFC 6749 section 5.1).
package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// ErrNilResponseWriter is returned when a nil http.ResponseWriter is passed.
var ErrNilResponseWriter = errors.New("you must provide a valid http.ResponseWriter")

// Options represents the set of values to pass when rendering content.
type Options struct {
	// HTTP status to return.
	Status int
	// Content to serialize.
	Data interface{}
	// Extra headers to set before the body is written, e.g. WWW-Authenticate.
	Headers http.Header
}

// JSON renders JSON content and sends it back to the HTTP client with the
// no-store/no-cache headers the token endpoint must always set.
func JSON(w http.ResponseWriter, opts Options) error {
	if w == nil {
		return ErrNilResponseWriter
	}

	headers := w.Header()
	headers.Set("Content-Type", "application/json")
	headers.Set("Cache-Control", "no-store")
	headers.Set("Pragma", "no-cache")

	for k, vs := range opts.Headers {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}

	jsonBytes, err := json.Marshal(opts.Data)
	if err != nil {
		return err
	}

	headers.Set("Content-Length", strconv.Itoa(len(jsonBytes)))
	if opts.Status <= 0 {
		opts.Status = http.StatusOK
	}
	w.WriteHeader(opts.Status)
	w.Write(jsonBytes)

	return nil
}
