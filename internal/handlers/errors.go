// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"heritage/internal/imaging"
	"heritage/internal/store"
	"heritage/internal/taxonomy"
)

// errNotFound is returned by handlers for a missing row that the store
// reported as nil.
var errNotFound = errors.New("not found")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, taxonomy.ErrNotFound), errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, taxonomy.ErrBusy), errors.Is(err, store.ErrSlugTaken):
		return http.StatusConflict
	case errors.Is(err, taxonomy.ErrSelfParent), errors.Is(err, taxonomy.ErrCycle),
		errors.Is(err, taxonomy.ErrUnknownField), errors.Is(err, imaging.ErrNotImage):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// fail logs err and writes its raw message with the mapped status. The
// admin UI shows the body as a blocking alert.
func fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err)
	} else {
		slog.Warn(msg, "error", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}
