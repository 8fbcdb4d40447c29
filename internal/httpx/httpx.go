// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package httpx defines the response envelope shared by every API
// endpoint and the helpers that write it.
//
//	success: {"success": true, "data": ..., "pagination": {...}}
//	failure: {"success": false, "error": "...", "details": [...]}
package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"quillpress/internal/apperr"
)

// Pagination describes the page returned by a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool                `json:"success"`
	Data       any                 `json:"data,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
	Error      string              `json:"error,omitempty"`
	Details    []apperr.FieldError `json:"details,omitempty"`
}

// Empty is the data payload of operations with no result, such as deletes.
type Empty struct{}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindForStatus maps an HTTP status back to an error kind.
func KindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apperr.KindValidation
	case http.StatusUnauthorized:
		return apperr.KindUnauthenticated
	case http.StatusForbidden:
		return apperr.KindForbidden
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusConflict:
		return apperr.KindConflict
	default:
		return apperr.KindServer
	}
}

// WriteSuccess writes a success envelope around data.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	if data == nil {
		data = Empty{}
	}
	render.Status(r, status)
	render.JSON(w, r, Envelope{Success: true, Data: data})
}

// WritePage writes a success envelope with pagination metadata.
func WritePage(w http.ResponseWriter, r *http.Request, data any, p Pagination) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, Envelope{Success: true, Data: data, Pagination: &p})
}

// WriteFailure writes a failure envelope with an explicit status.
func WriteFailure(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{Success: false, Error: msg})
}

// WriteError classifies err and writes the matching failure envelope.
// Server errors are logged and reported with a fixed message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindServer {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		WriteFailure(w, r, http.StatusInternalServerError, "Server Error")
		return
	}

	render.Status(r, StatusFor(appErr.Kind))
	render.JSON(w, r, Envelope{Success: false, Error: appErr.Message, Details: appErr.Fields})
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}
