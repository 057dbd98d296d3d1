// Package http provides the HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses.
// It provides a fluent API for HX-Trigger and HX-Redirect headers and
// consistent error bodies.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

const (
	EventRecordUpdated = "record:updated"
	EventNotification  = "show-notification"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerRecordUpdated tells the totals panel to refresh.
func (b *HTMXResponseBuilder) TriggerRecordUpdated(date, itemID string) *HTMXResponseBuilder {
	return b.Trigger(EventRecordUpdated, map[string]string{"date": date, "itemId": itemID})
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger(EventNotification, map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Redirect makes htmx perform a full page navigation to url.
func (b *HTMXResponseBuilder) Redirect(url string) *HTMXResponseBuilder {
	return b.Header("HX-Redirect", url)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates an HTML error fragment; the message is escaped.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		TriggerErrorNotification(message).
		BodyHTML(`<div class="error">` + escapedMsg + `</div>`)
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}
