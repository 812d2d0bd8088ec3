// Package apiresponse renders the JSON envelope every endpoint speaks:
// success responses carry a data object, failures carry details, and both
// carry a human-readable message.
package apiresponse

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape of every response body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, message, data)
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, message, data)
}

// Error writes a failure envelope. Details may be nil.
func Error(w http.ResponseWriter, status int, message string, details any) {
	write(w, status, Envelope{Success: false, Message: message, Details: details})
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already flushed; nothing useful can be written.
		return
	}
}
