// Package respond writes the JSON envelopes shared by handlers and
// middleware. Error bodies carry a human-readable message and a short
// category string; stack traces and internal detail never reach the client.
package respond

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorBody{Message: message, Error: http.StatusText(status)})
}
