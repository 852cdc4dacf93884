package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type UnwrappedErrorPayload struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Errors  []string `json:"errors"`
}

func (payload *UnwrappedErrorPayload) Add(err error) {
	if payload.Errors == nil {
		payload.Errors = make([]string, 0, 4)
		payload.Error = err.Error()
	}
	payload.Errors = append(payload.Errors, err.Error())
	for {
		err = errors.Unwrap(err)
		if err == nil {
			break
		}
		payload.Errors = append(payload.Errors, err.Error())
	}
}

// WriteErrorPayload replies in the deck API's error shape,
// {"success": false, "error": ...}, with the unwrapped chain attached.
func WriteErrorPayload(w http.ResponseWriter, statusCode int, err error) {
	payload := UnwrappedErrorPayload{}
	payload.Add(err)
	WriteJSON(w, statusCode, &payload)
}

func DecodeErrorPayload(r io.Reader) (UnwrappedErrorPayload, error) {
	var payload UnwrappedErrorPayload
	err := json.NewDecoder(r).Decode(&payload)
	return payload, err
}
