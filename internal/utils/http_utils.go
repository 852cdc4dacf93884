package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/context/ctxhttp"
)

func CreateHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns: 20,

		// A game talks to a single deck service, one request at a time.
		MaxIdleConnsPerHost: 5,

		IdleConnTimeout: 5 * time.Minute,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

type RequestSender struct {
	Client     *http.Client
	Method     string
	URL        string
	BodyReader io.Reader
}

func (sender *RequestSender) Send(parentContext context.Context) (*http.Response, error) {
	req, err := http.NewRequest(sender.Method, sender.URL, sender.BodyReader)
	if err != nil {
		return nil, err
	}
	return ctxhttp.Do(parentContext, sender.Client, req)
}

func (sender *RequestSender) SendWithTimeout(parentContext context.Context, timeout time.Duration) (*http.Response, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(parentContext, timeout)
	resp, err := sender.Send(ctx)
	if err != nil {
		return nil, cancel, err
	}
	return resp, cancel, nil
}

// HTTPResponseCodeError is a reply that arrived but with a non 2xx status.
// Message is the "error" field of a JSON error payload, if the body was one.
type HTTPResponseCodeError struct {
	URL        string
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPResponseCodeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s responded with %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s responded with %d: %s", e.URL, e.StatusCode, e.Body)
}

// CheckResponseCode drains and closes the body of a failed response.
func CheckResponseCode(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	codeErr := &HTTPResponseCodeError{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if payload, err := DecodeErrorPayload(bytes.NewReader(body)); err == nil {
		codeErr.Message = payload.Error
	}
	return codeErr
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
