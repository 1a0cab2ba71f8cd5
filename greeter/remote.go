package greeter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/segmentio/encoding/json"
)

const GreetPath = "/api/greet"

// maxResponseBytes caps how much of a reply body is read.
const maxResponseBytes = 1 << 20

type Request struct {
	Name string `json:"name"`
}

type Response struct {
	Greeting string `json:"greeting,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Remote reaches a greet actor over JSON/HTTP.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  client,
	}
}

func (r *Remote) Greet(ctx context.Context, name string) (string, error) {
	body, err := json.Marshal(Request{Name: name})
	if err != nil {
		return "", &RemoteCallError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+GreetPath, bytes.NewReader(body))
	if err != nil {
		return "", &RemoteCallError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", &RemoteCallError{Op: "call", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &RemoteCallError{Op: "read", Status: resp.StatusCode, Err: err}
	}

	var out Response
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(out.Error)
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &RemoteCallError{Op: "call", Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if decodeErr != nil {
		return "", &RemoteCallError{Op: "decode", Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", decodeErr)}
	}

	return out.Greeting, nil
}
