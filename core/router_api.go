package core

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-barry/greetform/greeter"
	"github.com/segmentio/encoding/json"
)

const maxAPIBody = 64 << 10

// handleAPI serves POST /api/greet: the remote actor endpoint the browser
// handler and greeter.Remote call.
func (r *Router) handleAPI(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, greeter.Response{Error: "method not allowed"})
		return
	}

	name, err := decodeGreetRequest(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, greeter.Response{Error: err.Error()})
		return
	}

	ctx := req.Context()
	if r.config.GreetTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.GreetTimeout)
		defer cancel()
	}

	greeting, err := r.greeter.Greet(ctx, name)
	if err != nil {
		r.logger.Warn().
			Str("request_id", req.Header.Get(RequestIDHeader)).
			Err(err).
			Msg("api_greet_failed")
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, greeter.Response{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, greeter.Response{Greeting: greeting})
}

// decodeGreetRequest accepts a JSON body or a urlencoded form. The name is
// returned as sent; an empty name is valid.
func decodeGreetRequest(req *http.Request) (string, error) {
	req.Body = http.MaxBytesReader(nil, req.Body, maxAPIBody)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := req.ParseForm(); err != nil {
			return "", errors.New("malformed form body")
		}
		return req.PostForm.Get(FieldName), nil
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return "", errors.New("request body too large")
	}
	if len(data) == 0 {
		return "", nil
	}

	var body greeter.Request
	if err := json.Unmarshal(data, &body); err != nil {
		return "", errors.New("malformed JSON body")
	}
	return body.Name, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(data)
}
