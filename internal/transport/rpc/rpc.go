// Package rpc exposes the generator as JSON-RPC 2.0 methods over HTTP.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payfile-synth/internal/domain"
	"payfile-synth/internal/logger"
	"payfile-synth/internal/transport"
)

// Version is the only protocol version accepted.
const Version = "2.0"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const maxBodyBytes = 1 << 20

// Request is one JSON-RPC call. A missing ID makes it a notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Response carries either a result or an error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type method func(ctx context.Context, params json.RawMessage) (any, *Error)

// Handler dispatches JSON-RPC requests to the generation service.
type Handler struct {
	svc      transport.Service
	requests *transport.RequestValidator
	log      *logrus.Entry
	methods  map[string]method
}

// NewHandler registers generateFile, listFormats and listFiles.
func NewHandler(svc transport.Service, log *logger.Logger, maxRows int) (*Handler, error) {
	requests, err := transport.NewRequestValidator(maxRows)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		svc:      svc,
		requests: requests,
		log:      log.WithComponent("rpc"),
	}
	h.methods = map[string]method{
		"generateFile": h.generateFile,
		"listFormats":  h.listFormats,
		"listFiles":    h.listFiles,
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, errorResponse(nil, CodeParseError, "could not read request body", err.Error()))
		return
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		writeJSON(w, errorResponse(nil, CodeParseError, "parse error", nil))
		return
	}
	if trimmed[0] == '[' {
		h.serveBatch(r.Context(), w, trimmed)
		return
	}

	// well-formed JSON that is not a request object, such as 1 or "x"
	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		writeJSON(w, errorResponse(nil, CodeInvalidRequest, "invalid request", err.Error()))
		return
	}
	resp := h.call(r.Context(), req)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, resp)
}

func (h *Handler) serveBatch(ctx context.Context, w http.ResponseWriter, body []byte) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		writeJSON(w, errorResponse(nil, CodeParseError, "parse error", err.Error()))
		return
	}
	if len(raws) == 0 {
		writeJSON(w, errorResponse(nil, CodeInvalidRequest, "empty batch", nil))
		return
	}

	responses := make([]*Response, 0, len(raws))
	for _, raw := range raws {
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			responses = append(responses, errorResponse(nil, CodeInvalidRequest, "invalid request", err.Error()))
			continue
		}
		if resp := h.call(ctx, req); resp != nil {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, responses)
}

// call runs one request. Notifications yield no response.
func (h *Handler) call(ctx context.Context, req Request) *Response {
	notification := len(req.ID) == 0

	if req.JSONRPC != Version || req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "invalid request", "jsonrpc must be \"2.0\" and method is required")
	}

	m, ok := h.methods[req.Method]
	if !ok {
		if notification {
			return nil
		}
		return errorResponse(req.ID, CodeMethodNotFound, "method not found", req.Method)
	}

	result, rpcErr := m(ctx, req.Params)
	if notification {
		return nil
	}
	if rpcErr != nil {
		return &Response{JSONRPC: Version, Error: rpcErr, ID: req.ID}
	}
	return &Response{JSONRPC: Version, Result: result, ID: req.ID}
}

type generateFileParams struct {
	transport.GenerateParams
	Namespace string `json:"namespace"`
}

// GenerateFileResult is the result of generateFile.
type GenerateFileResult struct {
	Namespace string          `json:"namespace"`
	Filename  string          `json:"filename"`
	Path      string          `json:"path"`
	Size      int64           `json:"size"`
	Meta      domain.FileMeta `json:"meta"`
}

func (h *Handler) generateFile(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p generateFileParams
	if err := decodeParams(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	req, err := h.requests.Validate(p.GenerateParams)
	if err != nil {
		return nil, invalidParams(err)
	}
	if p.Namespace == "" {
		p.Namespace = uuid.NewString()
	}

	file, stored, err := h.svc.GenerateAndStore(ctx, req, p.Namespace)
	if err != nil {
		return nil, h.serviceError(err)
	}
	return GenerateFileResult{
		Namespace: stored.Namespace,
		Filename:  file.Filename,
		Path:      stored.Path,
		Size:      stored.Size,
		Meta:      file.Meta,
	}, nil
}

func (h *Handler) listFormats(_ context.Context, _ json.RawMessage) (any, *Error) {
	return map[string]any{"formats": h.svc.Formats()}, nil
}

type listFilesParams struct {
	Namespace string `json:"namespace"`
}

func (h *Handler) listFiles(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p listFilesParams
	if err := decodeParams(params, &p); err != nil {
		return nil, invalidParams(err)
	}
	if p.Namespace == "" {
		return nil, invalidParams(fmt.Errorf("namespace is required"))
	}

	files, err := h.svc.ListFiles(ctx, p.Namespace)
	if err != nil {
		return nil, h.serviceError(err)
	}
	return map[string]any{"namespace": p.Namespace, "files": files}, nil
}

func (h *Handler) serviceError(err error) *Error {
	switch transport.Classify(err) {
	case transport.KindInvalid, transport.KindNotFound:
		return invalidParams(err)
	default:
		h.log.WithError(err).Error("rpc call failed")
		return &Error{Code: CodeInternalError, Message: "internal error", Data: err.Error()}
	}
}

func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		params = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func invalidParams(err error) *Error {
	return &Error{Code: CodeInvalidParams, Message: "invalid params", Data: err.Error()}
}

func errorResponse(id json.RawMessage, code int, message string, data any) *Response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &Response{JSONRPC: Version, Error: &Error{Code: code, Message: message, Data: data}, ID: id}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
