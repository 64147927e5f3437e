// Package service exposes the decomposition engine over line-delimited
// JSON-RPC on stdio. It is the manual test harness surface: one request
// per line in, one response per line out.
package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/ironsheep/image-decompose/internal/decompose"
)

// Service routes JSON-RPC requests to the decomposition controller.
type Service struct {
	controller *decompose.Controller
	log        *slog.Logger
}

// Request is an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
)

// New wraps a controller in a JSON-RPC service.
func New(controller *decompose.Controller, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{controller: controller, log: log}
}

// Run reads newline-delimited requests from r until EOF, writing one
// response per request to w. Malformed lines are logged and skipped.
func (s *Service) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Large batch requests need headroom.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("malformed request line", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("request stream error: %w", err)
	}
	return nil
}

func (s *Service) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "analyze":
		return s.handleAnalyze(ctx, req)
	case "analyzeBatch":
		return s.handleAnalyzeBatch(ctx, req)
	case "textAttributes":
		return s.handleTextAttributes(req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{}}
	default:
		return errorResponse(req, codeMethodNotFound,
			fmt.Sprintf("method not found: %s", req.Method))
	}
}

type analyzeParams struct {
	Image string `json:"image"`
}

func (s *Service) handleAnalyze(ctx context.Context, req *Request) *Response {
	var params analyzeParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Image == "" {
		return errorResponse(req, codeInvalidParams, "analyze requires an image path")
	}

	node, err := s.controller.Analyze(ctx, params.Image)
	if err != nil {
		return errorResponse(req, codeInternal, err.Error())
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: node}
}

type analyzeBatchParams struct {
	Images []string `json:"images"`
}

func (s *Service) handleAnalyzeBatch(ctx context.Context, req *Request) *Response {
	var params analyzeBatchParams
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params.Images) == 0 {
		return errorResponse(req, codeInvalidParams, "analyzeBatch requires a non-empty image list")
	}

	nodes := s.controller.AnalyzeBatch(ctx, params.Images)
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: nodes}
}

type textAttributesParams struct {
	Image string `json:"image"`
	Type  string `json:"type"`
}

func (s *Service) handleTextAttributes(req *Request) *Response {
	var params textAttributesParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Image == "" {
		return errorResponse(req, codeInvalidParams, "textAttributes requires an image path")
	}
	if params.Type == "" {
		params.Type = "text"
	}

	attrs, err := s.controller.TextAttributes(params.Image, params.Type)
	if err != nil {
		return errorResponse(req, codeInternal, err.Error())
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: attrs}
}

func errorResponse(req *Request, code int, msg string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Error:   &Error{Code: code, Message: msg},
	}
}
