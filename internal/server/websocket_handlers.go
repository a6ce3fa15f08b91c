package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/debarkoder/internal/utils"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketDecodeRequest is one decode request on a WebSocket connection.
type WebSocketDecodeRequest struct {
	Type  string `json:"type"` // "image" or "pdf"
	Name  string `json:"name,omitempty"`
	Data  []byte `json:"data,omitempty"`
	Pages string `json:"pages,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketDecodeResponse is a progress, result or error message.
type WebSocketDecodeResponse struct {
	Type      string  `json:"type"`
	Status    string  `json:"status"` // "processing", "completed", "error"
	Progress  float64 `json:"progress,omitempty"`
	Result    any     `json:"result,omitempty"`
	Error     string  `json:"error,omitempty"`
	ErrorType string  `json:"error_type,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// decodeWebSocketHandler streams decode requests over a WebSocket.
func (s *Server) decodeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

// handleWebSocketConnection processes messages until the client goes away.
func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(s.maxUploadBytes())
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

// handleWebSocketMessage processes a WebSocket message.
func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, data []byte) {
	var req WebSocketDecodeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	switch req.Type {
	case "image":
		s.processWebSocketImage(ctx, conn, req, requestID)
	case "pdf":
		s.processWebSocketPDF(ctx, conn, req, requestID)
	default:
		s.sendWebSocketError(conn, requestID, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

func (s *Server) sendProgress(conn WebSocketConnWriter, requestID string, progress float64) {
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      "decode_response",
		Status:    "processing",
		Progress:  progress,
		RequestID: requestID,
	})
}

// processWebSocketImage decodes an image sent over a WebSocket.
func (s *Server) processWebSocketImage(ctx context.Context, conn WebSocketConnWriter, req WebSocketDecodeRequest, requestID string) {
	if len(req.Data) == 0 {
		s.sendWebSocketError(conn, requestID, "invalid_request", "No image data provided")
		return
	}
	if s.pipeline == nil {
		s.sendWebSocketError(conn, requestID, "unavailable", "Decoder not initialized")
		return
	}

	s.sendProgress(conn, requestID, 0)

	img, _, err := utils.DecodeImage(bytes.NewReader(req.Data))
	if err != nil {
		s.sendWebSocketError(conn, requestID, "processing_error", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	s.sendProgress(conn, requestID, 0.5)

	start := time.Now()
	res, err := s.pipeline.ProcessImageContext(ctx, img)
	duration := time.Since(start)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("websocket_image", "error").Inc()
		s.sendWebSocketError(conn, requestID, "processing_error", fmt.Sprintf("Decoding failed: %v", err))
		return
	}
	res.Source = req.Name

	observeImageResult("websocket_image", res, duration)
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      "decode_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    res,
		RequestID: requestID,
	})
}

// processWebSocketPDF decodes a PDF sent over a WebSocket.
func (s *Server) processWebSocketPDF(ctx context.Context, conn WebSocketConnWriter, req WebSocketDecodeRequest, requestID string) {
	if len(req.Data) == 0 {
		s.sendWebSocketError(conn, requestID, "invalid_request", "No PDF data provided")
		return
	}
	if s.pipeline == nil {
		s.sendWebSocketError(conn, requestID, "unavailable", "Decoder not initialized")
		return
	}

	s.sendProgress(conn, requestID, 0.2)

	start := time.Now()
	res, err := s.pipeline.ProcessPDFReader(ctx, req.Name, bytes.NewReader(req.Data), req.Pages)
	duration := time.Since(start)
	if err != nil {
		decodeRequestsTotal.WithLabelValues("websocket_pdf", "error").Inc()
		s.sendWebSocketError(conn, requestID, "processing_error", fmt.Sprintf("PDF decoding failed: %v", err))
		return
	}

	observePDFResult("websocket_pdf", res, duration)
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      "decode_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    res,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketDecodeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketDecodeResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
