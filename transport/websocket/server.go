package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/pkg"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error)
	StartGame(ctx context.Context, sessionID string) (*entity.Session, error)
	MakeMove(ctx context.Context, sessionID string, cell int) (*entity.Session, *entity.MoveResult, error)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase

	handlers map[string]func(ctx context.Context, message *Message, writer *bufio.ReadWriter) error
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,

		handlers: make(map[string]func(context.Context, *Message, *bufio.ReadWriter) error),
	}

	server.handlers[actionConnect] = server.handleConnect
	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionGameTurn] = server.handleGameTurn

	return server
}

// Handler returns the http.Handler serving the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	key := req.Header.Get("Sec-WebSocket-Key")
	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") || key == "" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	// the handshake deadlines of net/http no longer apply after hijacking
	_ = conn.SetDeadline(time.Time{})

	handshake := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + pkg.GenerateAcceptKey(key) + "\r\n\r\n"

	if _, err = bufrw.WriteString(handshake); err != nil {
		log.Error("failed to write handshake", "error", err)
		return
	}

	if err = bufrw.Flush(); err != nil {
		log.Error("failed to flush handshake", "error", err)
		return
	}

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it closes the connection.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		if ctx.Err() != nil {
			return nil
		}

		reqBody, err := readRequest(bufrw)
		if errors.Is(err, errConnectionClosed) || errors.Is(err, io.EOF) {
			log.Info("WebSocket connection closed")
			return nil
		}

		if err != nil {
			return err
		}

		if reqBody == nil {
			continue
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendErrorResponse(bufrw, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
