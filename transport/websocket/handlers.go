package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
)

const (
	actionConnect  = "connect"
	actionNewGame  = "game:new"
	actionGameTurn = "game:turn"
)

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "invalid payload")
	}

	session, err := that.gameUseCase.GetOrCreateSession(ctx, sessionID(payloadReq))
	if err != nil {
		log.Error("failed to get or create session", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to get the game")
	}

	log.Info("player connected", "sessionID", session.ID)

	return that.sendMessage(bufrw, msg.Action, newPayload(session, nil))
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "invalid payload")
	}

	if payloadReq.Session == nil || payloadReq.Session.ID == "" {
		log.Error("Session is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Session is required")
	}

	session, err := that.gameUseCase.StartGame(ctx, payloadReq.Session.ID)
	if err != nil {
		log.Error("failed to start game", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to start a new game")
	}

	return that.sendMessage(bufrw, msg.Action, newPayload(session, nil))
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, "invalid payload")
	}

	if payloadReq.Session == nil || payloadReq.Session.ID == "" {
		log.Error("Session is missing in payload")
		return that.sendErrorResponse(bufrw, msg.Action, "Session is required")
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(bufrw, msg.Action, "Cell is required")
	}

	session, result, err := that.gameUseCase.MakeMove(ctx, payloadReq.Session.ID, *payloadReq.Cell)
	if errors.Is(err, apperror.ErrInvalidMove) {
		payloadResp := newPayload(session, nil)
		payloadResp.Error = apperror.ErrInvalidMove.Error()

		return that.sendMessage(bufrw, msg.Action, payloadResp)
	}

	if err != nil {
		log.Error("failed to make move", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, "failed to make a move")
	}

	return that.sendMessage(bufrw, msg.Action, newPayload(session, result))
}

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

func sessionID(payload Payload) string {
	if payload.Session == nil {
		return ""
	}

	return payload.Session.ID
}

func newPayload(session *entity.Session, result *entity.MoveResult) Payload {
	return Payload{
		Session: session,
		Move:    result,
		Title:   session.Title(),
		Message: session.Game.Message(),
	}
}
