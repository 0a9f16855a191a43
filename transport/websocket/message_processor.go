package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
)

const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA

	// client messages are small JSON documents
	maxPayloadSize = 1 << 16
)

var (
	errConnectionClosed = errors.New("connection closed by client")
	errPayloadTooLarge  = errors.New("payload too large")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Session *entity.Session    `json:"session,omitempty"`
	Cell    *int               `json:"cell,omitempty"`
	Move    *entity.MoveResult `json:"move,omitempty"`
	Title   string             `json:"title,omitempty"`
	Message string             `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
}

func (that *Server) sendMessage(bufrw *bufio.ReadWriter, action string, payload Payload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{
		Action:  action,
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	f := frame{
		isFin:   true,
		opCode:  opText,
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	}

	if err = writeFrame(bufrw, f); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, errMsg string) error {
	return that.sendMessage(bufrw, action, Payload{Error: errMsg})
}

func writeFrame(bufrw *bufio.ReadWriter, frameData frame) error {
	buf := make([]byte, 2, 10+len(frameData.payload))
	buf[0] |= frameData.opCode

	if frameData.isFin {
		buf[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		buf[1] |= byte(frameData.length)
	case frameData.length < 1<<16:
		buf[1] |= 126
		buf = binary.BigEndian.AppendUint16(buf, uint16(frameData.length))
	default:
		buf[1] |= 127
		buf = binary.BigEndian.AppendUint64(buf, frameData.length)
	}

	buf = append(buf, frameData.payload...)

	if _, err := bufrw.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readRequest reads one frame and returns its payload. Control frames other than close are
// answered or skipped and yield a nil payload.
func readRequest(bufrw *bufio.ReadWriter) ([]byte, error) {
	f, err := readFrame(bufrw)
	if err != nil {
		return nil, err
	}

	switch f.opCode {
	case opClose:
		_ = writeFrame(bufrw, frame{isFin: true, opCode: opClose})
		return nil, errConnectionClosed
	case opPing:
		if err = writeFrame(bufrw, frame{isFin: true, opCode: opPong, length: f.length, payload: f.payload}); err != nil {
			return nil, err
		}
		return nil, nil
	case opPong, opContinuation:
		return nil, nil
	}

	if !f.isFin {
		return nil, nil
	}

	return f.payload, nil
}

func readFrame(bufrw *bufio.ReadWriter) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(bufrw, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	f := frame{
		isFin:  header[0]>>7 == 1,
		opCode: header[0] & 0x0f,
	}
	maskBit := header[1] >> 7

	size, err := readPayloadLength(bufrw, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if size > maxPayloadSize {
		return frame{}, fmt.Errorf("%w: %d bytes", errPayloadTooLarge, size)
	}

	mask, err := readMask(bufrw, maskBit)
	if err != nil {
		return frame{}, err
	}

	f.length = size
	f.payload, err = readData(bufrw, size, mask)
	if err != nil {
		return frame{}, err
	}

	return f, nil
}

func readPayloadLength(bufrw *bufio.ReadWriter, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}

func readMask(bufrw *bufio.ReadWriter, maskBit byte) ([]byte, error) {
	if maskBit == 0 {
		return nil, nil
	}

	mask := make([]byte, 4)
	if _, err := io.ReadFull(bufrw, mask); err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	return mask, nil
}

func readData(bufrw *bufio.ReadWriter, size uint64, mask []byte) ([]byte, error) {
	payload := make([]byte, size)
	if _, err := io.ReadFull(bufrw, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return payload, nil
}
