package rest

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rocketscienceinc/disappearing-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/entity"
	"github.com/rocketscienceinc/disappearing-tictactoe/internal/pkg"
)

const sessionCookie = "user_session"

type gameUseCase interface {
	GetOrCreateSession(ctx context.Context, sessionID string) (*entity.Session, error)
	StartGame(ctx context.Context, sessionID string) (*entity.Session, error)
	MakeMove(ctx context.Context, sessionID string, cell int) (*entity.Session, *entity.MoveResult, error)
}

type handlers struct {
	logger *slog.Logger
	game   gameUseCase
	tmpl   *template.Template
}

type gameResponse struct {
	SessionID    string       `json:"session_id"`
	Title        string       `json:"title"`
	Message      string       `json:"message"`
	Disappearing bool         `json:"disappearing"`
	NextEviction *int         `json:"next_eviction,omitempty"`
	Game         *entity.Game `json:"game"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type moveResponse struct {
	gameResponse
	Accepted bool               `json:"accepted"`
	Move     *entity.MoveResult `json:"move,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newHandlers(logger *slog.Logger, game gameUseCase) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
		tmpl:   loadPageTemplate(),
	}
}

func (that *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) page(w http.ResponseWriter, r *http.Request) {
	session, err := that.game.GetOrCreateSession(r.Context(), sessionID(w, r))
	if err != nil {
		that.logger.Error("failed to get session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = that.tmpl.Execute(w, newPageData(session)); err != nil {
		that.logger.Error("failed to render page", "error", err)
	}
}

func (that *handlers) pageMove(w http.ResponseWriter, r *http.Request) {
	cell, err := strconv.Atoi(r.FormValue("cell"))
	if err != nil {
		http.Error(w, "cell must be a number", http.StatusBadRequest)
		return
	}

	_, _, err = that.game.MakeMove(r.Context(), sessionID(w, r), cell)
	if err != nil && !errors.Is(err, apperror.ErrInvalidMove) {
		that.logger.Error("failed to make move", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *handlers) pageRestart(w http.ResponseWriter, r *http.Request) {
	if _, err := that.game.StartGame(r.Context(), sessionID(w, r)); err != nil {
		that.logger.Error("failed to restart game", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.game.GetOrCreateSession(r.Context(), sessionID(w, r))
	if err != nil {
		that.logger.Error("failed to get session", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get game"})
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(session))
}

func (that *handlers) startGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.game.StartGame(r.Context(), sessionID(w, r))
	if err != nil {
		that.logger.Error("failed to start game", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to start game"})
		return
	}

	writeJSON(w, http.StatusOK, newGameResponse(session))
}

func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cell is required"})
		return
	}

	session, result, err := that.game.MakeMove(r.Context(), sessionID(w, r), *req.Cell)
	if err != nil && !errors.Is(err, apperror.ErrInvalidMove) {
		that.logger.Error("failed to make move", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to make move"})
		return
	}

	writeJSON(w, http.StatusOK, moveResponse{
		gameResponse: newGameResponse(session),
		Accepted:     err == nil,
		Move:         result,
	})
}

func newGameResponse(session *entity.Session) gameResponse {
	response := gameResponse{
		SessionID:    session.ID,
		Title:        session.Title(),
		Message:      session.Game.Message(),
		Disappearing: session.Game.IsDisappearing(),
		Game:         session.Game,
	}

	if cell, ok := session.Game.NextEviction(); ok {
		response.NextEviction = &cell
	}

	return response
}

// sessionID returns the session cookie value, issuing a new cookie when absent.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := pkg.GenerateNewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
