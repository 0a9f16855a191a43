package entity

// Session binds one browser to its game.
type Session struct {
	ID   string `json:"id"`
	Game *Game  `json:"game"`
	// Revealed latches once the disappearing rule has fired and is kept across restarts.
	Revealed bool `json:"revealed"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:   id,
		Game: NewGame(id),
	}
}

// Title is the page title for the session.
func (that *Session) Title() string {
	if that.Revealed {
		return TitleDisappearing
	}

	return TitleClassic
}

// Restart starts a new round, keeping the revealed title.
func (that *Session) Restart() {
	if that.Game == nil {
		that.Game = NewGame(that.ID)
		return
	}

	that.Game.Start()
}

// Valid reports whether the session carries a game.
func (that *Session) Valid() bool {
	return that.Game != nil
}

// ApplyMove forwards to the game and latches Revealed on the disappearing notification.
func (that *Session) ApplyMove(cell int) (*MoveResult, error) {
	if that.Game == nil {
		that.Game = NewGame(that.ID)
	}

	result, err := that.Game.ApplyMove(cell)
	if err != nil {
		return nil, err
	}

	if result.Disappearing {
		that.Revealed = true
	}

	return result, nil
}

func (that *Session) Clone() *Session {
	clone := *that
	if that.Game != nil {
		clone.Game = that.Game.Clone()
	}

	return &clone
}
