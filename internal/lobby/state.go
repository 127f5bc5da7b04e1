package lobby

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/squadup/internal/models"
)

// Status is the matchmaking phase of a lobby.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSearching  Status = "searching"
	StatusFound      Status = "found"
	StatusConnecting Status = "connecting"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
)

// ErrInvalidStatus is returned for a status outside the known set.
var ErrInvalidStatus = errors.New("invalid matchmaking status")

func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusSearching, StatusFound, StatusConnecting, StatusReady, StatusError:
		return true
	}
	return false
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// State is the full lobby state of one session.
type State struct {
	Game      *models.GameRef `json:"game"`
	ShowLobby bool            `json:"showLobby"`
	ModalOpen bool            `json:"modalOpen"`
	Status    Status          `json:"status"`
}

// Initial is the state of a session that never touched the lobby.
func Initial() State {
	return State{Status: StatusIdle}
}

// Snapshot returns the persisted subset of s.
func (s State) Snapshot() models.LobbySnapshot {
	return models.LobbySnapshot{Game: cloneRef(s.Game), ShowLobby: s.ShowLobby}
}

// RestoreState rebuilds a State from a persisted snapshot. A visible lobby with a game
// resumes searching; everything else starts idle. A nil snapshot yields Initial().
func RestoreState(snap *models.LobbySnapshot) State {
	st := Initial()
	if snap == nil {
		return st
	}
	st.Game = cloneRef(snap.Game)
	st.ShowLobby = snap.ShowLobby
	if st.ShowLobby && st.Game != nil {
		st.Status = StatusSearching
	}
	return st
}

// Action is one lobby mutation. Implementations are the five exported action types.
type Action interface {
	apply(State) (State, error)
}

// SetGame replaces the active game. A non-nil game starts searching; nil leaves the status alone.
type SetGame struct {
	Game *models.GameRef
}

// SetShowLobby toggles lobby visibility. Hiding clears the game and returns to idle.
type SetShowLobby struct {
	Visible bool
}

type OpenModal struct{}

type CloseModal struct{}

// SetMatchmakingState overrides the status directly.
type SetMatchmakingState struct {
	Status Status
}

func (a SetGame) apply(s State) (State, error) {
	s.Game = cloneRef(a.Game)
	if s.Game != nil {
		s.Status = StatusSearching
	}
	return s, nil
}

func (a SetShowLobby) apply(s State) (State, error) {
	s.ShowLobby = a.Visible
	if !a.Visible {
		s.Game = nil
		s.Status = StatusIdle
		return s, nil
	}
	if s.Game != nil {
		s.Status = StatusSearching
	}
	return s, nil
}

func (OpenModal) apply(s State) (State, error) {
	s.ModalOpen = true
	return s, nil
}

func (CloseModal) apply(s State) (State, error) {
	s.ModalOpen = false
	return s, nil
}

func (a SetMatchmakingState) apply(s State) (State, error) {
	if !a.Status.Valid() {
		return s, fmt.Errorf("%w: %q", ErrInvalidStatus, a.Status)
	}
	s.Status = a.Status
	return s, nil
}

// Reduce applies a to s and returns the next state. s is never modified; on error s is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	if a == nil {
		return s, errors.New("nil lobby action")
	}
	s.Game = cloneRef(s.Game)
	return a.apply(s)
}

func cloneRef(g *models.GameRef) *models.GameRef {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}
