package bracket

import (
	"encoding/json"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/codec"
	"github.com/google/uuid"
)

type sourceWire struct {
	Player  *uuid.UUID `json:"player,omitempty"`
	Match   string     `json:"match,omitempty"`
	Outcome Outcome    `json:"outcome,omitempty"`
}

type matchWire struct {
	ID             string         `json:"id"`
	Section        Section        `json:"section"`
	Round          int            `json:"round"`
	Index          int            `json:"index"`
	GroupID        string         `json:"groupId,omitempty"`
	Sources        [2]*sourceWire `json:"sources"`
	BestOf         int            `json:"bestOf"`
	Scores         [2]int         `json:"scores"`
	Status         MatchStatus    `json:"status"`
	Walkover       Side           `json:"walkover,omitempty"`
	ForfeitApplied bool           `json:"forfeitApplied,omitempty"`
	WinnerID       *uuid.UUID     `json:"winnerId,omitempty"`
	LoserID        *uuid.UUID     `json:"loserId,omitempty"`
	Record         Record         `json:"record,omitempty"`
	Entrants       [2]*uuid.UUID  `json:"entrants"`
}

func (m Match) toWire() matchWire {
	w := matchWire{
		ID:             m.ID,
		Section:        m.Section,
		Round:          m.Round,
		Index:          m.Index,
		GroupID:        m.GroupID,
		BestOf:         m.BestOf,
		Scores:         m.Scores,
		Status:         m.Status,
		Walkover:       m.Walkover,
		ForfeitApplied: m.ForfeitApplied,
		WinnerID:       m.WinnerID,
		LoserID:        m.LoserID,
		Record:         m.Record,
		Entrants:       m.Entrants,
	}
	for i, src := range m.Sources {
		switch s := src.(type) {
		case PlayerSource:
			id := s.PlayerID
			w.Sources[i] = &sourceWire{Player: &id}
		case MatchSource:
			w.Sources[i] = &sourceWire{Match: s.MatchID, Outcome: s.Outcome}
		}
	}
	return w
}

func (m *Match) fromWire(w matchWire) error {
	*m = Match{
		ID:             w.ID,
		Section:        w.Section,
		Round:          w.Round,
		Index:          w.Index,
		GroupID:        w.GroupID,
		BestOf:         w.BestOf,
		Scores:         w.Scores,
		Status:         w.Status,
		Walkover:       w.Walkover,
		ForfeitApplied: w.ForfeitApplied,
		WinnerID:       w.WinnerID,
		LoserID:        w.LoserID,
		Record:         w.Record,
		Entrants:       w.Entrants,
	}
	for i, src := range w.Sources {
		switch {
		case src == nil:
		case src.Player != nil:
			m.Sources[i] = PlayerSource{PlayerID: *src.Player}
		case src.Match != "":
			m.Sources[i] = MatchSource{MatchID: src.Match, Outcome: src.Outcome}
		default:
			return fmt.Errorf("%w: match %s has an empty source", ErrInvalidStructure, w.ID)
		}
	}
	return nil
}

func (m Match) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.toWire())
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var w matchWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return m.fromWire(w)
}

func (m Match) MarshalCBOR() ([]byte, error) {
	return codec.Marshal(m.toWire())
}

func (m *Match) UnmarshalCBOR(data []byte) error {
	var w matchWire
	if err := codec.Unmarshal(data, &w); err != nil {
		return err
	}
	return m.fromWire(w)
}
