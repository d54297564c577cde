package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type FormatKind string

const (
	SingleElimination FormatKind = "single"
	DoubleElimination FormatKind = "double"
	RoundRobin        FormatKind = "round_robin"
)

type Format struct {
	Kind            FormatKind `json:"kind" yaml:"kind"`
	Groups          int        `json:"groups,omitempty" yaml:"groups"`
	AdvancePerGroup int        `json:"advancePerGroup,omitempty" yaml:"advance_per_group"`
	Legs            int        `json:"legs,omitempty" yaml:"legs"`
	// Elimination format used for the playoffs of a round robin
	Playoff FormatKind `json:"playoff,omitempty" yaml:"playoff"`
}

func (f Format) normalized() Format {
	if f.Kind == "" {
		f.Kind = SingleElimination
	}
	if f.Kind != RoundRobin {
		return Format{Kind: f.Kind}
	}
	if f.Groups < 1 {
		f.Groups = 1
	}
	if f.AdvancePerGroup < 1 {
		f.AdvancePerGroup = 2
	}
	if f.Legs != 2 {
		f.Legs = 1
	}
	if f.Playoff != DoubleElimination {
		f.Playoff = SingleElimination
	}
	return f
}

func (f Format) Value() (driver.Value, error) {
	return jsonValue(f)
}

func (f *Format) Scan(src any) error {
	return jsonScan(src, f)
}

// BestOfPolicy maps a match's distance from the final to its series length
type BestOfPolicy struct {
	Final         int `json:"final" yaml:"final"`
	Semi          int `json:"semi" yaml:"semi"`
	Quarter       int `json:"quarter" yaml:"quarter"`
	Earlier       int `json:"earlier" yaml:"earlier"`
	LosersFinal   int `json:"losersFinal" yaml:"losers_final"`
	LosersSemi    int `json:"losersSemi" yaml:"losers_semi"`
	LosersEarlier int `json:"losersEarlier" yaml:"losers_earlier"`
	Group         int `json:"group" yaml:"group"`
}

func DefaultBestOfPolicy() BestOfPolicy {
	return BestOfPolicy{
		Final:         5,
		Semi:          3,
		Quarter:       3,
		Earlier:       1,
		LosersFinal:   3,
		LosersSemi:    3,
		LosersEarlier: 1,
		Group:         1,
	}
}

func UniformBestOf(n int) BestOfPolicy {
	return BestOfPolicy{n, n, n, n, n, n, n, n}
}

// normalized fills unset tiers from the defaults and forces odd series lengths
func (p BestOfPolicy) normalized() BestOfPolicy {
	def := DefaultBestOfPolicy()
	fix := func(v, fallback int) int {
		if v < 1 {
			return fallback
		}
		if v%2 == 0 {
			return v + 1
		}
		return v
	}
	return BestOfPolicy{
		Final:         fix(p.Final, def.Final),
		Semi:          fix(p.Semi, def.Semi),
		Quarter:       fix(p.Quarter, def.Quarter),
		Earlier:       fix(p.Earlier, def.Earlier),
		LosersFinal:   fix(p.LosersFinal, def.LosersFinal),
		LosersSemi:    fix(p.LosersSemi, def.LosersSemi),
		LosersEarlier: fix(p.LosersEarlier, def.LosersEarlier),
		Group:         fix(p.Group, def.Group),
	}
}

func (p BestOfPolicy) Value() (driver.Value, error) {
	return jsonValue(p)
}

func (p *BestOfPolicy) Scan(src any) error {
	return jsonScan(src, p)
}

type MapPool []string

func (m MapPool) Value() (driver.Value, error) {
	if m == nil {
		m = MapPool{}
	}
	return jsonValue(m)
}

func (m *MapPool) Scan(src any) error {
	return jsonScan(src, m)
}

type Tournament struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	OwnerID   uuid.UUID        `db:"owner_id" json:"ownerId"`
	Name      string           `db:"name" json:"name"`
	Status    TournamentStatus `db:"status" json:"status"`
	Format    Format           `db:"format" json:"format"`
	BestOf    BestOfPolicy     `db:"best_of" json:"bestOf"`
	MapPool   MapPool          `db:"map_pool" json:"mapPool"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
