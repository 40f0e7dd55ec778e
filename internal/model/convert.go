package model

import (
	"encoding/json"

	"github.com/navwar/navsim/internal/geo"
	"github.com/navwar/navsim/pkg/core"
)

// GameFromMeta builds a Game row from run metadata.
func GameFromMeta(meta core.GameMeta) Game {
	return Game{
		Name:        meta.Name,
		Description: meta.Description,
		StartTime:   meta.StartTime,
		TickRate:    meta.TickRate,
	}
}

// UnitFromInfo builds a Unit row from registration data.
func UnitFromInfo(gameID uint, info core.UnitInfo) Unit {
	return Unit{
		GameID:     gameID,
		UnitID:     info.ID.String(),
		Name:       info.Name,
		HullNumber: info.HullNumber,
		Class:      info.Class,
		Faction:    info.Faction,
		TaskForce:  info.TaskForce,
	}
}

// UnitStateFromCore builds a UnitState row, projecting the position to
// EPSG 3857 WKB for spatial queries.
func UnitStateFromCore(gameID uint, s core.UnitState) UnitState {
	pos := geo.Position{Lat: s.Position.Lat, Lon: s.Position.Lon}
	return UnitState{
		GameID:    gameID,
		UnitID:    s.UnitID.String(),
		Tick:      s.Tick,
		Latitude:  s.Position.Lat,
		Longitude: s.Position.Lon,
		Position:  geo.WKB3857(pos),
		Heading:   s.Heading,
		Speed:     s.Speed,
		Health:    s.Health,
		Fuel:      s.Fuel,
		State:     s.State,
	}
}

// TimeStateFromCore builds a TimeState row.
func TimeStateFromCore(gameID uint, ts core.TimeState) TimeState {
	return TimeState{
		GameID:      gameID,
		Tick:        ts.Tick,
		GameTime:    ts.GameTime,
		RateSeconds: ts.RatePerTick.Seconds(),
	}
}

// DetectionEventFromCore builds a DetectionEvent row. Contacts marshal to a
// JSON array of UUID strings.
func DetectionEventFromCore(gameID uint, e core.DetectionEvent) DetectionEvent {
	contacts := make([]string, 0, len(e.Contacts))
	for _, id := range e.Contacts {
		contacts = append(contacts, id.String())
	}
	raw, _ := json.Marshal(contacts)
	return DetectionEvent{
		GameID:     gameID,
		Tick:       e.Tick,
		Time:       e.GameTime,
		ObserverID: e.ObserverID.String(),
		Contacts:   raw,
		RangeNM:    e.RangeNM,
	}
}

// DamageEventFromCore builds a DamageEvent row.
func DamageEventFromCore(gameID uint, e core.DamageEvent) DamageEvent {
	return DamageEvent{
		GameID:       gameID,
		Tick:         e.Tick,
		Time:         e.GameTime,
		AttackerID:   e.AttackerID.String(),
		TargetID:     e.TargetID.String(),
		Damage:       e.Damage,
		TargetHealth: e.TargetHealth,
		DistanceNM:   e.DistanceNM,
	}
}

// SinkEventFromCore builds a SinkEvent row.
func SinkEventFromCore(gameID uint, e core.SinkEvent) SinkEvent {
	return SinkEvent{
		GameID: gameID,
		Tick:   e.Tick,
		Time:   e.GameTime,
		UnitID: e.UnitID.String(),
		Phase:  string(e.Phase),
	}
}
