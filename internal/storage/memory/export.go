package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GameExport is the root JSON structure consumed by replay tooling
type GameExport struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	StartTime   string       `json:"startTime"`
	TickRate    float64      `json:"tickRateSeconds"`
	EndTick     uint64       `json:"endTick"`
	Units       []UnitJSON   `json:"units"`
	Events      [][]any      `json:"events"`
}

// UnitJSON represents one vessel and its track
type UnitJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HullNumber string  `json:"hullNumber,omitempty"`
	Class      string  `json:"class"`
	Faction    string  `json:"faction"`
	TaskForce  string  `json:"taskForce,omitempty"`
	Positions  [][]any `json:"positions"`
}

// exportJSON writes the game data to a JSON file, gzipped when configured
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	gameName := strings.ReplaceAll(b.meta.Name, " ", "_")
	gameName = strings.ReplaceAll(gameName, ":", "_")
	timestamp := b.meta.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", gameName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", gameName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() GameExport {
	export := GameExport{
		Name:        b.meta.Name,
		Description: b.meta.Description,
		StartTime:   b.meta.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		TickRate:    b.meta.TickRate,
		EndTick:     b.finalTick,
		Units:       make([]UnitJSON, 0, len(b.units)),
		Events:      make([][]any, 0),
	}

	for _, record := range b.units {
		u := UnitJSON{
			ID:         record.Info.ID.String(),
			Name:       record.Info.Name,
			HullNumber: record.Info.HullNumber,
			Class:      record.Info.Class,
			Faction:    record.Info.Faction,
			TaskForce:  record.Info.TaskForce,
			Positions:  make([][]any, 0, len(record.States)),
		}

		// Format: [tick, [lat, lon], heading, speed, health, fuel, state]
		for _, state := range record.States {
			u.Positions = append(u.Positions, []any{
				state.Tick,
				[]float64{state.Position.Lat, state.Position.Lon},
				state.Heading,
				state.Speed,
				state.Health,
				state.Fuel,
				state.State,
			})
		}

		export.Units = append(export.Units, u)

		// Format: [tick, "detection", observerId, [contactIds...], rangeNM]
		for _, det := range record.Detections {
			contacts := make([]string, 0, len(det.Contacts))
			for _, id := range det.Contacts {
				contacts = append(contacts, id.String())
			}
			export.Events = append(export.Events, []any{
				det.Tick,
				"detection",
				det.ObserverID.String(),
				contacts,
				det.RangeNM,
			})
		}
	}

	// Format: [tick, "damage", targetId, [attackerId, damage], distance]
	for _, evt := range b.damageEvents {
		export.Events = append(export.Events, []any{
			evt.Tick,
			"damage",
			evt.TargetID.String(),
			[]any{evt.AttackerID.String(), evt.Damage},
			evt.DistanceNM,
		})
	}

	// Format: [tick, phase, unitId]
	for _, evt := range b.sinkEvents {
		export.Events = append(export.Events, []any{
			evt.Tick,
			string(evt.Phase),
			evt.UnitID.String(),
		})
	}

	return export
}

func (b *Backend) writeJSON(path string, data GameExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data GameExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

// GetExportedFilePath returns the path of the last exported file
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
