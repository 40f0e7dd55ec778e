package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/navwar/navsim/internal/config"
	"github.com/navwar/navsim/pkg/core"
)

func testMeta() *core.GameMeta {
	return &core.GameMeta{
		Name:        "Test Game",
		Description: "test",
		StartTime:   time.Date(1942, 6, 4, 6, 0, 0, 0, time.UTC),
		TickRate:    60,
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg)

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
	if b.units == nil {
		t.Error("units map not initialized")
	}
}

func TestInitAndClose(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStartGame_ResetsState(t *testing.T) {
	b := New(config.MemoryConfig{})

	if err := b.StartGame(testMeta()); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	id := uuid.New()
	if err := b.AddUnit(&core.UnitInfo{ID: id, Name: "Fletcher"}); err != nil {
		t.Fatalf("AddUnit failed: %v", err)
	}
	if err := b.RecordDamage(&core.DamageEvent{Tick: 1}); err != nil {
		t.Fatalf("RecordDamage failed: %v", err)
	}

	if err := b.StartGame(testMeta()); err != nil {
		t.Fatalf("second StartGame failed: %v", err)
	}
	if _, ok := b.GetUnit(id); ok {
		t.Error("unit survived StartGame reset")
	}
	if len(b.damageEvents) != 0 {
		t.Error("damage events survived StartGame reset")
	}
}

func TestRecordUnitState(t *testing.T) {
	b := New(config.MemoryConfig{})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	if err := b.AddUnit(&core.UnitInfo{ID: id, Name: "Fletcher", Class: "destroyer", Faction: "blue"}); err != nil {
		t.Fatal(err)
	}

	state := &core.UnitState{
		UnitID:   id,
		Tick:     1,
		Position: core.Position{Lat: 28.2, Lon: -177.35},
		Speed:    20,
		Health:   100,
		State:    "moving",
	}
	if err := b.RecordUnitState(state); err != nil {
		t.Fatalf("RecordUnitState failed: %v", err)
	}

	record := b.units[id]
	if len(record.States) != 1 {
		t.Fatalf("expected 1 state, got %d", len(record.States))
	}
	if record.States[0].Tick != 1 {
		t.Errorf("expected tick 1, got %d", record.States[0].Tick)
	}
}

func TestRecordUnitState_UnknownUnitIgnored(t *testing.T) {
	b := New(config.MemoryConfig{})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}

	if err := b.RecordUnitState(&core.UnitState{UnitID: uuid.New()}); err != nil {
		t.Errorf("expected unknown unit to be ignored, got %v", err)
	}
}

func TestRecordDetection_AttachedToObserver(t *testing.T) {
	b := New(config.MemoryConfig{})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}

	observer := uuid.New()
	contact := uuid.New()
	if err := b.AddUnit(&core.UnitInfo{ID: observer, Name: "Fletcher"}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordDetection(&core.DetectionEvent{
		Tick:       2,
		ObserverID: observer,
		Contacts:   []uuid.UUID{contact},
		RangeNM:    10,
	}); err != nil {
		t.Fatal(err)
	}

	if len(b.units[observer].Detections) != 1 {
		t.Fatal("detection not attached to observer record")
	}
}

func TestEndGame_ExportsCompressed(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	if err := b.AddUnit(&core.UnitInfo{ID: id, Name: "Fletcher", Class: "destroyer", Faction: "blue"}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordUnitState(&core.UnitState{UnitID: id, Tick: 1, Health: 100, State: "idle"}); err != nil {
		t.Fatal(err)
	}

	if err := b.EndGame(1); err != nil {
		t.Fatalf("EndGame failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if path == "" {
		t.Fatal("no exported file path")
	}
	if !strings.HasSuffix(path, ".json.gz") {
		t.Errorf("expected .json.gz suffix, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer gz.Close()

	var export GameExport
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if export.Name != "Test Game" {
		t.Errorf("expected game name in export, got %s", export.Name)
	}
	if export.EndTick != 1 {
		t.Errorf("expected endTick 1, got %d", export.EndTick)
	}
	if len(export.Units) != 1 {
		t.Fatalf("expected 1 unit in export, got %d", len(export.Units))
	}
	if len(export.Units[0].Positions) != 1 {
		t.Errorf("expected 1 position entry, got %d", len(export.Units[0].Positions))
	}
}

func TestEndGame_ExportsPlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: false})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}
	if err := b.EndGame(0); err != nil {
		t.Fatalf("EndGame failed: %v", err)
	}

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("expected .json suffix, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var export GameExport
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
}

func TestBuildExport_EventOrdering(t *testing.T) {
	b := New(config.MemoryConfig{})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}

	attacker, target := uuid.New(), uuid.New()
	if err := b.RecordDamage(&core.DamageEvent{
		Tick:       3,
		AttackerID: attacker,
		TargetID:   target,
		Damage:     14.25,
		DistanceNM: 4,
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.RecordSinking(&core.SinkEvent{Tick: 4, UnitID: target, Phase: core.PhaseSinking}); err != nil {
		t.Fatal(err)
	}

	export := b.buildExport()
	if len(export.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(export.Events))
	}
	if export.Events[0][1] != "damage" {
		t.Errorf("expected damage event first, got %v", export.Events[0][1])
	}
	if export.Events[1][1] != "sinking" {
		t.Errorf("expected sinking event second, got %v", export.Events[1][1])
	}
}

func TestConcurrentRecording(t *testing.T) {
	b := New(config.MemoryConfig{})
	if err := b.StartGame(testMeta()); err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	if err := b.AddUnit(&core.UnitInfo{ID: id}); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(tick uint64) {
			defer wg.Done()
			_ = b.RecordUnitState(&core.UnitState{UnitID: id, Tick: tick})
			_ = b.RecordTimeState(&core.TimeState{Tick: tick})
		}(uint64(i))
	}
	wg.Wait()

	if len(b.units[id].States) != 10 {
		t.Errorf("expected 10 states, got %d", len(b.units[id].States))
	}
	if len(b.timeStates) != 10 {
		t.Errorf("expected 10 time states, got %d", len(b.timeStates))
	}
}
