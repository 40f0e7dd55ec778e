// Package gormdb implements the storage.Backend interface on a GORM
// database with internal queues and a background writer goroutine.
package gormdb

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/navwar/navsim/internal/database"
	"github.com/navwar/navsim/internal/model"
	"github.com/navwar/navsim/internal/queue"
	"github.com/navwar/navsim/pkg/core"
)

const writeInterval = 2 * time.Second

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Units           *queue.Queue[model.Unit]
	UnitStates      *queue.Queue[model.UnitState]
	TimeStates      *queue.Queue[model.TimeState]
	DetectionEvents *queue.Queue[model.DetectionEvent]
	DamageEvents    *queue.Queue[model.DamageEvent]
	SinkEvents      *queue.Queue[model.SinkEvent]
}

func newQueues() *queues {
	return &queues{
		Units:           queue.New[model.Unit](),
		UnitStates:      queue.New[model.UnitState](),
		TimeStates:      queue.New[model.TimeState](),
		DetectionEvents: queue.New[model.DetectionEvent](),
		DamageEvents:    queue.New[model.DamageEvent](),
		SinkEvents:      queue.New[model.SinkEvent](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch
// writes. Works against postgres or the sqlite fallback.
type Backend struct {
	db       *database.Manager
	log      *slog.Logger
	queues   *queues
	gameID   atomic.Uint64
	stopChan chan struct{}
}

// New creates a new GORM storage backend.
func New(db *database.Manager) *Backend {
	return &Backend{
		db:  db,
		log: slog.Default(),
	}
}

// WithLogger sets the backend logger.
func (b *Backend) WithLogger(log *slog.Logger) *Backend {
	b.log = log
	return b
}

// Init creates internal queues, runs schema migration, and starts the DB
// writer goroutine.
func (b *Backend) Init() error {
	if b.db == nil || b.db.DB == nil {
		return fmt.Errorf("no database connection")
	}

	b.queues = newQueues()
	b.stopChan = make(chan struct{})

	if err := b.db.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.startDBWriter()
	return nil
}

// Close flushes outstanding writes and stops the writer goroutine.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	b.flush()
	return nil
}

// StartGame inserts the game row and remembers its ID for the writer.
func (b *Backend) StartGame(meta *core.GameMeta) error {
	game := model.GameFromMeta(*meta)
	if err := b.db.DB.Create(&game).Error; err != nil {
		return fmt.Errorf("failed to insert new game: %w", err)
	}
	b.gameID.Store(uint64(game.ID))
	return nil
}

// EndGame flushes queues and stamps the end time on the game row.
func (b *Backend) EndGame(finalTick uint64) error {
	b.flush()

	gameID := uint(b.gameID.Load())
	err := b.db.DB.Model(&model.Game{}).Where("id = ?", gameID).Updates(map[string]any{
		"end_time":   time.Now().UTC(),
		"final_tick": finalTick,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to finalize game: %w", err)
	}
	return nil
}

// AddUnit converts a unit registration to GORM and pushes to the write queue.
func (b *Backend) AddUnit(info *core.UnitInfo) error {
	b.queues.Units.Push(model.UnitFromInfo(0, *info))
	return nil
}

// RecordUnitState converts and queues a unit state.
func (b *Backend) RecordUnitState(s *core.UnitState) error {
	b.queues.UnitStates.Push(model.UnitStateFromCore(0, *s))
	return nil
}

// RecordTimeState converts and queues a time state.
func (b *Backend) RecordTimeState(t *core.TimeState) error {
	b.queues.TimeStates.Push(model.TimeStateFromCore(0, *t))
	return nil
}

// RecordDetection converts and queues a detection event.
func (b *Backend) RecordDetection(e *core.DetectionEvent) error {
	b.queues.DetectionEvents.Push(model.DetectionEventFromCore(0, *e))
	return nil
}

// RecordDamage converts and queues a damage event.
func (b *Backend) RecordDamage(e *core.DamageEvent) error {
	b.queues.DamageEvents.Push(model.DamageEventFromCore(0, *e))
	return nil
}

// RecordSinking converts and queues a sink event.
func (b *Backend) RecordSinking(e *core.SinkEvent) error {
	b.queues.SinkEvents.Push(model.SinkEventFromCore(0, *e))
	return nil
}

// writeQueue writes all items from a queue to the database in a transaction.
// Failed batches are requeued for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger, prepare func([]T)) {
	if q.Empty() {
		return
	}

	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log.Error("db write failed", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.Push(items...)
		return
	}
	tx.Commit()
}

// flush drains every queue once.
func (b *Backend) flush() {
	gameID := uint(b.gameID.Load())

	stampUnits := func(items []model.Unit) {
		for i := range items {
			items[i].GameID = gameID
		}
	}
	stampUnitStates := func(items []model.UnitState) {
		for i := range items {
			items[i].GameID = gameID
		}
	}
	stampTimeStates := func(items []model.TimeState) {
		for i := range items {
			items[i].GameID = gameID
		}
	}
	stampDetections := func(items []model.DetectionEvent) {
		for i := range items {
			items[i].GameID = gameID
		}
	}
	stampDamages := func(items []model.DamageEvent) {
		for i := range items {
			items[i].GameID = gameID
		}
	}
	stampSinks := func(items []model.SinkEvent) {
		for i := range items {
			items[i].GameID = gameID
		}
	}

	writeQueue(b.db.DB, b.queues.Units, "units", b.log, stampUnits)
	writeQueue(b.db.DB, b.queues.UnitStates, "unit states", b.log, stampUnitStates)
	writeQueue(b.db.DB, b.queues.TimeStates, "time states", b.log, stampTimeStates)
	writeQueue(b.db.DB, b.queues.DetectionEvents, "detection events", b.log, stampDetections)
	writeQueue(b.db.DB, b.queues.DamageEvents, "damage events", b.log, stampDamages)
	writeQueue(b.db.DB, b.queues.SinkEvents, "sink events", b.log, stampSinks)
}

// startDBWriter starts the background goroutine that periodically drains
// queues into the DB.
func (b *Backend) startDBWriter() {
	go func() {
		ticker := time.NewTicker(writeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				b.flush()
			}
		}
	}()
}
