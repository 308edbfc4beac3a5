package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JanConnect/JanConnect-sub001/internal/database"
)

// InteractionRecord is the SQL row holding one user's state blob
type InteractionRecord struct {
	UserID    string    `gorm:"primaryKey;type:varchar(128)"`
	Blob      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (InteractionRecord) TableName() string { return "interaction_states" }

// DBStore keeps state in a SQL table through GORM
type DBStore struct {
	db     *gorm.DB
	driver string
}

// NewDBStore migrates the table and returns a store using db
func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := database.Migrate(db, &InteractionRecord{}); err != nil {
		return nil, err
	}
	return &DBStore{db: db, driver: db.Dialector.Name()}, nil
}

var (
	_ Store  = (*DBStore)(nil)
	_ Pinger = (*DBStore)(nil)
)

func (d *DBStore) Load(ctx context.Context, userID string) (*State, error) {
	defer observe(d.driver, "load", time.Now())

	var rec InteractionRecord
	err := d.db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		countOp(d.driver, "load", nil)
		return NewState(), nil
	}
	if err != nil {
		countOp(d.driver, "load", err)
		return nil, fmt.Errorf("failed to load interaction state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(rec.Blob), &state); err != nil {
		countOp(d.driver, "load", err)
		return nil, fmt.Errorf("failed to decode interaction state: %w", err)
	}
	countOp(d.driver, "load", nil)
	return state.normalize(), nil
}

// Save upserts the user's row; the last writer wins
func (d *DBStore) Save(ctx context.Context, userID string, state *State) error {
	defer observe(d.driver, "save", time.Now())

	data, err := json.Marshal(state)
	if err != nil {
		countOp(d.driver, "save", err)
		return fmt.Errorf("failed to encode interaction state: %w", err)
	}

	rec := InteractionRecord{UserID: userID, Blob: string(data)}
	err = d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		countOp(d.driver, "save", err)
		return fmt.Errorf("failed to save interaction state: %w", err)
	}
	countOp(d.driver, "save", nil)
	return nil
}

func (d *DBStore) Reset(ctx context.Context, userID string) error {
	err := d.db.WithContext(ctx).Delete(&InteractionRecord{}, "user_id = ?", userID).Error
	if err != nil {
		countOp(d.driver, "reset", err)
		return fmt.Errorf("failed to reset interaction state: %w", err)
	}
	countOp(d.driver, "reset", nil)
	return nil
}

// Ping checks the database connection
func (d *DBStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
