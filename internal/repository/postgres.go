package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/promoworks/dispensa/internal/models"
	"github.com/promoworks/dispensa/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard logger
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond, // Log queries slower than this
			LogLevel:                  gormLogger.Warn,        // Only log warnings or errors
			IgnoreRecordNotFoundError: true,                   // Suppress "record not found" errors
			Colorful:                  true,                   // Enable colorful logs
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&models.Coupon{}, &models.ClaimTracker{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

func (db *PostgresDB) Ping() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Ping()
}

// ReserveNextCoupon claims the lowest-sequence unclaimed coupon in a single
// conditional update. The repeated active = true check makes the update match
// zero rows when a concurrent claim already flipped that exact coupon, so the
// row can never be handed out twice.
func (db *PostgresDB) ReserveNextCoupon(address, sessionToken string, now int64) (*models.Coupon, error) {
	lowest := db.Conn.Model(&models.Coupon{}).
		Select("id").
		Where("active = ?", true).
		Order("sequence_number ASC").
		Limit(1)

	var claimed []models.Coupon
	res := db.Conn.Model(&claimed).
		Clauses(clause.Returning{}).
		Where("id = (?)", lowest).
		Where("active = ?", true).
		Updates(map[string]interface{}{
			"active":             false,
			"claimed_by_address": address,
			"claimed_by_session": sessionToken,
			"claimed_at":         now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to reserve coupon: %s", res.Error)
	}
	if res.RowsAffected == 0 || len(claimed) == 0 {
		return nil, nil
	}

	return &claimed[0], nil
}

func (db *PostgresDB) CountUnclaimedCoupons() (int64, error) {
	var count int64
	if err := db.Conn.Model(&models.Coupon{}).Where("active = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unclaimed coupons: %s", err)
	}

	return count, nil
}

func (db *PostgresDB) CountAllCoupons() (int64, error) {
	var count int64
	if err := db.Conn.Model(&models.Coupon{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count coupons: %s", err)
	}

	return count, nil
}

func (db *PostgresDB) NextUnclaimedSequence() (int64, error) {
	var coupon models.Coupon
	if err := db.Conn.Where("active = ?", true).Order("sequence_number ASC").First(&coupon).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get next unclaimed sequence: %s", err)
	}

	return coupon.SequenceNumber, nil
}

func (db *PostgresDB) MaxSequenceNumber() (int64, error) {
	var max int64
	if err := db.Conn.Model(&models.Coupon{}).Select("COALESCE(MAX(sequence_number), 0)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("failed to get max sequence number: %s", err)
	}

	return max, nil
}

func (db *PostgresDB) InsertCoupons(coupons []*models.Coupon) error {
	if len(coupons) == 0 {
		return nil
	}
	if err := db.Conn.Create(&coupons).Error; err != nil {
		return fmt.Errorf("failed to insert coupons: %s", err)
	}

	return nil
}

func (db *PostgresDB) GetClaimTracker(identifier string, kind models.TrackerKind) (*models.ClaimTracker, error) {
	var tracker models.ClaimTracker
	if err := db.Conn.Where("identifier = ? AND kind = ?", identifier, kind).First(&tracker).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get claim tracker: %s", err)
	}

	return &tracker, nil
}

// UpsertClaimTracker creates the tracker on an identity's first claim and
// updates it in place on every later one, keyed by the (identifier, kind)
// unique index.
func (db *PostgresDB) UpsertClaimTracker(identifier string, kind models.TrackerKind, now, nextClaimTime int64) error {
	if identifier == "" {
		return models.ErrMissingIdentifier
	}

	tracker := models.ClaimTracker{
		Identifier:    identifier,
		Kind:          kind,
		LastClaimAt:   now,
		NextClaimTime: nextClaimTime,
		ClaimCount:    1,
	}
	err := db.Conn.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identifier"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_claim_at":   now,
			"next_claim_time": nextClaimTime,
			"claim_count":     gorm.Expr("claim_trackers.claim_count + 1"),
		}),
	}).Create(&tracker).Error
	if err != nil {
		return fmt.Errorf("failed to upsert claim tracker: %s", err)
	}

	return nil
}
