package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/types"
)

// ErrNotFound is returned when a lookup matches no row owned by the caller.
// A row owned by someone else reports the same error as an absent row.
var ErrNotFound = errors.New("shipment not found")

// ShipmentRepo is the owner-scoped data access layer. Every method filters by
// the owner email in addition to its lookup key; mutation methods return the
// affected row count so callers can map zero rows to a not-found outcome.
type ShipmentRepo interface {
	ListByOwner(ctx context.Context, owner string) ([]types.Shipment, error)
	GetByOrderID(ctx context.Context, owner, orderID string) (*types.Shipment, error)
	Exists(ctx context.Context, owner, orderID string) (bool, error)
	Create(ctx context.Context, shipment *types.Shipment) (uint, error)
	UpdateStatus(ctx context.Context, owner string, id uint, status string) (int64, error)
	TouchTimestamp(ctx context.Context, owner string, id uint) (int64, error)
	Delete(ctx context.Context, owner string, id uint) (int64, error)
	DeleteAll(ctx context.Context, owner string) (int64, error)
}

type shipmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShipmentRepo(db *gorm.DB, baseLog *logger.Logger) ShipmentRepo {
	return &shipmentRepo{db: db, log: baseLog.With("repo", "ShipmentRepo")}
}

func (r *shipmentRepo) ListByOwner(ctx context.Context, owner string) ([]types.Shipment, error) {
	var results []types.Shipment
	if err := r.db.WithContext(ctx).
		Where("recipient_email = ?", owner).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByOrderID returns the first matching row by primary key. order_id has no
// uniqueness constraint, only a per-owner application-level expectation.
func (r *shipmentRepo) GetByOrderID(ctx context.Context, owner, orderID string) (*types.Shipment, error) {
	var result types.Shipment
	err := r.db.WithContext(ctx).
		Where("recipient_email = ? AND order_id = ?", owner, orderID).
		Order("id ASC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *shipmentRepo) Exists(ctx context.Context, owner, orderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("recipient_email = ? AND order_id = ?", owner, orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shipmentRepo) Create(ctx context.Context, shipment *types.Shipment) (uint, error) {
	if err := r.db.WithContext(ctx).Create(shipment).Error; err != nil {
		return 0, err
	}
	return shipment.ID, nil
}

func (r *shipmentRepo) UpdateStatus(ctx context.Context, owner string, id uint, status string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("id = ? AND recipient_email = ?", id, owner).
		Updates(map[string]interface{}{
			"delivery_status": status,
			"updated_at":      time.Now(),
		})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *shipmentRepo) TouchTimestamp(ctx context.Context, owner string, id uint) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("id = ? AND recipient_email = ?", id, owner).
		Update("updated_at", time.Now())
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *shipmentRepo) Delete(ctx context.Context, owner string, id uint) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("id = ? AND recipient_email = ?", id, owner).
		Delete(&types.Shipment{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *shipmentRepo) DeleteAll(ctx context.Context, owner string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("recipient_email = ?", owner).
		Delete(&types.Shipment{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
