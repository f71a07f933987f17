package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/parceldesk/shiptrack-backend/internal/platform/apierr"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/repos"
	"github.com/parceldesk/shiptrack-backend/internal/types"
)

// Logical endpoint names reported to the usage collaborator.
const (
	EndpointListShipments  = "getShipments"
	EndpointGetShipment    = "getShipmentByOrderId"
	EndpointVerifyShipment = "verifyShipment"
	EndpointCreateShipment = "createShipment"
	EndpointUpdateStatus   = "updateDeliveryStatus"
	EndpointTouchShipment  = "updateTimestamp"
	EndpointDeleteShipment = "deleteShipment"
	EndpointDeleteAll      = "deleteAllShipments"
)

const (
	EventShipmentCreated       = "shipment.created"
	EventShipmentStatusChanged = "shipment.status_changed"
	EventShipmentDeleted       = "shipment.deleted"
)

// CreateShipmentInput carries the caller-supplied fields of a new shipment.
// The recipient email must match the body contract, but the stored owner key
// is always the resolved identity, never the body value.
type CreateShipmentInput struct {
	OrderID         string
	RecipientName   string
	RecipientEmail  string
	RecipientPhone  string
	DeliveryAddress string
	PostalNumber    int
	City            string
	Country         string
	DeliveryStatus  string
	Weight          float64
	EstimatedCost   float64
	TrackingNumber  *string
}

// ShipmentService orchestrates validation, owner scoping and outcome mapping
// for every shipment operation. Persistence errors never reach the caller in
// raw form; zero affected rows always surfaces as not-found.
type ShipmentService interface {
	List(ctx context.Context, owner string) ([]types.Shipment, error)
	GetByOrderID(ctx context.Context, owner, orderID string) (*types.Shipment, error)
	Verify(ctx context.Context, owner, orderID string) (bool, error)
	Create(ctx context.Context, owner string, input CreateShipmentInput) (uint, error)
	UpdateStatus(ctx context.Context, owner string, id uint, status string) error
	TouchTimestamp(ctx context.Context, owner string, id uint) error
	Delete(ctx context.Context, owner string, id uint) error
	DeleteAll(ctx context.Context, owner string) (int64, error)
}

type shipmentService struct {
	log      *logger.Logger
	repo     repos.ShipmentRepo
	notifier Notifier
}

func NewShipmentService(log *logger.Logger, repo repos.ShipmentRepo, notifier Notifier) ShipmentService {
	return &shipmentService{
		log:      log.With("service", "ShipmentService"),
		repo:     repo,
		notifier: notifier,
	}
}

func (ss *shipmentService) List(ctx context.Context, owner string) ([]types.Shipment, error) {
	shipments, err := ss.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, ss.persistence("list shipments", err)
	}
	ss.notifyUsage(EndpointListShipments)
	return shipments, nil
}

func (ss *shipmentService) GetByOrderID(ctx context.Context, owner, orderID string) (*types.Shipment, error) {
	shipment, err := ss.repo.GetByOrderID(ctx, owner, orderID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apierr.NotFound(fmt.Errorf("shipment %q not found", orderID))
	}
	if err != nil {
		return nil, ss.persistence("get shipment by order id", err)
	}
	ss.notifyUsage(EndpointGetShipment)
	return shipment, nil
}

func (ss *shipmentService) Verify(ctx context.Context, owner, orderID string) (bool, error) {
	if orderID == "" {
		return false, apierr.Validation(errors.New("order_id is required"))
	}
	exists, err := ss.repo.Exists(ctx, owner, orderID)
	if err != nil {
		return false, ss.persistence("verify shipment", err)
	}
	ss.notifyUsage(EndpointVerifyShipment)
	return exists, nil
}

func (ss *shipmentService) Create(ctx context.Context, owner string, input CreateShipmentInput) (uint, error) {
	if err := validateCreateInput(input); err != nil {
		return 0, err
	}
	shipment := &types.Shipment{
		OrderID:         input.OrderID,
		RecipientName:   input.RecipientName,
		RecipientEmail:  owner, // ownership is bound to the verified identity
		RecipientPhone:  input.RecipientPhone,
		DeliveryAddress: input.DeliveryAddress,
		PostalNumber:    input.PostalNumber,
		City:            input.City,
		Country:         input.Country,
		DeliveryStatus:  input.DeliveryStatus,
		Weight:          input.Weight,
		EstimatedCost:   input.EstimatedCost,
		TrackingNumber:  input.TrackingNumber,
	}
	id, err := ss.repo.Create(ctx, shipment)
	if err != nil {
		return 0, ss.persistence("create shipment", err)
	}
	ss.notifyUsage(EndpointCreateShipment)
	ss.notifyEvent(EventShipmentCreated, id, input.OrderID)
	return id, nil
}

func (ss *shipmentService) UpdateStatus(ctx context.Context, owner string, id uint, status string) error {
	if !types.ValidDeliveryStatus(status) {
		return apierr.Validation(fmt.Errorf("invalid delivery_status %q", status))
	}
	rows, err := ss.repo.UpdateStatus(ctx, owner, id, status)
	if err != nil {
		return ss.persistence("update delivery status", err)
	}
	if rows == 0 {
		return apierr.NotFound(fmt.Errorf("shipment %d not found", id))
	}
	ss.notifyUsage(EndpointUpdateStatus)
	ss.notifyEvent(EventShipmentStatusChanged, id, "")
	return nil
}

func (ss *shipmentService) TouchTimestamp(ctx context.Context, owner string, id uint) error {
	rows, err := ss.repo.TouchTimestamp(ctx, owner, id)
	if err != nil {
		return ss.persistence("touch timestamp", err)
	}
	if rows == 0 {
		return apierr.NotFound(fmt.Errorf("shipment %d not found", id))
	}
	ss.notifyUsage(EndpointTouchShipment)
	return nil
}

func (ss *shipmentService) Delete(ctx context.Context, owner string, id uint) error {
	rows, err := ss.repo.Delete(ctx, owner, id)
	if err != nil {
		return ss.persistence("delete shipment", err)
	}
	if rows == 0 {
		return apierr.NotFound(fmt.Errorf("shipment %d not found", id))
	}
	ss.notifyUsage(EndpointDeleteShipment)
	ss.notifyEvent(EventShipmentDeleted, id, "")
	return nil
}

func (ss *shipmentService) DeleteAll(ctx context.Context, owner string) (int64, error) {
	rows, err := ss.repo.DeleteAll(ctx, owner)
	if err != nil {
		return 0, ss.persistence("delete all shipments", err)
	}
	if rows == 0 {
		return 0, apierr.NotFound(errors.New("no shipments to delete"))
	}
	ss.notifyUsage(EndpointDeleteAll)
	return rows, nil
}

// persistence logs the raw failure internally and hands the caller a generic
// internal error.
func (ss *shipmentService) persistence(op string, err error) error {
	ss.log.Error("persistence failure", "op", op, "error", err)
	return apierr.Internal(err)
}

func (ss *shipmentService) notifyUsage(endpoint string) {
	if ss.notifier != nil {
		ss.notifier.PingUsage(endpoint)
	}
}

func (ss *shipmentService) notifyEvent(event string, id uint, orderID string) {
	if ss.notifier != nil {
		ss.notifier.ShipmentEvent(event, id, orderID)
	}
}

func validateCreateInput(input CreateShipmentInput) error {
	required := []struct {
		name  string
		value string
	}{
		{"order_id", input.OrderID},
		{"recipient_name", input.RecipientName},
		{"recipient_email", input.RecipientEmail},
		{"recipient_phone", input.RecipientPhone},
		{"delivery_address", input.DeliveryAddress},
		{"city", input.City},
		{"country", input.Country},
		{"delivery_status", input.DeliveryStatus},
	}
	for _, f := range required {
		if f.value == "" {
			return apierr.Validation(fmt.Errorf("%s is required", f.name))
		}
	}
	if input.PostalNumber <= 0 {
		return apierr.Validation(errors.New("postal_number is required"))
	}
	if input.Weight <= 0 {
		return apierr.Validation(errors.New("weight must be positive"))
	}
	if input.EstimatedCost < 0 {
		return apierr.Validation(errors.New("estimated_cost must not be negative"))
	}
	if !types.ValidDeliveryStatus(input.DeliveryStatus) {
		return apierr.Validation(fmt.Errorf("invalid delivery_status %q", input.DeliveryStatus))
	}
	return nil
}
