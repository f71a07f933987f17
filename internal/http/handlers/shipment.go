package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/parceldesk/shiptrack-backend/internal/http/response"
	"github.com/parceldesk/shiptrack-backend/internal/platform/apierr"
	"github.com/parceldesk/shiptrack-backend/internal/platform/authctx"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/services"
)

type ShipmentHandler struct {
	log             *logger.Logger
	shipmentService services.ShipmentService
}

func NewShipmentHandler(log *logger.Logger, shipmentService services.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		log:             log.With("handler", "ShipmentHandler"),
		shipmentService: shipmentService,
	}
}

type createShipmentRequest struct {
	OrderID         string   `json:"order_id" binding:"required"`
	RecipientName   string   `json:"recipient_name" binding:"required"`
	RecipientEmail  string   `json:"recipient_email" binding:"required,email"`
	RecipientPhone  string   `json:"recipient_phone" binding:"required"`
	DeliveryAddress string   `json:"delivery_address" binding:"required"`
	PostalNumber    *int     `json:"postal_number" binding:"required"`
	City            string   `json:"city" binding:"required"`
	Country         string   `json:"country" binding:"required"`
	DeliveryStatus  string   `json:"delivery_status" binding:"required"`
	Weight          *float64 `json:"weight" binding:"required,gt=0"`
	EstimatedCost   *float64 `json:"estimated_cost" binding:"required,gte=0"`
	TrackingNumber  *string  `json:"tracking_number"`
}

type verifyShipmentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

type updateStatusRequest struct {
	DeliveryStatus string `json:"delivery_status" binding:"required"`
}

// GET /api/shipments
func (sh *ShipmentHandler) List(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	shipments, err := sh.shipmentService.List(c.Request.Context(), owner)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, shipments)
}

// GET /api/shipments/:order_id
func (sh *ShipmentHandler) GetByOrderID(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	shipment, err := sh.shipmentService.GetByOrderID(c.Request.Context(), owner, c.Param("order_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, shipment)
}

// POST /api/shipments
func (sh *ShipmentHandler) Create(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation(err))
		return
	}
	id, err := sh.shipmentService.Create(c.Request.Context(), owner, services.CreateShipmentInput{
		OrderID:         req.OrderID,
		RecipientName:   req.RecipientName,
		RecipientEmail:  req.RecipientEmail,
		RecipientPhone:  req.RecipientPhone,
		DeliveryAddress: req.DeliveryAddress,
		PostalNumber:    *req.PostalNumber,
		City:            req.City,
		Country:         req.Country,
		DeliveryStatus:  req.DeliveryStatus,
		Weight:          *req.Weight,
		EstimatedCost:   *req.EstimatedCost,
		TrackingNumber:  req.TrackingNumber,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"message":    "shipment created",
		"shipmentId": id,
	})
}

// POST /api/shipments/verify
func (sh *ShipmentHandler) Verify(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req verifyShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation(err))
		return
	}
	exists, err := sh.shipmentService.Verify(c.Request.Context(), owner, req.OrderID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exists": exists})
}

// PUT /api/shipments/:id/delivery-status
func (sh *ShipmentHandler) UpdateStatus(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	id, err := parseShipmentID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation(err))
		return
	}
	if err := sh.shipmentService.UpdateStatus(c.Request.Context(), owner, id, req.DeliveryStatus); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "delivery status updated"})
}

// PUT /api/shipments/:id/timestamp
func (sh *ShipmentHandler) TouchTimestamp(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	id, err := parseShipmentID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := sh.shipmentService.TouchTimestamp(c.Request.Context(), owner, id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "timestamp updated"})
}

// DELETE /api/shipments/:id
func (sh *ShipmentHandler) Delete(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	id, err := parseShipmentID(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := sh.shipmentService.Delete(c.Request.Context(), owner, id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "shipment deleted"})
}

// DELETE /api/shipments
func (sh *ShipmentHandler) DeleteAll(c *gin.Context) {
	owner, err := ownerKey(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	deleted, err := sh.shipmentService.DeleteAll(c.Request.Context(), owner)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message": "shipments deleted",
		"deleted": deleted,
	})
}

// ownerKey assumes RequireAuth ran; a missing identity means the route was
// wired without it.
func ownerKey(c *gin.Context) (string, error) {
	identity := authctx.GetIdentity(c.Request.Context())
	if identity == nil {
		return "", apierr.AuthMissing(errors.New("missing credential"))
	}
	return identity.Email, nil
}

func parseShipmentID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apierr.Validation(fmt.Errorf("invalid shipment id %q", raw))
	}
	if id == 0 {
		return 0, apierr.Validation(errors.New("invalid shipment id"))
	}
	return uint(id), nil
}
