package graphql

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"github.com/parceldesk/shiptrack-backend/internal/platform/apierr"
	"github.com/parceldesk/shiptrack-backend/internal/platform/authctx"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/services"
)

// Handler exposes the shipment operations a second time as a GraphQL schema,
// resolved against the same service and therefore the same ownership rules.
// Field names mirror the REST payloads.
type Handler struct {
	log             *logger.Logger
	shipmentService services.ShipmentService
	schema          graphql.Schema
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func NewHandler(log *logger.Logger, shipmentService services.ShipmentService) (*Handler, error) {
	h := &Handler{
		log:             log.With("handler", "GraphQLHandler"),
		shipmentService: shipmentService,
	}
	schema, err := h.buildSchema()
	if err != nil {
		return nil, err
	}
	h.schema = schema
	return h, nil
}

// POST /api/graphql
func (h *Handler) Serve(c *gin.Context) {
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{"message": "malformed request body"}}})
		return
	}
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        c.Request.Context(),
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) buildSchema() (graphql.Schema, error) {
	shipmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Shipment",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"order_id":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"recipient_name":   &graphql.Field{Type: graphql.String},
			"recipient_email":  &graphql.Field{Type: graphql.String},
			"recipient_phone":  &graphql.Field{Type: graphql.String},
			"delivery_address": &graphql.Field{Type: graphql.String},
			"postal_number":    &graphql.Field{Type: graphql.Int},
			"city":             &graphql.Field{Type: graphql.String},
			"country":          &graphql.Field{Type: graphql.String},
			"weight":           &graphql.Field{Type: graphql.Float},
			"estimated_cost":   &graphql.Field{Type: graphql.Float},
			"tracking_number":  &graphql.Field{Type: graphql.String},
			"delivery_status":  &graphql.Field{Type: graphql.String},
			"created_at":       &graphql.Field{Type: graphql.DateTime},
			"updated_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	createPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateShipmentPayload",
		Fields: graphql.Fields{
			"shipmentId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"message":    &graphql.Field{Type: graphql.String},
		},
	})

	createInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateShipmentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"order_id":         &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"recipient_name":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"recipient_email":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"recipient_phone":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"delivery_address": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"postal_number":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"city":             &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"country":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"delivery_status":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"weight":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"estimated_cost":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"tracking_number":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"shipments": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(shipmentType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					return h.shipmentService.List(p.Context, owner)
				},
			},
			"shipment": &graphql.Field{
				Type: shipmentType,
				Args: graphql.FieldConfigArgument{
					"order_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					return h.shipmentService.GetByOrderID(p.Context, owner, p.Args["order_id"].(string))
				},
			},
			"verifyShipment": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"order_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					return h.shipmentService.Verify(p.Context, owner, p.Args["order_id"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createShipment": &graphql.Field{
				Type: createPayloadType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createInputType)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					input, err := createInputFromArgs(p.Args["input"])
					if err != nil {
						return nil, err
					}
					id, err := h.shipmentService.Create(p.Context, owner, input)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"shipmentId": id,
						"message":    "shipment created",
					}, nil
				},
			},
			"updateDeliveryStatus": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"delivery_status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					id := uint(p.Args["id"].(int))
					if err := h.shipmentService.UpdateStatus(p.Context, owner, id, p.Args["delivery_status"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"touchShipment": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					if err := h.shipmentService.TouchTimestamp(p.Context, owner, uint(p.Args["id"].(int))); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"deleteShipment": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					if err := h.shipmentService.Delete(p.Context, owner, uint(p.Args["id"].(int))); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"deleteAllShipments": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					owner, err := resolveOwner(p)
					if err != nil {
						return nil, err
					}
					deleted, err := h.shipmentService.DeleteAll(p.Context, owner)
					if err != nil {
						return nil, err
					}
					return deleted, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func resolveOwner(p graphql.ResolveParams) (string, error) {
	identity := authctx.GetIdentity(p.Context)
	if identity == nil {
		return "", apierr.AuthMissing(errors.New("missing credential"))
	}
	return identity.Email, nil
}

func createInputFromArgs(arg interface{}) (services.CreateShipmentInput, error) {
	raw, ok := arg.(map[string]interface{})
	if !ok {
		return services.CreateShipmentInput{}, apierr.Validation(errors.New("malformed input object"))
	}
	input := services.CreateShipmentInput{
		OrderID:         stringArg(raw, "order_id"),
		RecipientName:   stringArg(raw, "recipient_name"),
		RecipientEmail:  stringArg(raw, "recipient_email"),
		RecipientPhone:  stringArg(raw, "recipient_phone"),
		DeliveryAddress: stringArg(raw, "delivery_address"),
		PostalNumber:    intArg(raw, "postal_number"),
		City:            stringArg(raw, "city"),
		Country:         stringArg(raw, "country"),
		DeliveryStatus:  stringArg(raw, "delivery_status"),
		Weight:          floatArg(raw, "weight"),
		EstimatedCost:   floatArg(raw, "estimated_cost"),
	}
	if tn := stringArg(raw, "tracking_number"); tn != "" {
		input.TrackingNumber = &tn
	}
	return input, nil
}

func stringArg(raw map[string]interface{}, key string) string {
	v, _ := raw[key].(string)
	return v
}

func intArg(raw map[string]interface{}, key string) int {
	v, _ := raw[key].(int)
	return v
}

func floatArg(raw map[string]interface{}, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
