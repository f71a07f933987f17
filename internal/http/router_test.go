package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/parceldesk/shiptrack-backend/internal/graphql"
	"github.com/parceldesk/shiptrack-backend/internal/http/handlers"
	"github.com/parceldesk/shiptrack-backend/internal/http/middleware"
	"github.com/parceldesk/shiptrack-backend/internal/platform/logger"
	"github.com/parceldesk/shiptrack-backend/internal/repos"
	"github.com/parceldesk/shiptrack-backend/internal/services"
	"github.com/parceldesk/shiptrack-backend/internal/types"
)

const testSecret = "router-test-secret"

type healthyStore struct{ err error }

func (h healthyStore) Ping(context.Context) error { return h.err }

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Shipment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	shipmentRepo := repos.NewShipmentRepo(db, log)
	shipmentService := services.NewShipmentService(log, shipmentRepo, nil)
	identityService := services.NewIdentityService(log, testSecret)
	gqlHandler, err := graphql.NewHandler(log, shipmentService)
	if err != nil {
		t.Fatalf("build graphql handler: %v", err)
	}

	router := NewRouter(RouterConfig{
		Log:             log,
		HealthHandler:   handlers.NewHealthHandler(healthyStore{}),
		ShipmentHandler: handlers.NewShipmentHandler(log, shipmentService),
		GraphQLHandler:  gqlHandler,
		AuthMiddleware:  middleware.NewAuthMiddleware(log, identityService),
	})
	return &testEnv{router: router, db: db}
}

func (e *testEnv) token(t *testing.T, email string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func shipmentBody(orderID, email string) map[string]interface{} {
	return map[string]interface{}{
		"order_id":         orderID,
		"recipient_name":   "Ada Lovelace",
		"recipient_email":  email,
		"recipient_phone":  "+4512345678",
		"delivery_address": "1 Analytical Way",
		"postal_number":    2100,
		"city":             "Copenhagen",
		"country":          "Denmark",
		"delivery_status":  "in transit",
		"weight":           1.5,
		"estimated_cost":   10,
	}
}

func (e *testEnv) rowCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&types.Shipment{}).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func TestAuthOutcomes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	missing := env.do(t, http.MethodGet, "/api/shipments", "", nil)
	if missing.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got=%d want=401", missing.Code)
	}

	expired := env.do(t, http.MethodGet, "/api/shipments", env.token(t, "a@x.com", -time.Hour), nil)
	if expired.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: got=%d want=401", expired.Code)
	}

	// Distinct messages for missing vs expired, so clients can tell them apart.
	if missing.Body.String() == expired.Body.String() {
		t.Fatalf("missing and expired responses are identical: %s", missing.Body.String())
	}

	invalid := env.do(t, http.MethodGet, "/api/shipments", "not.a.token", nil)
	if invalid.Code != http.StatusForbidden {
		t.Fatalf("invalid token: got=%d want=403", invalid.Code)
	}
}

func TestCreateFetchAndOwnershipScenario(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokenA := env.token(t, "a@x.com", time.Hour)
	tokenB := env.token(t, "b@x.com", time.Hour)

	created := env.do(t, http.MethodPost, "/api/shipments", tokenA, shipmentBody("ORD1", "a@x.com"))
	if created.Code != http.StatusCreated {
		t.Fatalf("create: got=%d body=%s", created.Code, created.Body.String())
	}
	payload := decodeJSON(t, created)
	shipmentID, ok := payload["shipmentId"].(float64)
	if !ok || shipmentID <= 0 {
		t.Fatalf("expected integer shipmentId, got %v", payload["shipmentId"])
	}

	fetched := env.do(t, http.MethodGet, "/api/shipments/ORD1", tokenA, nil)
	if fetched.Code != http.StatusOK {
		t.Fatalf("owner fetch: got=%d", fetched.Code)
	}
	shipment := decodeJSON(t, fetched)
	if shipment["order_id"] != "ORD1" || shipment["city"] != "Copenhagen" || shipment["weight"] != 1.5 {
		t.Fatalf("fetched fields mismatch: %v", shipment)
	}
	if shipment["created_at"] == nil || shipment["updated_at"] == nil {
		t.Fatalf("expected server-assigned timestamps: %v", shipment)
	}

	// The foreign owner sees 404, not 403: absence and foreign ownership are
	// indistinguishable.
	foreign := env.do(t, http.MethodGet, "/api/shipments/ORD1", tokenB, nil)
	if foreign.Code != http.StatusNotFound {
		t.Fatalf("foreign fetch: got=%d want=404", foreign.Code)
	}

	foreignDelete := env.do(t, http.MethodDelete, fmt.Sprintf("/api/shipments/%d", int(shipmentID)), tokenB, nil)
	if foreignDelete.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: got=%d want=404", foreignDelete.Code)
	}
	if env.rowCount(t) != 1 {
		t.Fatal("foreign delete mutated data")
	}
}

func TestCreateMissingFieldWritesNothing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.token(t, "a@x.com", time.Hour)

	body := shipmentBody("ORD1", "a@x.com")
	delete(body, "recipient_phone")
	rec := env.do(t, http.MethodPost, "/api/shipments", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create without phone: got=%d want=400", rec.Code)
	}
	if env.rowCount(t) != 0 {
		t.Fatal("validation failure still wrote a row")
	}
}

func TestVerifyShipment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.token(t, "a@x.com", time.Hour)

	env.do(t, http.MethodPost, "/api/shipments", token, shipmentBody("ORD1", "a@x.com"))

	rec := env.do(t, http.MethodPost, "/api/shipments/verify", token, map[string]interface{}{"order_id": "ORD1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: got=%d", rec.Code)
	}
	if got := decodeJSON(t, rec)["exists"]; got != true {
		t.Fatalf("verify existing: got=%v want=true", got)
	}

	rec = env.do(t, http.MethodPost, "/api/shipments/verify", token, map[string]interface{}{"order_id": "NOPE"})
	if got := decodeJSON(t, rec)["exists"]; got != false {
		t.Fatalf("verify missing: got=%v want=false", got)
	}

	rec = env.do(t, http.MethodPost, "/api/shipments/verify", token, map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("verify without order_id: got=%d want=400", rec.Code)
	}
}

func TestUpdateDeliveryStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.token(t, "a@x.com", time.Hour)

	created := decodeJSON(t, env.do(t, http.MethodPost, "/api/shipments", token, shipmentBody("ORD1", "a@x.com")))
	id := int(created["shipmentId"].(float64))

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/shipments/%d/delivery-status", id), token,
		map[string]interface{}{"delivery_status": "delivered"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/shipments/%d/delivery-status", id), token,
		map[string]interface{}{"delivery_status": "vaporized"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus status: got=%d want=400", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/shipments/9999/delivery-status", token,
		map[string]interface{}{"delivery_status": "delivered"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id: got=%d want=404", rec.Code)
	}
}

func TestTouchTimestamp(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.token(t, "a@x.com", time.Hour)

	created := decodeJSON(t, env.do(t, http.MethodPost, "/api/shipments", token, shipmentBody("ORD1", "a@x.com")))
	id := int(created["shipmentId"].(float64))

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/shipments/%d/timestamp", id), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("touch: got=%d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/shipments/9999/timestamp", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("touch unknown id: got=%d want=404", rec.Code)
	}
}

func TestDeleteAllSemantics(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.token(t, "a@x.com", time.Hour)

	rec := env.do(t, http.MethodDelete, "/api/shipments", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete all with nothing owned: got=%d want=404", rec.Code)
	}

	env.do(t, http.MethodPost, "/api/shipments", token, shipmentBody("ORD1", "a@x.com"))
	env.do(t, http.MethodPost, "/api/shipments", token, shipmentBody("ORD2", "a@x.com"))

	rec = env.do(t, http.MethodDelete, "/api/shipments", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete all: got=%d", rec.Code)
	}
	if got := decodeJSON(t, rec)["deleted"]; got != float64(2) {
		t.Fatalf("deleted count: got=%v want=2", got)
	}

	listed := env.do(t, http.MethodGet, "/api/shipments", token, nil)
	if listed.Code != http.StatusOK || listed.Body.String() == "" {
		t.Fatalf("list after delete all: got=%d", listed.Code)
	}
	var shipments []interface{}
	if err := json.Unmarshal(listed.Body.Bytes(), &shipments); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(shipments) != 0 {
		t.Fatalf("owner still sees %d shipments", len(shipments))
	}
}

func TestHealthcheckBypassesAuth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: got=%d want=200", rec.Code)
	}
}

func TestGraphQLSurfaceMirrorsREST(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokenA := env.token(t, "a@x.com", time.Hour)
	tokenB := env.token(t, "b@x.com", time.Hour)

	mutation := map[string]interface{}{
		"query": `mutation($input: CreateShipmentInput!) { createShipment(input: $input) { shipmentId message } }`,
		"variables": map[string]interface{}{
			"input": shipmentBody("GQL1", "a@x.com"),
		},
	}
	rec := env.do(t, http.MethodPost, "/api/graphql", tokenA, mutation)
	if rec.Code != http.StatusOK {
		t.Fatalf("graphql create: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var createResp struct {
		Data struct {
			CreateShipment struct {
				ShipmentID int    `json:"shipmentId"`
				Message    string `json:"message"`
			} `json:"createShipment"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &createResp); err != nil {
		t.Fatalf("decode graphql response: %v", err)
	}
	if len(createResp.Errors) != 0 {
		t.Fatalf("graphql create errors: %v", createResp.Errors)
	}
	if createResp.Data.CreateShipment.ShipmentID <= 0 {
		t.Fatalf("expected assigned shipmentId, got %d", createResp.Data.CreateShipment.ShipmentID)
	}

	query := map[string]interface{}{
		"query": `{ shipment(order_id: "GQL1") { order_id city delivery_status } }`,
	}
	rec = env.do(t, http.MethodPost, "/api/graphql", tokenA, query)
	var queryResp struct {
		Data struct {
			Shipment map[string]interface{} `json:"shipment"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &queryResp); err != nil {
		t.Fatalf("decode graphql query: %v", err)
	}
	if len(queryResp.Errors) != 0 {
		t.Fatalf("graphql query errors: %v", queryResp.Errors)
	}
	if queryResp.Data.Shipment["order_id"] != "GQL1" || queryResp.Data.Shipment["city"] != "Copenhagen" {
		t.Fatalf("graphql shipment mismatch: %v", queryResp.Data.Shipment)
	}

	// The same ownership rule holds on the GraphQL surface.
	rec = env.do(t, http.MethodPost, "/api/graphql", tokenB, query)
	var foreignResp struct {
		Data struct {
			Shipment map[string]interface{} `json:"shipment"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &foreignResp); err != nil {
		t.Fatalf("decode graphql foreign query: %v", err)
	}
	if len(foreignResp.Errors) == 0 {
		t.Fatal("expected not-found error for foreign owner")
	}

	// And the surface itself still sits behind auth.
	rec = env.do(t, http.MethodPost, "/api/graphql", "", query)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("graphql without token: got=%d want=401", rec.Code)
	}
}
