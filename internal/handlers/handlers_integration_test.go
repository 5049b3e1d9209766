package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"cardapio/internal/authz"
	"cardapio/internal/cache"
	"cardapio/internal/database"
	"cardapio/internal/models"
	"cardapio/internal/realtime"
	"cardapio/internal/repositories"
	"cardapio/internal/server"
	"cardapio/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv is a full API on an in-memory SQLite database.
type testEnv struct {
	app   *fiber.App
	auth  *services.AuthService
	users *repositories.GORMUserRepository
	hub   *realtime.Hub
}

func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repositories.NewGORMUserRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	enforcer, err := authz.New(authz.DefaultRules(server.APIPrefix))
	require.NoError(t, err)

	hub := realtime.NewHub(8)
	auth := services.NewAuthService(userRepo, "test_jwt_secret", time.Hour)
	app := server.New(server.Deps{
		Auth:       auth,
		Users:      services.NewUserService(userRepo),
		Addresses:  services.NewAddressService(addressRepo, userRepo),
		Categories: services.NewCategoryService(categoryRepo, cache.Noop{}),
		Items:      services.NewItemService(itemRepo, categoryRepo, cache.Noop{}),
		Orders:     services.NewOrderService(orderRepo, itemRepo, addressRepo, hub, "order"),
		Dashboard:  services.NewDashboardService(orderRepo, userRepo, itemRepo),
		Enforcer:   enforcer,
		Hub:        hub,
		Quiet:      true,
	})
	return &testEnv{app: app, auth: auth, users: userRepo, hub: hub}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	decodeInto(t, resp, &out)
	return out
}

// register signs a client up through the API and returns its id and token.
func (e *testEnv) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = e.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	user := body["user"].(map[string]interface{})
	return user["id"].(string), body["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	hash, err := services.HashPassword("adminpass")
	require.NoError(t, err)
	admin := &models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, PasswordHash: hash}
	require.NoError(t, e.users.Create(context.Background(), admin))
	token, err := e.auth.IssueToken(admin)
	require.NoError(t, err)
	return token
}

func assertMoney(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "expected a decimal string, got %v", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "want %s, got %s", want, s)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	register := map[string]string{
		"name":      "Test User",
		"email":     "Test@Example.com",
		"password":  "password123",
		"birthDate": "1990-05-17",
	}
	resp := env.do(t, http.MethodPost, "/api/v1/register", "", register)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeMap(t, resp)
	assert.Equal(t, "User registered successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "CLIENT", user["role"])
	assert.NotContains(t, user, "passwordHash")

	// Test Duplicate Registration (email)
	resp = env.do(t, http.MethodPost, "/api/v1/register", "", register)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": "Short", "email": "short@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeMap(t, resp)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Contains(t, body["errors"], "Password")

	// bcrypt stops at 72 bytes; longer passwords are rejected, not a server error.
	resp = env.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": "Long", "email": "long@example.com", "password": strings.Repeat("p", 80),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// 40 runes pass the tag but are 80 bytes.
	resp = env.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"name": "Wide", "email": "wide@example.com", "password": strings.Repeat("é", 40),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", decodeMap(t, resp)["error"])

	// Test Login
	resp = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeMap(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	claims, err := env.auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, models.RoleClient, claims.Role)

	resp = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "test@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestMenuEndpoints(t *testing.T) {
	env := setupApp(t)
	_, clientToken := env.register(t, "Client", "client@example.com")
	adminToken := env.adminToken(t)

	// Reads are public.
	resp := env.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	category := map[string]string{"description": "Pizzas"}
	resp = env.do(t, http.MethodPost, "/api/v1/categories", "", category)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/categories", clientToken, category)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/categories", adminToken, category)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	categoryID := decodeMap(t, resp)["id"].(string)

	resp = env.do(t, http.MethodPost, "/api/v1/items", adminToken, map[string]interface{}{
		"description": "Margherita", "unitPrice": "42.90", "categoryId": categoryID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	itemID := decodeMap(t, resp)["id"].(string)

	resp = env.do(t, http.MethodPost, "/api/v1/items", adminToken, map[string]interface{}{
		"description": "Free pizza", "unitPrice": 0, "categoryId": categoryID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/items", adminToken, map[string]interface{}{
		"description": "Orphan", "unitPrice": 10, "categoryId": "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/items?search=MARGH&sort=price_asc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeMap(t, resp)
	assert.Equal(t, float64(1), page["totalItems"])
	assert.Equal(t, float64(12), page["limit"])

	resp = env.do(t, http.MethodGet, "/api/v1/items?sort=RANDOM", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/items/"+itemID, adminToken, map[string]interface{}{
		"description": "Margherita", "unitPrice": 44.5, "categoryId": categoryID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertMoney(t, "44.50", decodeMap(t, resp)["unitPrice"])

	// A category with items cannot be deleted.
	resp = env.do(t, http.MethodDelete, "/api/v1/categories/"+categoryID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/v1/items/"+itemID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/v1/categories/"+categoryID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/categories/"+categoryID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestOrderFlow(t *testing.T) {
	env := setupApp(t)
	adminToken := env.adminToken(t)
	clientID, clientToken := env.register(t, "Client", "client@example.com")
	_, otherToken := env.register(t, "Other", "other@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"description": "Burgers"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	categoryID := decodeMap(t, resp)["id"].(string)

	createItem := func(description, price string) string {
		resp := env.do(t, http.MethodPost, "/api/v1/items", adminToken, map[string]interface{}{
			"description": description, "unitPrice": price, "categoryId": categoryID,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return decodeMap(t, resp)["id"].(string)
	}
	itemA := createItem("X-Burger", "10.00")
	itemB := createItem("Fries", "5.50")

	resp = env.do(t, http.MethodPost, "/api/v1/address/"+clientID, clientToken, map[string]string{
		"street": "Rua A", "number": "10", "district": "Centro", "city": "Recife", "state": "pe", "zipCode": "50000-000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	address := decodeMap(t, resp)
	assert.Equal(t, "PE", address["state"])
	addressID := address["id"].(string)

	// Another client cannot read the address.
	resp = env.do(t, http.MethodGet, "/api/v1/address/"+clientID+"/"+addressID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	lines := []map[string]interface{}{
		{"itemId": itemA, "quantity": 2},
		{"itemId": itemB, "quantity": 1},
	}

	resp = env.do(t, http.MethodPost, "/api/v1/orders/quote", clientToken, map[string]interface{}{"items": lines})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := decodeMap(t, resp)
	assertMoney(t, "25.50", quote["subtotal"])
	assertMoney(t, "30.50", quote["total"])

	sub := env.hub.Subscribe()
	defer env.hub.Unsubscribe(sub)

	resp = env.do(t, http.MethodPost, "/api/v1/orders", clientToken, map[string]interface{}{
		"paymentMethod": "PIX", "addressId": addressID, "items": lines,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeMap(t, resp)
	orderID := order["id"].(string)
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, clientID, order["clientId"])
	assertMoney(t, "30.50", order["total"])
	assert.Len(t, order["items"], 2)

	select {
	case msg := <-sub.C():
		ev, err := services.DecodeOrderEvent(msg)
		require.NoError(t, err)
		assert.Equal(t, services.EventOrderCreated, ev.Type)
		assert.Equal(t, orderID, ev.OrderID)
	default:
		t.Fatal("expected an order.created event on the hub")
	}

	resp = env.do(t, http.MethodPost, "/api/v1/orders", clientToken, map[string]interface{}{
		"paymentMethod": "BITCOIN", "items": lines,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/orders", otherToken, map[string]interface{}{
		"paymentMethod": "CASH", "addressId": addressID, "items": lines,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Menu price changes do not touch the placed order.
	resp = env.do(t, http.MethodPut, "/api/v1/items/"+itemA, adminToken, map[string]interface{}{
		"description": "X-Burger", "unitPrice": "12.00", "categoryId": categoryID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertMoney(t, "30.50", decodeMap(t, resp)["total"])

	resp = env.do(t, http.MethodGet, "/api/v1/orders/"+orderID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	var own []map[string]interface{}
	resp = env.do(t, http.MethodGet, "/api/v1/orders", otherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &own)
	assert.Empty(t, own)

	var all []map[string]interface{}
	resp = env.do(t, http.MethodGet, "/api/v1/orders?status=pending&period=30_DAYS", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &all)
	assert.Len(t, all, 1)

	status := func(token, to string) *http.Response {
		return env.do(t, http.MethodPatch, "/api/v1/orders/status/"+orderID, token, map[string]string{"status": to})
	}

	// Clients cannot move a PENDING order.
	resp = status(clientToken, "CANCELED")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = status(otherToken, "CANCELED")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = status(adminToken, "PROCESSING")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PROCESSING", decodeMap(t, resp)["status"])

	resp = status(clientToken, "DELIVERED")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DELIVERED", decodeMap(t, resp)["status"])

	resp = status(clientToken, "CANCELED")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = status(adminToken, "UNKNOWN")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Referenced rows are protected.
	resp = env.do(t, http.MethodDelete, "/api/v1/address/"+clientID+"/"+addressID, clientToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/v1/items/"+itemA, adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/v1/users/"+clientID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeMap(t, resp)
	assertMoney(t, "30.50", stats["totalRevenue"])
	assert.Equal(t, float64(1), stats["totalOrders"])
	assert.Equal(t, float64(0), stats["activeOrders"])
	assert.Equal(t, float64(3), stats["totalUsers"])

	resp = env.do(t, http.MethodGet, "/api/v1/dashboard/stats", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestUserEndpoints(t *testing.T) {
	env := setupApp(t)
	adminToken := env.adminToken(t)
	clientID, clientToken := env.register(t, "Client", "client@example.com")
	otherID, _ := env.register(t, "Other", "other@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/users", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	var users []map[string]interface{}
	resp = env.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeInto(t, resp, &users)
	assert.Len(t, users, 3)

	resp = env.do(t, http.MethodGet, "/api/v1/users/"+otherID, clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/users/"+clientID, clientToken, map[string]string{"role": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/users/"+clientID, clientToken, map[string]string{"name": "Renamed", "phone": "81999990000"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", decodeMap(t, resp)["name"])

	resp = env.do(t, http.MethodPut, "/api/v1/users/"+otherID, adminToken, map[string]string{"role": "ADMIN"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ADMIN", decodeMap(t, resp)["role"])

	resp = env.do(t, http.MethodDelete, "/api/v1/users/"+clientID, clientToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/users/"+clientID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRoutingEdges(t *testing.T) {
	env := setupApp(t)
	_, clientToken := env.register(t, "Client", "client@example.com")
	adminToken := env.adminToken(t)

	resp := env.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", decodeMap(t, resp)["message"])

	// The order feed is admin-only and needs a websocket handshake.
	resp = env.do(t, http.MethodGet, "/api/v1/ws/orders", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/ws/orders?token="+adminToken, "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
	resp.Body.Close()

	// Other routes only read the Authorization header.
	resp = env.do(t, http.MethodGet, "/api/v1/orders?token="+clientToken, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestEmptyCart(t *testing.T) {
	env := setupApp(t)
	_, clientToken := env.register(t, "Client", "client@example.com")

	for _, payload := range []map[string]interface{}{
		{"paymentMethod": "PIX", "items": []interface{}{}},
		{"paymentMethod": "PIX"},
	} {
		resp := env.do(t, http.MethodPost, "/api/v1/orders", clientToken, payload)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "empty cart", decodeMap(t, resp)["message"])
	}

	resp := env.do(t, http.MethodPost, "/api/v1/orders/quote", clientToken, map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "empty cart", decodeMap(t, resp)["message"])
}

func TestOrderAfterAccountDeletion(t *testing.T) {
	env := setupApp(t)
	adminToken := env.adminToken(t)
	clientID, clientToken := env.register(t, "Client", "client@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/categories", adminToken, map[string]string{"description": "Drinks"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	categoryID := decodeMap(t, resp)["id"].(string)
	resp = env.do(t, http.MethodPost, "/api/v1/items", adminToken, map[string]interface{}{
		"description": "Juice", "unitPrice": "7.00", "categoryId": categoryID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	itemID := decodeMap(t, resp)["id"].(string)

	resp = env.do(t, http.MethodDelete, "/api/v1/users/"+clientID, clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The token is still signed and unexpired.
	resp = env.do(t, http.MethodPost, "/api/v1/orders", clientToken, map[string]interface{}{
		"paymentMethod": "CASH",
		"items":         []map[string]interface{}{{"itemId": itemID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeMap(t, resp)["error"])
}
