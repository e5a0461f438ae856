package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"franchise-backend/internal/config"
	"franchise-backend/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message []string        `json:"message"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Env:          "test",
		JWTSecret:    "0123456789abcdef0123456789abcdef",
		CORSOrigins:  "http://localhost:5173",
		RateLimit:    100000,
		UploadBase:   "http://localhost:8080/uploads",
		UploadSecret: "0123456789abcdef0123456789abcdef",
	}

	return New(cfg, db, zap.NewNop())
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func registerOwner(t *testing.T, app *fiber.App, email, brNo, contactNo string) string {
	t.Helper()

	code, env := doJSON(t, app, http.MethodPost, "/api/auth/register-owner", "", fiber.Map{
		"name":        "Test Owner",
		"email":       email,
		"password":    "secret123",
		"brNo":        brNo,
		"companyName": "Test Foods",
		"address":     "12 Main St",
		"contactNo":   contactNo,
	})
	require.Equal(t, http.StatusCreated, code, "register owner: %v", env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func createIngredient(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/ingredients", token, fiber.Map{
		"name":  name,
		"unit":  "kg",
		"price": 2.5,
	})
	require.Equal(t, http.StatusCreated, code, "create ingredient: %v", env.Message)

	var data struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.ID
}

func TestRegisterOwnerAndLogin(t *testing.T) {
	app := newTestApp(t)
	registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "owner@test.io",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)

	code, env = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "owner@test.io",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, []string{"Invalid email or password"}, env.Message)
}

func TestRegisterOwnerCollectsConflicts(t *testing.T) {
	app := newTestApp(t)
	registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodPost, "/api/auth/register-owner", "", fiber.Map{
		"name":        "Second Owner",
		"email":       "owner@test.io",
		"password":    "secret123",
		"brNo":        "BR-100",
		"companyName": "Copy Foods",
		"contactNo":   "0711111111",
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{
		"Email already exists",
		"BR number already exists",
		"Contact number already exists",
	}, env.Message)
}

func TestValidationReturnsAllMessages(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/ingredients", token, fiber.Map{
		"name":  "   ",
		"price": -1,
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, []string{
		"name must not be empty",
		"unit is required",
		"price must be at least 0",
	}, env.Message)
}

func TestMalformedBody(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	req := httptest.NewRequest(http.MethodPost, "/api/owner/ingredients", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, []string{"Invalid request body"}, env.Message)
}

func TestIngredientNameUniquenessIsNormalized(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")
	createIngredient(t, app, token, "Pasta  Primavera")

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/ingredients", token, fiber.Map{
		"name":  "pasta primavera",
		"unit":  "kg",
		"price": 1,
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"Ingredient already exists"}, env.Message)

	// same name under another tenant is fine
	other := registerOwner(t, app, "other@test.io", "BR-200", "0722222222")
	createIngredient(t, app, other, "Pasta Primavera")
}

func TestCrossTenantAccessLooksLikeNotFound(t *testing.T) {
	app := newTestApp(t)
	tokenA := registerOwner(t, app, "a@test.io", "BR-100", "0711111111")
	tokenB := registerOwner(t, app, "b@test.io", "BR-200", "0722222222")

	id := createIngredient(t, app, tokenA, "Flour")

	code, env := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/owner/ingredients/%d", id), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, []string{"Ingredient not found"}, env.Message)

	code, env = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/owner/ingredients/%d", id), tokenB, fiber.Map{
		"name":  "Stolen",
		"unit":  "kg",
		"price": 1,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, []string{"Ingredient not found"}, env.Message)

	code, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/owner/ingredients/%d", id), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, code)

	// the row is untouched for its real owner
	code, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/owner/ingredients/%d", id), tokenA, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestDishDuplicateIngredientListYieldsOneMessage(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")
	id := createIngredient(t, app, token, "Flour")

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/dishes", token, fiber.Map{
		"name":  "Bread",
		"price": 3,
		"ingredients": []fiber.Map{
			{"id": id, "quantity": 1},
			{"id": id, "quantity": 2},
			{"id": id, "quantity": 3},
		},
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"There are duplicate ingredients"}, env.Message)
}

func TestSupplierOrderChecksRunInOrder(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/supplier-orders", token, fiber.Map{
		"supplierId": 999,
		"ingredients": []fiber.Map{
			{"id": 500, "quantity": 1},
			{"id": 500, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{
		"Invalid Supplier Id",
		"There are duplicate ingredients",
		"Invalid Ingredients Id",
	}, env.Message)
}

func TestSupplierOrderTotalPricedAtOrderTime(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")
	ingID := createIngredient(t, app, token, "Flour") // price 2.5

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/suppliers", token, fiber.Map{
		"name":        "Mills Co",
		"email":       "mills@test.io",
		"contactNo":   "0770000000",
		"ingredients": []uint{ingID},
	})
	require.Equal(t, http.StatusCreated, code, "create supplier: %v", env.Message)
	var sup struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sup))

	code, env = doJSON(t, app, http.MethodPost, "/api/owner/supplier-orders", token, fiber.Map{
		"supplierId": sup.ID,
		"ingredients": []fiber.Map{
			{"id": ingID, "quantity": 4},
		},
	})
	require.Equal(t, http.StatusCreated, code, "create order: %v", env.Message)
	var ord struct {
		TotalValue float64 `json:"totalValue"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ord))
	assert.InDelta(t, 10.0, ord.TotalValue, 1e-9)
}

func TestPaginationWalksEveryRowOnce(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	for i := 0; i < 5; i++ {
		createIngredient(t, app, token, fmt.Sprintf("Ingredient %d", i))
	}

	type page struct {
		Ingredients []struct {
			ID uint `json:"id"`
		} `json:"ingredients"`
		NextCursor *uint `json:"nextCursor"`
	}

	var seen []uint
	cursor := uint(0)
	for steps := 0; ; steps++ {
		require.Less(t, steps, 10, "pagination did not terminate")

		code, env := doJSON(t, app, http.MethodGet,
			fmt.Sprintf("/api/owner/ingredients?cursor=%d&take=2", cursor), token, nil)
		require.Equal(t, http.StatusOK, code)

		var p page
		require.NoError(t, json.Unmarshal(env.Data, &p))
		for _, row := range p.Ingredients {
			seen = append(seen, row.ID)
		}
		if p.NextCursor == nil {
			break
		}
		cursor = *p.NextCursor
	}

	require.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
}

func TestPaginationRejectsBadParams(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodGet, "/api/owner/ingredients?take=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"take must be a positive integer"}, env.Message)

	code, env = doJSON(t, app, http.MethodGet, "/api/owner/ingredients?cursor=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"cursor must be a non-negative integer"}, env.Message)
}

func TestAuthGates(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodGet, "/api/owner/ingredients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, []string{"Authorization header is missing"}, env.Message)

	// an owner token cannot use manager routes
	code, env = doJSON(t, app, http.MethodGet, "/api/manager/inventory", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, []string{"You are not allowed to perform this action"}, env.Message)
}

func TestManagerWorkflow(t *testing.T) {
	app := newTestApp(t)
	owner := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/outlets", owner, fiber.Map{
		"location": "Colombo 7",
	})
	require.Equal(t, http.StatusCreated, code, "create outlet: %v", env.Message)
	var out struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))

	code, env = doJSON(t, app, http.MethodPost, "/api/owner/employees", owner, fiber.Map{
		"name":        "Kamal Perera",
		"nicNo":       "902345678V",
		"contactNo":   "0775556667",
		"designation": "Chef",
		"salary":      85000,
		"outletId":    out.ID,
	})
	require.Equal(t, http.StatusCreated, code, "create employee: %v", env.Message)
	var emp struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &emp))

	code, env = doJSON(t, app, http.MethodPost, "/api/owner/managers", owner, fiber.Map{
		"name":       "Kamal Perera",
		"email":      "kamal@test.io",
		"password":   "secret123",
		"employeeId": emp.ID,
		"outletId":   out.ID,
	})
	require.Equal(t, http.StatusCreated, code, "create manager: %v", env.Message)

	code, env = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "kamal@test.io",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	mgr := login.Token

	ingID := createIngredient(t, app, owner, "Flour")

	// restock request against the owner's catalog
	code, env = doJSON(t, app, http.MethodPost, "/api/manager/inventory-requests", mgr, fiber.Map{
		"ingredients": []fiber.Map{{"id": ingID, "quantity": 10}},
	})
	require.Equal(t, http.StatusCreated, code, "create inventory request: %v", env.Message)
	var reqRow struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reqRow))
	assert.Equal(t, "PENDING", reqRow.Status)

	// the owner reviews it
	code, env = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/owner/inventory-requests/%d/status", reqRow.ID), owner, fiber.Map{
			"status": "APPROVED",
		})
	require.Equal(t, http.StatusOK, code, "approve request: %v", env.Message)

	code, env = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/owner/inventory-requests/%d/status", reqRow.ID), owner, fiber.Map{
			"status": "DONE",
		})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"status must be one of PENDING, APPROVED, REJECTED"}, env.Message)

	// stock the outlet inventory
	code, env = doJSON(t, app, http.MethodPost, "/api/manager/inventory/ingredients", mgr, fiber.Map{
		"ingredientId": ingID,
		"quantity":     10,
	})
	require.Equal(t, http.StatusCreated, code, "add inventory ingredient: %v", env.Message)

	code, env = doJSON(t, app, http.MethodPost, "/api/manager/inventory/ingredients", mgr, fiber.Map{
		"ingredientId": ingID,
		"quantity":     3,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"Ingredient already in inventory"}, env.Message)

	// leave requests are bound to the manager's own outlet staff
	code, env = doJSON(t, app, http.MethodPost, "/api/manager/leave-requests", mgr, fiber.Map{
		"employeeId": 9999,
		"type":       "SICK",
		"from":       "2026-09-10",
		"noOfDate":   2,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"Invalid Employee Id"}, env.Message)

	code, env = doJSON(t, app, http.MethodPost, "/api/manager/leave-requests", mgr, fiber.Map{
		"employeeId": emp.ID,
		"type":       "SICK",
		"from":       "2026-09-10",
		"noOfDate":   2,
		"reason":     "flu",
	})
	require.Equal(t, http.StatusCreated, code, "create leave request: %v", env.Message)

	// owner sees it and the audit trail recorded the mutations
	code, env = doJSON(t, app, http.MethodGet, "/api/owner/leave-requests", owner, nil)
	require.Equal(t, http.StatusOK, code)
	var leavePage struct {
		LeaveRequests []json.RawMessage `json:"leaveRequests"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &leavePage))
	assert.Len(t, leavePage.LeaveRequests, 1)

	code, env = doJSON(t, app, http.MethodGet, "/api/owner/audit-logs", owner, nil)
	require.Equal(t, http.StatusOK, code)
	var auditPage struct {
		AuditLogs []json.RawMessage `json:"auditLogs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auditPage))
	assert.NotEmpty(t, auditPage.AuditLogs)
}

func TestManagerUniquePerOutlet(t *testing.T) {
	app := newTestApp(t)
	owner := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodPost, "/api/owner/outlets", owner, fiber.Map{"location": "Kandy"})
	require.Equal(t, http.StatusCreated, code)
	var out struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))

	makeEmployee := func(nic string) uint {
		code, env := doJSON(t, app, http.MethodPost, "/api/owner/employees", owner, fiber.Map{
			"name":        "Staff",
			"nicNo":       nic,
			"contactNo":   "0770001111",
			"designation": "Cook",
			"salary":      60000,
			"outletId":    out.ID,
		})
		require.Equal(t, http.StatusCreated, code, "create employee: %v", env.Message)
		var emp struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &emp))
		return emp.ID
	}

	first := makeEmployee("901111111V")
	second := makeEmployee("902222222V")

	code, env = doJSON(t, app, http.MethodPost, "/api/owner/managers", owner, fiber.Map{
		"name":       "First",
		"email":      "first@test.io",
		"password":   "secret123",
		"employeeId": first,
		"outletId":   out.ID,
	})
	require.Equal(t, http.StatusCreated, code, "first manager: %v", env.Message)

	code, env = doJSON(t, app, http.MethodPost, "/api/owner/managers", owner, fiber.Map{
		"name":       "Second",
		"email":      "second@test.io",
		"password":   "secret123",
		"employeeId": second,
		"outletId":   out.ID,
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "Outlet already has a manager")
}

func TestUploadSign(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "owner@test.io", "BR-100", "0711111111")

	code, env := doJSON(t, app, http.MethodGet, "/api/uploads/sign?filename=menu.jpg", token, nil)
	require.Equal(t, http.StatusOK, code, "sign url: %v", env.Message)

	var data struct {
		UploadURL string `json:"uploadUrl"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data.UploadURL, "signature=")
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	code, env := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Status)
}
