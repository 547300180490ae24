package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/controller"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/dto"
	"github.com/hugohenrick/arte-ideas/internal/adapter/api/route"
	"github.com/hugohenrick/arte-ideas/internal/adapter/repository/memory"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
	"github.com/hugohenrick/arte-ideas/internal/service/clients"
	"github.com/hugohenrick/arte-ideas/internal/service/orders"
	"github.com/hugohenrick/arte-ideas/internal/service/products"
	"github.com/hugohenrick/arte-ideas/internal/service/tenants"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/auth"
	"github.com/hugohenrick/arte-ideas/pkg/idempotency"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/hugohenrick/arte-ideas/pkg/middleware"
	tenantctx "github.com/hugohenrick/arte-ideas/pkg/tenant"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	router  *gin.Engine
	jwt     *auth.JWTService
	lima    *tenant.Tenant
	cusco   *tenant.Tenant
	client  *client.Client
	product *product.Product
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	uow := memory.NewUnitOfWork(memory.NewDB())
	repos := uow.Reader()

	lima, err := tenant.NewTenant("lima", "Estudio Lima")
	require.NoError(t, err)
	require.NoError(t, repos.Tenants.Create(ctx, lima))
	cusco, err := tenant.NewTenant("cusco", "Estudio Cusco")
	require.NoError(t, err)
	require.NoError(t, repos.Tenants.Create(ctx, cusco))

	cl, err := client.NewClient(lima.ID, client.TypeIndividual, "Ana Quispe", "12345678", "", "999111222", "", "")
	require.NoError(t, err)
	require.NoError(t, repos.Clients.Create(ctx, cl))
	p, err := product.NewProduct(lima.ID, "Photo book A4", "PB-A4", "", 10,
		decimal.RequireFromString("80.00"), decimal.RequireFromString("150.00"))
	require.NoError(t, err)
	require.NoError(t, repos.Products.Create(ctx, p))

	policy, err := access.NewPolicy()
	require.NoError(t, err)
	guard := access.NewGuard(access.NewResolver(repos.Tenants), policy)
	log := logger.NewNop()

	orderService, err := orders.NewService(orders.Deps{
		UnitOfWork:  uow,
		Guard:       guard,
		Idempotency: idempotency.NewMemoryStore(),
		Logger:      log,
	}, orders.Options{TaxRate: decimal.RequireFromString("0.18")})
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService("test-secret", "arte-ideas-test", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestID())
	api := router.Group("/api/v1")
	api.Use(auth.JWTAuthMiddleware(jwtService), tenantctx.SelectorMiddleware())
	route.Register(api, route.Controllers{
		Health:  controller.NewHealthController("test", nil),
		Orders:  controller.NewOrderController(orderService, log),
		Reports: controller.NewReportController(orderService, log),
		Clients: controller.NewClientController(clients.NewService(uow, guard, log), log),
		Product: controller.NewProductController(products.NewService(uow, guard, log, nil), log),
		Tenants: controller.NewTenantController(tenants.NewService(uow, guard, log), log),
	})

	return &server{router: router, jwt: jwtService, lima: lima, cusco: cusco, client: cl, product: p}
}

func (s *server) token(t *testing.T, role user.Role) string {
	t.Helper()
	u := &user.User{ID: string(role) + "-1", Login: string(role), Role: role}
	if role != user.RoleSuperAdmin {
		u.TenantID = s.lima.ID
	}
	token, err := s.jwt.GenerateToken(u)
	require.NoError(t, err)
	return token
}

func (s *server) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) saleNote(quantity int) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		ClientID:     s.client.ID,
		DocumentType: string(order.DocumentSaleNote),
		DeliveryDate: time.Now().UTC().AddDate(0, 0, 5).Format(order.DateLayout),
		Items: []dto.ItemRequest{{
			ProductName:     s.product.Name,
			Quantity:        quantity,
			UnitPrice:       "150.00",
			InventoryItemID: s.product.ID,
		}},
		InitialPayment: &dto.PaymentRequest{
			Amount: decimal.NewFromInt(int64(150 * quantity)).StringFixed(2),
			Method: string(order.MethodCash),
		},
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCreateOrderOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleSales)

	w := s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[orders.OrderDTO](t, w)
	assert.Equal(t, "354.00", *created.Total)
	assert.Equal(t, "54.00", *created.Balance)
	assert.Equal(t, "partial", created.PaymentStatus)

	w = s.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.OrderNumber, decode[orders.OrderDTO](t, w).OrderNumber)

	w = s.do(t, http.MethodGet, "/api/v1/orders?status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[orders.OrderPage](t, w).Total)
}

func TestMissingTokenIsUnauthenticated(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[dto.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodGet, "/api/v1/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantSelectorMismatch(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleSales)

	w := s.do(t, http.MethodGet, "/api/v1/orders", token, nil, tenantctx.HeaderName, s.cusco.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "TENANT_MISMATCH", decode[dto.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodGet, "/api/v1/tenants/"+s.lima.ID+"/orders", token, nil, tenantctx.HeaderName, s.cusco.ID)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSuperAdminSelectsTenantByPath(t *testing.T) {
	s := newServer(t)
	sales := s.token(t, user.RoleSales)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/orders", sales, s.saleNote(1)).Code)

	root := s.token(t, user.RoleSuperAdmin)
	w := s.do(t, http.MethodGet, "/api/v1/tenants/lima/orders", root, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[orders.OrderPage](t, w).Total)

	w = s.do(t, http.MethodGet, "/api/v1/tenants/cusco/orders", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[orders.OrderPage](t, w).Total)

	w = s.do(t, http.MethodGet, "/api/v1/tenants", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]tenant.Tenant](t, w), 2)

	w = s.do(t, http.MethodGet, "/api/v1/tenants", sales, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLegacyStatusIsRejected(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleAdmin)
	created := decode[orders.OrderDTO](t, s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(1)))

	w := s.do(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/transitions", token, dto.TransitionRequest{Status: "pendiente"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Contains(t, resp.Fields, "status")
	assert.NotEmpty(t, resp.RequestID)
}

func TestMalformedFieldsAreReportedTogether(t *testing.T) {
	s := newServer(t)
	req := s.saleNote(1)
	req.DeliveryDate = "20/03/2026"
	req.Items[0].UnitPrice = "abc"

	w := s.do(t, http.MethodPost, "/api/v1/orders", s.token(t, user.RoleAdmin), req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[dto.ErrorResponse](t, w).Fields
	assert.Contains(t, fields, "delivery_date")
	assert.Contains(t, fields, "items[0].unit_price")
}

func TestBindingRulesAreReportedPerField(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleAdmin)

	req := s.saleNote(1)
	req.ClientID = ""
	req.DocumentType = "invoice"
	req.Items[0].Quantity = 0
	req.InitialPayment.Method = "bitcoin"

	w := s.do(t, http.MethodPost, "/api/v1/orders", token, req)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, string(apperror.KindValidation), resp.Code)
	assert.Equal(t, "is required", resp.Fields["client_id"])
	assert.Contains(t, resp.Fields["document_type"], "must be one of")
	assert.Equal(t, "must be at least 1", resp.Fields["items[0].quantity"])
	assert.Contains(t, resp.Fields["initial_payment.method"], "yape")

	created := decode[orders.OrderDTO](t, s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(1)))
	w = s.do(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/transitions", token, dto.TransitionRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "is required", decode[dto.ErrorResponse](t, w).Fields["status"])
}

func TestOverpaymentAndShortageOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleAdmin)
	created := decode[orders.OrderDTO](t, s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(2)))

	w := s.do(t, http.MethodPost, "/api/v1/orders/"+created.ID+"/payments", token,
		dto.PaymentRequest{Amount: "100.00", Method: string(order.MethodCash)})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "OVERPAYMENT", decode[dto.ErrorResponse](t, w).Code)

	w = s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(20))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Code)
	require.NotNil(t, resp.Shortage)
	assert.Equal(t, 20, resp.Shortage.Requested)
	assert.Equal(t, 8, resp.Shortage.Available)
}

func TestPaymentsCannotBeEdited(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleAdmin)
	created := decode[orders.OrderDTO](t, s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(1)))
	require.Len(t, created.Payments, 1)

	w := s.do(t, http.MethodPut, "/api/v1/orders/"+created.ID+"/payments/"+created.Payments[0].ID, token,
		dto.PaymentRequest{Amount: "1.00"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "IMMUTABLE_RECORD", decode[dto.ErrorResponse](t, w).Code)
}

func TestIdempotencyKeyHeader(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleAdmin)

	first := s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(1), controller.IdempotencyHeader, "create-1")
	second := s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(1), controller.IdempotencyHeader, "create-1")
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, decode[orders.OrderDTO](t, first).ID, decode[orders.OrderDTO](t, second).ID)

	other := s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(2), controller.IdempotencyHeader, "create-1")
	assert.Equal(t, http.StatusConflict, other.Code)
}

func TestOperatorSeesNoMoney(t *testing.T) {
	s := newServer(t)
	created := decode[orders.OrderDTO](t, s.do(t, http.MethodPost, "/api/v1/orders", s.token(t, user.RoleAdmin), s.saleNote(1)))

	w := s.do(t, http.MethodGet, "/api/v1/orders/"+created.ID, s.token(t, user.RoleOperator), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"total"`)
	assert.NotContains(t, w.Body.String(), `"payments"`)

	w = s.do(t, http.MethodPost, "/api/v1/orders", s.token(t, user.RoleOperator), s.saleNote(1))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportsOverHTTP(t *testing.T) {
	s := newServer(t)
	token := s.token(t, user.RoleAdmin)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/orders", token, s.saleNote(1)).Code)

	w := s.do(t, http.MethodGet, "/api/v1/orders/reports/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[orders.SummaryDTO](t, w).ByStatus["pending"])

	w = s.do(t, http.MethodGet, "/api/v1/orders/reports/monthly?months=3", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]orders.MonthlyStatDTO](t, w), 3)

	w = s.do(t, http.MethodGet, "/api/v1/orders/reports/monthly?months=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
