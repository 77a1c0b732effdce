package createorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/services/checkoutsvc"
)

type stubService struct {
	gotUserID int64
	gotReq    checkoutsvc.CheckoutRequest
	result    *order.Order
	err       error
}

func (s *stubService) CreateOrder(_ context.Context, userID int64, req checkoutsvc.CheckoutRequest) (*order.Order, error) {
	s.gotUserID = userID
	s.gotReq = req

	if s.err != nil {
		return nil, s.err
	}

	return s.result, nil
}

const validBody = `{
	"orderItems": [
		{"product": 1, "name": "Waffle", "price": 22.99, "quantity": 3, "couponCode": "SAVE-MORE-NOWW"}
	],
	"shippingInfo": {
		"address": "1 Main St", "city": "Lisbon", "country": "PT",
		"postalCode": "1000-001", "phoneNo": "+351000000000"
	},
	"paymentInfo": {"id": "pi_123", "status": "succeeded"}
}`

func doRequest(t *testing.T, svc service, body string, who *identity.Identity) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/api/order/new", strings.NewReader(body))
	if who != nil {
		r = r.WithContext(identity.WithContext(r.Context(), *who))
	}
	w := httptest.NewRecorder()

	CreateOrder(w, r, svc)

	return w
}

func TestCreateOrder(t *testing.T) {
	svc := &stubService{result: &order.Order{ID: 1, UserID: 42, TotalPrice: 45.87}}
	who := identity.Identity{UserID: 42, Role: identity.RoleUser}

	w := doRequest(t, svc, validBody, &who)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 42, svc.gotUserID)
	require.Len(t, svc.gotReq.Items, 1)
	assert.Equal(t, "SAVE-MORE-NOWW", svc.gotReq.Items[0].CouponCode)

	var resp struct {
		Success   bool        `json:"success"`
		UserOrder order.Order `json:"userOrder"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 45.87, resp.UserOrder.TotalPrice)
}

func TestCreateOrder_NoIdentity(t *testing.T) {
	w := doRequest(t, &stubService{}, validBody, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	who := identity.Identity{UserID: 42, Role: identity.RoleUser}
	w := doRequest(t, &stubService{}, "{", &who)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_EmptyCartRejectedByValidation(t *testing.T) {
	who := identity.Identity{UserID: 42, Role: identity.RoleUser}
	body := `{
		"orderItems": [],
		"shippingInfo": {
			"address": "1 Main St", "city": "Lisbon", "country": "PT",
			"postalCode": "1000-001", "phoneNo": "+351000000000"
		},
		"paymentInfo": {"id": "pi_123", "status": "succeeded"}
	}`

	svc := &stubService{}
	w := doRequest(t, svc, body, &who)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.gotUserID)
}

func TestCreateOrder_ServiceErrorEnvelope(t *testing.T) {
	who := identity.Identity{UserID: 42, Role: identity.RoleUser}
	svc := &stubService{err: apperror.ErrInvalidCoupon}

	w := doRequest(t, svc, validBody, &who)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   struct {
			StatusCode int `json:"statusCode"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Coupon is invalid or has expired", resp.Message)
	assert.Equal(t, http.StatusBadRequest, resp.Error.StatusCode)
}
