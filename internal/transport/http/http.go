package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/services/checkoutsvc"
	applycoupon "github.com/craftora/marketplace/internal/transport/http/apply_coupon"
	createcoupon "github.com/craftora/marketplace/internal/transport/http/create_coupon"
	createorder "github.com/craftora/marketplace/internal/transport/http/create_order"
	deletecoupon "github.com/craftora/marketplace/internal/transport/http/delete_coupon"
	deleteorder "github.com/craftora/marketplace/internal/transport/http/delete_order"
	getcoupon "github.com/craftora/marketplace/internal/transport/http/get_coupon"
	getorder "github.com/craftora/marketplace/internal/transport/http/get_order"
	listcoupons "github.com/craftora/marketplace/internal/transport/http/list_coupons"
	listmyorders "github.com/craftora/marketplace/internal/transport/http/list_my_orders"
	listshoporders "github.com/craftora/marketplace/internal/transport/http/list_shop_orders"
	updateorder "github.com/craftora/marketplace/internal/transport/http/update_order"
	identitymw "github.com/craftora/marketplace/pkg/http/middleware/identity"
	tracemw "github.com/craftora/marketplace/pkg/http/middleware/trace"
	"github.com/craftora/marketplace/pkg/logger"
)

type checkoutService interface {
	CreateOrder(ctx context.Context, userID int64, req checkoutsvc.CheckoutRequest) (*order.Order, error)
}

type orderService interface {
	GetOrder(ctx context.Context, who identity.Identity, id int64) (*order.Order, error)
	ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]order.Order, error)
	ListShopOrders(ctx context.Context, shopID int64, limit, offset int) ([]order.Order, error)
	UpdateStatus(ctx context.Context, who identity.Identity, id int64, status order.Status) (*order.Order, error)
	DeleteOrder(ctx context.Context, who identity.Identity, id int64) error
}

type couponService interface {
	Create(ctx context.Context, shopID int64, c coupon.Coupon) (*coupon.Coupon, error)
	List(ctx context.Context, shopID int64, limit, offset int) ([]coupon.Coupon, error)
	Get(ctx context.Context, shopID, id int64) (*coupon.Coupon, error)
	Delete(ctx context.Context, shopID, id int64) error
	Apply(ctx context.Context, userID, productID int64, code string) (*coupon.Coupon, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	checkout checkoutService
	orders   orderService
	coupons  couponService
}

func NewHTTPTransport(checkout checkoutService, orders orderService, coupons couponService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:   server,
		router:   router,
		checkout: checkout,
		orders:   orders,
		coupons:  coupons,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Post("/order/new", h.createOrder)
		r.Get("/order/{id}", h.getOrder)
		r.Put("/order/{id}", h.updateOrder)
		r.Delete("/order/{id}", h.deleteOrder)
		r.Get("/orders/me", h.listMyOrders)
		r.Get("/orders/shop", h.listShopOrders)

		r.Post("/coupon/new", h.createCoupon)
		r.Get("/coupon/apply", h.applyCoupon)
		r.Get("/coupon/{id}", h.getCoupon)
		r.Delete("/coupon/{id}", h.deleteCoupon)
		r.Get("/coupons", h.listCoupons)
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.checkout)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) updateOrder(w http.ResponseWriter, r *http.Request) {
	updateorder.UpdateOrder(w, r, h.orders)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.orders)
}

func (h *HTTPTransport) listMyOrders(w http.ResponseWriter, r *http.Request) {
	listmyorders.ListMyOrders(w, r, h.orders)
}

func (h *HTTPTransport) listShopOrders(w http.ResponseWriter, r *http.Request) {
	listshoporders.ListShopOrders(w, r, h.orders)
}

func (h *HTTPTransport) createCoupon(w http.ResponseWriter, r *http.Request) {
	createcoupon.CreateCoupon(w, r, h.coupons)
}

func (h *HTTPTransport) applyCoupon(w http.ResponseWriter, r *http.Request) {
	applycoupon.ApplyCoupon(w, r, h.coupons)
}

func (h *HTTPTransport) getCoupon(w http.ResponseWriter, r *http.Request) {
	getcoupon.GetCoupon(w, r, h.coupons)
}

func (h *HTTPTransport) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	deletecoupon.DeleteCoupon(w, r, h.coupons)
}

func (h *HTTPTransport) listCoupons(w http.ResponseWriter, r *http.Request) {
	listcoupons.ListCoupons(w, r, h.coupons)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(tracemw.NewTraceMiddleware)
	router.Use(identitymw.NewIdentityMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
