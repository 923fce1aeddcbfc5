package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/pos-backend/docs" // Импорт описания API для swagger
	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const rootBody = "Server is running. Use the appropriate API endpoints."

type Router struct {
	router     *chi.Mux
	logger     logger.Logger
	swaggerURL string
}

func NewRouter(router *chi.Mux, logger logger.Logger, swaggerURL string) *Router {
	return &Router{router: router, logger: logger, swaggerURL: swaggerURL}
}

// Init вешает middleware и все маршруты API. Вызывается один раз до запуска сервера.
func (r *Router) Init(billUC usecase.BillUC, prUC usecase.ProductUC, userUC usecase.UserUC, maxImageSize int64) {
	r.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		r.requestLogger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
	)

	r.router.NotFound(notFound)
	r.router.MethodNotAllowed(notFound)

	r.router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, rootBody)
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.swaggerURL), // ссылка на JSON
	))

	billHandler := NewBillHandler(billUC, r.logger)
	prHandler := NewProductHandler(prUC, r.logger)
	userHandler := NewUserHandler(userUC, r.logger, maxImageSize)

	registerBillRoutes(r.router, billHandler)
	registerProductRoutes(r.router, prHandler)
	registerUserRoutes(r.router, userHandler)
}

func registerBillRoutes(router chi.Router, billHandler *BillHandler) {
	router.Post("/bill", billHandler.createBill)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", prHandler.addProduct)
		pr.Get("/", prHandler.listProducts)
		pr.Get("/suggestions", prHandler.getSuggestions)
		pr.Get("/price", prHandler.getPrice)
		pr.Put("/{id}", prHandler.updateProduct)
	})
}

func registerUserRoutes(router chi.Router, userHandler *UserHandler) {
	router.Post("/signup", userHandler.signup)
	router.Post("/login", userHandler.login)
	router.Get("/users", userHandler.listUsers)
	router.Delete("/users/{id}", userHandler.deleteUser)
	router.Get("/uploads/*", userHandler.serveImage)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusNotFound, notFoundBody)
}

func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, req)

		r.logger.Debugf("%s %s %d %dB %s reqID=%s",
			req.Method, req.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(req.Context()))
	})
}
