// Package devserver is an in-memory stand-in for the remote pet-store
// inventory API, for local development and manual testing. It mirrors the
// production endpoints and their soft-delete and stock-clamping semantics but
// holds everything in memory.
package devserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pawhome/pawstock/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// Server serves the dev inventory API.
type Server struct {
	echo *echo.Echo

	secret []byte // JWT signing secret
	admins map[string][]byte

	mu        sync.Mutex
	products  map[int64]*product
	nextCode  int64
	nextNotif int64
}

// New creates a dev server with seeded demo admins and products. secret signs
// the issued tokens; any non-empty value works for development.
func New(secret string) *Server {
	s := &Server{
		secret:    []byte(secret),
		admins:    make(map[string][]byte),
		products:  make(map[int64]*product),
		nextCode:  1,
		nextNotif: 1,
	}

	// Demo credentials, matching the original dashboard's fixtures.
	s.addAdmin("admin", "admin123")
	s.addAdmin("pawadmin", "paw2024")
	s.seedProducts()

	s.setupEcho()
	return s
}

func (s *Server) addAdmin(username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("failed to hash demo password: %v", err))
	}
	s.admins[username] = hash
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("HTTP request",
				logger.F("method", c.Request().Method),
				logger.F("uri", c.Request().RequestURI),
				logger.F("status", c.Response().Status),
				logger.F("duration", time.Since(start).String()))
			return err
		}
	})
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(middleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/api/auth/login", s.handleLogin)

	api := e.Group("/api/inventory")
	api.Use(s.authMiddleware)
	api.GET("/productos", s.handleListProducts)
	api.GET("/productos/stock-bajo", s.handleListLowStock)
	api.POST("/productos", s.handleCreateProduct)
	api.DELETE("/productos/:codigo", s.handleDeleteProduct)
	api.POST("/productos/:codigo/aumentar-stock", s.handleIncreaseStock)
	api.POST("/productos/:codigo/disminuir-stock", s.handleDecreaseStock)
	api.PUT("/productos/:codigo/umbral-minimo", s.handleUpdateThreshold)
	api.GET("/notificaciones", s.handleListNotifications)

	s.echo = e
}

// Router returns the HTTP handler, for tests.
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) seedProducts() {
	seed := []product{
		{Nombre: "Alimento Premium para Perros", Stock: 25, Precio: 45.99, ProveedorNombre: "Pet Food Co.", UmbralMinimo: 10, Imagen: "/dog-food-bag.jpg", Descripcion: "Alimento balanceado para perros adultos"},
		{Nombre: "Collar Ajustable para Gatos", Stock: 8, Precio: 12.50, ProveedorNombre: "Pet Accessories Ltd.", UmbralMinimo: 15, Descripcion: "Collar ajustable de nylon con cascabel"},
		{Nombre: "Juguete Interactivo para Perros", Stock: 32, Precio: 18.75, ProveedorNombre: "Fun Pet Toys", UmbralMinimo: 20, Descripcion: "Juguete de goma resistente con sonido"},
		{Nombre: "Arena para Gatos Premium", Stock: 5, Precio: 22.30, ProveedorNombre: "Clean Litter Inc.", UmbralMinimo: 12, Descripcion: "Arena aglomerante con control de olores, 10kg"},
		{Nombre: "Cama Ortopédica para Mascotas", Stock: 15, Precio: 89.99, ProveedorNombre: "Comfort Pet Beds", UmbralMinimo: 8, Descripcion: "Cama de espuma viscoelástica, lavable"},
	}

	now := time.Now().UTC()
	for i := range seed {
		p := seed[i]
		p.Codigo = s.nextCode
		p.FechaCreacion = now.Format(time.RFC3339)
		p.FechaActualizacion = p.FechaCreacion
		s.products[p.Codigo] = &p
		s.nextCode++
	}
}
