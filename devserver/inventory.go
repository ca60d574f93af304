package devserver

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// product is the backend record shape the real API returns.
type product struct {
	Codigo             int64   `json:"codigo"`
	Nombre             string  `json:"nombre"`
	Stock              int     `json:"stock"`
	Precio             float64 `json:"precio"`
	ProveedorNombre    string  `json:"proveedorNombre"`
	UmbralMinimo       int     `json:"umbralMinimo"`
	StockBajo          bool    `json:"stockBajo"`
	Imagen             string  `json:"imagen,omitempty"`
	Descripcion        string  `json:"descripcion,omitempty"`
	Eliminado          bool    `json:"-"`
	FechaCreacion      string  `json:"fechaCreacion"`
	FechaActualizacion string  `json:"fechaActualizacion"`
}

type notification struct {
	ID             int64  `json:"id"`
	IDProducto     int64  `json:"idProducto"`
	NombreProducto string `json:"nombreProducto"`
	StockActual    int    `json:"stockActual"`
	UmbralMinimo   int    `json:"umbralMinimo"`
	FechaCreacion  string `json:"fechaCreacion"`
	Eliminada      bool   `json:"eliminada"`
}

type createRequest struct {
	Nombre       string  `json:"nombre"`
	Cantidad     int     `json:"cantidad"`
	Precio       float64 `json:"precio"`
	IDProveedor  int64   `json:"idProveedor"`
	UmbralMinimo int     `json:"umbralMinimo"`
	Imagen       string  `json:"imagen"`
	Descripcion  string  `json:"descripcion"`
}

type amountRequest struct {
	Cantidad int `json:"cantidad"`
}

type thresholdRequest struct {
	UmbralMinimo int `json:"umbralMinimo"`
}

// view stamps the derived low-stock flag onto a copy of the record.
func (p *product) view() product {
	out := *p
	out.StockBajo = p.Stock <= p.UmbralMinimo
	return out
}

func (p *product) touch() {
	p.FechaActualizacion = time.Now().UTC().Format(time.RFC3339)
}

func (s *Server) handleListProducts(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product, 0, len(s.products))
	for _, p := range s.products {
		if p.Eliminado {
			continue
		}
		out = append(out, p.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleListLowStock(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product, 0)
	for _, p := range s.products {
		if p.Eliminado || p.Stock > p.UmbralMinimo {
			continue
		}
		out = append(out, p.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request body"})
	}

	if req.Nombre == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "nombre is required"})
	}
	if req.Precio <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "precio must be greater than zero"})
	}
	if req.Cantidad < 0 || req.UmbralMinimo < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "cantidad and umbralMinimo must not be negative"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	p := &product{
		Codigo:             s.nextCode,
		Nombre:             req.Nombre,
		Stock:              req.Cantidad,
		Precio:             req.Precio,
		ProveedorNombre:    "Proveedor " + strconv.FormatInt(req.IDProveedor, 10),
		UmbralMinimo:       req.UmbralMinimo,
		Imagen:             req.Imagen,
		Descripcion:        req.Descripcion,
		FechaCreacion:      now,
		FechaActualizacion: now,
	}
	s.products[p.Codigo] = p
	s.nextCode++

	return c.JSON(http.StatusCreated, p.view())
}

func (s *Server) handleDeleteProduct(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(c.Param("codigo"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "producto no encontrado"})
	}

	// Logical delete only; the record stays around.
	p.Eliminado = true
	p.touch()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleIncreaseStock(c echo.Context) error {
	return s.adjustStock(c, +1)
}

func (s *Server) handleDecreaseStock(c echo.Context) error {
	return s.adjustStock(c, -1)
}

// adjustStock applies a delta request. The server is the final arbiter of the
// resulting value and clamps at zero.
func (s *Server) adjustStock(c echo.Context, sign int) error {
	var req amountRequest
	if err := c.Bind(&req); err != nil || req.Cantidad <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "cantidad must be greater than zero"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(c.Param("codigo"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "producto no encontrado"})
	}

	p.Stock += sign * req.Cantidad
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.touch()
	return c.JSON(http.StatusOK, p.view())
}

func (s *Server) handleUpdateThreshold(c echo.Context) error {
	var req thresholdRequest
	if err := c.Bind(&req); err != nil || req.UmbralMinimo < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "umbralMinimo must not be negative"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(c.Param("codigo"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "producto no encontrado"})
	}

	p.UmbralMinimo = req.UmbralMinimo
	p.touch()
	return c.JSON(http.StatusOK, p.view())
}

func (s *Server) handleListNotifications(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	out := make([]notification, 0)
	for _, p := range s.products {
		if p.Eliminado || p.Stock > p.UmbralMinimo {
			continue
		}
		out = append(out, notification{
			IDProducto:     p.Codigo,
			NombreProducto: p.Nombre,
			StockActual:    p.Stock,
			UmbralMinimo:   p.UmbralMinimo,
			FechaCreacion:  now,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockActual < out[j].StockActual })
	for i := range out {
		out[i].ID = s.nextNotif
		s.nextNotif++
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) lookup(codigoParam string) (*product, error) {
	codigo, err := strconv.ParseInt(codigoParam, 10, 64)
	if err != nil {
		return nil, err
	}
	p, ok := s.products[codigo]
	if !ok {
		return nil, echo.ErrNotFound
	}
	return p, nil
}
