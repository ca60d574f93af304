package inventory

import (
	"strconv"
	"time"
)

// PlaceholderImage is used when a product record carries no image URI.
const PlaceholderImage = "/placeholder.svg"

// Product is the frontend view of an inventory record.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Supplier        string    `json:"supplier"`
	Price           float64   `json:"price"`
	Stock           int       `json:"stock"`
	MinStock        int       `json:"min_stock"`
	Image           string    `json:"image"`
	Characteristics string    `json:"characteristics"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// LowStock is resolved once at the mapping boundary: the server flag
	// when present, stock <= minStock otherwise. Consumers read this field
	// and never recompute the predicate.
	LowStock bool `json:"low_stock"`
}

// OutOfStock reports whether the product has no units left.
func (p *Product) OutOfStock() bool {
	return p.Stock == 0
}

// Record is a backend product record as returned by the inventory API.
type Record struct {
	Codigo             int64   `json:"codigo"`
	Nombre             string  `json:"nombre"`
	Stock              int     `json:"stock"`
	Precio             float64 `json:"precio"`
	ProveedorNombre    string  `json:"proveedorNombre"`
	UmbralMinimo       *int    `json:"umbralMinimo,omitempty"`
	StockBajo          *bool   `json:"stockBajo,omitempty"`
	Imagen             string  `json:"imagen,omitempty"`
	Descripcion        string  `json:"descripcion,omitempty"`
	Eliminado          bool    `json:"eliminado,omitempty"`
	FechaCreacion      string  `json:"fechaCreacion,omitempty"`
	FechaActualizacion string  `json:"fechaActualizacion,omitempty"`
}

// ToProduct converts a backend record into the frontend shape.
func (r *Record) ToProduct() Product {
	p := Product{
		ID:              strconv.FormatInt(r.Codigo, 10),
		Name:            r.Nombre,
		Supplier:        r.ProveedorNombre,
		Price:           r.Precio,
		Stock:           r.Stock,
		Image:           r.Imagen,
		Characteristics: r.Descripcion,
		IsDeleted:       r.Eliminado,
		CreatedAt:       parseStamp(r.FechaCreacion),
		UpdatedAt:       parseStamp(r.FechaActualizacion),
	}

	if r.UmbralMinimo != nil {
		p.MinStock = *r.UmbralMinimo
	}
	if p.Image == "" {
		p.Image = PlaceholderImage
	}

	// The server flag is canonical; the local predicate is only a fallback
	// for records that predate the stockBajo field.
	if r.StockBajo != nil {
		p.LowStock = *r.StockBajo
	} else {
		p.LowStock = p.Stock <= p.MinStock
	}

	return p
}

func parseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Stats summarizes the inventory for the dashboard header.
type Stats struct {
	TotalProducts int     `json:"total_products"`
	TotalValue    float64 `json:"total_value"`
	LowStockCount int     `json:"low_stock_count"`
	OutOfStock    int     `json:"out_of_stock_count"`
	Available     int     `json:"available_count"`
	DeletedCount  int     `json:"deleted_count"`
}

// ComputeStats derives dashboard totals from a product set. Deleted products
// only contribute to the deleted count.
func ComputeStats(products []Product) Stats {
	var s Stats
	for _, p := range products {
		if p.IsDeleted {
			s.DeletedCount++
			continue
		}
		s.TotalProducts++
		s.TotalValue += p.Price * float64(p.Stock)
		switch {
		case p.Stock == 0:
			s.OutOfStock++
		case p.LowStock:
			s.LowStockCount++
		default:
			s.Available++
		}
	}
	return s
}
