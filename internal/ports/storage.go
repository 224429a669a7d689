package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// Storage persiste el resumen de cada ciclo y las oportunidades vistas.
type Storage interface {
	// SaveScan persiste el resultado de un ciclo.
	SaveScan(ctx context.Context, scan domain.ScanResult) error

	// GetHistory devuelve las oportunidades vistas por última vez en el rango dado.
	GetHistory(ctx context.Context, from, to time.Time) ([]domain.Opportunity, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
