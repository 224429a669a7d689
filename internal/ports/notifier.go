package ports

import (
	"context"

	"github.com/alejandrodnm/nhlarb/internal/domain"
)

// Notifier presenta los cambios del conjunto de oportunidades mostradas.
type Notifier interface {
	// Notify aplica los eventos de un scan en orden.
	// Se llama una vez por ciclo, también con lista vacía si nada cambió.
	Notify(ctx context.Context, events []domain.RenderEvent) error
}
