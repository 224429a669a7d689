package notify

import (
	"context"
	"errors"

	"github.com/alejandrodnm/nhlarb/internal/domain"
	"github.com/alejandrodnm/nhlarb/internal/ports"
)

// Multi reparte los mismos eventos a varios notificadores.
type Multi struct {
	sinks []ports.Notifier
}

// NewMulti crea un Multi; los nil se ignoran.
func NewMulti(sinks ...ports.Notifier) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Notify entrega los eventos a todos los sinks aunque alguno falle.
func (m *Multi) Notify(ctx context.Context, events []domain.RenderEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
