package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/elo-championship/internal/domain/backup"
	"github.com/riskibarqy/elo-championship/internal/domain/match"
	"github.com/riskibarqy/elo-championship/internal/domain/simulation"
	"github.com/riskibarqy/elo-championship/internal/platform/resilience"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// classify tags a domain error with the usecase sentinel the transport layer
// maps to a status code. Unknown errors pass through unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, match.ErrInvalidMatchFact),
		errors.Is(err, backup.ErrInvalidName),
		errors.Is(err, simulation.ErrSimulationConfig):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, match.ErrUnknownMatchReference),
		errors.Is(err, backup.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	default:
		return err
	}
}
