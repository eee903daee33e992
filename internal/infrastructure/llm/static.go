package llm

import (
	"context"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/ports"
)

// StaticOracle answers every prompt with the same reply. Useful offline and in dry runs.
type StaticOracle struct {
	Reply string
}

var _ ports.Oracle = StaticOracle{}

func (s StaticOracle) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Reply, nil
}
