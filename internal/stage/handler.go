package stage

import (
	"context"

	"plenum/internal/catalog"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *catalog.Session) error
	Execute(context.Context, *catalog.Session) error
	HealthCheck(context.Context) Health
}
