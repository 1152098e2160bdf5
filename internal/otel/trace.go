package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/Alturino/eats/internal/constants"
)

var Tracer = otel.Tracer(constants.AppMain)
