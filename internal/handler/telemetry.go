package handler

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/vintrade/parts-market/internal/handler"

var (
	tracer trace.Tracer = otel.Tracer(scopeName)
	meter               = otel.Meter(scopeName)

	ordersPlaced metric.Int64Counter
	unitsSold    metric.Int64Counter
)

func init() {
	var err error
	ordersPlaced, err = meter.Int64Counter("checkout.orders.placed",
		metric.WithDescription("Order lines committed by successful checkouts"))
	if err != nil {
		otel.Handle(err)
	}
	unitsSold, err = meter.Int64Counter("checkout.units.sold",
		metric.WithDescription("Product units sold through checkout"))
	if err != nil {
		otel.Handle(err)
	}
}
