// Package observability exports pipeline traces and metrics with
// OpenTelemetry.
//
// One Config drives both exporters:
//
//	cfg := observability.DefaultConfig("seqkit")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewPipelineMetrics(observability.Meter("seqkit"))
//
// Each enumeration gets an EnumerationContext that owns its span:
//
//	ec := observability.NewEnumerationContext("orders", runID, metrics)
//	ctx, span := ec.Start(ctx)
//	defer ec.End(ctx, span, elements, code, err)
package observability
