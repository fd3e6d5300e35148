package gud

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arbizirq/arbizirq/business/execution/app"
	"github.com/arbizirq/arbizirq/internal/apperror"
	"github.com/arbizirq/arbizirq/internal/httpclient"
)

// Ensure Engine implements RoutingEngine.
var _ app.RoutingEngine = (*Engine)(nil)

// Engine adapts the GUD trade API client to the RoutingEngine port.
type Engine struct {
	client *Client
}

// NewEngine creates a routing engine backed by the GUD trade API.
func NewEngine(client *Client) *Engine {
	return &Engine{client: client}
}

func toRequestBody(req app.RouteRequest) routeRequestBody {
	return routeRequestBody{
		Pair:        req.Pair.String(),
		SourceChain: req.SourceChain.String(),
		TargetChain: req.TargetChain.String(),
		NotionalUSD: req.NotionalUSD.String(),
	}
}

// Estimate previews the routing cost for a cross-chain trade.
func (e *Engine) Estimate(ctx context.Context, req app.RouteRequest) (app.RouteEstimate, error) {
	ctx, span := e.client.tracer.Start(ctx, "gud.estimate",
		trace.WithAttributes(
			attribute.String("pair", req.Pair.String()),
			attribute.String("source_chain", req.SourceChain.String()),
			attribute.String("target_chain", req.TargetChain.String()),
		),
	)
	defer span.End()

	if err := e.client.limiter.Wait(ctx); err != nil {
		return app.RouteEstimate{}, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext("gud rate limiter wait"))
	}

	var result estimateResponse
	resp, err := e.client.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "estimate")),
		httpclient.WithResponseErrorHandler(gudErrorHandler),
	).
		SetBody(toRequestBody(req)).
		SetResult(&result).
		Post(ctx, estimateEndpoint)

	if err != nil {
		span.RecordError(err)
		return app.RouteEstimate{}, apperror.External(apperror.CodeRouteEstimateFailed,
			"failed to estimate route", err)
	}
	if resp.IsError() {
		return app.RouteEstimate{}, apperror.New(apperror.CodeRouteEstimateFailed,
			apperror.WithContext(resp.String()),
			apperror.WithStatusCode(resp.StatusCode))
	}

	fee, err := decimal.NewFromString(result.FeeUSD)
	if err != nil {
		return app.RouteEstimate{}, apperror.Validation(apperror.CodeRouteEstimateFailed,
			"feeUsd: "+result.FeeUSD)
	}

	return app.RouteEstimate{FeeUSD: fee, EtaSeconds: result.EtaSeconds}, nil
}

// Build constructs an executable route plan.
func (e *Engine) Build(ctx context.Context, req app.RouteRequest) (app.RoutePlan, error) {
	ctx, span := e.client.tracer.Start(ctx, "gud.build",
		trace.WithAttributes(
			attribute.String("pair", req.Pair.String()),
			attribute.String("source_chain", req.SourceChain.String()),
			attribute.String("target_chain", req.TargetChain.String()),
		),
	)
	defer span.End()

	if err := e.client.limiter.Wait(ctx); err != nil {
		return app.RoutePlan{}, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext("gud rate limiter wait"))
	}

	var result buildResponse
	resp, err := e.client.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "build")),
		httpclient.WithResponseErrorHandler(gudErrorHandler),
	).
		SetBody(toRequestBody(req)).
		SetResult(&result).
		Post(ctx, buildEndpoint)

	if err != nil {
		span.RecordError(err)
		return app.RoutePlan{}, apperror.External(apperror.CodeRouteBuildFailed,
			"failed to build route", err)
	}
	if resp.IsError() {
		return app.RoutePlan{}, apperror.New(apperror.CodeRouteBuildFailed,
			apperror.WithContext(resp.String()),
			apperror.WithStatusCode(resp.StatusCode))
	}
	if result.RouteID == "" {
		return app.RoutePlan{}, apperror.New(apperror.CodeRouteBuildFailed,
			apperror.WithContext("empty route id in build response"))
	}

	return app.RoutePlan{ID: result.RouteID, CallData: result.CallData}, nil
}

// Submit dispatches a built route and returns the settlement reference.
func (e *Engine) Submit(ctx context.Context, plan app.RoutePlan) (string, error) {
	ctx, span := e.client.tracer.Start(ctx, "gud.submit",
		trace.WithAttributes(attribute.String("route_id", plan.ID)),
	)
	defer span.End()

	if err := e.client.limiter.Wait(ctx); err != nil {
		return "", apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext("gud rate limiter wait"))
	}

	body := map[string]string{
		"routeId":  plan.ID,
		"callData": plan.CallData,
	}

	var result submitResponse
	resp, err := e.client.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "submit")),
		httpclient.WithResponseErrorHandler(gudErrorHandler),
	).
		SetBody(body).
		SetResult(&result).
		Post(ctx, submitEndpoint)

	if err != nil {
		span.RecordError(err)
		return "", apperror.External(apperror.CodeRouteSubmitFailed,
			"failed to submit route", err)
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeRouteSubmitFailed,
			apperror.WithContext(resp.String()),
			apperror.WithStatusCode(resp.StatusCode))
	}
	if result.Ref == "" {
		return "", apperror.New(apperror.CodeRouteSubmitFailed,
			apperror.WithContext("empty ref in submit response"))
	}

	e.client.logger.Info(ctx, "route submitted",
		"route_id", plan.ID, "ref", result.Ref)

	return result.Ref, nil
}

// Settlement reports the current state of a submitted route.
func (e *Engine) Settlement(ctx context.Context, ref string) (app.SettlementState, error) {
	ctx, span := e.client.tracer.Start(ctx, "gud.settlement",
		trace.WithAttributes(attribute.String("ref", ref)),
	)
	defer span.End()

	var result settlementResponse
	resp, err := e.client.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "settlement")),
		httpclient.WithResponseErrorHandler(gudErrorHandler),
	).
		SetQueryParam("ref", ref).
		SetResult(&result).
		Get(ctx, settlementEndpoint)

	if err != nil {
		span.RecordError(err)
		return "", apperror.External(apperror.CodeSettlementFailed,
			"failed to fetch settlement status", err)
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeSettlementFailed,
			apperror.WithContext(resp.String()),
			apperror.WithStatusCode(resp.StatusCode))
	}

	switch result.Status {
	case "pending", "in_flight":
		return app.SettlementPending, nil
	case "settled", "completed":
		return app.SettlementSettled, nil
	case "failed", "reverted":
		return app.SettlementFailed, nil
	default:
		return "", apperror.New(apperror.CodeSettlementFailed,
			apperror.WithContext("unknown settlement status: "+result.Status))
	}
}
