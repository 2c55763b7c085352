// Package operations wraps service operations with tracing, metrics, logging,
// panic recovery and transactions. Every application service delegates to it.
package operations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/internal/attr"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/observability"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrument carries what a service needs to run instrumented operations.
type Instrument struct {
	Service string
	Logger  *slog.Logger
	Metrics observability.OperationMetrics
	Tracer  trace.Tracer
	DB      *bun.DB
}

// Func is the generic signature for a service operation.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// TxFunc runs against a transaction, or against nil when no database is configured.
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

// errRollback aborts a transaction whose operation returned a domain failure.
var errRollback = errors.New("rollback on failure result")

// WithTelemetry wraps op with a span, attempt/duration/outcome metrics, logs and
// panic recovery.
func WithTelemetry[S any, F any](
	in *Instrument,
	ctx context.Context,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var span trace.Span
	if in.Tracer != nil {
		ctx, span = in.Tracer.Start(ctx, in.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if in.Metrics != nil {
		in.Metrics.RecordOperationAttempt(ctx, operationName, in.Service)
	}

	startTime := time.Now()
	defer func() {
		if in.Metrics != nil {
			in.Metrics.RecordOperationDuration(ctx, operationName, in.Service, time.Since(startTime))
		}
	}()

	logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if in.Metrics != nil {
				in.Metrics.RecordOperationFailure(ctx, operationName, in.Service)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if in.Metrics != nil {
			in.Metrics.RecordOperationFailure(ctx, operationName, in.Service)
		}
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	if result.IsFailure() {
		logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if in.Metrics != nil {
		in.Metrics.RecordOperationSuccess(ctx, operationName, in.Service)
	}

	return result, nil
}

// RunInTx runs fn inside a transaction. A failure result rolls the transaction
// back and is still returned to the caller without an error.
func RunInTx[S any, F any](in *Instrument, ctx context.Context, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	if in.DB == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := in.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr != nil {
			return txErr
		}
		if result.IsFailure() {
			return errRollback
		}
		return nil
	})
	if errors.Is(err, errRollback) {
		return result, nil
	}
	return result, err
}
