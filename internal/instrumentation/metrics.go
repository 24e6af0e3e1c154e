package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrTool      = "tool"
	attrSource    = "source"
	attrCalendar  = "calendar"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Scheduling engine metrics
	storeOperationsTotal   metric.Int64Counter
	storeOperationDuration metric.Float64Histogram
	eventsLoadedTotal      metric.Int64Counter
	activeProposals        metric.Int64UpDownCounter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	m.storeOperationsTotal, err = meter.Int64Counter(
		"calendar_store_operations_total",
		metric.WithDescription("Total number of calendar store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_store_operations_total counter: %w", err)
	}

	m.storeOperationDuration, err = meter.Float64Histogram(
		"calendar_store_operation_duration_seconds",
		metric.WithDescription("Calendar store operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_store_operation_duration_seconds histogram: %w", err)
	}

	m.eventsLoadedTotal, err = meter.Int64Counter(
		"calendar_events_loaded_total",
		metric.WithDescription("Total number of events loaded into calendars"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_events_loaded_total counter: %w", err)
	}

	m.activeProposals, err = meter.Int64UpDownCounter(
		"calendar_active_proposals",
		metric.WithDescription("Number of staged, uncommitted proposals"),
		metric.WithUnit("{proposal}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_active_proposals gauge: %w", err)
	}

	return m, nil
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "get_free_busy", "commit_proposal")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordStoreOperation records a scheduling engine operation with its type,
// status, and duration. Operation should be one of the Operation* constants.
func (m *Metrics) RecordStoreOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.storeOperationsTotal == nil || m.storeOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.storeOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.storeOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordEventsLoaded records a batch of events entering a calendar.
// Source should be one of the Source* constants. The calendar name is only
// attached as a label when detailed labels are enabled.
func (m *Metrics) RecordEventsLoaded(ctx context.Context, source, calendarName string, count int) {
	if m.eventsLoadedTotal == nil || count <= 0 {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrSource, source),
	}
	if m.detailedLabels && calendarName != "" {
		attrs = append(attrs, attribute.String(attrCalendar, calendarName))
	}

	m.eventsLoadedTotal.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// IncrementActiveProposals increments the staged proposal gauge.
func (m *Metrics) IncrementActiveProposals(ctx context.Context) {
	if m.activeProposals == nil {
		return
	}
	m.activeProposals.Add(ctx, 1)
}

// DecrementActiveProposals decrements the staged proposal gauge.
func (m *Metrics) DecrementActiveProposals(ctx context.Context) {
	if m.activeProposals == nil {
		return
	}
	m.activeProposals.Add(ctx, -1)
}
