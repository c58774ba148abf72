package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanHop            = "navigation.hop"
	SpanRegistryAdd    = "registry.add"
	SpanRegistryEdit   = "registry.edit"
	SpanRegistryDelete = "registry.delete"
	SpanRegistryReload = "registry.reload"
)

// Attribute keys.
const (
	AttrInstanceName    = "instance.name"
	AttrInstanceOldName = "instance.old_name"
	AttrPatternKind     = "pattern.kind"
	AttrPlacement       = "instance.placement"
	AttrDirection       = "hop.direction"
	AttrCount           = "hop.count"
	AttrEffectiveCount  = "hop.effective_count"
	AttrFromPosition    = "hop.from"
	AttrToPosition      = "hop.to"
	AttrReportKind      = "hop.report"
	AttrMatchIndex      = "match.index"
	AttrMatchTotal      = "match.total"
	AttrSessionID       = "session.id"
)

// Event names.
const (
	EventSelectionResolved = "selection.resolved"
	EventAdjustedCount     = "count.adjusted"
	EventRolledBack        = "registry.rolled_back"
)

// RecordError marks span as failed with err. A nil err is a no-op.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
