// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of media-mgmt-cli.
//
// media-mgmt-cli is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package audit records bucket mutations and retrievals as structured events.
package audit

import (
	"context"
	"time"

	"github.com/will-wright-eng/media-mgmt-cli/pkg/adapters"
	"github.com/will-wright-eng/media-mgmt-cli/pkg/retrieval"
)

// EventType represents the type of audit event
type EventType string

const (
	// EventObjectCreated indicates an object was uploaded
	EventObjectCreated EventType = "OBJECT_CREATED"

	// EventObjectDeleted indicates an object was deleted
	EventObjectDeleted EventType = "OBJECT_DELETED"

	// EventObjectAccessed indicates an object was downloaded, or a download failed
	EventObjectAccessed EventType = "OBJECT_ACCESSED"

	// EventRestoreRequested indicates an archived object is being restored
	EventRestoreRequested EventType = "RESTORE_REQUESTED"
)

// Result represents the outcome of an audited operation
type Result string

const (
	// ResultSuccess indicates the operation succeeded
	ResultSuccess Result = "SUCCESS"

	// ResultFailure indicates the operation failed
	ResultFailure Result = "FAILURE"

	// ResultPending indicates the operation continues in the background
	ResultPending Result = "PENDING"
)

// AuditEvent represents a single audit log entry
type AuditEvent struct {
	Timestamp        time.Time
	EventType        EventType
	Bucket           string
	Key              string
	Action           string
	Result           Result
	ErrorMessage     string
	RequestID        string
	BytesTransferred int64
	Metadata         map[string]any
}

// AuditLogger defines the interface for audit logging
type AuditLogger interface {
	// LogEvent logs a generic audit event
	LogEvent(ctx context.Context, event *AuditEvent) error

	// LogObjectMutation logs object create and delete operations
	LogObjectMutation(ctx context.Context, eventType EventType, bucket, key string, bytesTransferred int64, err error) error

	// LogRetrieval logs the outcome of a retrieval
	LogRetrieval(ctx context.Context, bucket string, outcome retrieval.Outcome) error
}

// Config holds configuration for the audit logger
type Config struct {
	// Enabled determines if audit logging is active
	Enabled bool

	// Logger receives the events. Defaults to a no-op logger.
	Logger adapters.Logger

	// IncludeMetadata determines if extra metadata should be logged
	IncludeMetadata bool

	// Now stamps events. Defaults to time.Now.
	Now func() time.Time
}

// DefaultAuditLogger writes events through an adapters.Logger with an
// "audit" marker field.
type DefaultAuditLogger struct {
	config *Config
	logger adapters.Logger
}

// NewAuditLogger creates a new audit logger with the specified configuration
func NewAuditLogger(config *Config) AuditLogger {
	if config == nil {
		config = &Config{Enabled: true}
	}
	logger := config.Logger
	if logger == nil {
		logger = adapters.NewNoOpLogger()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &DefaultAuditLogger{
		config: config,
		logger: logger.WithFields(adapters.Field{Key: "audit", Value: true}),
	}
}

// LogEvent logs a generic audit event
func (a *DefaultAuditLogger) LogEvent(ctx context.Context, event *AuditEvent) error {
	if !a.config.Enabled || event == nil {
		return nil
	}

	// Set timestamp if not already set
	if event.Timestamp.IsZero() {
		event.Timestamp = a.config.Now()
	}

	fields := []adapters.Field{
		{Key: "event_time", Value: event.Timestamp},
		{Key: "event_type", Value: string(event.EventType)},
		{Key: "action", Value: event.Action},
		{Key: "result", Value: string(event.Result)},
	}
	if event.Bucket != "" {
		fields = append(fields, adapters.Field{Key: "bucket", Value: event.Bucket})
	}
	if event.Key != "" {
		fields = append(fields, adapters.Field{Key: "key", Value: event.Key})
	}
	if event.ErrorMessage != "" {
		fields = append(fields, adapters.Field{Key: "error_message", Value: event.ErrorMessage})
	}
	if event.RequestID != "" {
		fields = append(fields, adapters.Field{Key: "request_id", Value: event.RequestID})
	}
	if event.BytesTransferred > 0 {
		fields = append(fields, adapters.Field{Key: "bytes_transferred", Value: event.BytesTransferred})
	}
	if a.config.IncludeMetadata && len(event.Metadata) > 0 {
		fields = append(fields, adapters.Field{Key: "metadata", Value: event.Metadata})
	}

	a.logger.Info(ctx, "audit event: "+event.Action, fields...)
	return nil
}

// LogObjectMutation logs object create and delete operations
func (a *DefaultAuditLogger) LogObjectMutation(ctx context.Context, eventType EventType, bucket, key string, bytesTransferred int64, err error) error {
	action := "upload"
	if eventType == EventObjectDeleted {
		action = "delete"
	}
	event := &AuditEvent{
		EventType:        eventType,
		Bucket:           bucket,
		Key:              key,
		Action:           action,
		Result:           ResultSuccess,
		BytesTransferred: bytesTransferred,
	}
	if err != nil {
		event.Result = ResultFailure
		event.ErrorMessage = err.Error()
	}
	return a.LogEvent(ctx, event)
}

// LogRetrieval maps a retrieval outcome onto an event: a download is an
// access, a started or running restore is a pending restore request, and a
// failure is a failed access carrying the reason.
func (a *DefaultAuditLogger) LogRetrieval(ctx context.Context, bucket string, outcome retrieval.Outcome) error {
	event := &AuditEvent{
		Bucket:    bucket,
		Key:       outcome.Key,
		Action:    "download",
		RequestID: outcome.RetrievalID,
		Metadata:  map[string]any{"outcome": outcome.Kind.String()},
	}
	switch outcome.Kind {
	case retrieval.OutcomeDownloaded:
		event.EventType = EventObjectAccessed
		event.Result = ResultSuccess
		event.BytesTransferred = outcome.Bytes
		if outcome.Polls > 0 {
			event.Metadata["polls"] = outcome.Polls
		}
	case retrieval.OutcomeRestoreInitiated, retrieval.OutcomeRestoreAlreadyInProgress:
		event.EventType = EventRestoreRequested
		event.Action = "restore"
		event.Result = ResultPending
	default:
		event.EventType = EventObjectAccessed
		event.Result = ResultFailure
		event.ErrorMessage = outcome.Reason
		if outcome.Err != nil {
			event.ErrorMessage = outcome.Reason + ": " + outcome.Err.Error()
		}
	}
	return a.LogEvent(ctx, event)
}

// NoOpAuditLogger discards all events.
type NoOpAuditLogger struct{}

// NewNoOpAuditLogger creates a new no-op audit logger.
func NewNoOpAuditLogger() AuditLogger {
	return &NoOpAuditLogger{}
}

func (n *NoOpAuditLogger) LogEvent(ctx context.Context, event *AuditEvent) error { return nil }
func (n *NoOpAuditLogger) LogObjectMutation(ctx context.Context, eventType EventType, bucket, key string, bytesTransferred int64, err error) error {
	return nil
}
func (n *NoOpAuditLogger) LogRetrieval(ctx context.Context, bucket string, outcome retrieval.Outcome) error {
	return nil
}
