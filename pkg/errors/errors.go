package errors

import "fmt"

// Error codes
const (
	CodeBotError   = "BOT_ERROR"
	CodeFeed       = "FEED_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeStorage    = "STORAGE_ERROR"
	CodeService    = "SERVICE_ERROR"
	CodeDispatch   = "DISPATCH_ERROR"
	CodeValidation = "VALIDATION_ERROR"
)

type BotError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *BotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BotError) Unwrap() error {
	return e.Cause
}

func NewBotError(message, code string, statusCode int, context map[string]any) *BotError {
	return &BotError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *BotError) WithCause(cause error) *BotError {
	e.Cause = cause
	return e
}

// FeedError covers transient failures against the public world-data feeds
// (network errors, timeouts, unexpected HTTP status).
type FeedError struct {
	*BotError
	Feed string
}

func NewFeedError(message, feed string, statusCode int, cause error) *FeedError {
	return &FeedError{
		BotError: &BotError{
			Message:    message,
			Code:       CodeFeed,
			StatusCode: statusCode,
			Context: map[string]any{
				"feed": feed,
			},
			Cause: cause,
		},
		Feed: feed,
	}
}

// ParseError signals that a whole payload could not be interpreted, e.g. the
// scraped page no longer contains a recognizable conquest table. Individual
// malformed rows are skipped, not raised.
type ParseError struct {
	*BotError
	Unit       string
	RowsFailed int
}

func NewParseError(message, unit string, rowsFailed int) *ParseError {
	return &ParseError{
		BotError: &BotError{
			Message: message,
			Code:    CodeParse,
			Context: map[string]any{
				"unit":        unit,
				"rows_failed": rowsFailed,
			},
		},
		Unit:       unit,
		RowsFailed: rowsFailed,
	}
}

type StorageError struct {
	*BotError
	Operation string
	Path      string
}

func NewStorageError(message, operation, path string, cause error) *StorageError {
	return &StorageError{
		BotError: &BotError{
			Message: message,
			Code:    CodeStorage,
			Context: map[string]any{
				"operation": operation,
				"path":      path,
			},
			Cause: cause,
		},
		Operation: operation,
		Path:      path,
	}
}

type ServiceError struct {
	*BotError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		BotError: &BotError{
			Message: message,
			Code:    CodeService,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// DispatchError wraps a failed channel send. It is logged per event and never
// aborts the remaining sends of a batch.
type DispatchError struct {
	*BotError
	ChannelID string
}

func NewDispatchError(message, channelID string, cause error) *DispatchError {
	return &DispatchError{
		BotError: &BotError{
			Message: message,
			Code:    CodeDispatch,
			Context: map[string]any{
				"channel_id": channelID,
			},
			Cause: cause,
		},
		ChannelID: channelID,
	}
}
