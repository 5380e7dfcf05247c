package graphql

import (
	"context"
	"errors"
	"log/slog"

	"github.com/totegamma/catgraph/internal/domain"
)

// Error is the failure surfaced to API clients. graphql-go copies Extensions
// into the response, so clients can branch on the code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": e.Code,
	}
}

// toError converts a usecase failure into an *Error. Internal details are logged
// here and replaced by the operation name.
func toError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var internal domain.InternalError
	if errors.As(err, &internal) {
		slog.ErrorContext(
			ctx, "internal error",
			slog.String("error", err.Error()),
			slog.String("module", "graphql"),
		)
		return &Error{Code: internal.Code(), Message: internal.Op}
	}

	var coded domain.Coded
	if errors.As(err, &coded) {
		return &Error{Code: coded.Code(), Message: coded.Error()}
	}

	slog.ErrorContext(
		ctx, "unclassified error",
		slog.String("error", err.Error()),
		slog.String("module", "graphql"),
	)
	return &Error{Code: domain.CodeInternal, Message: err.Error()}
}
