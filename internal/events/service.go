package events

import (
	"context"
	"log/slog"
)

// Service runs the submission and query paths against injected stores.
type Service struct {
	Authorizer Authorizer
	Schema     *SubmissionSchema
	Writer     Writer
	Reader     Reader
	Logger     *slog.Logger
}

// NewService wires a Service from its stores.
func NewService(keys KeyStore, store EventStore, logger *slog.Logger) (*Service, error) {
	schema, err := NewSubmissionSchema()
	if err != nil {
		return nil, err
	}
	return &Service{
		Authorizer: Authorizer{Keys: keys},
		Schema:     schema,
		Writer:     Writer{Store: store},
		Reader:     Reader{Store: store},
		Logger:     resolveLogger(logger),
	}, nil
}

// Submit authenticates, parses, validates and stores one event. Checks run
// in a fixed order and the first failure wins.
func (s *Service) Submit(ctx context.Context, req Request) Response {
	src, err := s.Authorizer.Authorize(ctx, req)
	if err != nil {
		return s.fail(ctx, "submit", err)
	}

	body, err := ParseBody(req)
	if err != nil {
		return s.fail(ctx, "submit", err)
	}
	sub, err := s.Schema.Validate(body)
	if err != nil {
		return s.fail(ctx, "submit", err)
	}

	s.logger(ctx).DebugContext(ctx, "submitting event", "src", src, "type", sub.Type)
	rec, err := s.Writer.Write(ctx, src, sub)
	if err != nil {
		return s.fail(ctx, "submit", err)
	}
	s.logger(ctx).InfoContext(ctx, "event stored", "src", rec.Src, "type", rec.Type, "ts_day", rec.TsDay, "ts", rec.Ts)
	return Accepted()
}

// Query returns the events of the day bucket named in the query string.
func (s *Service) Query(ctx context.Context, req Request) Response {
	recs, err := s.Reader.Read(ctx, req.RawQueryString)
	if err != nil {
		return s.fail(ctx, "query", err)
	}
	resp, err := Records(recs)
	if err != nil {
		return s.fail(ctx, "query", err)
	}
	s.logger(ctx).DebugContext(ctx, "events queried", "count", len(recs))
	return resp
}

func (s *Service) fail(ctx context.Context, op string, err error) Response {
	kind := KindOf(err)
	if kind.ClientFault() {
		s.logger(ctx).InfoContext(ctx, "request rejected", "op", op, "kind", kind.String(), "error", err)
	} else {
		s.logger(ctx).ErrorContext(ctx, "request failed", "op", op, "kind", kind.String(), "error", err)
	}
	return Failure(err)
}

func (s *Service) logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return resolveLogger(s.Logger)
}

type loggerKey struct{}

// WithLogger returns a context whose Service log lines go to logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
