package llm

import "context"

// Purpose labels recorded with every logged call.
const (
	PurposeQuestions = "question-gen"
	PurposePreview   = "preview"
	PurposeUnknown   = "unknown"
)

type purposeKey struct{}

// WithPurpose labels the calls made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// DefaultPurpose labels ctx unless a caller further up already did.
func DefaultPurpose(ctx context.Context, purpose string) context.Context {
	if _, ok := ctx.Value(purposeKey{}).(string); ok {
		return ctx
	}
	return WithPurpose(ctx, purpose)
}

// PurposeFrom returns the label of ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return PurposeUnknown
}
