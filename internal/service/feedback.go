package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sharedcontext/core/logger"
	"github.com/dmitrymomot/sharedcontext/internal/model"
	"github.com/dmitrymomot/sharedcontext/internal/repository"
)

const (
	MaxFeedbackMessageLength  = 5000
	MaxFeedbackEndpointLength = 200
)

var (
	FeedbackCategories = []string{
		model.FeedbackBug,
		model.FeedbackFeature,
		model.FeedbackQuality,
		model.FeedbackUsability,
		model.FeedbackGeneral,
	}
	FeedbackSeverities = []string{model.SeverityLow, model.SeverityMedium, model.SeverityHigh}
)

// FeedbackInput is the payload of POST /feedback.
type FeedbackInput struct {
	Message  string         `json:"message"`
	Category string         `json:"category"`
	Severity string         `json:"severity"`
	Endpoint string         `json:"endpoint"`
	Context  map[string]any `json:"context"`
}

// FeedbackService accepts platform feedback from agents.
type FeedbackService struct {
	feedback repository.FeedbackRepository
	opts     options
}

func NewFeedbackService(feedback repository.FeedbackRepository, opts ...Option) *FeedbackService {
	return &FeedbackService{feedback: feedback, opts: newOptions(opts)}
}

// Submit validates and stores feedback with status "new".
func (s *FeedbackService) Submit(ctx context.Context, agentID string, in FeedbackInput) (*model.Feedback, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, invalid("message", "Message is required")
	}
	if err := tooLong("message", in.Message, MaxFeedbackMessageLength); err != nil {
		return nil, invalid("message", fmt.Sprintf("Message exceeds maximum length of %d characters", MaxFeedbackMessageLength))
	}
	if !slices.Contains(FeedbackCategories, in.Category) {
		return nil, invalid("category", fmt.Sprintf("Invalid category: %q. Must be one of: %s",
			in.Category, strings.Join(FeedbackCategories, ", ")))
	}
	if in.Severity != "" && !slices.Contains(FeedbackSeverities, in.Severity) {
		return nil, invalid("severity", fmt.Sprintf("Invalid severity: %q. Must be one of: %s",
			in.Severity, strings.Join(FeedbackSeverities, ", ")))
	}
	if err := tooLong("endpoint", in.Endpoint, MaxFeedbackEndpointLength); err != nil {
		return nil, invalid("endpoint", fmt.Sprintf("Endpoint exceeds maximum length of %d characters", MaxFeedbackEndpointLength))
	}

	f := &model.Feedback{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		Message:   in.Message,
		Category:  in.Category,
		Severity:  in.Severity,
		Endpoint:  in.Endpoint,
		Context:   in.Context,
		Status:    model.FeedbackStatusNew,
		CreatedAt: s.opts.now().UTC(),
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	s.opts.log.InfoContext(ctx, "feedback submitted",
		logger.Component("feedback"),
		logger.Event("feedback.submitted"),
		logger.AgentID(agentID),
		logger.Key("category", f.Category))
	return f, nil
}
