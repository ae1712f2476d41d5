package platform

import (
	"github.com/dmitrymomot/sharedcontext/internal/service"
	"github.com/dmitrymomot/sharedcontext/middleware"
)

var (
	registerSchema = middleware.BodySchema{
		"displayName": {Type: middleware.TypeString, Required: true, MaxLength: service.MaxDisplayNameLength},
		"description": {Type: middleware.TypeString, MaxLength: service.MaxDescriptionLength},
	}

	createContributionSchema = middleware.BodySchema{
		"claim":         {Type: middleware.TypeString, Required: true, MaxLength: service.MaxClaimLength},
		"reasoning":     {Type: middleware.TypeString, MaxLength: service.MaxTextLength},
		"applicability": {Type: middleware.TypeString, MaxLength: service.MaxTextLength},
		"limitations":   {Type: middleware.TypeString, MaxLength: service.MaxTextLength},
		"confidence":    {Type: middleware.TypeNumber, Required: true, Min: middleware.Bound(0), Max: middleware.Bound(1)},
		"domainTags":    tagsField,
	}

	updateContributionSchema = middleware.BodySchema{
		"claim":         {Type: middleware.TypeString, MaxLength: service.MaxClaimLength},
		"reasoning":     {Type: middleware.TypeString, MaxLength: service.MaxTextLength},
		"applicability": {Type: middleware.TypeString, MaxLength: service.MaxTextLength},
		"limitations":   {Type: middleware.TypeString, MaxLength: service.MaxTextLength},
		"confidence":    {Type: middleware.TypeNumber, Min: middleware.Bound(0), Max: middleware.Bound(1)},
		"domainTags":    tagsField,
	}

	querySchema = middleware.BodySchema{
		"query":         {Type: middleware.TypeString, Required: true, MaxLength: service.MaxQueryLength},
		"maxResults":    {Type: middleware.TypeNumber, Min: middleware.Bound(1), Max: middleware.Bound(service.MaxResultsLimit)},
		"minConfidence": {Type: middleware.TypeNumber, Min: middleware.Bound(0), Max: middleware.Bound(1)},
		"domainTags":    tagsField,
	}

	feedbackSchema = middleware.BodySchema{
		"message":  {Type: middleware.TypeString, Required: true, MaxLength: service.MaxFeedbackMessageLength},
		"category": {Type: middleware.TypeString, Required: true, Enum: service.FeedbackCategories},
		"severity": {Type: middleware.TypeString, Enum: service.FeedbackSeverities},
		"endpoint": {Type: middleware.TypeString, MaxLength: service.MaxFeedbackEndpointLength},
		"context":  {Type: middleware.TypeObject},
	}

	tagsField = middleware.FieldSchema{
		Type:      middleware.TypeArray,
		MaxLength: service.MaxDomainTags,
		Items:     &middleware.FieldSchema{Type: middleware.TypeString, MaxLength: service.MaxDomainTagLength},
	}
)
