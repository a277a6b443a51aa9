package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/BihanDasgupta/CareerNodes/internal/ai"
	"github.com/BihanDasgupta/CareerNodes/internal/coerce"
	"github.com/BihanDasgupta/CareerNodes/internal/listing"
	"github.com/BihanDasgupta/CareerNodes/internal/utils"
)

type jsonGenerator interface {
	GenerateJSON(ctx context.Context, system, message string, schema *genai.Schema) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	systemInstruction = "You are a careful career advisor matching candidates to job and internship listings. " +
		"You only answer with JSON that follows the requested schema."

	attributesRule  = "- Also extract the listing's stated requirements into \"attributes\". Leave a field empty when the listing does not state it."
	attributesShape = `, "attributes": {"education": string, "min_gpa": number, "skills": [string], "work_mode": string, "schedule": string, "industry": string, "org_type": string, "timeline": string, "major": string}`
)

// Scorer rates profile/listing fit with a Gemini chat model.
type Scorer struct {
	generator         jsonGenerator
	logger            *zap.Logger
	extractAttributes bool
	maxLogLen         int
}

func NewScorer(generator jsonGenerator, logger *zap.Logger, extractAttributes bool, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator:         generator,
		logger:            logger,
		extractAttributes: extractAttributes,
		maxLogLen:         maxLogLength,
	}
}

func (s *Scorer) Name() string {
	return "gemini:" + s.generator.Model()
}

func (s *Scorer) Score(ctx context.Context, profileText, listingText string) (*ai.Assessment, error) {
	prompt := s.buildPrompt(profileText, listingText)

	s.logger.Debug("gemini score request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateJSON(ctx, systemInstruction, prompt, responseSchema(s.extractAttributes))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini score response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	if !s.extractAttributes {
		assessment.Attributes = nil
	}

	assessment.Raw = raw
	return assessment, nil
}

func (s *Scorer) buildPrompt(profileText, listingText string) string {
	rule, shape := "", ""
	if s.extractAttributes {
		rule, shape = attributesRule, attributesShape
	}

	replacer := strings.NewReplacer(
		"{{ATTRIBUTES_RULE}}", rule,
		"{{ATTRIBUTES_SHAPE}}", shape,
		"{{PROFILE_TEXT}}", strings.TrimSpace(profileText),
		"{{LISTING_TEXT}}", strings.TrimSpace(listingText),
	)
	return replacer.Replace(promptTemplate)
}

func responseSchema(withAttributes bool) *genai.Schema {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":            {Type: genai.TypeNumber},
			"requirements_met": {Type: genai.TypeBoolean},
			"reason":           {Type: genai.TypeString},
		},
		Required: []string{"score", "requirements_met", "reason"},
	}

	if withAttributes {
		text := &genai.Schema{Type: genai.TypeString}
		schema.Properties["attributes"] = &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"education": text,
				"min_gpa":   {Type: genai.TypeNumber},
				"skills":    {Type: genai.TypeArray, Items: text},
				"work_mode": text,
				"schedule":  text,
				"industry":  text,
				"org_type":  text,
				"timeline":  text,
				"major":     text,
			},
		}
	}

	return schema
}

// parseResponse is the single contract for model output: a JSON object whose
// score is a finite number in [0,1]. Anything else is ai.ErrMalformedResponse.
func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()

	var data map[string]any
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: empty object", ai.ErrMalformedResponse)
	}

	rawScore, ok := data["score"]
	if !ok {
		return nil, fmt.Errorf("%w: score is missing", ai.ErrMalformedResponse)
	}
	score := coerce.Float(rawScore)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, fmt.Errorf("%w: score %q is not a number", ai.ErrMalformedResponse, coerce.String(rawScore))
	}
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("%w: score %v is outside 0-1", ai.ErrMalformedResponse, score)
	}

	assessment := &ai.Assessment{
		Score:  score,
		Reason: coerce.String(data["reason"]),
	}

	if rawMet, ok := data["requirements_met"]; ok && rawMet != nil {
		met, ok := coerce.Bool(rawMet)
		if !ok {
			return nil, fmt.Errorf("%w: requirements_met %q is not a boolean", ai.ErrMalformedResponse, coerce.String(rawMet))
		}
		assessment.RequirementsMet = &met
	}

	if rawAttrs, ok := data["attributes"].(map[string]any); ok {
		attrs, err := decodeAttributes(rawAttrs)
		if err != nil {
			return nil, fmt.Errorf("%w: attributes: %v", ai.ErrMalformedResponse, err)
		}
		assessment.Attributes = attrs
	}

	return assessment, nil
}

func decodeAttributes(raw map[string]any) (*listing.Attributes, error) {
	if gpa, ok := raw["min_gpa"]; ok {
		value := coerce.Float(gpa)
		if math.IsNaN(value) || value <= 0 {
			delete(raw, "min_gpa")
		} else {
			raw["min_gpa"] = value
		}
	}

	var attrs listing.Attributes
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &attrs,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	return &attrs, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
