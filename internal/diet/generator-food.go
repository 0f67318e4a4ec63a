package diet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// knownFoodTags are the restriction tags the catalog understands.
var knownFoodTags = []string{"meat", "fish", "animal_product", "lactose", "gluten", "nuts"}

// foodGenerator fills in catalog entries using the OpenAI API.
type foodGenerator struct {
	client openai.Client
}

// newFoodGenerator creates a new food generator.
func newFoodGenerator(openaiAPIKey string) *foodGenerator {
	client := openai.NewClient(option.WithAPIKey(openaiAPIKey))
	return &foodGenerator{client: client}
}

// generatedFood is the JSON shape requested from the model.
type generatedFood struct {
	Key                 string   `json:"key"`
	Name                string   `json:"name"`
	ProteinG            float64  `json:"protein_g"`
	CarbG               float64  `json:"carb_g"`
	FatG                float64  `json:"fat_g"`
	Tags                []string `json:"tags"`
	DescriptionMarkdown string   `json:"description_markdown"`
}

// foodJSONSchema constrains the model output to the catalog entry shape.
func foodJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key":       map[string]any{"type": "string", "description": "snake_case identifier"},
			"name":      map[string]any{"type": "string"},
			"protein_g": map[string]any{"type": "number", "description": "grams of protein per 100 g"},
			"carb_g":    map[string]any{"type": "number", "description": "grams of carbohydrate per 100 g"},
			"fat_g":     map[string]any{"type": "number", "description": "grams of fat per 100 g"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": knownFoodTags},
			},
			"description_markdown": map[string]any{"type": "string"},
		},
		"required": []string{
			"key", "name", "protein_g", "carb_g", "fat_g", "tags", "description_markdown",
		},
		"additionalProperties": false,
	}
}

// Generate produces a catalog entry for the named food in the given category.
func (fg *foodGenerator) Generate(ctx context.Context, name string, category Category) (Food, error) {
	if name == "" {
		return Food{}, errors.New("food name cannot be empty")
	}

	prompt := fmt.Sprintf(`Generate a nutrition catalog entry for "%s" in the %s category.
Provide realistic macronutrient values in grams per 100 g of the edible food.
Tag the food with every applicable dietary tag from: %s.
Write a short markdown description with this structure:

## Overview
[One or two sentences describing the food]

## Preparation
[2-3 bullet points on common preparation]

Keep the description under 80 words.`, name, category, strings.Join(knownFoodTags, ", "))

	chat, err := fg.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "food",
					Description: openai.String("Nutrition facts for one catalog food"),
					Schema:      foodJSONSchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
		Model: openai.ChatModelGPT4o2024_08_06,
	})
	if err != nil {
		return Food{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Food{}, errors.New("chat completion returned no choices")
	}

	var generated generatedFood
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &generated); err != nil {
		return Food{}, fmt.Errorf("parse food response: %w", err)
	}

	food := Food{
		Key:      generated.Key,
		Name:     generated.Name,
		Category: category,
		Per100g: Macros{
			ProteinG: generated.ProteinG,
			CarbG:    generated.CarbG,
			FatG:     generated.FatG,
		},
		Tags:                generated.Tags,
		DescriptionMarkdown: generated.DescriptionMarkdown,
	}
	if err = validateGeneratedFood(food); err != nil {
		return Food{}, fmt.Errorf("validate generated food: %w", err)
	}
	return food, nil
}

// validateGeneratedFood rejects incomplete or implausible model output.
func validateGeneratedFood(food Food) error {
	if food.Key == "" || food.Name == "" {
		return errors.New("generated food is missing required fields")
	}
	if food.Per100g.ProteinG < 0 || food.Per100g.CarbG < 0 || food.Per100g.FatG < 0 {
		return errors.New("generated food has negative macros")
	}
	if food.Per100g.Calories() <= 0 {
		return errors.New("generated food has no energy content")
	}
	for _, tag := range food.Tags {
		if !slices.Contains(knownFoodTags, tag) {
			return fmt.Errorf("invalid food tag %q", tag)
		}
	}
	return nil
}
