package service

import (
	"fmt"
	"strings"
)

const (
	// DefaultSeedMessage opens a conversation when the caller gives none.
	DefaultSeedMessage = "Please introduce this recipe and help me get started."
	// NoRecipeContext stands in for threads that never had a recipe bound.
	NoRecipeContext = "no recipe provided"

	visionSystemPrompt = "You are a cooking assistant. Identify the main food ingredients in the image. " +
		"Return ONLY a comma-separated list of ingredients (e.g. 'chicken, peppers, onion'). " +
		"ignore any other thing other than food like kitchen utensils or any other background item that is not food."
	visionUserPrompt = "What ingredients are in this image?"
)

const chefSystemPrompt = `You are SnapCook, a friendly, encouraging, Michelin-star sous-chef.

YOUR CURRENT TASK:
The user is cooking the following recipe. Guide them through it step-by-step.

RECIPE CONTEXT:
%s

GUIDELINES:
1. If this is the start of the conversation, welcome them and summarize the first step.
2. Keep answers concise (2-3 sentences max) unless asked for details.
3. If the user asks something unrelated to cooking, politely steer them back to the recipe.
4. Be encouraging! Use emojis like 🍳, 👨‍🍳, 🔥.
`

// ChefSystemPrompt renders the assistant persona around a recipe context.
func ChefSystemPrompt(recipeContext string) string {
	if recipeContext == "" {
		recipeContext = NoRecipeContext
	}
	return fmt.Sprintf(chefSystemPrompt, recipeContext)
}

// RecipeContext is the text bound to a thread when cooking starts.
func RecipeContext(title, instructions string) string {
	return fmt.Sprintf("Title: %s\nInstructions: %s", title, instructions)
}

// SplitIngredients splits a comma separated list, trimming each entry and
// dropping empty ones.
func SplitIngredients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
