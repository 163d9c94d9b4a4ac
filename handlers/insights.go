package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/genai"

	"expense-tracker-go-be/middleware"
	"expense-tracker-go-be/models"
)

// AISuggestion is one spending tip returned by the model.
type AISuggestion struct {
	Category    string `json:"category"`
	Observation string `json:"observation"`
	Suggestion  string `json:"suggestion"`
}

// AIInsights sends the current month's category breakdown to Gemini and
// returns budgeting suggestions. Requires GEMINI_API_KEY.
func (h *Handler) AIInsights(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	if h.cfg.GeminiAPIKey == "" {
		return fail(c, fiber.StatusInternalServerError, "AI insights are not configured")
	}

	w := reportWindow(c)
	rows := []categoryTotal{}
	err := h.categoryTotalsQuery(userID, models.TypeExpense, w).
		Select(`categories.name, categories.icon, categories.color, categories.type,
			SUM(transactions.amount) AS total, COUNT(transactions.id) AS count`).
		Scan(&rows).Error
	if err != nil {
		return h.serverError(c, "Failed to fetch spending data", err)
	}
	if len(rows) == 0 {
		return ok(c, "No spending to analyze", fiber.Map{"suggestions": []AISuggestion{}})
	}

	// Construct the prompt
	var promptBuilder strings.Builder
	promptBuilder.WriteString("You are a personal finance coach. Analyze this month's spending by category.\n")
	promptBuilder.WriteString("Return a RAW JSON ARRAY of objects. Do NOT use markdown formatting.\n")
	promptBuilder.WriteString("Each object must have: 'category', 'observation' (one sentence), and 'suggestion' (one actionable tip).\n\n")
	for _, row := range rows {
		promptBuilder.WriteString(fmt.Sprintf(`{"category": "%s", "total": %.2f, "transactions": %d}`+"\n",
			row.Name, row.Total, row.Count))
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: h.cfg.GeminiAPIKey})
	if err != nil {
		log.Printf("Error initializing AI client: %v", err)
		return h.serverError(c, "Failed to init AI client", err)
	}

	resp, err := client.Models.GenerateContent(ctx, "gemini-1.5-flash", genai.Text(promptBuilder.String()), nil)
	if err != nil {
		log.Printf("Error during AI generation: %v", err)
		return h.serverError(c, "AI generation failed", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return fail(c, fiber.StatusInternalServerError, "Empty response from AI")
	}

	rawText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			rawText += part.Text
		}
	}

	// Clean Markdown if present (Gemini loves adding ```json ... ```)
	rawText = strings.TrimSpace(rawText)
	rawText = strings.TrimPrefix(rawText, "```json")
	rawText = strings.TrimPrefix(rawText, "```")
	rawText = strings.TrimSuffix(rawText, "```")

	var suggestions []AISuggestion
	if err := json.Unmarshal([]byte(rawText), &suggestions); err != nil {
		log.Printf("Error parsing AI response: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Failed to parse AI response")
	}

	return ok(c, "Insights generated", fiber.Map{
		"count":       len(suggestions),
		"suggestions": suggestions,
	})
}
