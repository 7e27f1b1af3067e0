package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rfp-backend/models"
	"rfp-backend/scoring"

	openai "github.com/sashabaranov/go-openai"
)

// AIService wraps the text-understanding collaborator. The engine treats it
// as a black box: structured extraction in, structured fields or prose out.
type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey, model string) *AIService {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &AIService{client: openai.NewClient(apiKey), model: model}
}

// ParsedRFP is the structured form of a natural-language procurement ask.
type ParsedRFP struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Budget       string           `json:"budget"`
	Deadline     *string          `json:"deadline"` // YYYY-MM-DD or null
	Items        []models.RFPItem `json:"items"`
	PaymentTerms *string          `json:"paymentTerms"`
	Warranty     *string          `json:"warranty"`
}

// ParsedProposal is the structured form of a vendor's reply. Nil fields mean
// the collaborator could not locate them; it is instructed to return null,
// never placeholder strings.
type ParsedProposal struct {
	TotalPrice      *float64        `json:"totalPrice"`
	DeliveryTime    *string         `json:"deliveryTime"`
	Terms           *string         `json:"terms"`
	Warranty        *string         `json:"warranty"`
	ItemBreakdown   json.RawMessage `json:"itemBreakdown"`
	AdditionalNotes *string         `json:"additionalNotes"`
}

// ParseRFP turns a natural-language procurement description into a draft RFP.
// Relative deadlines are resolved against now.
func (a *AIService) ParseRFP(ctx context.Context, input string, now time.Time) (*ParsedRFP, error) {
	today := now.Format("2006-01-02")

	prompt := fmt.Sprintf(`You are an assistant that parses procurement requests into structured RFP data.

Today's date is: %s

Given the following natural language description of a procurement need, extract and structure the information into a JSON object with these fields:
- title: A concise title for the RFP (string)
- description: Full description of what needs to be procured (string)
- budget: Budget as a STRING with currency symbol. Preserve a symbol the user gives ($, ₹, €, £, ¥); convert currency names to symbols; default to ₹ when only a number is given. Format is "SYMBOL+NUMBER" with no space, e.g. "₹50000".
- deadline: Deadline in YYYY-MM-DD format. Resolve relative dates ("within 30 days", "in 2 weeks", "in 3 months") against today's date; convert specific dates; use the last day of the month for month-only mentions. Return null if no deadline is mentioned.
- items: Array of items needed, each with { "name", "quantity", "specifications" } if mentioned
- paymentTerms: Payment terms if mentioned (e.g. "net 30"), otherwise null
- warranty: Warranty requirements if mentioned, otherwise null

User input: %q

Return ONLY valid JSON, no additional text. Do not wrap it in markdown code blocks.`, today, input)

	var out ParsedRFP
	if err := a.completeJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("parse RFP: %w", err)
	}
	return &out, nil
}

// ParseVendorResponse extracts structured proposal fields from an inbound
// message body.
func (a *AIService) ParseVendorResponse(ctx context.Context, body string, rfp *models.RFP) (*ParsedProposal, error) {
	prompt := fmt.Sprintf(`You are an assistant that extracts structured proposal data from vendor email responses.

RFP Details:
Title: %s
Description: %s
Items Requested: %s

Vendor Email Response:
%s

Extract the following and return as JSON:
- totalPrice: value after labels like "Total Price Quote:", "Total Price:", "Price:", "Quote:", "Total Cost:". Return ONLY the numeric value ("1 lakh" means 100000).
- deliveryTime: exact text after labels like "Delivery Timeframe:", "Delivery Time:", "Timeline:", "Delivery:" (e.g. "20 jan", "2 weeks", "30 days")
- terms: exact text or number after labels like "Payment Terms:", "Terms:"
- warranty: exact text after labels like "Warranty:", "Warranty Information:"
- itemBreakdown: array of items with individual prices if mentioned (empty array if not found)
- additionalNotes: any other important information

Rules: look in bullet points and "Label: Value" lines; extract dates as-is; be flexible with label variations. If a field is not found, set it to null (NOT "N/A" or an empty string).

Return ONLY valid JSON with exactly these field names: totalPrice, deliveryTime, terms, warranty, itemBreakdown, additionalNotes. Do not wrap it in markdown code blocks.`,
		rfp.Title, rfp.Description, string(rfp.Items), body)

	var out ParsedProposal
	if err := a.completeJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("parse vendor response: %w", err)
	}
	return &out, nil
}

// Recommend produces the free-text recommendation for an already-ranked
// proposal list. The output is attached to the comparison result verbatim.
func (a *AIService) Recommend(ctx context.Context, rfp *models.RFP, ranked []models.Proposal) (string, error) {
	symbol, _ := scoring.ParseBudget(rfp.Budget)

	var summaries strings.Builder
	for i, p := range ranked {
		price := "Not specified"
		if p.TotalPrice != nil {
			price = fmt.Sprintf("%s%.2f", symbol, *p.TotalPrice)
		}
		score := 0.0
		if p.Score != nil {
			score = *p.Score
		}
		fmt.Fprintf(&summaries, "Proposal %d (%s):\n- Price: %s\n- Delivery: %s\n- Terms: %s\n- Score: %.2f/100\n\n",
			i+1, p.Vendor.Name, price, textOr(p.DeliveryTime, "Not specified"), textOr(p.Terms, "Not specified"), score)
	}

	prompt := fmt.Sprintf(`You are a procurement expert. Analyze these vendor proposals and provide a recommendation.

RFP: %s
Budget: %s

Proposals:
%s
Provide a concise recommendation (2-3 sentences) on which vendor to choose and why. Consider price, delivery time, terms, and overall value.`,
		rfp.Title, rfp.Budget, summaries.String())

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recommendation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("recommendation: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// completeJSON runs a single completion and decodes its content as JSON,
// stripping markdown code fences the model sometimes adds anyway.
func (a *AIService) completeJSON(ctx context.Context, prompt string, out any) error {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("empty completion")
	}

	content := stripFences(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func textOr(s *string, def string) string {
	if s != nil && *s != "" {
		return *s
	}
	return def
}
