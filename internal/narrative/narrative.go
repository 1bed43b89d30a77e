// Package narrative turns a numeric revenue summary into a short prose
// insight, via Gemini when an API key is configured and via a deterministic
// template otherwise. Generation never fails outward: any collaborator
// error degrades to the template.
package narrative

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"revinsight/internal/analytics"
)

// Input is the flat summary handed to the generator: headline figures, top
// product names, and anomaly counts. The generator never reaches back into
// the store.
type Input struct {
	Today       float64
	MTD         float64
	YTD         float64
	RHI         float64
	TopProducts []analytics.ProductRanking
	Anomalies   []analytics.AnomalyRecord
}

// Generator produces narrative text for a revenue summary.
type Generator interface {
	Generate(ctx context.Context, in Input) string
}

const systemInstruction = "You are a financial analyst specializing in revenue analytics. " +
	"Provide concise, actionable insights in 2-3 sentences."

// Gemini generates narratives with the Gemini API, falling back to the
// template on any error. An empty API key disables the LLM path entirely.
type Gemini struct {
	apiKey string
	model  string
}

// NewGenerator returns the Gemini-backed generator. With an empty apiKey
// every call takes the template path.
func NewGenerator(apiKey, model string) *Gemini {
	return &Gemini{apiKey: apiKey, model: model}
}

func (g *Gemini) Generate(ctx context.Context, in Input) string {
	if g.apiKey == "" {
		return Fallback(in)
	}
	text, err := g.generate(ctx, in)
	if err != nil {
		log.Printf("narrative generation failed, using fallback: %v", err)
		return Fallback(in)
	}
	return text
}

func (g *Gemini) generate(ctx context.Context, in Input) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	spikes, drops := countDirections(in.Anomalies)
	names := topProductNames(in.TopProducts, 3)
	topLine := "N/A"
	if len(names) > 0 {
		topLine = strings.Join(names, ", ")
	}

	prompt := fmt.Sprintf(`Analyze this revenue data and provide a brief narrative summary:

- Today's revenue: $%.2f
- Month-to-date: $%.2f
- Year-to-date: $%.2f
- Revenue Health Index: %.1f%%
- Top products: %s
- Anomalies detected: %d (%d spikes, %d drops)

Provide 2-3 sentences highlighting key insights and trends.`,
		in.Today, in.MTD, in.YTD, in.RHI, topLine, len(in.Anomalies), spikes, drops)

	temperature := float32(0.2)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       &temperature,
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// Fallback builds a rule-based narrative when the LLM is unavailable.
func Fallback(in Input) string {
	var parts []string

	if in.MTD > 0 {
		parts = append(parts, fmt.Sprintf("Month-to-date revenue stands at $%s.", formatAmount(in.MTD)))
	}
	if in.Today > 0 {
		parts = append(parts, fmt.Sprintf("Today's revenue is $%s.", formatAmount(in.Today)))
	}
	if len(in.TopProducts) > 0 {
		top := in.TopProducts[0]
		parts = append(parts, fmt.Sprintf("Leading product is %s with $%s in sales.", top.Name, formatAmount(top.Revenue)))
	}

	if len(in.Anomalies) > 0 {
		spikes, drops := countDirections(in.Anomalies)
		switch {
		case spikes > 0 && drops > 0:
			parts = append(parts, fmt.Sprintf("%d anomalies detected (%d spikes, %d drops) requiring attention.", len(in.Anomalies), spikes, drops))
		case spikes > 0:
			parts = append(parts, fmt.Sprintf("%d revenue spikes detected indicating strong performance periods.", spikes))
		case drops > 0:
			parts = append(parts, fmt.Sprintf("%d revenue drops detected that may need investigation.", drops))
		}
	}

	switch {
	case in.RHI <= 0:
		// No index, no sentence. Keeps the empty-input message reachable.
	case in.RHI >= 70:
		parts = append(parts, fmt.Sprintf("Revenue Health Index at %.1f%% indicates strong overall performance.", in.RHI))
	case in.RHI >= 50:
		parts = append(parts, fmt.Sprintf("Revenue Health Index at %.1f%% shows moderate performance with room for improvement.", in.RHI))
	default:
		parts = append(parts, fmt.Sprintf("Revenue Health Index at %.1f%% suggests attention needed to improve key metrics.", in.RHI))
	}

	if len(parts) == 0 {
		return "Insufficient data for narrative generation."
	}
	return strings.Join(parts, " ")
}

func countDirections(anomalies []analytics.AnomalyRecord) (spikes, drops int) {
	for _, a := range anomalies {
		if a.Direction == analytics.DirectionSpike {
			spikes++
		} else {
			drops++
		}
	}
	return spikes, drops
}

func topProductNames(products []analytics.ProductRanking, n int) []string {
	names := make([]string, 0, n)
	for _, p := range products {
		if len(names) == n {
			break
		}
		names = append(names, p.Name)
	}
	return names
}

// formatAmount renders v with thousands separators, e.g. 12345.6 -> "12,345.60".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
