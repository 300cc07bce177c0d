package fusion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"ca-assistant-be/pkg/llm"
	"ca-assistant-be/pkg/store"
)

// personaPrompt pins the completion model to Indian CA practice. Keep the
// formatting rules in sync with what the web client renders.
const personaPrompt = `You are a professional AI assistant specifically designed for Indian chartered accountants and primarily serves users in India. You provide accurate, comprehensive, and practical advice tailored to Indian tax laws, GST regulations, PAN requirements, and other India-specific accounting and compliance matters.

PERSONALITY & TONE:
- Professional yet friendly and approachable
- Comprehensive but well-structured (provide detailed information when needed)
- Use clear, practical language that CAs can quickly understand
- Supportive and helpful tone
- Focus on actionable advice

RESPONSE STYLE:
- Provide COMPREHENSIVE and INFORMATIVE responses (5-10 sentences for complex queries)
- Start with the direct answer immediately
- Use proper formatting with bullet points, numbered lists, and sections
- Highlight key dates, amounts, or requirements in **bold**
- Include relevant examples when helpful
- End with practical tips or next steps

CONTENT GUIDELINES:
- Base responses ONLY on the provided context
- If context is insufficient, say "Based on available information..." and provide what you can
- Focus on practical implications for CA practice
- Mention compliance deadlines when relevant
- Keep legal jargon minimal - use plain business language
- Provide step-by-step processes when applicable

RESPONSE FORMAT:
- Direct answer first (2-3 sentences maximum)
- Key points organized with proper formatting:
  • Use bullet points for lists
  • Use numbered lists for processes
  • Use **bold** for important information
  • Use SHORT section headers (2-4 words maximum)
- Include practical tips or next steps
- Brief disclaimer only when necessary

FORMATTING REQUIREMENTS:
- Use clean markdown formatting WITHOUT hashtags (#)
- Keep all headings SHORT and concise (maximum 4 words)
- Structure information clearly with brief subheadings
- Make responses scannable with good visual hierarchy
- Include specific details like amounts, dates, percentages
- Provide context and background when relevant
- NEVER use hashtag symbols (#) in responses

AVOID:
- Overly brief responses that lack detail
- Poor formatting without structure
- Excessive legal disclaimers
- Academic-style responses without practical value`

const maxPromptSources = 5

// Refiner rewrites a draft answer into the CA assistant voice via the
// completion capability. Refinement never fails the pipeline: callers keep
// the draft when the Outcome is failed.
type Refiner struct {
	llm    llm.LLMProvider
	logger *log.Logger
}

func NewRefiner(provider llm.LLMProvider, logger *log.Logger) *Refiner {
	return &Refiner{
		llm:    provider,
		logger: logger,
	}
}

// RefineInput is the composite context for one refinement call.
type RefineInput struct {
	Query           string
	Draft           string
	Citations       []store.SourceCitation
	Confidence      float64
	DocumentContext bool
}

// Refine asks the completion capability to rewrite the draft. A missing
// provider, transport error or blank completion all come back as a failed
// Outcome, never an error.
func (r *Refiner) Refine(ctx context.Context, input RefineInput) Outcome[string] {
	if r.llm == nil {
		return Failed[string]("refinement", errors.New("completion capability not configured"))
	}

	userPrompt := buildRefinementPrompt(input)

	return Guard("refinement", r.logger, func() (string, error) {
		refined, err := r.llm.Chat(ctx, []llm.Message{
			{Role: "system", Content: personaPrompt},
			{Role: "user", Content: userPrompt},
		})
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(refined) == "" {
			return "", errors.New("empty completion")
		}
		return refined, nil
	})
}

// buildRefinementPrompt assembles the user prompt: query, draft, numbered
// source list and a confidence note for the model to calibrate caveats.
func buildRefinementPrompt(input RefineInput) string {
	var sourcesInfo strings.Builder
	if len(input.Citations) > 0 {
		sourcesInfo.WriteString("\n\nSOURCE DOCUMENTS:\n")
		for i, citation := range input.Citations {
			if i == maxPromptSources {
				break
			}
			switch citation.Kind {
			case store.CitationUploadedDocument:
				fmt.Fprintf(&sourcesInfo, "%d. %s (Uploaded Document, Relevance: %.3f)\n", i+1, citation.Label, citation.RelevanceScore)
			case store.CitationWeb:
				fmt.Fprintf(&sourcesInfo, "%d. %s (Web: %s, Relevance: %.3f)\n", i+1, citation.Label, citation.Origin, citation.RelevanceScore)
			default:
				fmt.Fprintf(&sourcesInfo, "%d. %s (Knowledge Base: %s, Relevance: %.3f)\n", i+1, citation.Label, citation.Origin, citation.RelevanceScore)
			}
		}
	}

	confidenceNote := ""
	switch {
	case input.DocumentContext:
		confidenceNote = "\n\nNOTE: This response is based on uploaded document(s). Ensure accuracy by cross-referencing with current regulations."
	case input.Confidence < 0.3:
		confidenceNote = "\n\nNOTE: The confidence score for this response is relatively low, so please be cautious and recommend professional consultation where appropriate."
	case input.Confidence > 0.7:
		confidenceNote = "\n\nNOTE: This response has high confidence based on the source documents."
	}

	return fmt.Sprintf(`Refine this response for a chartered accountant. Make it comprehensive, well-formatted, and professional.

QUERY: %s

RESPONSE TO REFINE:
%s
%s
%s

INSTRUCTIONS:
1. Provide COMPREHENSIVE and DETAILED responses (5-10 sentences for complex queries)
2. Start with the direct answer immediately
3. Use proper markdown formatting with bullet points, numbered lists, and **bold** text
4. Structure information clearly with sections and headings when appropriate
5. Include specific details like amounts, dates, percentages, and processes
6. Provide step-by-step guidance when applicable
7. Add practical tips and next steps
8. Include relevant examples or scenarios when helpful
9. Use proper formatting to make the response scannable and professional
10. Keep disclaimers brief but include when necessary

FORMATTING REQUIREMENTS:
- Use **bold** for important information (amounts, dates, key terms)
- Use bullet points (•) for lists of items
- Use numbered lists (1., 2., 3.) for processes or steps
- Use sections with clear headings when covering multiple topics
- Include specific details and context
- Make the response visually appealing and easy to scan

Make this response comprehensive, well-structured, and immediately useful for a chartered accountant.`, input.Query, input.Draft, sourcesInfo.String(), confidenceNote)
}
