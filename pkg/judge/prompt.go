package judge

import (
	"fmt"
	"strings"
)

// dialDescription maps a [0,1] style dial onto a natural-language instruction,
// interpolating between the two extremes in five steps.
func dialDescription(value float64, lowDesc, highDesc string) string {
	switch {
	case value < 0.2:
		return fmt.Sprintf("Extreme focus on %s.", lowDesc)
	case value < 0.4:
		return fmt.Sprintf("Prefer %s.", lowDesc)
	case value < 0.6:
		return fmt.Sprintf("Balanced between %s and %s.", lowDesc, highDesc)
	case value < 0.8:
		return fmt.Sprintf("Prefer %s.", highDesc)
	default:
		return fmt.Sprintf("Extreme focus on %s.", highDesc)
	}
}

func systemPrompt() string {
	return "You are an advanced AI Grading Agent utilizing Thesis-Antithesis-Synthesis logic. " +
		"You output strictly structured JSON."
}

func buildUserPrompt(request Request) string {
	strictness := dialDescription(request.Strictness,
		"semantic essence and core concept",
		"strict technical terminology and formal rigor")
	tone := dialDescription(request.Tone,
		"constructive and supportive coaching",
		"rigorous and sharp academic criticism")
	audience := dialDescription(request.Audience,
		"layman terms and simple analogies",
		"advanced professional depth and complex synthesis")

	subject := request.Subject
	if subject == "" {
		subject = "General"
	}

	builder := strings.Builder{}
	builder.WriteString("[CRITICAL CONSTRAINT: ADAPTIVE GRADING]\n")
	fmt.Fprintf(&builder, "- CURRENT STRICTNESS: %.2f / 1.0\n", request.Strictness)
	builder.WriteString("- IF Strictness Level is HIGH (e.g., 'strict technical terminology'): Penalize heavily for using 'common words' instead of scientific terms.\n")
	builder.WriteString("- IF Strictness Level is LOW (semantic essence): You MUST award 1.0 if the student understands the general idea, even if they use \"layman terms\" or skip specific component names.\n")
	builder.WriteString("- DO NOT penalize for missing technical jargon unless Strictness is HIGH.\n")
	builder.WriteString("- NO GHOST CRITICISM: Do NOT suggest using a term if the student has ALREADY used it in their answer.\n")
	builder.WriteString("- IF Tone is 'rigorous academic criticism': Be blunt and point out every minor error.\n")
	builder.WriteString("- IF Audience is 'advanced professional': Do not give credit for superficial explanations.\n")

	builder.WriteString("\n[Context]\n")
	fmt.Fprintf(&builder, "Subject Domain: %s\n", subject)
	fmt.Fprintf(&builder, "Required Strictness: %s  <-- YOU MUST STRICTLY FOLLOW THIS SCALE\n", strictness)
	fmt.Fprintf(&builder, "Target Tone: %s\n", tone)
	fmt.Fprintf(&builder, "Target Audience: %s\n", audience)
	if len(request.FocusAreas) > 0 {
		fmt.Fprintf(&builder, "Core Evaluation Focus: %s.\n", strings.Join(request.FocusAreas, ", "))
	}

	builder.WriteString("\n[Input Data]\n")
	fmt.Fprintf(&builder, "Question: %s\n", request.Question)
	builder.WriteString("Rubric Points:\n")
	for _, point := range request.RubricPoints {
		fmt.Fprintf(&builder, "- Criteria: %s\n", point)
	}
	fmt.Fprintf(&builder, "Student Answer: %q\n", request.Answer)

	builder.WriteString("\n[Task 1: Dialectical Evaluation]\n")
	builder.WriteString("For EACH rubric point, perform the following internal debate:\n")
	builder.WriteString("1. THESIS: Does the student mention the core concept? (Yes/No + Evidence)\n")
	fmt.Fprintf(&builder, "2. ANTITHESIS: Evaluate accuracy vs. the %.2f strictness. Is there a REAL logical flaw, or just a lack of jargon? (Only penalize jargon if Strictness > 0.7)\n", request.Strictness)
	builder.WriteString("3. SYNTHESIS: Final decision. If the idea is correct and Strictness is LOW, the coefficient MUST be 1.0.\n")

	builder.WriteString("\n[Task 2: Adaptive Planning]\n")
	builder.WriteString("Based on the gaps identified in the evaluation, generate a brief, personalized study plan.\n")

	builder.WriteString("\n[Output Constraints]\n")
	builder.WriteString("- Return ONLY valid JSON.\n")
	builder.WriteString("- Coefficient MUST be 0.0 (Miss), 0.5 (Partial), or 1.0 (Full).\n")
	builder.WriteString("- score_coefficient: Must reflect the Synthesis verdict.\n")

	builder.WriteString("\n[JSON Schema]\n")
	builder.WriteString(`{
  "breakdown": [
    {
      "rubric_point": "text",
      "evidence_found": "quote from student",
      "score_coefficient": 0.0,
      "status": "match/partial/missed",
      "reasoning_log": "**THESIS:** ...\n**ANTITHESIS:** ...\n**SYNTHESIS:** ...",
      "comment": "Feedback matching the target tone. If strictness is low, be encouraging."
    }
  ],
  "overall_feedback": "High level summary.",
  "study_plan": {
    "identified_gap": "Main weakness identified",
    "recommended_focus": "Specific topic to review",
    "action_item": "One concrete exercise or reading suggestion"
  }
}`)

	return builder.String()
}
