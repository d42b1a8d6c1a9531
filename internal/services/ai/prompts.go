package ai

import (
	"fmt"
	"strings"
	"time"
)

// EmptyHistoryMarker stands in for the history on a user's first compression
const EmptyHistoryMarker = "(Empty - This is the start of the archive)"

const mergeSystemPrompt = `You are a meticulous biographer and data archivist.
Your task is to maintain a running "Compressed History" of a user's life based on their activity boards.

You will be given:
1. The CURRENT Compressed History (a summary of their past).
2. A NEW BATCH of activity boards (recent events).

Your Goal:
Create an UPDATED Compressed History that seamlessly integrates the new events into the narrative.

Rules:
- Preserve important long-term facts from the Current History.
- Summarize the New Batch specific details (dates, key achievements) into the narrative.
- Maintain a chronological flow.
- Keep the tone professional but personal (like a life log).
- The total output should be dense and information-rich, suitable for future analysis.
- Do NOT lose key milestones.
`

// MergePrompt builds the prompt that folds a batch of boards into the running
// history. boardsJSON must already be indented JSON.
func MergePrompt(history, boardsJSON string) Prompt {
	if history == "" {
		history = EmptyHistoryMarker
	}

	var b strings.Builder
	b.WriteString("\n=== CURRENT COMPRESSED HISTORY ===\n")
	b.WriteString(history)
	b.WriteString("\n\n=== NEW BATCH OF BOARDS (Top is most recent usually, but treat as a set) ===\n")
	b.WriteString(boardsJSON)
	b.WriteString("\n\n=== INSTRUCTION ===\n")
	b.WriteString("Generate the UPDATED Compressed History now. Return ONLY the text of the history.\n")

	return Prompt{System: mergeSystemPrompt, User: b.String()}
}

const analysisSystemTemplate = `You are an enthusiastic personal life coach analyzing someone's activity boards. Your job is to make them feel proud of what they've accomplished and excited about their progress.
%s

Respond with a JSON object in this format:
{
  "fact1": "An exciting discovery about their recent activities (with specific numbers)",
  "fact2": "Another interesting pattern or achievement (with specific numbers)",
  "analysis": "A warm, encouraging 2-3 sentence message directly to them"
}

Guidelines:
- Write in second person ("you", "your") - never third person
- Be enthusiastic and positive about their activities
- Point out interesting patterns or themes in what they're documenting
- Make specific references to their actual data (dates, tags, descriptions)
- Sound like a supportive friend, not a robot
- If History is provided, mention how their recent work connects to their larger journey (e.g., "You're continuing your streak in...")

CRITICAL ANTI-HALLUCINATION RULES:
1. Do NOT invent concepts, projects, or activities that are not explicitly in the provided JSON data.
2. If the data is too sparse (tags only, no descriptions) or empty to form a patterned insight, generally admit "I see you were active, but I need more details to give specific praise" in the analysis.
3. If there are no distinctive facts for "fact1" or "fact2", return "Not enough data" for those fields. Do NOT fake a statistic.
4. Only reference specific dates or tags if they actually exist in the input.`

const analysisUserTemplate = `Look at what this person has been documenting on their boards and give them some exciting insights:

%s

Make them feel good about their activities! Focus on:
- What they've been working on or experiencing
- Any cool patterns or themes you notice
- How active they've been
- Specific accomplishments or moments they've captured

Be warm, personal, and enthusiastic. Use "you" and "your" throughout.
Return ONLY valid JSON, no markdown or extra text.`

// AnalysisPrompt builds the life-coach prompt. A non-empty history is attached
// to the system message as read-only context.
func AnalysisPrompt(boardsJSON, history string) Prompt {
	historyContext := ""
	if history != "" {
		historyContext = "\n=== USER'S LONG-TERM HISTORY (Context only) ===\n" + history +
			"\n\n(Use this history to understand their long-term growth, but focus your specific feedback on the NEW ACTIVITY BOARDS below.)\n"
	}

	return Prompt{
		System: fmt.Sprintf(analysisSystemTemplate, historyContext),
		User:   fmt.Sprintf(analysisUserTemplate, boardsJSON),
	}
}

const queryParserSystemTemplate = `You are a precise query parser. Your job is to extract search filters from the user's natural language query.
Current Date: %s

Return a JSON object with these fields:
{
  "startDate": "YYYY-MM-DD" or null,
  "endDate": "YYYY-MM-DD" or null,
  "tags": ["tag1", "tag2"] (empty array if none),
  "keywords": ["word1", "word2"] (empty array if none),
  "daysOfWeek": [0, 1, ...] (integers 0=Sun to 6=Sat, empty if none),
  "hasImage": boolean or null (true/false if explicitly requested, else null),
  "sort": "newest" | "oldest" | "random" | null,
  "limit": integer or null
}

Rules:
1. Handle date ranges: "from Jan 1 to Feb 1" -> startDate: "2024-01-01", endDate: "2024-02-01".
2. Handle relative dates: "last week" -> calculate range based on Current Date. "yesterday" -> specific date.
3. Handle tags: If user mentions "work tag" or "#work", extract "work".
4. Handle specific text: "boards about coding" -> keywords: ["coding"].
5. Days: "What do I do on Mondays?" -> daysOfWeek: [1]. "Weekends" -> [0, 6].
6. Images: "Show me photos/pictures" -> hasImage: true.
7. Sort/Limit: "Last 5 boards" -> sort: "newest", limit: 5. "Random 2 memories" -> sort: "random", limit: 2.
8. If the user asks for "what i did", "summary", "analysis" without specific constraints, return null for all fields.
9. Return format must be valid JSON.`

// QueryParserPrompt builds the filter extraction prompt anchored at currentDate
func QueryParserPrompt(query, currentDate string) Prompt {
	return Prompt{
		System: fmt.Sprintf(queryParserSystemTemplate, currentDate),
		User:   query,
	}
}

// MergeParams are the sampling parameters for history compression
func MergeParams(timeout time.Duration) Params {
	return Params{
		Operation:   OperationMerge,
		Temperature: 0.5,
		MaxTokens:   4000,
		Timeout:     timeout,
	}
}

// AnalysisParams are the sampling parameters for the life-coach summary
func AnalysisParams(timeout time.Duration) Params {
	return Params{
		Operation:       OperationAnalysis,
		Temperature:     1,
		TopP:            Float(1),
		MaxTokens:       1024,
		JSONObject:      true,
		DisableThinking: true,
		Timeout:         timeout,
	}
}

// QueryParserParams are the sampling parameters for filter extraction
func QueryParserParams(timeout time.Duration) Params {
	return Params{
		Operation:   OperationQueryParser,
		Temperature: 0.1,
		JSONObject:  true,
		Timeout:     timeout,
	}
}
