package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Verdict mirrors the structured JSON the model must return.
type Verdict struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason,omitempty"`
}

const classifierInstruction = `You moderate user reviews of university professors, counselors and tutors.

Flag the text if it contains any of:
1. Profanity or vulgar language (any language, including Azerbaijani and Russian).
2. Hate speech or slurs.
3. Harassment or threats.
4. Sexual or explicit content.
5. Spam or gibberish.

Do NOT flag harsh but legitimate academic criticism ("the exams were unreasonably hard", "lectures were disorganized and unhelpful").

Return JSON by calling classify_review(strict). Keep reason to one short sentence.

Text to classify:
%s`

// OpenAIClassifier sends text to a chat model with a strict function-call
// schema so the yes/no verdict comes back machine-parseable.
type OpenAIClassifier struct {
	client  openai.Client
	timeout time.Duration
}

func NewOpenAIClassifier(apiKey string, timeout time.Duration) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
	}
}

// Classify asks the model for a verdict on the content. Any error here is
// the caller's signal to fail open; this method never invents a verdict.
func (c *OpenAIClassifier) Classify(ctx context.Context, content string) (*Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flagged": map[string]string{"type": "boolean"},
			"reason":  map[string]string{"type": "string"},
		},
		"required":             []string{"flagged", "reason"},
		"additionalProperties": false,
	}

	fn := shared.FunctionDefinitionParam{
		Name:        "classify_review",
		Description: openai.String("Return whether the review text violates the content policy."),
		Strict:      openai.Bool(true),
		Parameters:  schema,
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(classifierInstruction, content)),
		},
		Tools: []openai.ChatCompletionToolParam{{
			Function: fn,
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: "classify_review",
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("openai: no function call returned")
	}

	var verdict Verdict
	if err := json.Unmarshal(
		[]byte(resp.Choices[0].Message.ToolCalls[0].Function.Arguments),
		&verdict,
	); err != nil {
		return nil, fmt.Errorf("unmarshal classifier verdict: %w", err)
	}

	return &verdict, nil
}
