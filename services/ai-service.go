package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"taskflow/backend/api-service/logging"
	"taskflow/backend/api-service/models"

	"github.com/sony/gobreaker"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	maxSubtasks          = 5
	maxSubtaskLength     = 200
)

// AIService asks the generative-language API to break a task into
// subtasks. Calls go through a circuit breaker so a flapping upstream
// stops being hammered.
type AIService struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
}

func NewAIService(apiKey, model string, httpClient *http.Client, breaker *gobreaker.CircuitBreaker) *AIService {
	return &AIService{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultGeminiBaseURL,
		HTTPClient: httpClient,
		Breaker:    breaker,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// BreakdownTask returns 3-5 short actionable subtask strings for the
// given title and description.
func (s *AIService) BreakdownTask(ctx context.Context, title, description string) ([]string, error) {
	if title == "" {
		return nil, models.NewFieldError("task title is required")
	}
	if description == "" {
		description = "No description provided"
	}

	prompt := fmt.Sprintf(`Break down the following task into 3-5 logical, actionable subtasks.
Return ONLY a JSON array of strings.
Task Title: %s
Task Description: %s
Example output: ["Subtask 1", "Subtask 2", "Subtask 3"]`, title, description)

	text, err := s.generateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	subtasks := ParseSubtasks(text)
	if len(subtasks) == 0 {
		return nil, &UpstreamError{
			Err:        fmt.Errorf("AI returned invalid format"),
			Suggestion: "Please check your connection and try again.",
		}
	}
	return subtasks, nil
}

func (s *AIService) generateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.BaseURL, s.Model)

	result, err := s.Breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", s.APIKey)

		resp, err := s.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, upstreamFailure(resp.StatusCode, raw)
		}

		var parsed geminiResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode AI response: %v", err)
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("AI response contained no candidates")
		}
		return parsed.Candidates[0].Content.Parts[0].Text, nil
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: AI_BREAKDOWN_FAILED, Description: Generative API call failed: %v", err)
		if upstream, ok := err.(*UpstreamError); ok {
			return "", upstream
		}
		return "", &UpstreamError{
			Err:        err,
			Suggestion: "Please check your connection and try again.",
		}
	}
	return result.(string), nil
}

// upstreamFailure attaches a human-readable suggestion to an upstream
// HTTP failure: model-name help on 404, key help on auth errors.
func upstreamFailure(status int, body []byte) *UpstreamError {
	suggestion := "Please check your connection and try again."
	switch status {
	case http.StatusNotFound:
		suggestion = `The model was not found. Please ensure you are using a valid model name like "gemini-2.5-flash".`
	case http.StatusUnauthorized, http.StatusForbidden:
		suggestion = "Authentication failed. Please check if your GEMINI_API_KEY is valid and not restricted."
	}
	return &UpstreamError{
		Err:        fmt.Errorf("generative API returned status %d: %s", status, strings.TrimSpace(string(body))),
		Suggestion: suggestion,
	}
}

var listMarker = regexp.MustCompile(`^[-*•]\s*|^\d+\.\s*`)

// ParseSubtasks extracts a list of subtask strings from model output.
// The happy path is a JSON array, possibly wrapped in markdown fences or
// prose; otherwise raw lines are split with list markers stripped,
// keeping non-empty lines under 200 characters, at most five.
func ParseSubtasks(text string) []string {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, "```json", ""))
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "```", ""))

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start != -1 && end > start {
		var subtasks []string
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &subtasks); err == nil {
			return capSubtasks(subtasks)
		}
	}

	var fallback []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" && len(line) < maxSubtaskLength {
			fallback = append(fallback, line)
		}
	}
	return capSubtasks(fallback)
}

func capSubtasks(subtasks []string) []string {
	kept := make([]string, 0, maxSubtasks)
	for _, s := range subtasks {
		s = strings.TrimSpace(s)
		if s == "" || len(s) >= maxSubtaskLength {
			continue
		}
		kept = append(kept, s)
		if len(kept) == maxSubtasks {
			break
		}
	}
	return kept
}
