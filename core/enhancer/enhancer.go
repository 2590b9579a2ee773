// Package enhancer talks to an OpenAI-compatible chat-completions
// service to turn free-form music requests into structured search
// guidance and to rerank candidate tracks by relevance.
package enhancer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"tunescout/logger"
	"tunescout/model"
)

// Config holds the enhancement-service settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client implements query enhancement and relevance reranking against a
// hosted chat-completions API.
type Client struct {
	cfg  Config
	http *resty.Client

	// injected clock so prompts reference the current period
	now func() time.Time
}

// NewClient constructs an enhancement client.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetTimeout(30 * time.Second)

	return &Client{
		cfg:  cfg,
		http: httpClient,
		now:  time.Now,
	}
}

// SetClock replaces the prompt clock. Intended for tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const enhanceSystemPrompt = "You are a music industry expert with knowledge of current trends, popular artists, and chart performance. Always prioritize mainstream, popular, and currently relevant music."

const rerankSystemPrompt = "You are a music recommendation expert. Prioritize popular, mainstream, and culturally relevant tracks."

// EnhanceQuery asks the model for mood/genre-matched popular artists and
// search-ready keywords for the user's request, anchored to the current
// month and year. The response must be strict JSON; anything else is an
// error the caller degrades from.
func (c *Client) EnhanceQuery(ctx context.Context, userQuery string) (model.Enhancement, error) {
	now := c.now()
	year := now.Year()
	month := now.Month().String()

	prompt := fmt.Sprintf(`You are a music discovery expert with deep knowledge of current music trends. Today is %s %d.

User's request: "%s"

CRITICAL RULES:
1. MATCH THE MOOD/GENRE the user requested - if they say "sad", give SAD artists. If they say "party", give PARTY artists.
2. Focus on POPULAR, CHART-TOPPING artists from %d-%d
3. Include 3-4 trending artists that EXACTLY match the requested mood/genre
4. Add descriptive keywords that reinforce the user's intent
5. If user mentions a specific artist, INCLUDE that artist in the query

Return JSON:
{
  "enhancedQuery": "optimized search with RELEVANT artist names and mood keywords",
  "popularArtists": ["artist1", "artist2", "artist3"],
  "trendingKeywords": ["keyword1", "keyword2", "keyword3"],
  "genreContext": "specific genre that matches user's request",
  "eraPreference": "current",
  "reasoning": "why these artists match the user's mood/genre request"
}`, month, year, userQuery, year-1, year)

	content, err := c.complete(ctx, enhanceSystemPrompt, prompt)
	if err != nil {
		return model.Enhancement{}, err
	}

	var enhancement model.Enhancement
	if err := decodeStrict(content, &enhancement); err != nil {
		return model.Enhancement{}, fmt.Errorf("enhancer: decode enhancement: %w", err)
	}
	if enhancement.EnhancedQuery == "" {
		return model.Enhancement{}, fmt.Errorf("enhancer: response missing enhancedQuery")
	}

	logger.Info("llm query enhancement",
		logger.String("query", userQuery),
		logger.String("enhancedQuery", enhancement.EnhancedQuery),
		logger.Any("artists", enhancement.PopularArtists))

	return enhancement, nil
}

// Rerank asks the model to order the candidate tracks by popularity,
// relevance and cultural currency. Returned 1-based indices outside
// [1, len(tracks)] are ignored; tracks the model did not rank are
// appended afterward in their original relative order.
func (c *Client) Rerank(ctx context.Context, tracks []model.Track, originalQuery string, enhancement model.Enhancement) ([]model.Track, error) {
	if len(tracks) == 0 {
		return []model.Track{}, nil
	}

	var list strings.Builder
	for i, track := range tracks {
		fmt.Fprintf(&list, "%d. %q by %s\n", i+1, track.Name, track.Artist)
	}

	prompt := fmt.Sprintf(`User searched for: "%s"
Context: %s

Here are %d tracks:
%s
Task: Rank these tracks by:
1. Popularity (mainstream appeal, chart performance)
2. Relevance to user's query
3. Current cultural relevance

Return JSON array of track numbers in order from MOST to LEAST relevant:
{"rankedIndexes": [3, 1, 7, 2, ...]}`, originalQuery, enhancement.Reasoning, len(tracks), list.String())

	content, err := c.complete(ctx, rerankSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var result struct {
		RankedIndexes []int `json:"rankedIndexes"`
	}
	if err := decodeStrict(content, &result); err != nil {
		return nil, fmt.Errorf("enhancer: decode ranking: %w", err)
	}

	return ApplyRanking(tracks, result.RankedIndexes), nil
}

// ApplyRanking reorders tracks by validated 1-based indices and appends
// any unranked tracks in their original relative order. The output
// always has exactly the input length.
func ApplyRanking(tracks []model.Track, rankedIndexes []int) []model.Track {
	reranked := make([]model.Track, 0, len(tracks))
	used := make(map[int]struct{}, len(rankedIndexes))

	for _, idx := range rankedIndexes {
		if idx < 1 || idx > len(tracks) {
			continue
		}
		if _, dup := used[idx-1]; dup {
			continue
		}
		used[idx-1] = struct{}{}
		reranked = append(reranked, tracks[idx-1])
	}

	for i, track := range tracks {
		if _, ranked := used[i]; !ranked {
			reranked = append(reranked, track)
		}
	}

	return reranked
}

// complete issues one chat completion and returns the message content.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	reqBody.ResponseFormat.Type = "json_object"

	var parsed chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("enhancer: request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("enhancer: unexpected status %d", resp.StatusCode())
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("enhancer: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("enhancer: empty completion")
	}

	return parsed.Choices[0].Message.Content, nil
}

// decodeStrict rejects any payload that is not a single JSON object of
// the expected shape. Malformed model output must degrade at the
// boundary, never flow downstream.
func decodeStrict(content string, out interface{}) error {
	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON object")
	}
	return nil
}
