package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	genai "github.com/google/generative-ai-go/genai"
	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	openaishared "github.com/openai/openai-go/shared"
	googleapi "google.golang.org/api/option"

	"github.com/langgraph-go/runtime/errs"
	"github.com/langgraph-go/runtime/graph"
)

// ChatVendor selects which hosted chat API Chat dispatches to.
type ChatVendor string

const (
	VendorAnthropic ChatVendor = "anthropic"
	VendorOpenAI    ChatVendor = "openai"
	VendorGemini    ChatVendor = "gemini"
)

// Chat is the chat-endpoint Provider: a single request/response call to a
// hosted model. The prior turn's session id is not sent to the vendor; it is
// only carried forward in the returned update.
type Chat struct {
	Vendor ChatVendor
	APIKey string

	anthropicClient *anthropic.Client
	openaiClient    *openai.Client
	geminiClient    *genai.Client

	pricing PriceTable
}

// NewChat builds a Chat provider for the given vendor and API key. Vendor
// clients are constructed lazily per call in this teaching implementation
// to keep the type zero-value-safe; production wiring would inject
// long-lived clients instead.
func NewChat(vendor ChatVendor, apiKey string) *Chat {
	return &Chat{Vendor: vendor, APIKey: apiKey, pricing: DefaultPriceTable()}
}

func (c *Chat) Name() string { return "chat_endpoint:" + string(c.Vendor) }

func (c *Chat) Metadata() map[string]string {
	return map[string]string{"vendor": string(c.Vendor)}
}

func (c *Chat) EstimateCost(inTokens, outTokens int) float64 {
	return c.pricing.Estimate(string(c.Vendor), inTokens, outTokens)
}

// ExecuteTask issues a single chat completion. The role's prior session id
// is read via PriorSessionID and written back unchanged; it is neither sent
// to the vendor nor added to the prompt, which is the task string as given,
// so every vendor call is stateless. cfg.Tools, when set, is threaded into the vendor
// request so the model may request tool calls; those come back in the
// normalized Response's ToolCalls, per spec §4.G.
func (c *Chat) ExecuteTask(ctx context.Context, task string, state graph.State, cfg Config) (graph.PartialUpdate, error) {
	start := time.Now()
	prior := PriorSessionID(cfg.Role, state)

	var out Response
	var inTok, outTok int
	var err error

	switch c.Vendor {
	case VendorAnthropic:
		out, inTok, outTok, err = c.callAnthropic(ctx, task, cfg)
	case VendorOpenAI:
		out, inTok, outTok, err = c.callOpenAI(ctx, task, cfg)
	case VendorGemini:
		out, inTok, outTok, err = c.callGemini(ctx, task, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownProvider, c.Vendor)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrProviderFailure, err)
	}

	usage := TokenUsage{
		Cost:       c.EstimateCost(inTok, outTok),
		Turns:      1,
		DurationMs: time.Since(start).Milliseconds(),
	}
	// Chat-endpoint vendors in this implementation don't hand back a
	// resumable session id; the prior value (possibly empty) is carried
	// forward unchanged so downstream reads of "{role}_session_id" stay
	// stable across turns.
	return buildUpdate(cfg.Role, prior, out, usage), nil
}

func (c *Chat) callAnthropic(ctx context.Context, task string, cfg Config) (Response, int, int, error) {
	client := anthropic.NewClient(anthropicopt.WithAPIKey(c.APIKey))
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(task)),
		},
	}
	if len(cfg.Tools) > 0 {
		params.Tools = convertToolsAnthropic(cfg.Tools)
	}
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, 0, 0, err
	}
	var out Response
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				Name:  b.Name,
				Input: asInputMap(b.Input),
			})
		}
	}
	return out, int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens), nil
}

// convertToolsAnthropic converts our ToolSpec format to Anthropic's, per
// graph/model/anthropic.convertTools.
func convertToolsAnthropic(tools []ToolSpec) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		var properties any
		var required []string
		if t.Schema != nil {
			properties = t.Schema["properties"]
			required = asStringSlice(t.Schema["required"])
		}
		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		}
	}
	return result
}

func (c *Chat) callOpenAI(ctx context.Context, task string, cfg Config) (Response, int, int, error) {
	client := openai.NewClient(openaiopt.WithAPIKey(c.APIKey))
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(task),
		},
	}
	if len(cfg.Tools) > 0 {
		params.Tools = convertToolsOpenAI(cfg.Tools)
	}
	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, 0, 0, err
	}
	if len(resp.Choices) == 0 {
		return Response{}, 0, 0, errs.ErrProviderResponse
	}
	msg := resp.Choices[0].Message
	out := Response{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			Name:  tc.Function.Name,
			Input: parseJSONArgs(tc.Function.Arguments),
		})
	}
	return out, int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens), nil
}

// convertToolsOpenAI converts our ToolSpec format to OpenAI's, per
// graph/model/openai.convertTools.
func convertToolsOpenAI(tools []ToolSpec) []openai.ChatCompletionToolParam {
	result := make([]openai.ChatCompletionToolParam, len(tools))
	for i, t := range tools {
		result[i] = openai.ChatCompletionToolParam{
			Function: openaishared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openaishared.FunctionParameters(t.Schema),
			},
		}
	}
	return result
}

func (c *Chat) callGemini(ctx context.Context, task string, cfg Config) (Response, int, int, error) {
	client, err := genai.NewClient(ctx, googleapi.WithAPIKey(c.APIKey))
	if err != nil {
		return Response{}, 0, 0, err
	}
	defer client.Close()
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-pro"
	}
	gm := client.GenerativeModel(model)
	if len(cfg.Tools) > 0 {
		gm.Tools = convertToolsGemini(cfg.Tools)
	}
	resp, err := gm.GenerateContent(ctx, genai.Text(task))
	if err != nil {
		return Response{}, 0, 0, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, 0, 0, errs.ErrProviderResponse
	}
	var out Response
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Content += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Input: p.Args})
		}
	}
	var inTok, outTok int
	if resp.UsageMetadata != nil {
		inTok = int(resp.UsageMetadata.PromptTokenCount)
		outTok = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, inTok, outTok, nil
}

// convertToolsGemini converts our ToolSpec format to Gemini's, per
// graph/model/google.convertTools.
func convertToolsGemini(tools []ToolSpec) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		declarations[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaToGenai(t.Schema),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// schemaToGenai converts a JSON-schema-shaped map into genai.Schema,
// handling only the object/properties/required shell every ToolSpec.Schema
// is expected to carry.
func schemaToGenai(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	result := &genai.Schema{Type: genai.TypeObject}
	if props, ok := schema["properties"].(map[string]any); ok {
		properties := make(map[string]*genai.Schema, len(props))
		for key, val := range props {
			propMap, ok := val.(map[string]any)
			if !ok {
				continue
			}
			propSchema := &genai.Schema{}
			if typeStr, ok := propMap["type"].(string); ok {
				propSchema.Type = genaiType(typeStr)
			}
			if desc, ok := propMap["description"].(string); ok {
				propSchema.Description = desc
			}
			properties[key] = propSchema
		}
		result.Properties = properties
	}
	result.Required = asStringSlice(schema["required"])
	return result
}

func genaiType(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

// asStringSlice normalizes a schema's "required" value ([]string or
// []interface{}, as produced by encoding/json or hand-built literals) into
// []string.
func asStringSlice(v any) []string {
	switch req := v.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, item := range req {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// asInputMap normalizes an Anthropic tool-use block's decoded input into
// map[string]any, falling back to a raw wrapper for non-object payloads.
func asInputMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"_raw": v}
}

// parseJSONArgs decodes an OpenAI tool call's JSON-encoded arguments string
// into map[string]any, per graph/model/openai.parseToolInput.
func parseJSONArgs(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]any{"_raw": raw}
	}
	return out
}

var _ Provider = (*Chat)(nil)
