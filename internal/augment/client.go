package augment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client 通过OpenAI兼容的chat completions接口实现Augmenter。
// 每个会话至多触发一次调用，失败不重试：上层会把失败降级为纯本地解读，
// 自动重试只会放大配额和延迟问题。
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewClient 创建一个AI解读客户端
func NewClient(httpClient *http.Client, apiKey, baseURL, model string) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

// chatRequest / chatResponse 对应OpenAI兼容API的请求和响应结构
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Augment 发起一次AI解读调用，并严格校验返回结构。
// 任何失败（网络、非2xx状态、JSON不合法、结构不符）都通过error返回，
// 不会向上抛出panic，也绝不自动重试。
func (c *Client) Augment(ctx context.Context, in Input) (*Result, error) {
	content, err := c.callChat(ctx, in)
	if err != nil {
		return nil, err
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: 内容不是合法JSON: %v", ErrInvalidResponse, err)
	}

	if err := validateResult(&result, len(in.Cards)); err != nil {
		return nil, err
	}

	return &result, nil
}

// callChat 执行HTTP调用并取出首个choice的内容
func (c *Client) callChat(ctx context.Context, in Input) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(in)},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: 无法序列化请求: %v", ErrUpstreamFailure, err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: 无法构造请求: %v", ErrUpstreamFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: 读取响应失败: %v", ErrUpstreamFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		// 诊断信息只包含状态码，不回显响应体，避免泄露任何敏感内容
		return "", fmt.Errorf("%w: 远端状态码 %d", ErrUpstreamFailure, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("%w: 响应不是合法JSON: %v", ErrInvalidResponse, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: 响应中没有choices", ErrInvalidResponse)
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// validateResult 校验解读结果的结构完整性。
// 出现任何一条非法记录时整个结果作废，避免把残缺内容混入最终解读。
func validateResult(result *Result, cardCount int) error {
	overall := result.OverallComment
	if overall.Summary == "" || overall.Advice == "" || overall.Closing == "" {
		return fmt.Errorf("%w: overall_comment字段不完整", ErrInvalidResponse)
	}

	for _, comment := range result.CardComments {
		if comment.Index < 0 || comment.Index >= cardCount {
			return fmt.Errorf("%w: card_comments中存在越界的index %d", ErrInvalidResponse, comment.Index)
		}
		if comment.Message == "" {
			return fmt.Errorf("%w: card_comments中存在空的message", ErrInvalidResponse)
		}
	}
	return nil
}
