package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"quantlab/internal/config"
)

// Narrator 调用大模型为对比报告生成文字解读，属可选增强能力。
type Narrator struct {
	cfg    config.OpenAIConfig
	logger *zap.Logger
	sdk    *openai.Client
}

// NewNarrator 使用给定配置创建解读客户端。
func NewNarrator(cfg config.OpenAIConfig, logger *zap.Logger) (*Narrator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api_key 不能为空")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model 不能为空")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout + 5*time.Second,
	}

	return &Narrator{
		cfg:    cfg,
		logger: logger,
		sdk:    openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Summarize 根据对比表生成一段简短的策略表现解读。
func (n *Narrator) Summarize(ctx context.Context, entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", errors.New("对比条目为空")
	}

	prompt := buildPrompt(entries)

	response, err := n.sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		n.logger.Error("调用OpenAI失败", zap.Error(err))
		return "", fmt.Errorf("调用OpenAI失败: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("OpenAI 返回结果为空")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("OpenAI 返回内容为空")
	}
	return content, nil
}

func buildPrompt(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("以下是若干量化策略在同一价格序列上的回测绩效对比，")
	sb.WriteString("请用中文给出不超过200字的解读，指出表现最好与最差的策略及可能原因。\n\n")
	sb.WriteString(Render(entries))
	return sb.String()
}
