package service

import (
	"context"
	"fmt"
	"strings"

	"bengkel-bot/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const extractionInstruction = `Kamu adalah asisten bengkel mobil. Kamu menerima sebuah konteks dan sebuah pertanyaan.
Salin potongan teks dari konteks yang menjawab pertanyaan, persis seperti tertulis, tanpa menambah atau mengubah kata.
Jika konteks tidak memuat jawaban, balas dengan teks kosong.
Jangan menulis penjelasan, tanda kutip, atau format markdown.`

// GigaChatExtractor asks a GigaChat model to copy the answer span out of the
// passage. Replies that are not a span of the passage are discarded.
type GigaChatExtractor struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatExtractor(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatExtractor, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = extractionInstruction
	model.Temperature = 0

	logger.Info("Using GigaChat extractor", zap.String("model", cfg.Model))
	return &GigaChatExtractor{client: client, model: model, logger: logger}, nil
}

func (e *GigaChatExtractor) Extract(ctx context.Context, question, passage string) (string, error) {
	prompt := fmt.Sprintf("Konteks:\n%s\n\nPertanyaan:\n%s", passage, question)
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := e.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	span := spanOf(resp.Choices[0].Message.Content, passage)
	if span == "" {
		e.logger.Debug("GigaChat reply is not a span of the passage",
			zap.String("question", question))
	}
	return span, nil
}

func (e *GigaChatExtractor) Close() error {
	if e.client != nil {
		e.client.Close()
	}
	return nil
}

// spanOf trims model decoration off reply and returns the passage text it
// points at, or "" when reply does not occur in passage.
func spanOf(reply, passage string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.Trim(reply, "\"'`*")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ""
	}

	idx := strings.Index(strings.ToLower(passage), strings.ToLower(reply))
	if idx < 0 {
		return ""
	}
	// ToLower keeps byte offsets only for same-width runes; fall back to the
	// reply when the slice would not line up.
	if end := idx + len(reply); end <= len(passage) && strings.EqualFold(passage[idx:end], reply) {
		return passage[idx:end]
	}
	return reply
}
