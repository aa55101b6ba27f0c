package ocr

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/finproc/statement-processor/pkg/logger"
)

// TextractConfig configures the AWS Textract engine.
type TextractConfig struct {
	Region        string  `yaml:"region"`
	AccessKey     string  `yaml:"access_key"`
	SecretKey     string  `yaml:"secret_key"`
	MinConfidence float32 `yaml:"min_confidence"`
}

// TextractEngine recognizes text through AWS Textract. It keeps line
// order as returned by the service, which reads top to bottom.
type TextractEngine struct {
	client *textract.Client
	config TextractConfig
	logger logger.Logger
}

func NewTextractEngine(ctx context.Context, cfg TextractConfig, log logger.Logger) (*TextractEngine, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &TextractEngine{
		client: textract.NewFromConfig(awsCfg),
		config: cfg,
		logger: log,
	}, nil
}

func (e *TextractEngine) Recognize(ctx context.Context, imageData []byte) (string, error) {
	result, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: imageData},
	})
	if err != nil {
		return "", fmt.Errorf("detect document text: %w", err)
	}

	var lines []string
	for _, block := range result.Blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < e.config.MinConfidence {
			continue
		}
		lines = append(lines, *block.Text)
	}
	return strings.Join(lines, "\n"), nil
}

func (e *TextractEngine) Close() error {
	return nil
}
