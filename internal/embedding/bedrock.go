package embedding

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mapmem/mapmem-go/internal/config"
)

// DefaultBedrockModel is the Titan text embedding model (1024-dim by default,
// configurable down to 256/512 via the dimensions parameter).
const DefaultBedrockModel = "amazon.titan-embed-text-v2:0"

// BedrockEmbedder generates embeddings through AWS Bedrock.
type BedrockEmbedder struct {
	client    *bedrockruntime.Client
	modelID   string
	dimension int
}

var _ Embedder = (*BedrockEmbedder)(nil)

type titanEmbedRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type titanEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewBedrock creates a Bedrock-backed embedder using the default AWS
// credential chain and the configured region.
func NewBedrock(ctx context.Context, cfg config.Config) (*BedrockEmbedder, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.BedrockRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	modelID := cfg.EmbedModel
	if modelID == "" || modelID == "all-minilm:l6-v2" {
		modelID = DefaultBedrockModel
	}

	return &BedrockEmbedder{
		client:    bedrockruntime.NewFromConfig(awsCfg),
		modelID:   modelID,
		dimension: cfg.EmbedDimension,
	}, nil
}

// Embed generates an embedding vector for text via InvokeModel.
func (e *BedrockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbedRequest{
		InputText:  text,
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	contentType := "application/json"
	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &e.modelID,
		ContentType: &contentType,
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke bedrock model: %w", err)
	}

	var resp titanEmbedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal embed response: %w", err)
	}
	if len(resp.Embedding) != e.dimension {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d (model: %s)",
			len(resp.Embedding), e.dimension, e.modelID)
	}
	return resp.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts. Titan has no batch
// endpoint, so this issues sequential InvokeModel calls.
func (e *BedrockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed %d: %w", i, err)
		}
		vectors = append(vectors, v)
	}
	return vectors, nil
}

// Model returns the Bedrock model id.
func (e *BedrockEmbedder) Model() string {
	return e.modelID
}

// Dimension returns the expected embedding dimension.
func (e *BedrockEmbedder) Dimension() int {
	return e.dimension
}
