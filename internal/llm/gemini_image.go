package llm

import (
	"context"
	"fmt"
)

const geminiDefaultImageModel = "imagen-3.0-generate-002"

type imagenInstance struct {
	Prompt string `json:"prompt"`
}

type imagenParameters struct {
	SampleCount int `json:"sampleCount"`
}

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MIMEType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImage calls the Imagen predict endpoint for a single sample
func (p *GeminiProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	model := resolveModel(req.Model, p.config.ImageModel, geminiDefaultImageModel)

	apiReq := imagenRequest{
		Instances:  []imagenInstance{{Prompt: req.Prompt}},
		Parameters: imagenParameters{SampleCount: 1},
	}

	var resp imagenResponse
	url := fmt.Sprintf("%s/%s:predict", p.baseURL, modelPath(model))
	headers := map[string]string{"x-goog-api-key": p.apiKey}
	if err := postJSON(ctx, p.httpClient, p.Name(), url, headers, apiReq, &resp, geminiErrorMessage); err != nil {
		return nil, err
	}

	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return nil, malformed(p.Name(), "no image in response")
	}

	return &ImageResponse{
		Base64:   resp.Predictions[0].BytesBase64Encoded,
		MIMEType: resp.Predictions[0].MIMEType,
		Model:    model,
	}, nil
}
