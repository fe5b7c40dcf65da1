package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ctleads/harvester/internal/inference"
	"github.com/ctleads/harvester/internal/pipeline"
	"github.com/ctleads/harvester/pkg/logger"
)

// Extractor asks the inference service for the defendant rows of a
// confirmed parties page. Malformed or empty responses mean zero
// defendants, not an error.
type Extractor struct {
	client *inference.Client
	logger *logger.Logger
}

func NewExtractor(client *inference.Client, log *logger.Logger) *Extractor {
	return &Extractor{client: client, logger: log}
}

// ExtractDefendants returns the docket the model reports (defaulting to the
// supplied one) and the extracted (name, address) pairs.
func (e *Extractor) ExtractDefendants(ctx context.Context, docket string, image []byte) (string, []pipeline.ExtractedDefendant) {
	content, err := e.client.Chat(
		ctx,
		inference.ExtractSystemPrompt,
		inference.ExtractUserPrompt(docket),
		base64.StdEncoding.EncodeToString(image),
		600,
	)
	if err != nil {
		e.logger.Warn("Extraction request failed", "docket", docket, "error", err)
		return docket, nil
	}

	data := e.client.ParseJSONObject(content, fmt.Sprintf("defendant extraction docket=%s", docket))
	if len(data) == 0 {
		return docket, nil
	}

	returned := asString(data["docket"], docket)

	entries, ok := data["defendants"].([]interface{})
	if !ok {
		return returned, nil
	}
	var defendants []pipeline.ExtractedDefendant
	for _, entry := range entries {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		defendants = append(defendants, pipeline.ExtractedDefendant{
			Name:    strings.TrimSpace(asString(fields["name"], "")),
			Address: strings.TrimSpace(asString(fields["address"], "")),
		})
	}
	return returned, defendants
}
