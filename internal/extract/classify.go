package extract

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/ctleads/harvester/internal/inference"
	"github.com/ctleads/harvester/pkg/logger"
)

// Detection is the classification verdict for one rendered page.
type Detection struct {
	IsPartiesPage bool
	Confidence    int
	PageIndex     int
	RegionHint    string
	Signals       []string
}

// Classifier asks the inference service whether a page image is the
// parties page. Request or parse failures degrade to a negative verdict;
// they never propagate.
type Classifier struct {
	client *inference.Client
	logger *logger.Logger
}

func NewClassifier(client *inference.Client, log *logger.Logger) *Classifier {
	return &Classifier{client: client, logger: log}
}

// DetectPartiesPage classifies a single page image.
func (c *Classifier) DetectPartiesPage(ctx context.Context, docket string, pageIndex int, image []byte) Detection {
	negative := Detection{PageIndex: pageIndex, RegionHint: "full"}

	content, err := c.client.Chat(
		ctx,
		inference.DetectSystemPrompt,
		inference.DetectUserPrompt(docket, pageIndex),
		base64.StdEncoding.EncodeToString(image),
		400,
	)
	if err != nil {
		c.logger.Warn("Detection request failed", "docket", docket, "page", pageIndex, "error", err)
		return negative
	}

	data := c.client.ParseJSONObject(content, fmt.Sprintf("parties detection docket=%s page=%d", docket, pageIndex))
	if len(data) == 0 {
		return negative
	}

	return Detection{
		IsPartiesPage: asBool(data["is_parties_page"]),
		Confidence:    asInt(data["confidence"], 0),
		PageIndex:     asInt(data["page_index"], pageIndex),
		RegionHint:    asString(data["region_hint"], "full"),
		Signals:       asStringList(data["signals"]),
	}
}

func asBool(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}

func asInt(v interface{}, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func asString(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asStringList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
