package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/maastricht-university/stress-features/features"
)

// --- Feature extraction (/extract) ---
type ExtractReq struct {
	CoefficientType features.Type   `json:"coefficient_type"`
	SampleRate      int             `json:"sample_rate"`
	Samples         []float64       `json:"samples"`
	Config          features.Config `json:"config"`
}

type ExtractResp struct {
	Features [][]float64 `json:"features"`
}

// FeatureService delegates extraction to a remote HTTP service.
type FeatureService struct {
	h   *HTTP
	url string
}

func (h *HTTP) FeatureService(url string) *FeatureService {
	return &FeatureService{h: h, url: strings.TrimRight(url, "/")}
}

// Extract implements features.Extractor.
func (s *FeatureService) Extract(ctx context.Context, t features.Type, cfg features.Config, samples []float64, sampleRate int) ([][]float64, error) {
	b, err := json.Marshal(ExtractReq{CoefficientType: t, SampleRate: sampleRate, Samples: samples, Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("extract encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"/extract", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extract %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out ExtractResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("extract decode: %w", err)
	}
	return out.Features, nil
}
