package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dtnitsch/article-summarizer/pkg/fetcher"
)

const serviceName = "summarizer"

// RapidAPISummarizer calls the article extractor and summarizer API.
type RapidAPISummarizer struct {
	baseURL string
	host    string
	apiKey  string
	length  int
	fetcher *fetcher.Fetcher
}

func NewRapidAPISummarizer(baseURL, host, apiKey string, length int, f *fetcher.Fetcher) *RapidAPISummarizer {
	return &RapidAPISummarizer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		host:    host,
		apiKey:  apiKey,
		length:  length,
		fetcher: f,
	}
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

func (s *RapidAPISummarizer) Summarize(ctx context.Context, articleURL string) (string, error) {
	q := url.Values{}
	q.Set("url", articleURL)
	if s.length > 0 {
		q.Set("length", strconv.Itoa(s.length))
	}

	req, err := fetcher.NewJSONRequest(ctx, http.MethodGet, s.baseURL+"/summarize?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("summarizer: %w", err)
	}
	req.Header.Set("x-rapidapi-key", s.apiKey)
	req.Header.Set("x-rapidapi-host", s.host)

	var resp summaryResponse
	status, err := s.fetcher.DoJSON(req, &resp)
	if err != nil {
		return "", fmt.Errorf("summarizer: %w", err)
	}

	if resp.Error != "" {
		return "", &fetcher.RemoteError{Service: serviceName, StatusCode: status, Message: resp.Error}
	}
	if status < 200 || status > 299 {
		return "", &fetcher.RemoteError{Service: serviceName, StatusCode: status, Message: fetcher.StatusMessage(status)}
	}

	return resp.Summary, nil
}
