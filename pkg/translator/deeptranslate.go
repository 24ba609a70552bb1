package translator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dtnitsch/article-summarizer/pkg/fetcher"
)

const serviceName = "translator"

// DeepTranslate is a client for the Deep Translate API. It implements both
// Detector and Translator against the same provider and credential.
type DeepTranslate struct {
	baseURL string
	host    string
	apiKey  string
	fetcher *fetcher.Fetcher
}

func NewDeepTranslate(baseURL, host, apiKey string, f *fetcher.Fetcher) *DeepTranslate {
	return &DeepTranslate{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		host:    host,
		apiKey:  apiKey,
		fetcher: f,
	}
}

type detectRequest struct {
	Q string `json:"q"`
}

type detectResponse struct {
	Data struct {
		Detections []struct {
			Language string `json:"language"`
		} `json:"detections"`
	} `json:"data"`
	apiError
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	Data struct {
		Translations struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
	apiError
}

// apiError covers the error shapes the gateway and the provider answer with.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e apiError) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func (d *DeepTranslate) Detect(ctx context.Context, text string) (string, error) {
	var resp detectResponse
	if err := d.post(ctx, "/language/translate/v2/detect", detectRequest{Q: text}, &resp, &resp.apiError); err != nil {
		return "", err
	}

	if len(resp.Data.Detections) == 0 || resp.Data.Detections[0].Language == "" {
		return "", ErrNoLanguageDetected
	}
	return resp.Data.Detections[0].Language, nil
}

func (d *DeepTranslate) Translate(ctx context.Context, text, source, target string) (string, error) {
	var resp translateResponse
	body := translateRequest{Q: text, Source: source, Target: target}
	if err := d.post(ctx, "/language/translate/v2", body, &resp, &resp.apiError); err != nil {
		return "", err
	}

	translated := resp.Data.Translations.TranslatedText
	if translated == "" {
		return "", ErrEmptyTranslation
	}
	return translated, nil
}

func (d *DeepTranslate) post(ctx context.Context, path string, body, out any, apiErr *apiError) error {
	req, err := fetcher.NewJSONRequest(ctx, http.MethodPost, d.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("translator: %w", err)
	}
	req.Header.Set("x-rapidapi-key", d.apiKey)
	req.Header.Set("x-rapidapi-host", d.host)

	status, err := d.fetcher.DoJSON(req, out)
	if err != nil {
		return fmt.Errorf("translator: %w", err)
	}
	if status < 200 || status > 299 {
		msg := apiErr.text()
		if msg == "" {
			msg = fetcher.StatusMessage(status)
		}
		return &fetcher.RemoteError{Service: serviceName, StatusCode: status, Message: msg}
	}
	return nil
}
