package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/config"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/logger"
)

// Supported language codes. The provider may detect any source language,
// but parallel translations are always produced for this closed set.
const (
	LanguageEnglish = "en"
	LanguageFrench  = "fr"
	LanguageSpanish = "es"
)

// TranslationResult is the provider's answer for one input string.
type TranslationResult struct {
	SourceLanguage string `json:"sourceLanguage"`
	TranslationEn  string `json:"translationEn"`
	TranslationFr  string `json:"translationFr"`
	TranslationEs  string `json:"translationEs"`
}

// Translator detects the source language of a text and produces parallel
// EN/FR/ES translations. Implementations must fail fast rather than hang;
// callers treat any error as an upstream failure.
type Translator interface {
	Translate(ctx context.Context, text string) (*TranslationResult, error)
}

type translateRequest struct {
	Text    string   `json:"text"`
	Targets []string `json:"targets"`
}

// HTTPTranslator calls the external translation provider over HTTP.
type HTTPTranslator struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewHTTPTranslator() *HTTPTranslator {
	return &HTTPTranslator{
		apiURL: config.AppConfig.TranslatorAPIURL,
		apiKey: config.AppConfig.TranslatorAPIKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text string) (*TranslationResult, error) {
	if text == "" {
		return nil, apperrors.Validation("Text to translate is required")
	}

	payload, err := json.Marshal(translateRequest{
		Text:    text,
		Targets: []string{LanguageEnglish, LanguageFrench, LanguageSpanish},
	})
	if err != nil {
		return nil, apperrors.Internal("Failed to encode translation request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Internal("Failed to build translation request")
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("Translation provider unreachable")
		return nil, apperrors.Upstream("Translation service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Msg("Translation provider returned non-OK status")
		return nil, apperrors.Upstream(fmt.Sprintf("Translation service returned status %d", resp.StatusCode))
	}

	var result TranslationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.Upstream("Invalid response from translation service")
	}

	return &result, nil
}
