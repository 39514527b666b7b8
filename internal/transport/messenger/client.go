// Package messenger отправляет уведомления о заказах во внешний мессенджер через вебхук.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Константы минимального и максимально значения в заголовке Retry-After.
const (
	minRetryAfter     = 1
	maxRetryAfter     = 120
	defaultRetryAfter = 60
)

type Message struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// HTTPClient отправляет сообщения POST запросом на URL вебхука.
type HTTPClient struct {
	webhookURL string
	token      string
	httpClient *http.Client
}

func New(webhookURL, token string) *HTTPClient {
	return &HTTPClient{
		webhookURL: webhookURL,
		token:      token,
		httpClient: http.DefaultClient,
	}
}

// Enabled возвращает false, если URL вебхука не настроен.
func (c *HTTPClient) Enabled() bool {
	return c.webhookURL != ""
}

// Send отправляет сообщение. На любой ответ кроме 2xx возвращает *StatusCodeError, на
// http.StatusTooManyRequests - *TooManyRequestError.
//
//nolint:nonamedreturns
func (c *HTTPClient) Send(ctx context.Context, msg Message) (err error) {
	body, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return fmt.Errorf("marshal message: %s", marshalErr.Error())
	}

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if reqErr != nil {
		return fmt.Errorf("create request: %s", reqErr.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fmt.Errorf("do request: %w", doErr)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return NewTooManyRequestError(parseRetryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return NewStatusCodeError(resp.StatusCode)
	}
	return nil
}

// parseRetryAfter разбирает заголовок Retry-After в секундах. Пустое, неверное или выходящее за
// пределы [1, 120] значение заменяется на 60 секунд.
func parseRetryAfter(value string) time.Duration {
	retryAfter, parseErr := decimal.NewFromString(value)
	if parseErr != nil ||
		retryAfter.LessThan(decimal.NewFromInt(minRetryAfter)) ||
		retryAfter.GreaterThan(decimal.NewFromInt(maxRetryAfter)) {
		retryAfter = decimal.NewFromInt(defaultRetryAfter)
	}
	return time.Duration(retryAfter.IntPart()) * time.Second
}
