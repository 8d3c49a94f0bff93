package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(context.Context, Message) error
}

// LogSender only logs outgoing messages. It is used when no email provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	zap.L().Info(
		"email provider is not configured, message is logged only",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)

	return nil
}

type HTTPSenderConfig struct {
	URL              string
	APIKey           string
	From             string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
}

// HTTPSender posts messages as JSON to a transactional email provider.
type HTTPSender struct {
	client *resty.Client
	url    string
	from   string
}

type providerRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

func NewHTTPSender(config HTTPSenderConfig) *HTTPSender {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	if config.RetryWaitTime == 0 {
		config.RetryWaitTime = 2 * time.Second
	}

	if config.RetryMaxWaitTime == 0 {
		config.RetryMaxWaitTime = 10 * time.Second
	}

	client := resty.New()

	client.
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(config.RetryWaitTime).
		SetRetryMaxWaitTime(config.RetryMaxWaitTime).
		AddRetryCondition(func(response *resty.Response, err error) bool {
			if err != nil {
				return true
			}

			return response.StatusCode() == http.StatusTooManyRequests || response.StatusCode() >= http.StatusInternalServerError
		})

	if config.APIKey != "" {
		client.SetAuthToken(config.APIKey)
	}

	return &HTTPSender{
		client: client,
		url:    config.URL,
		from:   config.From,
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	response, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(providerRequest{
			From:    s.from,
			To:      msg.To,
			Subject: msg.Subject,
			HTML:    msg.HTML,
			Text:    msg.Text,
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("cannot send email: %w", err)
	}

	if response.IsError() {
		return fmt.Errorf("email provider responded with status %s", response.Status())
	}

	return nil
}
