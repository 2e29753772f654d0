package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Config passerelle HTTP d'envoi d'emails
type Config struct {
	Enabled     bool
	GatewayURL  string
	APIKey      string
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// Message email à transmettre à la passerelle
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Sender interface consommée par le worker de notifications
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
}

type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Client envoie les emails via la passerelle HTTP
type Client struct {
	httpClient *resty.Client
	config     *Config
	logger     *zap.Logger
}

func NewClient(config *Config, log *zap.Logger) *Client {
	timeout := 10 * time.Second
	if config.Timeout > 0 {
		timeout = config.Timeout
	}

	httpClient := resty.New().
		SetBaseURL(config.GatewayURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if config.APIKey != "" {
		httpClient.SetAuthToken(config.APIKey)
	}

	return &Client{
		httpClient: httpClient,
		config:     config,
		logger:     log.Named("mailer"),
	}
}

// Send transmet un email. Désactivé, le message est seulement journalisé.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("destinataire requis")
	}

	if !c.config.Enabled {
		c.logger.Info("Envoi email désactivé, message journalisé",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	request := sendRequest{
		From:    address{Email: c.config.FromAddress, Name: c.config.FromName},
		To:      []address{{Email: msg.To, Name: msg.ToName}},
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	var response sendResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&response).
		Post("/send")
	if err != nil {
		return fmt.Errorf("appel passerelle email: %w", err)
	}

	if resp.IsError() {
		c.logger.Error("Passerelle email en erreur",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", response.Message))
		return fmt.Errorf("passerelle email: statut %d: %s", resp.StatusCode(), response.Message)
	}

	c.logger.Debug("Email envoyé",
		zap.String("to", msg.To),
		zap.String("message_id", response.ID))
	return nil
}

var _ Sender = (*Client)(nil)
