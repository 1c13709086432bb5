package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/your-org/reunite/internal/config"
)

// SendResult carries the gateway's acknowledgement of one message.
type SendResult struct {
	MessageID string
}

// SmsSender dispatches one message to one destination number. Implementations
// must be safe for concurrent use. Constructed once at process start and
// injected into the Dispatcher.
type SmsSender interface {
	Send(ctx context.Context, to, message string) (SendResult, error)
}

// GatewayClient talks to the HTTP SMS gateway.
type GatewayClient struct {
	url      string
	apiKey   string
	senderID string
	client   *http.Client
}

func NewGatewayClient(cfg config.SMSConfig) *GatewayClient {
	return &GatewayClient{
		url:      cfg.GatewayURL,
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type gatewayRequest struct {
	To       string `json:"to"`
	Message  string `json:"message"`
	SenderID string `json:"sender_id,omitempty"`
}

type gatewayResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (g *GatewayClient) Send(ctx context.Context, to, message string) (SendResult, error) {
	body, err := json.Marshal(gatewayRequest{To: to, Message: message, SenderID: g.senderID})
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	var gr gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return SendResult{}, fmt.Errorf("decode sms response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return SendResult{}, fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, gr.Error)
	}
	return SendResult{MessageID: gr.MessageID}, nil
}
