package payment

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Gateway talks to the mobile-money provider's collection API. A push request
// asks the provider to prompt the subscriber's phone for approval; the final
// outcome arrives later on the callback endpoint.
type Gateway struct {
	client *resty.Client
}

func NewGateway(baseURL, apiKey string) *Gateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(15 * time.Second)
	return &Gateway{client: client}
}

type PushRequest struct {
	Reference   string `json:"reference"`
	PhoneNumber string `json:"phoneNumber"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type PushResponse struct {
	ProviderRef string `json:"providerRef"`
	Status      string `json:"status"`
}

func (g *Gateway) RequestPush(req *PushRequest) (*PushResponse, error) {
	var result PushResponse
	resp, err := g.client.R().
		SetBody(req).
		SetResult(&result).
		Post("/collections/push")
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("payment provider: %s", resp.Status())
	}
	return &result, nil
}
