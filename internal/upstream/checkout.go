package upstream

import (
	"context"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/Alturino/eats/cart/pkg/request"
	"github.com/Alturino/eats/cart/pkg/response"
	"github.com/Alturino/eats/internal/config"
)

// CheckoutClient creates payment checkout sessions. The breaker only fails
// fast while the upstream is down; a request is never sent twice.
type CheckoutClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[response.CheckoutSession]
}

func NewCheckoutClient(client *Client, cfg config.Breaker) *CheckoutClient {
	return &CheckoutClient{
		client:  client,
		breaker: newBreaker[response.CheckoutSession]("upstream-checkout", cfg),
	}
}

func (cc *CheckoutClient) CreateCheckoutSession(
	c context.Context,
	req request.CheckoutSession,
) (response.CheckoutSession, error) {
	return cc.breaker.Execute(func() (response.CheckoutSession, error) {
		session := response.CheckoutSession{}
		err := cc.client.do(
			c,
			"createCheckoutSession",
			http.MethodPost,
			PathCheckoutSession,
			nil,
			req,
			&session,
		)
		return session, err
	})
}
