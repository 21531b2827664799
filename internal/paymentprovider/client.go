package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Client клиент API платёжного сервиса. Авторизация basic-auth
// по паре ключей, все тела запросов и ответов в JSON.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного сервиса.
// Если apiURL пустой, используется боевой адрес API.
func NewClient(keyID, keySecret, apiURL string) *Client {
	if apiURL == "" {
		apiURL = "https://api.razorpay.com/v1"
	}
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.keyID + ":" + c.keySecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// CreateSubscription отправляет запрос на создание подписки по тарифному плану.
func (c *Client) CreateSubscription(ctx context.Context, planID string, notifyCustomer bool, totalCycles int) (*Subscription, error) {
	const op = "paymentprovider.CreateSubscription"
	notify := 0
	if notifyCustomer {
		notify = 1
	}
	reqParams := CreateSubscriptionRequest{
		PlanID:         planID,
		CustomerNotify: notify,
		TotalCount:     totalCycles,
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// FetchSubscription запрашивает текущее состояние подписки.
func (c *Client) FetchSubscription(ctx context.Context, id string) (*Subscription, error) {
	const op = "paymentprovider.FetchSubscription"
	req, err := c.newRequest(ctx, http.MethodGet, "/subscriptions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CancelSubscription отменяет подписку на стороне платёжного сервиса.
func (c *Client) CancelSubscription(ctx context.Context, id string) (*Subscription, error) {
	const op = "paymentprovider.CancelSubscription"
	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions/"+id+"/cancel", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// RefundPayment запрашивает возврат платежа. Неуспех возврата
// отличим от успеха: любой не-2xx статус возвращается ошибкой.
func (c *Client) RefundPayment(ctx context.Context, paymentID, speed string) (*Refund, error) {
	const op = "paymentprovider.RefundPayment"
	req, err := c.newRequest(ctx, http.MethodPost, "/payments/"+paymentID+"/refund", RefundRequest{Speed: speed})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var refund Refund
	if err := c.do(req, &refund); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &refund, nil
}

// ListSubscriptions возвращает страницу подписок для административного отчёта.
func (c *Client) ListSubscriptions(ctx context.Context, count, skip int) (*SubscriptionList, error) {
	const op = "paymentprovider.ListSubscriptions"
	path := fmt.Sprintf("/subscriptions?count=%d&skip=%d", count, skip)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var list SubscriptionList
	if err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &list, nil
}
