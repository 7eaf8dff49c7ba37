// Package shiprocket wraps the narrow slice of the Shiprocket API the back
// office needs: shipment cancellation, return-to-origin requests, and
// webhook verification.
package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status_code"`
}

// CancelShipment cancels an order on the carrier side before pickup.
func (c *Client) CancelShipment(ctx context.Context, shippingOrderID string) error {
	if shippingOrderID == "" {
		return fmt.Errorf("shipping order id is required")
	}
	payload := map[string]any{"ids": []string{shippingOrderID}}
	return c.post(ctx, "/orders/cancel", payload)
}

// RequestRTO asks the carrier to return an already-shipped parcel to origin.
func (c *Client) RequestRTO(ctx context.Context, awb string) error {
	if awb == "" {
		return fmt.Errorf("awb is required")
	}
	payload := map[string]any{"awbs": []string{awb}}
	return c.post(ctx, "/orders/processing/return", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shiprocket request failed: %w", err)
	}
	body, readErr := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("failed to read shiprocket response: %w", readErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close shiprocket response body: %w", closeErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("shiprocket error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("shiprocket API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
