package shiprocket

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

const testSecret = "webhook-secret"

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event":"shipment_delivered"}`)
	signature := Sign(payload, testSecret)

	if !VerifySignature(signature, payload, testSecret) {
		t.Fatal("signature did not verify against its own payload")
	}
	if VerifySignature(signature, payload, "other-secret") {
		t.Fatal("signature verified under the wrong secret")
	}
	if VerifySignature(signature, []byte(`{"event":"tampered"}`), testSecret) {
		t.Fatal("signature verified against a tampered payload")
	}
}

func TestReadWebhookEvent(t *testing.T) {
	t.Parallel()

	body := `{"event":"awb_assigned","data":{"order_id":"ord-1","awb_code":"AWB777","courier_name":"Delhivery"}}`

	r := httptest.NewRequest("POST", "/webhooks/shiprocket", strings.NewReader(body))
	r.Header.Set(SignatureHeader, Sign([]byte(body), testSecret))
	r.Header.Set(DeliveryIDHeader, "dlv-42")

	event, err := ReadWebhookEvent(r, testSecret)
	if err != nil {
		t.Fatalf("ReadWebhookEvent() error = %v", err)
	}
	if event.Event != EventAWBAssigned {
		t.Errorf("event = %q, want %q", event.Event, EventAWBAssigned)
	}
	if event.DeliveryID != "dlv-42" {
		t.Errorf("delivery id = %q, want dlv-42", event.DeliveryID)
	}
	if event.Data.OrderID != "ord-1" || event.Data.AWBCode != "AWB777" {
		t.Errorf("unexpected data: %+v", event.Data)
	}
}

func TestReadWebhookEventRejections(t *testing.T) {
	t.Parallel()

	body := `{"event":"shipment_delivered","data":{"order_id":"ord-1"}}`

	tests := []struct {
		name          string
		body          string
		signature     string
		wantSignature bool
	}{
		{"missing signature", body, "", true},
		{"wrong signature", body, Sign([]byte(body), "other-secret"), true},
		{"signature for different payload", body, Sign([]byte("{}"), testSecret), true},
		{"invalid json", "{not json", Sign([]byte("{not json"), testSecret), false},
		{"missing event tag", `{"data":{"order_id":"ord-1"}}`, Sign([]byte(`{"data":{"order_id":"ord-1"}}`), testSecret), false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest("POST", "/webhooks/shiprocket", strings.NewReader(tc.body))
			if tc.signature != "" {
				r.Header.Set(SignatureHeader, tc.signature)
			}

			_, err := ReadWebhookEvent(r, testSecret)
			if err == nil {
				t.Fatal("ReadWebhookEvent() succeeded, want error")
			}
			if got := errors.Is(err, ErrInvalidSignature); got != tc.wantSignature {
				t.Fatalf("errors.Is(err, ErrInvalidSignature) = %v, want %v (err = %v)", got, tc.wantSignature, err)
			}
		})
	}
}
