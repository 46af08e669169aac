package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SMSClient talks to the SMS gateway. Every send is best effort: failures are
// logged and swallowed so a gateway outage can never affect the request that
// triggered the message.
type SMSClient struct {
	http          *resty.Client
	apiKey        string
	sourceAddress string
}

func NewSMSClient(apiURL, apiKey, sourceAddress string, timeout time.Duration) *SMSClient {
	c := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &SMSClient{
		http:          c,
		apiKey:        apiKey,
		sourceAddress: sourceAddress,
	}
}

func (c *SMSClient) PurchaseConfirmation(ctx context.Context, phone, invoiceID string) {
	msg := fmt.Sprintf(
		"Dear Customer,\n\nThank you for choosing %s!\n\nYour purchase has been completed successfully.\nInvoice ID: #%s\n\nBest regards,\n%s Team",
		c.sourceAddress, invoiceID, c.sourceAddress,
	)
	c.send(ctx, phone, msg)
}

func (c *SMSClient) TicketCompleted(ctx context.Context, phone, ticketID string) {
	msg := fmt.Sprintf(
		"Dear Customer,\n\nYour repair has been completed and your device is ready for pickup.\nTicket ID: #%s\n\nBest regards,\n%s Team",
		ticketID, c.sourceAddress,
	)
	c.send(ctx, phone, msg)
}

func (c *SMSClient) send(ctx context.Context, phone, message string) {
	if c.apiKey == "" || c.http.BaseURL == "" {
		log.Printf("sms disabled, skipping message to %s", phone)
		return
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"esmsqk":         c.apiKey,
			"list":           NormalizePhone(phone),
			"source_address": c.sourceAddress,
			"message":        message,
		}).
		Get("")
	if err != nil {
		log.Printf("sms send failed: phone=%s err=%v", phone, err)
		return
	}

	log.Printf("sms gateway response: phone=%s status=%d body=%s",
		phone, resp.StatusCode(), resp.String())
}

// NormalizePhone strips everything except digits and a leading +, then rewrites
// the local 0-prefix to the 94 country code the gateway expects.
func NormalizePhone(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if strings.HasPrefix(out, "0") {
		out = "94" + out[1:]
	}
	return out
}
