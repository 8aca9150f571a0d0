package services

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultSMSBaseURL = "https://api.africastalking.com"

// SMSGateway delivers messages through an Africa's Talking compatible REST
// endpoint. The HTTP client carries a timeout so a stuck gateway call is
// classified as a failed delivery instead of blocking dispatch.
type SMSGateway struct {
	username string
	apiKey   string
	baseURL  string
	client   *http.Client
}

func NewSMSGateway(username, apiKey, baseURL string) *SMSGateway {
	if baseURL == "" {
		baseURL = defaultSMSBaseURL
	}
	return &SMSGateway{
		username: username,
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message to one recipient. Any transport error, timeout or
// non-2xx response is returned as an error; the caller treats them all the
// same way.
func (g *SMSGateway) Send(to, message string) error {
	form := url.Values{}
	form.Set("username", g.username)
	form.Set("to", to)
	form.Set("message", message)

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/version1/messaging",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("sms gateway error: %s", resp.Status)
	}
	return nil
}
