package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const courierSendEndpoint = "https://api.courier.com/send"

// SendMail delivers a transactional email through Courier. Returns false
// without error when COURIER_AUTH_TOKEN is not configured.
func SendMail(to string, subject string, html string) (bool, error) {
	authToken := os.Getenv("COURIER_AUTH_TOKEN")
	if authToken == "" {
		fmt.Printf("WARNING: COURIER_AUTH_TOKEN not set, skipping email to %s\n", to)
		return false, nil
	}

	payload := map[string]interface{}{
		"message": map[string]interface{}{
			"to": map[string]string{"email": to},
			"content": map[string]string{
				"title": subject,
				"body":  html,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequest("POST", courierSendEndpoint, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		resBody, _ := io.ReadAll(res.Body)
		return false, fmt.Errorf("courier send failed with status %d: %s", res.StatusCode, string(resBody))
	}

	return true, nil
}
