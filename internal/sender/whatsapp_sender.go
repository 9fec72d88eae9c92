// internal/sender/whatsapp_sender.go
package sender

import (
    "bytes"
    "encoding/json"
    "fmt"
    "net/http"
    "os"
    "strings"
    "time"
)

// Sender is the outbound WhatsApp channel: it takes an (instance, phone, text)
// tuple and reports success or failure. The dispatch worker is its only caller.
type Sender interface {
    SendText(instanceName, phone, text string) error
}

// WhatsappSender posts text messages to an Evolution-API-compatible gateway.
type WhatsappSender struct {
    BaseURL string
    APIKey  string
    Client  *http.Client
}

func NewWhatsappSender() *WhatsappSender {
    return &WhatsappSender{
        BaseURL: os.Getenv("EVOLUTION_API_BASE_URL"),
        APIKey:  os.Getenv("EVOLUTION_API_KEY"),
        Client:  &http.Client{Timeout: 30 * time.Second},
    }
}

type textPayload struct {
    Number      string      `json:"number"`
    TextMessage textMessage `json:"textMessage"`
    Options     sendOptions `json:"options"`
}

type textMessage struct {
    Text string `json:"text"`
}

type sendOptions struct {
    Delay       int    `json:"delay"`
    Presence    string `json:"presence"`
    LinkPreview bool   `json:"linkPreview"`
}

// SendText delivers one text message through the named instance.
func (s *WhatsappSender) SendText(instanceName, phone, text string) error {
    requestURL := fmt.Sprintf("%s/message/sendText/%s", strings.TrimSuffix(s.BaseURL, "/"), instanceName)

    body := textPayload{
        Number: FormatPhone(phone),
        TextMessage: textMessage{
            Text: text,
        },
        Options: sendOptions{
            Delay:       0,
            Presence:    "composing",
            LinkPreview: true,
        },
    }

    payloadBytes, err := json.Marshal(body)
    if err != nil {
        return fmt.Errorf("failed to marshal payload: %w", err)
    }

    req, err := http.NewRequest("POST", requestURL, bytes.NewReader(payloadBytes))
    if err != nil {
        return fmt.Errorf("failed to create request: %w", err)
    }
    req.Header.Add("Content-Type", "application/json")
    req.Header.Add("apikey", s.APIKey)

    resp, err := s.Client.Do(req)
    if err != nil {
        return fmt.Errorf("failed to send request: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
        return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
    }
    return nil
}

// FormatPhone strips the separators the gateway rejects.
func FormatPhone(phone string) string {
    phone = strings.ReplaceAll(phone, "+", "")
    phone = strings.ReplaceAll(phone, "-", "")
    phone = strings.ReplaceAll(phone, " ", "")
    return phone
}
