// Package workspace talks to the Google Workspace REST APIs on behalf of a
// user. The per-user credential bundle is stored opaquely by the core and
// only interpreted here; every call is fallible-and-non-fatal to the CRM
// operation that triggered it.
package workspace

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/clienttracker/crm-system/internal/core/ports"
)

const requestTimeout = 15 * time.Second

// credentialBundle is the stored token shape. Only the access token is used
// for requests; the rest rides along for refresh flows handled elsewhere.
type credentialBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenURI     string `json:"token_uri,omitempty"`
}

// GoogleClient implements ports.Workspace against the chat, calendar, drive,
// and gmail REST endpoints.
type GoogleClient struct {
	http *http.Client
	log  zerolog.Logger

	chatBase     string
	calendarBase string
	driveBase    string
	gmailBase    string
}

func NewGoogleClient(log zerolog.Logger) *GoogleClient {
	return &GoogleClient{
		http:         &http.Client{Timeout: requestTimeout},
		log:          log,
		chatBase:     "https://chat.googleapis.com/v1",
		calendarBase: "https://www.googleapis.com/calendar/v3",
		driveBase:    "https://www.googleapis.com/drive/v3",
		gmailBase:    "https://gmail.googleapis.com/gmail/v1",
	}
}

func (g *GoogleClient) SendChatMessage(ctx context.Context, credentials, space, message string) error {
	body := map[string]string{"text": message}
	return g.post(ctx, credentials, fmt.Sprintf("%s/%s/messages", g.chatBase, space), body, nil)
}

func (g *GoogleClient) CreateCalendarEvent(ctx context.Context, credentials string, event ports.CalendarEvent) error {
	attendees := make([]map[string]string, 0, len(event.Attendees))
	for _, email := range event.Attendees {
		attendees = append(attendees, map[string]string{"email": email})
	}
	body := map[string]any{
		"summary":     event.Summary,
		"description": event.Description,
		"start":       map[string]string{"dateTime": event.StartsAt},
		"end":         map[string]string{"dateTime": event.EndsAt},
		"attendees":   attendees,
	}
	return g.post(ctx, credentials, g.calendarBase+"/calendars/primary/events", body, nil)
}

func (g *GoogleClient) CreateDriveFolder(ctx context.Context, credentials, name string) (string, error) {
	body := map[string]string{
		"name":     name,
		"mimeType": "application/vnd.google-apps.folder",
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, credentials, g.driveBase+"/files", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (g *GoogleClient) SendMail(ctx context.Context, credentials, to, subject, body string) error {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s", to, subject, body)
	payload := map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(raw)),
	}
	return g.post(ctx, credentials, g.gmailBase+"/users/me/messages/send", payload, nil)
}

// post sends an authorized JSON request and optionally decodes the response.
func (g *GoogleClient) post(ctx context.Context, credentials, url string, body any, out any) error {
	var bundle credentialBundle
	if err := json.Unmarshal([]byte(credentials), &bundle); err != nil {
		return fmt.Errorf("decode credential bundle: %w", err)
	}
	if bundle.AccessToken == "" {
		return fmt.Errorf("credential bundle has no access token")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+bundle.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("workspace request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("workspace request %s: status %d: %s", url, resp.StatusCode, snippet)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
