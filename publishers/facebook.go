package publishers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"AutoPostAPI/models"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

// FacebookPublisher posts text messages to a Facebook Page feed via the
// Graph API. Publishing resolves a page access token from the user
// token first, then creates the feed post on the first page found.
type FacebookPublisher struct {
	client  *http.Client
	baseURL string
	version string
}

type facebookPageResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type facebookPostResponse struct {
	ID string `json:"id"`
}

type facebookErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// NewFacebookPublisher creates a FacebookPublisher with an injectable
// http.Client. If nil is passed, a default client with a 30s timeout is
// used so a hung Graph API call can never stall the scheduler.
func NewFacebookPublisher(client *http.Client, apiVersion string) *FacebookPublisher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if apiVersion == "" {
		apiVersion = "v18.0"
	}
	return &FacebookPublisher{
		client:  client,
		baseURL: defaultGraphBaseURL,
		version: apiVersion,
	}
}

func (f *FacebookPublisher) Publish(message, accessToken string) models.PublishResult {
	if accessToken == "" {
		return models.PublishResult{
			Success: false,
			Message: "Missing Facebook access token",
		}
	}

	pageAccessToken, pageID, err := f.getPageAccessToken(accessToken)
	if err != nil {
		return models.PublishResult{
			Success: false,
			Message: fmt.Sprintf("Error getting page access token: %v", err),
		}
	}

	postID, err := f.createFeedPost(message, pageAccessToken, pageID)
	if err != nil {
		return models.PublishResult{
			Success: false,
			Message: fmt.Sprintf("Error publishing to Facebook: %v", err),
		}
	}

	return models.PublishResult{
		Success: true,
		Message: "Published successfully on Facebook",
		PostID:  postID,
	}
}

func (f *FacebookPublisher) getPageAccessToken(userAccessToken string) (string, string, error) {
	url := fmt.Sprintf("%s/%s/me/accounts", f.baseURL, f.version)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+userAccessToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var fbError facebookErrorResponse
		json.Unmarshal(body, &fbError)
		return "", "", fmt.Errorf("Facebook API error: %s (code: %d)", fbError.Error.Message, fbError.Error.Code)
	}

	var pageResp facebookPageResponse
	if err := json.Unmarshal(body, &pageResp); err != nil {
		return "", "", err
	}

	if len(pageResp.Data) == 0 {
		return "", "", fmt.Errorf("no Facebook pages found for this account")
	}

	// Use the first page
	page := pageResp.Data[0]
	return page.AccessToken, page.ID, nil
}

func (f *FacebookPublisher) createFeedPost(message, pageAccessToken, pageID string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/feed", f.baseURL, f.version, pageID)

	payload := map[string]string{
		"message": message,
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+pageAccessToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var fbError facebookErrorResponse
		json.Unmarshal(body, &fbError)
		return "", fmt.Errorf("Facebook API error: %s", fbError.Error.Message)
	}

	var postResp facebookPostResponse
	if err := json.Unmarshal(body, &postResp); err != nil {
		return "", err
	}

	return postResp.ID, nil
}
