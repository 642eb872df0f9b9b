package tarabaho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
)

func (c *Client) GetGraduateByUsername(ctx context.Context, token string, username string) (*domain.Graduate, error) {
	var g domain.Graduate
	path := "/api/graduate/username/" + url.PathEscape(username)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) GetGraduate(ctx context.Context, token string, id int64) (*domain.Graduate, error) {
	var g domain.Graduate
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/graduate/%d", id), token, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) UpdateGraduate(ctx context.Context, token string, g *domain.Graduate) (*domain.Graduate, error) {
	var updated domain.Graduate
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/graduate/%d", g.ID), token, g, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

type pictureResponse struct {
	ProfilePicture string `json:"profilePicture"`
	URL            string `json:"url"`
}

// UploadGraduatePicture uploads an avatar and returns its public URL. The API
// answers with either the updated graduate, a {url} object, or the bare URL.
func (c *Client) UploadGraduatePicture(ctx context.Context, token string, id int64, file domain.FileUpload) (string, error) {
	var raw []byte
	path := fmt.Sprintf("/api/graduate/%d/upload-picture", id)
	if err := c.doMultipart(ctx, http.MethodPost, path, token, []part{filePart("file", &file)}, &raw); err != nil {
		return "", err
	}

	var resp pictureResponse
	if json.Unmarshal(raw, &resp) == nil {
		if resp.ProfilePicture != "" {
			return resp.ProfilePicture, nil
		}
		if resp.URL != "" {
			return resp.URL, nil
		}
	}

	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") || strings.HasPrefix(text, "/") {
		return text, nil
	}
	return "", apperror.New(http.StatusBadGateway, "Upload succeeded but no picture URL was returned", nil)
}
