package tarabaho

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"tarabaho-web/internal/domain"
)

func (c *Client) ListCertificates(ctx context.Context, token string, graduateID int64) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	path := fmt.Sprintf("/api/certificate/graduate/%d", graduateID)
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &certs); err != nil {
		return nil, err
	}
	if certs == nil {
		certs = []domain.Certificate{}
	}
	return certs, nil
}

func certificateParts(cert domain.Certificate, file *domain.FileUpload) []part {
	parts := []part{
		field("courseName", cert.CourseName),
		field("certificateNumber", cert.CertificateNumber),
		field("issueDate", cert.IssueDate),
	}
	if file != nil && len(file.Data) > 0 {
		parts = append(parts, filePart("certificateFile", file))
	}
	return parts
}

// CreateCertificate posts a new certificate for the graduate as multipart form data.
func (c *Client) CreateCertificate(ctx context.Context, token string, graduateID int64, cert domain.Certificate, file *domain.FileUpload) (*domain.Certificate, error) {
	parts := append(certificateParts(cert, file), field("graduateId", strconv.FormatInt(graduateID, 10)))

	var created domain.Certificate
	if err := c.doMultipart(ctx, http.MethodPost, "/api/certificate", token, parts, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCertificate(ctx context.Context, token string, cert domain.Certificate, file *domain.FileUpload) (*domain.Certificate, error) {
	id, ok := cert.ID.ServerID()
	if !ok {
		return nil, fmt.Errorf("tarabaho: cannot update certificate %s before it is created", cert.ID)
	}

	var updated domain.Certificate
	path := fmt.Sprintf("/api/certificate/%d", id)
	if err := c.doMultipart(ctx, http.MethodPut, path, token, certificateParts(cert, file), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteCertificate(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/certificate/%d", id), token, nil, nil)
}
