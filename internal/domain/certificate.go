package domain

import "context"

// Certificate is a TESDA certificate owned by a graduate. Portfolios refer to
// certificates by id.
type Certificate struct {
	ID                ItemID `json:"id"`
	GraduateID        int64  `json:"graduateId,omitempty"`
	CourseName        string `json:"courseName" validate:"required,max=200"`
	CertificateNumber string `json:"certificateNumber" validate:"required,max=100"`
	IssueDate         string `json:"issueDate" validate:"required,datetime=2006-01-02"`
	FilePath          string `json:"certificateFilePath,omitempty"`
}

// SameFields reports whether the editable fields of c and other match.
func (c Certificate) SameFields(other Certificate) bool {
	return c.CourseName == other.CourseName &&
		c.CertificateNumber == other.CertificateNumber &&
		c.IssueDate == other.IssueDate
}

// FileUpload is a file picked by the user, held in memory until save.
type FileUpload struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// CertificateGateway is the certificate part of the Tarabaho API.
type CertificateGateway interface {
	ListCertificates(ctx context.Context, token string, graduateID int64) ([]Certificate, error)
	CreateCertificate(ctx context.Context, token string, graduateID int64, cert Certificate, file *FileUpload) (*Certificate, error)
	UpdateCertificate(ctx context.Context, token string, cert Certificate, file *FileUpload) (*Certificate, error)
	DeleteCertificate(ctx context.Context, token string, id int64) error
}
