package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type DraftState string

const (
	DraftLoading         DraftState = "LOADING"
	DraftEmpty           DraftState = "EMPTY"
	DraftEditing         DraftState = "EDITING"
	DraftLoadFailed      DraftState = "LOAD_FAILED"
	DraftSubmitting      DraftState = "SUBMITTING"
	DraftSubmitSucceeded DraftState = "SUBMIT_SUCCEEDED"
)

var (
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrDraftNotEditable = errors.New("portfolio draft is not editable")
)

// DraftCertificate is a certificate as held by the editor. Modified is the
// per-item dirty flag: only modified persisted certificates are sent back.
type DraftCertificate struct {
	Certificate
	Modified bool        `json:"modified"`
	File     *FileUpload `json:"file,omitempty"`
}

// PortfolioDraft is the editing state of one portfolio editor session.
type PortfolioDraft struct {
	Token                 string             `json:"token"`
	GraduateID            int64              `json:"graduateId"`
	State                 DraftState         `json:"state"`
	Portfolio             PortfolioAggregate `json:"portfolio"`
	Certificates          []DraftCertificate `json:"certificates"`
	RemovedCertificateIDs []int64            `json:"removedCertificateIds"`
	Avatar                *FileUpload        `json:"avatar,omitempty"`
	Error                 string             `json:"error,omitempty"`
}

// NewDraft seeds an editor. A nil portfolio opens the editor in create mode.
func NewDraft(graduateID int64, existing *PortfolioAggregate, certs []Certificate) *PortfolioDraft {
	d := &PortfolioDraft{
		Token:                 uuid.NewString(),
		GraduateID:            graduateID,
		State:                 DraftEmpty,
		Certificates:          make([]DraftCertificate, 0, len(certs)),
		RemovedCertificateIDs: []int64{},
	}
	if existing != nil {
		d.Portfolio = *existing
		d.State = DraftEditing
	}
	d.Portfolio.GraduateID = graduateID
	d.Portfolio.Normalize()

	for _, c := range certs {
		d.Certificates = append(d.Certificates, DraftCertificate{Certificate: c})
	}
	return d
}

// FailedDraft is the editor state when loading went wrong.
func FailedDraft(graduateID int64, err error) *PortfolioDraft {
	return &PortfolioDraft{
		GraduateID: graduateID,
		State:      DraftLoadFailed,
		Error:      err.Error(),
	}
}

// Creating reports whether saving will create the portfolio.
func (d *PortfolioDraft) Creating() bool {
	return d.Portfolio.ID == 0
}

func (d *PortfolioDraft) editable() error {
	switch d.State {
	case DraftEmpty, DraftEditing:
		return nil
	case DraftSubmitting:
		return ErrSubmitInProgress
	default:
		return fmt.Errorf("%w (state %s)", ErrDraftNotEditable, d.State)
	}
}

// Normalize repairs a draft that came back from a client: defaults, ids for
// new items, and a token if it was dropped.
func (d *PortfolioDraft) Normalize() {
	if d.Token == "" {
		d.Token = uuid.NewString()
	}
	if d.State == "" {
		d.State = DraftEditing
		if d.Creating() {
			d.State = DraftEmpty
		}
	}
	d.Portfolio.GraduateID = d.GraduateID
	d.Portfolio.Normalize()
	for i := range d.Certificates {
		if d.Certificates[i].ID.IsZero() {
			d.Certificates[i].ID = NewPendingID()
		}
	}
	if d.RemovedCertificateIDs == nil {
		d.RemovedCertificateIDs = []int64{}
	}
}

// SetAvatar selects a new avatar image to upload on save.
func (d *PortfolioDraft) SetAvatar(file FileUpload) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.Avatar = &file
	return nil
}

// AddCertificate appends a certificate under a pending id.
func (d *PortfolioDraft) AddCertificate(c Certificate, file *FileUpload) (ItemID, error) {
	if err := d.editable(); err != nil {
		return ItemID{}, err
	}
	c.ID = NewPendingID()
	c.GraduateID = d.GraduateID
	d.Certificates = append(d.Certificates, DraftCertificate{Certificate: c, File: file})
	return c.ID, nil
}

// ReplaceCertificate edits a certificate in place. A persisted certificate is
// flagged modified only when a field or the file actually changes. A nil file
// keeps the current attachment.
func (d *PortfolioDraft) ReplaceCertificate(id ItemID, c Certificate, file *FileUpload) error {
	if err := d.editable(); err != nil {
		return err
	}
	i := d.certificateIndex(id)
	if i < 0 {
		return fmt.Errorf("certificate %s not found", id)
	}
	current := &d.Certificates[i]

	changed := !current.SameFields(c) || file != nil
	current.CourseName = c.CourseName
	current.CertificateNumber = c.CertificateNumber
	current.IssueDate = c.IssueDate
	if file != nil {
		current.File = file
	}
	if current.ID.IsPersisted() && changed {
		current.Modified = true
	}
	return nil
}

// RemoveCertificate drops a certificate from the draft. Persisted ones are
// remembered so that save deletes them on the server.
func (d *PortfolioDraft) RemoveCertificate(id ItemID) (bool, error) {
	if err := d.editable(); err != nil {
		return false, err
	}
	i := d.certificateIndex(id)
	if i < 0 {
		return false, nil
	}
	if serverID, ok := id.ServerID(); ok && !containsID(d.RemovedCertificateIDs, serverID) {
		d.RemovedCertificateIDs = append(d.RemovedCertificateIDs, serverID)
	}
	d.Certificates = append(d.Certificates[:i], d.Certificates[i+1:]...)
	return true, nil
}

func (d *PortfolioDraft) FindCertificate(id ItemID) (DraftCertificate, bool) {
	if i := d.certificateIndex(id); i >= 0 {
		return d.Certificates[i], true
	}
	return DraftCertificate{}, false
}

func (d *PortfolioDraft) certificateIndex(id ItemID) int {
	for i := range d.Certificates {
		if d.Certificates[i].ID == id {
			return i
		}
	}
	return -1
}

// BeginSubmit moves the draft into Submitting. A second call before the first
// submission finishes fails with ErrSubmitInProgress.
func (d *PortfolioDraft) BeginSubmit() error {
	if err := d.editable(); err != nil {
		return err
	}
	d.State = DraftSubmitting
	d.Error = ""
	return nil
}

// FailSubmit returns the draft to editing with the error shown to the user.
// Work already done on the server stays done.
func (d *PortfolioDraft) FailSubmit(err error) {
	d.State = DraftEditing
	if d.Creating() {
		d.State = DraftEmpty
	}
	d.Error = err.Error()
}

// CompleteSubmit finalizes the draft with what the server stored.
func (d *PortfolioDraft) CompleteSubmit(saved *PortfolioAggregate) {
	if saved != nil {
		d.Portfolio = *saved
		d.Portfolio.Normalize()
	}
	for i := range d.Certificates {
		d.Certificates[i].Modified = false
		d.Certificates[i].File = nil
	}
	d.RemovedCertificateIDs = []int64{}
	d.Avatar = nil
	d.Error = ""
	d.State = DraftSubmitSucceeded
}

// ResolveCertificate records that a pending certificate now exists on the
// server under serverID.
func (d *PortfolioDraft) ResolveCertificate(pending ItemID, serverID int64) {
	if i := d.certificateIndex(pending); i >= 0 {
		d.Certificates[i].ID = PersistedID(serverID)
		d.Certificates[i].Modified = false
		d.Certificates[i].File = nil
	}
}

// MarkCertificateSaved clears the dirty flag after a successful update.
func (d *PortfolioDraft) MarkCertificateSaved(id ItemID) {
	if i := d.certificateIndex(id); i >= 0 {
		d.Certificates[i].Modified = false
		d.Certificates[i].File = nil
	}
}

// ForgetRemoved drops id from the pending deletions once the server deleted it.
func (d *PortfolioDraft) ForgetRemoved(id int64) {
	kept := d.RemovedCertificateIDs[:0]
	for _, v := range d.RemovedCertificateIDs {
		if v != id {
			kept = append(kept, v)
		}
	}
	d.RemovedCertificateIDs = kept
}
