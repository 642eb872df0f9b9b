package main

import (
	"fmt"
	"os"
	"path/filepath"

	"tarabaho-web/internal/domain"
)

// entry is one nested portfolio item as written in a portfolio file. ID is
// omitted for items that do not exist on the server yet.
type entry[F comparable] struct {
	ID     int64 `yaml:"id,omitempty"`
	Fields F     `yaml:",inline"`
}

type certificateEntry struct {
	ID                int64  `yaml:"id,omitempty"`
	CourseName        string `yaml:"courseName"`
	CertificateNumber string `yaml:"certificateNumber"`
	IssueDate         string `yaml:"issueDate"`
	// File is a local path to attach on push.
	File string `yaml:"file,omitempty"`
}

// portfolioDocument is the editable YAML form of a portfolio used by
// "portfolio pull" and "portfolio push".
type portfolioDocument struct {
	GraduateID          int64             `yaml:"graduateId,omitempty"`
	PortfolioID         int64             `yaml:"portfolioId,omitempty"`
	FullName            string            `yaml:"fullName"`
	ProfessionalTitle   string            `yaml:"professionalTitle"`
	ProfessionalSummary string            `yaml:"professionalSummary"`
	Email               string            `yaml:"email,omitempty"`
	Phone               string            `yaml:"phone,omitempty"`
	Website             string            `yaml:"website,omitempty"`
	Visibility          domain.Visibility `yaml:"visibility"`
	Template            string            `yaml:"designTemplate"`
	// Avatar is a local image path to upload on push.
	Avatar string `yaml:"avatar,omitempty"`

	Skills                  []entry[domain.SkillFields]                  `yaml:"skills"`
	Experiences             []entry[domain.ExperienceFields]             `yaml:"experiences"`
	Awards                  []entry[domain.AwardFields]                  `yaml:"awards"`
	ContinuingEducations    []entry[domain.ContinuingEducationFields]    `yaml:"continuingEducations"`
	ProfessionalMemberships []entry[domain.ProfessionalMembershipFields] `yaml:"professionalMemberships"`
	References              []entry[domain.ReferenceFields]              `yaml:"references"`
	Certificates            []certificateEntry                           `yaml:"certificates"`
}

// fileReader loads a local file for upload.
type fileReader func(path string) (*domain.FileUpload, error)

func readLocalFile(path string) (*domain.FileUpload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.FileUpload{Filename: filepath.Base(path), Data: data}, nil
}

func newDocument(d *domain.PortfolioDraft) *portfolioDocument {
	p := d.Portfolio
	doc := &portfolioDocument{
		GraduateID:          d.GraduateID,
		PortfolioID:         p.ID,
		FullName:            p.FullName,
		ProfessionalTitle:   p.ProfessionalTitle,
		ProfessionalSummary: p.ProfessionalSummary,
		Email:               p.Email,
		Phone:               p.Phone,
		Website:             p.Website,
		Visibility:          p.Visibility,
		Template:            p.Template,
		Skills:              entries(p.Skills, func(s domain.Skill) domain.SkillFields { return s.SkillFields }),
		Experiences:         entries(p.Experiences, func(e domain.Experience) domain.ExperienceFields { return e.ExperienceFields }),
		Awards:              entries(p.Awards, func(a domain.Award) domain.AwardFields { return a.AwardFields }),
		ContinuingEducations: entries(p.ContinuingEducations, func(e domain.ContinuingEducation) domain.ContinuingEducationFields {
			return e.ContinuingEducationFields
		}),
		ProfessionalMemberships: entries(p.ProfessionalMemberships, func(m domain.ProfessionalMembership) domain.ProfessionalMembershipFields {
			return m.ProfessionalMembershipFields
		}),
		References:   entries(p.References, func(r domain.Reference) domain.ReferenceFields { return r.ReferenceFields }),
		Certificates: make([]certificateEntry, 0, len(d.Certificates)),
	}
	for _, c := range d.Certificates {
		id, _ := c.ID.ServerID()
		doc.Certificates = append(doc.Certificates, certificateEntry{
			ID:                id,
			CourseName:        c.CourseName,
			CertificateNumber: c.CertificateNumber,
			IssueDate:         c.IssueDate,
		})
	}
	return doc
}

func entries[T domain.Item[T], F comparable](c domain.Collection[T], fields func(T) F) []entry[F] {
	out := make([]entry[F], 0, len(c))
	for _, item := range c {
		id, _ := item.ItemID().ServerID()
		out = append(out, entry[F]{ID: id, Fields: fields(item)})
	}
	return out
}

// applyDocument turns the differences between doc and the draft into draft
// edits. Items missing from doc are removed, items without an id are added,
// and only items whose fields changed are replaced.
func applyDocument(d *domain.PortfolioDraft, doc *portfolioDocument, read fileReader) error {
	if doc.GraduateID != 0 && doc.GraduateID != d.GraduateID {
		return fmt.Errorf("this file belongs to graduate %d, you are graduate %d", doc.GraduateID, d.GraduateID)
	}

	p := &d.Portfolio
	p.FullName = doc.FullName
	p.ProfessionalTitle = doc.ProfessionalTitle
	p.ProfessionalSummary = doc.ProfessionalSummary
	p.Email = doc.Email
	p.Phone = doc.Phone
	p.Website = doc.Website
	if doc.Visibility != "" {
		p.Visibility = doc.Visibility
	}
	if doc.Template != "" {
		p.Template = doc.Template
	}

	if err := syncCollection("skills", &p.Skills, doc.Skills,
		func(s domain.Skill) domain.SkillFields { return s.SkillFields },
		func(f domain.SkillFields) domain.Skill { return domain.Skill{SkillFields: f} }); err != nil {
		return err
	}
	if err := syncCollection("experiences", &p.Experiences, doc.Experiences,
		func(e domain.Experience) domain.ExperienceFields { return e.ExperienceFields },
		func(f domain.ExperienceFields) domain.Experience { return domain.Experience{ExperienceFields: f} }); err != nil {
		return err
	}
	if err := syncCollection("awards", &p.Awards, doc.Awards,
		func(a domain.Award) domain.AwardFields { return a.AwardFields },
		func(f domain.AwardFields) domain.Award { return domain.Award{AwardFields: f} }); err != nil {
		return err
	}
	if err := syncCollection("continuingEducations", &p.ContinuingEducations, doc.ContinuingEducations,
		func(e domain.ContinuingEducation) domain.ContinuingEducationFields {
			return e.ContinuingEducationFields
		},
		func(f domain.ContinuingEducationFields) domain.ContinuingEducation {
			return domain.ContinuingEducation{ContinuingEducationFields: f}
		}); err != nil {
		return err
	}
	if err := syncCollection("professionalMemberships", &p.ProfessionalMemberships, doc.ProfessionalMemberships,
		func(m domain.ProfessionalMembership) domain.ProfessionalMembershipFields {
			return m.ProfessionalMembershipFields
		},
		func(f domain.ProfessionalMembershipFields) domain.ProfessionalMembership {
			return domain.ProfessionalMembership{ProfessionalMembershipFields: f}
		}); err != nil {
		return err
	}
	if err := syncCollection("references", &p.References, doc.References,
		func(r domain.Reference) domain.ReferenceFields { return r.ReferenceFields },
		func(f domain.ReferenceFields) domain.Reference { return domain.Reference{ReferenceFields: f} }); err != nil {
		return err
	}

	if err := syncCertificates(d, doc.Certificates, read); err != nil {
		return err
	}

	if doc.Avatar != "" {
		file, err := read(doc.Avatar)
		if err != nil {
			return fmt.Errorf("avatar: %w", err)
		}
		if err := d.SetAvatar(*file); err != nil {
			return err
		}
	}
	return nil
}

func syncCollection[T domain.Item[T], F comparable](name string, c *domain.Collection[T], docs []entry[F], fields func(T) F, build func(F) T) error {
	wanted := make(map[int64]F, len(docs))
	for _, e := range docs {
		if e.ID == 0 {
			continue
		}
		if _, ok := c.Find(domain.PersistedID(e.ID)); !ok {
			return fmt.Errorf("%s: no item with id %d", name, e.ID)
		}
		wanted[e.ID] = e.Fields
	}

	// Snapshot ids first; Remove reslices the collection.
	var stale []domain.ItemID
	for _, item := range *c {
		id, ok := item.ItemID().ServerID()
		if !ok {
			continue
		}
		if _, keep := wanted[id]; !keep {
			stale = append(stale, item.ItemID())
		}
	}
	for _, id := range stale {
		c.Remove(id)
	}

	for _, e := range docs {
		if e.ID == 0 {
			c.Add(build(e.Fields))
			continue
		}
		id := domain.PersistedID(e.ID)
		current, _ := c.Find(id)
		if fields(current) == e.Fields {
			continue
		}
		if err := c.Replace(id, build(e.Fields)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func syncCertificates(d *domain.PortfolioDraft, docs []certificateEntry, read fileReader) error {
	keep := make(map[int64]bool, len(docs))
	for _, e := range docs {
		if e.ID == 0 {
			continue
		}
		if _, ok := d.FindCertificate(domain.PersistedID(e.ID)); !ok {
			return fmt.Errorf("certificates: no certificate with id %d", e.ID)
		}
		keep[e.ID] = true
	}

	var stale []domain.ItemID
	for _, c := range d.Certificates {
		if id, ok := c.ID.ServerID(); ok && !keep[id] {
			stale = append(stale, c.ID)
		}
	}
	for _, id := range stale {
		if _, err := d.RemoveCertificate(id); err != nil {
			return err
		}
	}

	for _, e := range docs {
		cert := domain.Certificate{
			CourseName:        e.CourseName,
			CertificateNumber: e.CertificateNumber,
			IssueDate:         e.IssueDate,
		}
		var file *domain.FileUpload
		if e.File != "" {
			f, err := read(e.File)
			if err != nil {
				return fmt.Errorf("certificate %q: %w", e.CourseName, err)
			}
			file = f
		}

		if e.ID == 0 {
			if _, err := d.AddCertificate(cert, file); err != nil {
				return err
			}
			continue
		}
		if err := d.ReplaceCertificate(domain.PersistedID(e.ID), cert, file); err != nil {
			return err
		}
	}
	return nil
}
