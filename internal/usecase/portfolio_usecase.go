package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"tarabaho-web/internal/domain"
	"tarabaho-web/pkg/apperror"
	"tarabaho-web/pkg/logger"
	"tarabaho-web/pkg/upload"
	"tarabaho-web/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	defaultAvatarDimension = 512
	defaultAvatarQuality   = 85
)

// AvatarOptions controls how a picked avatar is re-encoded before upload.
type AvatarOptions struct {
	MaxDimension int
	Quality      int
}

type PortfolioDeps struct {
	Graduates    domain.GraduateGateway
	Portfolios   domain.PortfolioGateway
	Certificates domain.CertificateGateway
	Checkpoints  domain.CheckpointRepository
	Validate     *validator.Validate
	Avatar       AvatarOptions
}

type portfolioUsecase struct {
	graduates    domain.GraduateGateway
	portfolios   domain.PortfolioGateway
	certificates domain.CertificateGateway
	checkpoints  domain.CheckpointRepository
	validate     *validator.Validate
	avatar       AvatarOptions

	// submitting holds the draft tokens with a save underway.
	submitting sync.Map
}

func NewPortfolioUsecase(deps PortfolioDeps) domain.PortfolioUsecase {
	if deps.Avatar.MaxDimension <= 0 {
		deps.Avatar.MaxDimension = defaultAvatarDimension
	}
	if deps.Avatar.Quality <= 0 || deps.Avatar.Quality > 100 {
		deps.Avatar.Quality = defaultAvatarQuality
	}
	return &portfolioUsecase{
		graduates:    deps.Graduates,
		portfolios:   deps.Portfolios,
		certificates: deps.Certificates,
		checkpoints:  deps.Checkpoints,
		validate:     deps.Validate,
		avatar:       deps.Avatar,
	}
}

// OpenEditor loads the signed-in graduate's portfolio and certificates into a
// draft. A missing portfolio opens the editor empty; any other load failure
// is reported in the draft state rather than as an error.
func (u *portfolioUsecase) OpenEditor(ctx context.Context) (*domain.PortfolioDraft, error) {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return nil, err
	}

	grad, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		if apperror.IsUnauthorized(err) {
			return nil, dropOnUnauthorized(ctx, m, err)
		}
		logger.Log.Warn("Failed to resolve graduate for editor", "username", sess.Username, "error", err)
		return domain.FailedDraft(0, err), nil
	}

	certs, err := u.certificates.ListCertificates(ctx, sess.Token, grad.ID)
	if err != nil {
		if apperror.IsUnauthorized(err) {
			return nil, dropOnUnauthorized(ctx, m, err)
		}
		return domain.FailedDraft(grad.ID, err), nil
	}

	existing, err := u.portfolios.GetPortfolioByGraduate(ctx, sess.Token, grad.ID)
	switch {
	case err == nil:
		if err := m.SetPortfolioID(ctx, existing.ID); err != nil {
			return nil, err
		}
	case apperror.IsNotFound(err):
		existing = nil
	case apperror.IsUnauthorized(err):
		return nil, dropOnUnauthorized(ctx, m, err)
	default:
		return domain.FailedDraft(grad.ID, err), nil
	}

	return domain.NewDraft(grad.ID, existing, certs), nil
}

// Save submits the whole draft: avatar, certificates, deletions, then the
// portfolio itself. Steps run one after another and stop at the first
// failure. Finished work is recorded in a checkpoint under the draft token so
// that saving the same draft again skips it.
func (u *portfolioUsecase) Save(ctx context.Context, draft *domain.PortfolioDraft) (*domain.PortfolioAggregate, error) {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return nil, err
	}

	draft.Normalize()
	if err := u.checkDraft(draft); err != nil {
		return nil, err
	}

	grad, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		return nil, dropOnUnauthorized(ctx, m, err)
	}
	if draft.GraduateID != 0 && draft.GraduateID != grad.ID {
		return nil, apperror.Forbidden("You can only edit your own portfolio")
	}
	draft.GraduateID = grad.ID
	draft.Portfolio.GraduateID = grad.ID

	if _, busy := u.submitting.LoadOrStore(draft.Token, struct{}{}); busy {
		return nil, submitInProgress()
	}
	defer u.submitting.Delete(draft.Token)

	if err := draft.BeginSubmit(); err != nil {
		return nil, apperror.New(http.StatusConflict, err.Error(), err)
	}

	saved, err := u.submit(ctx, sess.Token, draft)
	if err != nil {
		err = dropOnUnauthorized(ctx, m, err)
		draft.FailSubmit(err)
		logger.Log.Warn("Portfolio save failed", "graduate_id", grad.ID, "draft", draft.Token, "error", err)
		return nil, err
	}

	if err := m.SetPortfolioID(ctx, saved.ID); err != nil {
		logger.Log.Warn("Failed to remember portfolio id", "error", err)
	}
	draft.CompleteSubmit(saved)
	logger.Log.Info("Portfolio saved", "graduate_id", grad.ID, "portfolio_id", saved.ID)
	return saved, nil
}

// checkDraft runs every local check so that an invalid draft costs no calls.
func (u *portfolioUsecase) checkDraft(draft *domain.PortfolioDraft) error {
	if err := u.validate.Struct(&draft.Portfolio); err != nil {
		return apperror.Validation("Please fix the highlighted fields", validation.FieldErrors(err))
	}
	for _, c := range draft.Certificates {
		if err := u.validate.Struct(c.Certificate); err != nil {
			fields := validation.FieldErrors(err)
			return apperror.Validation(fmt.Sprintf("Certificate %q is incomplete", c.CourseName), fields)
		}
		if c.File != nil {
			if err := upload.Check(upload.KindCertificate, c.File.Filename, c.File.Data); err != nil {
				return apperror.Validation("Invalid certificate file", map[string]string{"certificateFile": err.Error()})
			}
		}
	}
	if draft.Avatar != nil {
		if err := upload.Check(upload.KindAvatar, draft.Avatar.Filename, draft.Avatar.Data); err != nil {
			return apperror.Validation("Invalid profile picture", map[string]string{"avatar": err.Error()})
		}
	}
	// Every certificate in the draft resolves to exactly one id, so an empty
	// list here means an empty list at the portfolio step.
	if draft.Creating() && len(draft.Certificates) == 0 {
		return apperror.Validation("Portfolio must have at least one certificate",
			map[string]string{"certificates": "Add at least one certificate"})
	}
	return nil
}

func (u *portfolioUsecase) submit(ctx context.Context, token string, draft *domain.PortfolioDraft) (*domain.PortfolioAggregate, error) {
	cp, err := u.checkpoints.Get(ctx, draft.Token)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if cp == nil || cp.GraduateID != draft.GraduateID {
		cp = domain.NewSaveCheckpoint(draft.Token, draft.GraduateID)
	}

	if err := u.saveAvatar(ctx, token, draft, cp); err != nil {
		return nil, err
	}
	ids, err := u.saveCertificates(ctx, token, draft, cp)
	if err != nil {
		return nil, err
	}
	if err := u.deleteCertificates(ctx, token, draft, cp); err != nil {
		return nil, err
	}

	draft.Portfolio.CertificateIDs = ids
	var saved *domain.PortfolioAggregate
	if draft.Creating() {
		saved, err = u.portfolios.CreatePortfolio(ctx, token, draft.GraduateID, &draft.Portfolio)
	} else {
		saved, err = u.portfolios.UpdatePortfolio(ctx, token, &draft.Portfolio)
	}
	if err != nil {
		return nil, err
	}

	if err := u.checkpoints.Delete(ctx, draft.Token); err != nil {
		logger.Log.Warn("Failed to drop save checkpoint", "draft", draft.Token, "error", err)
	}
	return saved, nil
}

func (u *portfolioUsecase) record(ctx context.Context, cp *domain.SaveCheckpoint, step domain.SaveStep) error {
	if step > cp.Step {
		cp.Step = step
	}
	if err := u.checkpoints.Save(ctx, cp); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *portfolioUsecase) saveAvatar(ctx context.Context, token string, draft *domain.PortfolioDraft, cp *domain.SaveCheckpoint) error {
	if cp.Step >= domain.StepAvatar {
		if cp.AvatarURL != "" {
			draft.Portfolio.Avatar = cp.AvatarURL
			draft.Avatar = nil
		}
		return nil
	}
	if draft.Avatar == nil {
		return u.record(ctx, cp, domain.StepAvatar)
	}

	file := *draft.Avatar
	if upload.IsImage(file.Data) {
		compressed, err := upload.CompressImage(file.Data, u.avatar.MaxDimension, u.avatar.Quality)
		if err != nil {
			logger.Log.Warn("Avatar compression failed, uploading original", "error", err)
		} else {
			file = domain.FileUpload{Filename: upload.JPEGName(file.Filename), Data: compressed}
		}
	}

	url, err := u.graduates.UploadGraduatePicture(ctx, token, draft.GraduateID, file)
	if err != nil {
		return err
	}
	draft.Portfolio.Avatar = url
	draft.Avatar = nil
	cp.AvatarURL = url
	return u.record(ctx, cp, domain.StepAvatar)
}

// saveCertificates resolves every draft certificate to a server id: pending
// ones are created, modified ones updated and untouched ones reused as is.
func (u *portfolioUsecase) saveCertificates(ctx context.Context, token string, draft *domain.PortfolioDraft, cp *domain.SaveCheckpoint) ([]int64, error) {
	ids := make([]int64, 0, len(draft.Certificates))

	for i := range draft.Certificates {
		dc := draft.Certificates[i]

		if dc.ID.IsPending() {
			serverID, done := cp.CreatedCertificates[dc.ID.String()]
			if !done {
				created, err := u.certificates.CreateCertificate(ctx, token, draft.GraduateID, dc.Certificate, dc.File)
				if err != nil {
					return nil, err
				}
				var ok bool
				if serverID, ok = created.ID.ServerID(); !ok {
					return nil, apperror.Unavailable("The Tarabaho service did not return a certificate id", nil)
				}
				cp.CreatedCertificates[dc.ID.String()] = serverID
				if err := u.record(ctx, cp, cp.Step); err != nil {
					return nil, err
				}
			}
			draft.ResolveCertificate(dc.ID, serverID)
			ids = append(ids, serverID)
			continue
		}

		serverID, _ := dc.ID.ServerID()
		if dc.Modified && !cp.Updated(serverID) {
			if _, err := u.certificates.UpdateCertificate(ctx, token, dc.Certificate, dc.File); err != nil {
				return nil, err
			}
			cp.UpdatedCertificateIDs = append(cp.UpdatedCertificateIDs, serverID)
			if err := u.record(ctx, cp, cp.Step); err != nil {
				return nil, err
			}
		}
		draft.MarkCertificateSaved(dc.ID)
		ids = append(ids, serverID)
	}

	if err := u.record(ctx, cp, domain.StepCertificates); err != nil {
		return nil, err
	}
	return ids, nil
}

// deleteCertificates removes the certificates the user dropped from the
// draft. One that is already gone counts as deleted.
func (u *portfolioUsecase) deleteCertificates(ctx context.Context, token string, draft *domain.PortfolioDraft, cp *domain.SaveCheckpoint) error {
	removed := append([]int64(nil), draft.RemovedCertificateIDs...)
	for _, id := range removed {
		if !cp.Deleted(id) {
			err := u.certificates.DeleteCertificate(ctx, token, id)
			if err != nil && !apperror.IsNotFound(err) {
				return err
			}
			cp.DeletedCertificateIDs = append(cp.DeletedCertificateIDs, id)
			if err := u.record(ctx, cp, cp.Step); err != nil {
				return err
			}
		}
		draft.ForgetRemoved(id)
	}
	return u.record(ctx, cp, domain.StepDeletions)
}

// Delete removes the signed-in graduate's portfolio. Certificates stay.
func (u *portfolioUsecase) Delete(ctx context.Context) error {
	m, sess, err := requireGraduate(ctx)
	if err != nil {
		return err
	}

	grad, err := u.graduates.GetGraduateByUsername(ctx, sess.Token, sess.Username)
	if err != nil {
		return dropOnUnauthorized(ctx, m, err)
	}
	existing, err := u.portfolios.GetPortfolioByGraduate(ctx, sess.Token, grad.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NotFound("You do not have a portfolio yet")
		}
		return dropOnUnauthorized(ctx, m, err)
	}

	if err := u.portfolios.DeletePortfolio(ctx, sess.Token, existing.ID); err != nil {
		return dropOnUnauthorized(ctx, m, err)
	}
	logger.Log.Info("Portfolio deleted", "graduate_id", grad.ID, "portfolio_id", existing.ID)
	return m.SetPortfolioID(ctx, 0)
}
