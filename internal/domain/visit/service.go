package visit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"gatepass-server-go/internal/domain/image"
	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
	"gatepass-server-go/internal/platform/logging"
)

// DepartmentAll is the sentinel report filter meaning "no department filter".
const DepartmentAll = "All"

// Submission is one visitor registration as received from the reception desk.
type Submission struct {
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	Address        string `json:"address"`
	IDProof        string `json:"idProof"`
	PersonToMeet   string `json:"personToMeet"`
	Designation    string `json:"designation"`
	Department     string `json:"department"`
	MeetingPurpose string `json:"meetingPurpose"`
	Photo          string `json:"photo"` // data:image/...;base64,...
}

// Service registers visits and serves the report view. Visit records are
// append-only; there is no update or delete path.
type Service struct {
	visits   Repository
	uploader *image.Uploader // nil: photos stored inline
	logger   *logging.Logger
}

func NewService(visits Repository, uploader *image.Uploader, logger *logging.Logger) (*Service, error) {
	if visits == nil {
		return nil, errors.New(errors.KindBootstrap, "visit.new", "visit repository is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindBootstrap, "visit.new", "logger is required")
	}
	return &Service{visits: visits, uploader: uploader, logger: logger}, nil
}

// Create validates the submission, resolves the photo to a stored URL,
// assigns the badge identity and timestamp server-side and persists the
// record. The returned record is the stored one, badge fields included.
func (s *Service) Create(ctx context.Context, sub Submission) (*models.VisitRecord, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	photo, err := image.ParseDataURL(sub.Photo)
	if err != nil {
		return nil, err
	}

	photoURL := sub.Photo
	if s.uploader != nil {
		// upload-then-persist is not atomic; a persist failure orphans
		// the uploaded object
		photoURL, err = s.uploader.Upload(ctx, photo)
		if err != nil {
			return nil, err
		}
	}

	qrData, err := json.Marshal(models.QRPayload{
		Name:           sub.Name,
		Mobile:         sub.Mobile,
		Address:        sub.Address,
		IDProof:        sub.IDProof,
		PersonToMeet:   sub.PersonToMeet,
		MeetingPurpose: sub.MeetingPurpose,
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "visit.create", "failed to encode badge payload", err)
	}

	record := &models.VisitRecord{
		BadgeID:        uuid.NewString(),
		Name:           sub.Name,
		Mobile:         sub.Mobile,
		Address:        sub.Address,
		IDProof:        sub.IDProof,
		PersonToMeet:   sub.PersonToMeet,
		Designation:    sub.Designation,
		Department:     sub.Department,
		MeetingPurpose: sub.MeetingPurpose,
		PhotoURL:       photoURL,
		QRData:         qrData,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.visits.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.InfoTag("VISIT", "registered visitor %s (badge %s)", record.Name, record.BadgeID)
	return record, nil
}

// ListForDay returns visits created on the given UTC calendar day,
// optionally filtered by exact department name. Zero matches is a valid
// result, never an error.
func (s *Service) ListForDay(ctx context.Context, day, department string) ([]models.VisitRecord, error) {
	parsed, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "visit.list", "date must be YYYY-MM-DD", err)
	}

	from := parsed
	to := parsed.Add(24*time.Hour - time.Millisecond)

	if department == DepartmentAll {
		department = ""
	}
	return s.visits.ListByRange(ctx, from, to, department)
}

// QRPNG renders the stored badge payload of a visit as a PNG for printing.
func (s *Service) QRPNG(ctx context.Context, id uint, size int) ([]byte, error) {
	visit, err := s.visits.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, errors.New(errors.KindNotFound, "visit.qr", "visit record not found")
	}

	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(string(visit.QRData), qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(errors.KindDomain, "visit.qr", "failed to render badge qr code", err)
	}
	return png, nil
}

func validateSubmission(sub Submission) error {
	missing := make([]string, 0, 7)
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", sub.Name},
		{"mobile", sub.Mobile},
		{"address", sub.Address},
		{"idProof", sub.IDProof},
		{"personToMeet", sub.PersonToMeet},
		{"meetingPurpose", sub.MeetingPurpose},
		{"photo", sub.Photo},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.KindDomain, "visit.create",
			"missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}
