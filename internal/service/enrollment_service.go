package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/repository"
)

const classCodeAttempts = 5

// EnrollmentPolicy tunes role checks on join codes. Teacher codes always
// require the teacher role; student codes only check the role when
// StrictStudentCode is set.
type EnrollmentPolicy struct {
	StrictStudentCode bool
}

// EnrollmentService manages class membership.
type EnrollmentService interface {
	JoinClass(ctx context.Context, actor Actor, req dto.JoinClassRequest) (dto.JoinClassResponse, error)
	ListClasses(ctx context.Context, actor Actor) ([]dto.ClassResponse, error)
	CreateClass(ctx context.Context, actor Actor, req dto.ClassCreateRequest) (dto.ClassResponse, error)
}

type enrollmentService struct {
	classes   repository.ClassRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	policy    EnrollmentPolicy
	logger    zerolog.Logger
	newCode   func() string
}

// NewEnrollmentService constructs the enrollment gate.
func NewEnrollmentService(classes repository.ClassRepository, activity ActivityRecorder, validate *validator.Validate, policy EnrollmentPolicy, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		classes:   classes,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		policy:    policy,
		logger:    logger.With().Str("component", "enrollment_service").Logger(),
		newCode:   randomClassCode,
	}
}

func (s *enrollmentService) JoinClass(ctx context.Context, actor Actor, req dto.JoinClassRequest) (dto.JoinClassResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return dto.JoinClassResponse{}, ErrEmptyClassCode
	}

	class, err := s.classes.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.JoinClassResponse{}, ErrClassNotFound
		}
		return dto.JoinClassResponse{}, err
	}

	if class.CodeTeacher == code {
		if actor.Role != models.RoleTeacher {
			return dto.JoinClassResponse{}, ErrTeacherCodeRole
		}
	} else if s.policy.StrictStudentCode && actor.Role != models.RoleStudent {
		return dto.JoinClassResponse{}, ErrStudentCodeRole
	}

	if err := s.enroll(ctx, actor, class); err != nil {
		return dto.JoinClassResponse{}, err
	}

	return dto.JoinClassResponse{ClassID: class.ID, ClassName: class.Name}, nil
}

func (s *enrollmentService) enroll(ctx context.Context, actor Actor, class models.Class) error {
	created, err := s.classes.Enroll(ctx, actor.ID, class.ID)
	if err != nil {
		return err
	}
	if !created {
		return ErrAlreadyEnrolled
	}

	s.logger.Info().Uint("user_id", actor.ID).Uint("class_id", class.ID).Msg("user joined class")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionEnrollmentJoin,
		EntityType: "class",
		EntityID:   uintRef(class.ID),
	})

	return nil
}

func (s *enrollmentService) ListClasses(ctx context.Context, actor Actor) ([]dto.ClassResponse, error) {
	enrolled, err := s.classes.ListEnrolled(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(enrolled) == 0 {
		return nil, ErrNoClasses
	}

	policy, _ := policyFor(actor.Role)
	responses := make([]dto.ClassResponse, 0, len(enrolled))
	for _, item := range enrolled {
		response := dto.NewClassResponse(item.Class, policy.seesJoinCodes)
		joinedAt := item.JoinedAt
		response.JoinedAt = &joinedAt
		responses = append(responses, response)
	}

	return responses, nil
}

func (s *enrollmentService) CreateClass(ctx context.Context, actor Actor, req dto.ClassCreateRequest) (dto.ClassResponse, error) {
	policy, err := policyFor(actor.Role)
	if err != nil || !policy.createsClass {
		return dto.ClassResponse{}, ErrClassCreateRole
	}

	req.Name = plainText(s.sanitizer, req.Name)
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassResponse{}, validationError(err)
	}

	creator := actor.ID
	var class models.Class
	created := false
	for attempt := 0; attempt < classCodeAttempts; attempt++ {
		token := s.newCode()
		class = models.Class{
			Name:        req.Name,
			CodeTeacher: "T" + token,
			CodeStudent: "S" + token,
			CreatedBy:   &creator,
		}
		err := s.classes.CreateWithOwner(ctx, &class, creator)
		if err == nil {
			created = true
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ClassResponse{}, err
		}
		s.logger.Debug().Int("attempt", attempt+1).Msg("class code collision, regenerating")
	}
	if !created {
		return dto.ClassResponse{}, ErrClassCodeExhausted
	}

	s.logger.Info().Uint("user_id", actor.ID).Uint("class_id", class.ID).Msg("class created")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionClassCreate,
		EntityType: "class",
		EntityID:   uintRef(class.ID),
		Metadata:   map[string]interface{}{"name": class.Name},
	})
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionEnrollmentJoin,
		EntityType: "class",
		EntityID:   uintRef(class.ID),
	})

	return dto.NewClassResponse(class, true), nil
}

func randomClassCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:7])
}
