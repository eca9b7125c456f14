package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/core/domain"
	"github.com/palavraviva/study-platform/internal/core/ports"
)

// interestsKey is the onboarding question whose answer is stored as the
// preference blob instead of with the other quiz responses.
const interestsKey = "q7"

const genderUnknown = "Não informado"

var genderLabels = map[string]string{
	"masculino":    "Masculino",
	"feminino":     "Feminino",
	"nao-informar": "Prefiro não informar",
}

type profileService struct {
	profiles ports.ProfileRepository
	admins   ports.AdminRepository
	users    ports.UserReader
	activity ports.ActivityLogger
	log      zerolog.Logger
}

// NewProfileService returns a ProfileService implementation. users supplies
// the sign-up metadata that seeds a profile row on its first save.
func NewProfileService(
	profiles ports.ProfileRepository,
	admins ports.AdminRepository,
	users ports.UserReader,
	activity ports.ActivityLogger,
	log zerolog.Logger,
) ports.ProfileService {
	return &profileService{profiles: profiles, admins: admins, users: users, activity: activity, log: log}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.ProfileRecord, error) {
	return s.profiles.FindByUserID(ctx, userID)
}

func (s *profileService) GetMembership(ctx context.Context, userID string) (*domain.AdminMembership, error) {
	return s.admins.FindByUserID(ctx, userID)
}

// PersonalData reads the names from the profile row, falling back to the
// identity metadata when no row exists, plus age and gender from the quiz
// responses.
func (s *profileService) PersonalData(ctx context.Context, identity domain.Identity) (*ports.PersonalData, error) {
	out := &ports.PersonalData{
		FirstName: identity.Metadata.FirstName,
		LastName:  identity.Metadata.LastName,
		Gender:    genderUnknown,
	}

	row, err := s.profiles.FindByUserID(ctx, identity.ID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("personal data: %w", err)
	}

	out.FirstName = derefString(row.FirstName)
	out.LastName = derefString(row.LastName)
	if row.QuizResponses == nil || *row.QuizResponses == "" {
		return out, nil
	}

	var answers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(*row.QuizResponses), &answers); err != nil {
		s.log.Warn().Err(err).Str("user_id", identity.ID).Msg("unreadable quiz responses")
		return out, nil
	}
	out.Age = scalarAnswer(answers["q1_age"])
	out.Gender = formatGender(scalarAnswer(answers["q1_gender"]))
	return out, nil
}

func (s *profileService) UpdateName(ctx context.Context, userID, firstName, lastName string) error {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	update := ports.ProfileUpdate{FirstName: &first, LastName: &last, Seed: identitySeed(ctx, s.users, s.log, userID)}
	if err := s.profiles.Upsert(ctx, userID, update); err != nil {
		return fmt.Errorf("update name: %w", err)
	}
	s.activity.LogActivity(domain.ScopeUser, userID, domain.ActivityProfileUpdated, "name")
	return nil
}

// CompleteOnboarding stores the quiz answers and flags onboarding as done.
func (s *profileService) CompleteOnboarding(ctx context.Context, userID string, answers map[string]json.RawMessage) error {
	done := true
	update := ports.ProfileUpdate{OnboardingCompleted: &done, Seed: identitySeed(ctx, s.users, s.log, userID)}

	rest := make(map[string]json.RawMessage, len(answers))
	for k, v := range answers {
		if k == interestsKey {
			continue
		}
		rest[k] = v
	}

	if interests, ok := answers[interestsKey]; ok && !isNullJSON(interests) {
		prefs, err := compactJSON(interests)
		if err != nil {
			return fmt.Errorf("complete onboarding: %w", err)
		}
		update.Preferences = &prefs
	}
	if len(rest) > 0 {
		raw, err := json.Marshal(rest)
		if err != nil {
			return fmt.Errorf("complete onboarding: %w", err)
		}
		quiz := string(raw)
		update.QuizResponses = &quiz
	}

	if err := s.profiles.Upsert(ctx, userID, update); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	s.activity.LogActivity(domain.ScopeUser, userID, domain.ActivityOnboardingCompleted, "")
	return nil
}

// identitySeed returns the sign-up metadata of userID, or nil when the
// account can not be read. The save goes ahead either way.
func identitySeed(ctx context.Context, users ports.UserReader, log zerolog.Logger, userID string) *domain.IdentityMetadata {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("account lookup failed, saving profile without seed")
		return nil
	}
	meta := user.Metadata
	return &meta
}

func formatGender(v string) string {
	if v == "" {
		return genderUnknown
	}
	if label, ok := genderLabels[v]; ok {
		return label
	}
	return v
}

// scalarAnswer renders a string or number answer; anything else is "".
func scalarAnswer(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	return ""
}

func isNullJSON(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func compactJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
