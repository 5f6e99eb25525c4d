package service

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/pkg/redact"
)

// RegistrationRegion — регион, в котором зарегистрирован email.
// Без хранилища, без записи или при сбое хранилища — регион шлюза.
func (s *Service) RegistrationRegion(ctx context.Context, email string) string {
	const op = "service.auth.RegistrationRegion"

	if s.regions == nil || email == "" {
		return s.region
	}

	rec, err := s.regions.Find(ctx, email)
	if err != nil {
		log.From(ctx).Warn("region_lookup_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
			slog.String("err", err.Error()),
		)
		return s.region
	}

	if rec == nil || rec.Region == "" {
		return s.region
	}

	return rec.Region
}

// recordRegion запоминает регион нового аккаунта. Сбой только логируется:
// аккаунт уже создан, а без записи логин уйдёт в регион шлюза.
func (s *Service) recordRegion(ctx context.Context, email, region string) {
	const op = "service.auth.recordRegion"

	if s.regions == nil {
		return
	}

	rec := models.RegionRecord{Email: email, Region: region, Version: 1}
	if _, err := s.regions.Init(ctx, email, rec); err != nil {
		log.From(ctx).Warn("region_record_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(email)),
			slog.String("err", err.Error()),
		)
	}
}
