package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/repository"
)

// knownSettingKeys is the full set exposed through the admin endpoint.
var knownSettingKeys = []string{
	models.SettingEmailAPIKey,
	models.SettingEmailFrom,
	models.SettingSMTPHost,
	models.SettingSMTPPort,
	models.SettingSMTPUser,
	models.SettingSMTPPassword,
	models.SettingSMSAPIKey,
	models.SettingSMSAPISecret,
	models.SettingSMSSender,
}

type settingsService struct {
	store    string
	repo     repository.Repository
	logger   *zap.Logger
	mu       sync.RWMutex
	defaults map[string]string
	mem      map[string]string
}

// NewSettingsService builds the credential store. With store "env" the
// values live in process memory only and reset on restart; with "table"
// admin updates are persisted and read back on every lookup.
func NewSettingsService(cfg *config.Config, repo repository.Repository, logger *zap.Logger) SettingsService {
	defaults := map[string]string{
		models.SettingEmailAPIKey:  cfg.Email.APIKey,
		models.SettingEmailFrom:    cfg.Email.From,
		models.SettingSMTPHost:     cfg.Email.SMTPHost,
		models.SettingSMTPPort:     strconv.Itoa(cfg.Email.SMTPPort),
		models.SettingSMTPUser:     cfg.Email.SMTPUser,
		models.SettingSMTPPassword: cfg.Email.SMTPPassword,
		models.SettingSMSAPIKey:    cfg.SMS.APIKey,
		models.SettingSMSAPISecret: cfg.SMS.APISecret,
		models.SettingSMSSender:    cfg.SMS.Sender,
	}

	mem := make(map[string]string, len(defaults))
	for k, v := range defaults {
		mem[k] = v
	}

	return &settingsService{
		store:    cfg.Settings.Store,
		repo:     repo,
		logger:   logger,
		defaults: defaults,
		mem:      mem,
	}
}

// Lookup resolves a credential at call time. Table lookups fall back to the
// configured default when the row is absent or the query fails.
func (s *settingsService) Lookup(ctx context.Context, key string) string {
	if s.store == "table" {
		value, found, err := s.repo.Settings().Get(ctx, key)
		if err != nil {
			s.logger.Warn("Settings lookup failed, using configured value",
				zap.String("key", key),
				zap.Error(err))
		} else if found {
			return value
		}
		return s.defaults[key]
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mem[key]
}

func (s *settingsService) All(ctx context.Context) ([]MaskedSetting, error) {
	values := make(map[string]string, len(knownSettingKeys))
	for _, key := range knownSettingKeys {
		values[key] = s.Lookup(ctx, key)
	}

	result := make([]MaskedSetting, 0, len(values))
	for _, key := range knownSettingKeys {
		result = append(result, MaskedSetting{Key: key, Value: maskSecret(key, values[key])})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (s *settingsService) Update(ctx context.Context, values map[string]string) error {
	for key, value := range values {
		if !isKnownSettingKey(key) {
			continue
		}

		if s.store == "table" {
			if err := s.repo.Settings().Upsert(ctx, key, value); err != nil {
				return err
			}
			continue
		}

		s.mu.Lock()
		s.mem[key] = value
		s.mu.Unlock()
	}

	return nil
}

func isKnownSettingKey(key string) bool {
	for _, k := range knownSettingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// maskSecret hides credential values on read; only their presence is shown.
func maskSecret(key, value string) string {
	if value == "" {
		return ""
	}
	if strings.Contains(key, "key") || strings.Contains(key, "secret") || strings.Contains(key, "password") {
		return "***"
	}
	return value
}
