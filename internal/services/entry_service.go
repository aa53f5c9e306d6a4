package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"dropchat/internal/code"
	"dropchat/internal/metadata"
	"dropchat/internal/metrics"
	"dropchat/internal/models"
	"dropchat/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// maxCodeAttempts bounds the retry loop around duplicate short codes.
const maxCodeAttempts = 5

const maxFileBytes = 10 << 20

const maxTextBytes = 256 << 10

// expiryChoices is the enumerated set of lifetimes a publisher may pick.
var expiryChoices = map[string]time.Duration{
	"1m":  time.Minute,
	"10m": 10 * time.Minute,
	"1h":  time.Hour,
	"1d":  24 * time.Hour,
}

type EntryService struct {
	entries *store.EntryStore
	clock   store.Clock
	fetcher *metadata.Fetcher
	metrics *metrics.Metrics
}

func NewEntryService(entries *store.EntryStore, clock store.Clock, fetcher *metadata.Fetcher, m *metrics.Metrics) *EntryService {
	return &EntryService{
		entries: entries,
		clock:   clock,
		fetcher: fetcher,
		metrics: m,
	}
}

// Create validates the publish request, allocates a code and stores the
// entry. Duplicate codes are retried transparently up to maxCodeAttempts.
func (s *EntryService) Create(ctx context.Context, req *models.CreateEntryRequest) (*models.CreateEntryResponse, error) {
	entry, err := s.buildEntry(ctx, req)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		c, err := code.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating code: %w", err)
		}
		entry.Code = c

		switch err := s.entries.Create(entry); {
		case err == nil:
			s.metrics.EntriesCreated.Inc()
			return &models.CreateEntryResponse{
				Code:        entry.Code,
				ExpiresAt:   entry.ExpiresAt,
				OneTimeView: entry.OneTimeView,
				HasPassword: entry.HasPassword(),
			}, nil
		case errors.Is(err, store.ErrDuplicateCode):
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrCodeSpaceExhausted
}

// Read runs the password gate and then consumes a view. The gate uses a
// non-consuming store read, so a wrong or missing password never increments
// the view count and never burns a one-time entry.
func (s *EntryService) Read(code, password string) (*models.ReadEntryResponse, error) {
	gate, err := s.entries.Read(code)
	if err != nil {
		return nil, err
	}
	if gate.HasPassword() {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(gate.PasswordHash), []byte(password)) != nil {
			return nil, ErrUnauthorized
		}
	}

	entry, err := s.entries.ConsumeView(code)
	if err != nil {
		return nil, err
	}
	s.metrics.EntriesConsumed.Inc()
	return &models.ReadEntryResponse{
		Code:      entry.Code,
		Kind:      entry.Kind,
		Payload:   entry.Payload,
		FileName:  entry.FileName,
		FileSize:  entry.FileSize,
		URLTitle:  entry.URLTitle,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

// Unlock verifies a password against the entry without consuming a view.
func (s *EntryService) Unlock(code, password string) error {
	entry, err := s.entries.Read(code)
	if err != nil {
		return err
	}
	if !entry.HasPassword() {
		return nil
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)) != nil {
		return ErrUnauthorized
	}
	return nil
}

// Delete removes the entry. Idempotent.
func (s *EntryService) Delete(code string) {
	s.entries.Delete(code)
}

// Exists reports whether a live entry backs the code. Used by the room
// broker to validate content-room joins without counting a view.
func (s *EntryService) Exists(code string) bool {
	_, err := s.entries.Read(code)
	return err == nil
}

func (s *EntryService) buildEntry(ctx context.Context, req *models.CreateEntryRequest) (*models.Entry, error) {
	ttl, ok := expiryChoices[req.ExpiresIn]
	if !ok {
		return nil, fmt.Errorf("%w: expires_in must be one of 1m, 10m, 1h, 1d", ErrValidation)
	}
	if req.Payload == "" {
		return nil, fmt.Errorf("%w: payload is required", ErrValidation)
	}

	entry := &models.Entry{
		Kind:        req.Kind,
		Payload:     req.Payload,
		ExpiresAt:   s.clock.Now().Add(ttl),
		OneTimeView: req.OneTimeView,
	}

	switch req.Kind {
	case models.EntryKindText:
		if len(req.Payload) > maxTextBytes {
			return nil, fmt.Errorf("%w: text exceeds %d bytes", ErrValidation, maxTextBytes)
		}
	case models.EntryKindURL:
		parsed, err := url.Parse(req.Payload)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, fmt.Errorf("%w: payload must be an absolute http(s) url", ErrValidation)
		}
		entry.URLTitle = s.fetcher.Title(ctx, req.Payload)
	case models.EntryKindFile:
		if req.FileName == "" {
			return nil, fmt.Errorf("%w: file_name is required for file entries", ErrValidation)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: file payload must be base64", ErrValidation)
		}
		if len(decoded) > maxFileBytes {
			return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, maxFileBytes)
		}
		entry.FileName = req.FileName
		entry.FileSize = int64(len(decoded))
	default:
		return nil, fmt.Errorf("%w: kind must be one of text, url, file", ErrValidation)
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		entry.PasswordHash = string(hash)
	}
	return entry, nil
}
