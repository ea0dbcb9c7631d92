package service

import (
	"context"
	"sync"
	"time"

	"soundwars/pkg/mailer"

	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// NotificationService sends transactional email in the background. Delivery
// failures are logged and never reach the caller.
type NotificationService struct {
	mailer      mailer.Mailer
	log         *zap.Logger
	frontendURL string
	wg          sync.WaitGroup
}

func NewNotificationService(m mailer.Mailer, log *zap.Logger, frontendURL string) *NotificationService {
	return &NotificationService{mailer: m, log: log, frontendURL: frontendURL}
}

// Send renders and queues one email. It reports whether the message was queued.
func (s *NotificationService) Send(kind mailer.Template, recipient string, params map[string]interface{}) bool {
	if recipient == "" {
		return false
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	params["FrontendURL"] = s.frontendURL
	subject, html, err := mailer.Render(kind, params)
	if err != nil {
		s.log.Error("render email", zap.String("template", string(kind)), zap.Error(err))
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, recipient, subject, html); err != nil {
			s.log.Warn("email delivery failed",
				zap.String("template", string(kind)), zap.String("to", recipient), zap.Error(err))
		}
	}()
	return true
}

// Wait blocks until queued emails have been attempted.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) Welcome(email, username string, isArtist bool) bool {
	return s.Send(mailer.TemplateWelcome, email, map[string]interface{}{"Username": username, "IsArtist": isArtist})
}

func (s *NotificationService) PasswordReset(email, username, token string) bool {
	return s.Send(mailer.TemplatePasswordReset, email, map[string]interface{}{
		"Username": username,
		"ResetURL": s.frontendURL + "/reset-password?token=" + token,
	})
}

func (s *NotificationService) PaymentConfirmed(email, username, txRef string) bool {
	return s.Send(mailer.TemplatePaymentConfirmed, email, map[string]interface{}{"Username": username, "TxRef": txRef})
}

func (s *NotificationService) SongModerated(email, stageName, songTitle string, approved bool, reason string) bool {
	if approved {
		return s.Send(mailer.TemplateSongApproved, email, map[string]interface{}{"StageName": stageName, "SongTitle": songTitle})
	}
	return s.Send(mailer.TemplateSongRejected, email, map[string]interface{}{
		"StageName": stageName, "SongTitle": songTitle, "Reason": reason,
	})
}

func (s *NotificationService) Winner(email, stageName, songTitle, contestTitle string, votes int) bool {
	return s.Send(mailer.TemplateWinner, email, map[string]interface{}{
		"StageName": stageName, "SongTitle": songTitle, "ContestTitle": contestTitle, "Votes": votes,
	})
}
