// Package inquiries stores contact form submissions and queues the emails
// that go with them.
package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"logitrack-api/events"
	"logitrack-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MissingFieldsMessage is returned when a required contact field is blank
const MissingFieldsMessage = "Please fill all required fields."

var ErrMissingFields = errors.New(MissingFieldsMessage)

// Archive keeps a second copy of every inquiry
type Archive interface {
	ArchiveInquiry(ctx context.Context, in models.Inquiry) error
}

type Service struct {
	DB         *gorm.DB
	Archive    Archive
	Notifier   events.Notifier
	AdminEmail string
	Log        *zap.Logger
}

// Submit validates, stores, archives and announces an inquiry. Archive and
// notification failures are logged; only the database write is fatal.
func (s *Service) Submit(ctx context.Context, in models.Inquiry) (models.Inquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Email == "" || in.Subject == "" || in.Message == "" {
		return models.Inquiry{}, ErrMissingFields
	}
	in.ID = 0
	in.CreatedAt = time.Now().UTC()

	if err := s.DB.WithContext(ctx).Create(&in).Error; err != nil {
		return models.Inquiry{}, fmt.Errorf("store inquiry: %w", err)
	}

	if s.Archive != nil {
		if err := s.Archive.ArchiveInquiry(ctx, in); err != nil {
			s.Log.Warn("inquiry archive failed", zap.Uint("inquiry_id", in.ID), zap.Error(err))
		}
	}

	for _, n := range s.notifications(in) {
		if err := s.Notifier.Notify(ctx, n); err != nil {
			s.Log.Warn("inquiry notification failed", zap.String("to", n.To), zap.Error(err))
		}
	}
	s.Log.Info("inquiry received", zap.Uint("inquiry_id", in.ID), zap.String("subject", in.Subject))
	return in, nil
}

func (s *Service) notifications(in models.Inquiry) []events.Notification {
	var out []events.Notification
	if s.AdminEmail != "" {
		out = append(out, events.Notification{
			To:      s.AdminEmail,
			Subject: "New Inquiry: " + in.Subject,
			Body: fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\nMessage:\n%s",
				in.Name, in.Email, in.Phone, in.Message),
		})
	}
	out = append(out, events.Notification{
		To:      in.Email,
		Subject: "Thank you for contacting us",
		Body: fmt.Sprintf("Dear %s,\n\nThank you for reaching out. We have received your inquiry about %q and will get back to you shortly.",
			in.Name, in.Subject),
	})
	return out
}
