package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tenantkyc/kycdesk/internal/kafka"
	"github.com/tenantkyc/kycdesk/internal/metrics"
	"github.com/tenantkyc/kycdesk/internal/submissions"
)

// ShareService publishes report share requests for the email, SMS and
// social collaborators to pick up.
type ShareService struct {
	subs     *SubmissionService
	producer kafka.Producer
	topic    string
	logger   *zap.Logger
}

func NewShareService(subs *SubmissionService, producer kafka.Producer, topic string, logger *zap.Logger) *ShareService {
	return &ShareService{subs: subs, producer: producer, topic: topic, logger: logger}
}

type ShareRequest struct {
	Channel    submissions.Channel `json:"channel"`
	Message    string              `json:"message"`
	Recipients []string            `json:"recipients"`
}

// ShareEvent is the message published for one share request.
type ShareEvent struct {
	FormID      string              `json:"formId"`
	RequestedBy string              `json:"requestedBy"`
	Channel     submissions.Channel `json:"channel"`
	Recipients  []string            `json:"recipients,omitempty"`
	Summary     string              `json:"summary"`
	Count       int                 `json:"count"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Attachment  *EventAttachment    `json:"attachment,omitempty"`
}

// EventAttachment carries the CSV report. Content is base64 encoded by
// encoding/json.
type EventAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// ShareReceipt is returned to the caller once the event is published.
type ShareReceipt struct {
	Channel    submissions.Channel `json:"channel"`
	Recipients []string            `json:"recipients"`
	Summary    string              `json:"summary"`
	Count      int                 `json:"count"`
	Filename   string              `json:"filename,omitempty"`
}

// ShareReport shares the selected records of the current view over the
// requested channel.
func (s *ShareService) ShareReport(ctx context.Context, actor Actor, formID string, c submissions.Criteria, req ShareRequest) (*ShareReceipt, error) {
	if !req.Channel.Valid() {
		return nil, invalid("channel", "unknown share channel %q", req.Channel)
	}
	selected, err := s.subs.selection(ctx, actor, formID, c)
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if req.Channel == submissions.ChannelEmail {
		for _, r := range recipients {
			if !emailPattern.MatchString(r) {
				return nil, invalid("recipients", "invalid email address %q", r)
			}
		}
	}

	payload := s.subs.proc.Share(selected, req.Channel, req.Message, recipients)
	if (req.Channel == submissions.ChannelEmail || req.Channel == submissions.ChannelSMS) && len(payload.Recipients) == 0 {
		return nil, invalid("recipients", "no recipients for %s share", req.Channel)
	}

	event := ShareEvent{
		FormID:      formID,
		RequestedBy: actor.UserID,
		Channel:     payload.Channel,
		Recipients:  payload.Recipients,
		Summary:     payload.Summary,
		Count:       payload.Count,
		GeneratedAt: payload.GeneratedAt,
	}
	receipt := &ShareReceipt{
		Channel:    payload.Channel,
		Recipients: payload.Recipients,
		Summary:    payload.Summary,
		Count:      payload.Count,
	}
	if a := payload.Attachment; a != nil {
		event.Attachment = &EventAttachment{Filename: a.Filename, ContentType: a.ContentType, Content: a.Body}
		receipt.Filename = a.Filename
	}

	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode share event: %w", err)
	}
	if err := s.producer.SendMessage(ctx, s.topic, []byte(formID), value); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("share").Inc()
		s.logger.Error("failed to publish share event", zap.String("formId", formID), zap.Error(err))
		return nil, fmt.Errorf("publish share event: %w", err)
	}
	metrics.ReportsSharedTotal.WithLabelValues(string(req.Channel)).Inc()
	return receipt, nil
}
