package submissions

import (
	"fmt"
	"strings"
	"time"

	"github.com/tenantkyc/kycdesk/internal/models"
)

// Channel is the transport a report is shared through.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelSMS    Channel = "sms"
	ChannelSocial Channel = "social"
	ChannelCopy   Channel = "copy"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelSocial, ChannelCopy:
		return true
	}
	return false
}

// SupportsAttachments reports whether the channel can carry the CSV file.
func (c Channel) SupportsAttachments() bool {
	return c == ChannelEmail
}

// SharePayload is what gets handed to the email/SMS/social collaborators.
type SharePayload struct {
	Channel     Channel   `json:"channel"`
	Recipients  []string  `json:"recipients,omitempty"`
	Summary     string    `json:"summary"`
	Count       int       `json:"count"`
	GeneratedAt time.Time `json:"generatedAt"`
	Attachment  *Report   `json:"attachment,omitempty"`
}

// Summary is the plain-text line describing a shared report.
func (p *Processor) Summary(count int, at time.Time) string {
	return fmt.Sprintf("KYC submissions report: %d submission(s) as of %s",
		count, at.In(p.loc).Format(displayDateLayout))
}

// Share builds the payload for sharing records over channel. message, when
// set, is placed above the summary line. recipients defaults to the records'
// landlord email (email channel) or landlord phone (sms channel).
func (p *Processor) Share(records []models.Submission, ch Channel, message string, recipients []string) *SharePayload {
	now := p.now()
	summary := p.Summary(len(records), now)
	if msg := strings.TrimSpace(message); msg != "" {
		summary = msg + "\n\n" + summary
	}
	if len(recipients) == 0 {
		recipients = LandlordContacts(records, ch)
	}
	payload := &SharePayload{
		Channel:     ch,
		Recipients:  recipients,
		Summary:     summary,
		Count:       len(records),
		GeneratedAt: now,
	}
	if ch.SupportsAttachments() {
		payload.Attachment = p.Report(records)
	}
	return payload
}

// LandlordContacts collects the distinct landlord contacts on records that
// apply to ch, in first-seen order.
func LandlordContacts(records []models.Submission, ch Channel) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		var v string
		switch ch {
		case ChannelEmail:
			v = r.LandlordEmail
		case ChannelSMS:
			v = r.LandlordPhone
		default:
			return nil
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
