package service

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tenantkyc/kycdesk/internal/models"
	"github.com/tenantkyc/kycdesk/internal/repository"
)

type FormService struct {
	forms     repository.FormRepository
	subs      repository.SubmissionRepository
	publicURL string
	lang      language.Tag
	now       func() time.Time
}

func NewFormService(forms repository.FormRepository, subs repository.SubmissionRepository, publicURL string, lang language.Tag) *FormService {
	return &FormService{
		forms:     forms,
		subs:      subs,
		publicURL: strings.TrimRight(publicURL, "/"),
		lang:      lang,
		now:       time.Now,
	}
}

// FormInput is what the builder sends when creating or editing a form.
// Nil pointers leave the current value unchanged on update.
type FormInput struct {
	Title            string            `json:"title"`
	Type             models.EditorType `json:"type"`
	TemplateID       string            `json:"templateId"`
	ApartmentName    *string           `json:"apartmentName"`
	ApartmentAddress *string           `json:"apartmentAddress"`
	Fields           []models.Field    `json:"fields"`
	IsActive         *bool             `json:"isActive"`
	ExpirationDays   *int              `json:"expirationDays"`
	SubmissionCap    *int              `json:"submissionCap"`
}

func (s *FormService) Create(ctx context.Context, actor Actor, in FormInput) (*models.Form, error) {
	if in.Type == "" {
		in.Type = models.EditorNew
	}

	var fields []models.Field
	title := strings.TrimSpace(in.Title)
	switch in.Type {
	case models.EditorTemplate, models.EditorCustomize:
		tpl, ok := findTemplate(in.TemplateID)
		if !ok {
			return nil, invalid("templateId", "unknown template %q", in.TemplateID)
		}
		fields = tpl.Fields
		if in.Type == models.EditorCustomize && len(in.Fields) > 0 {
			fields = in.Fields
		}
		if title == "" {
			title = tpl.Title
		}
	case models.EditorNew:
		fields = in.Fields
		if len(fields) == 0 {
			fields = []models.Field{{Type: models.FieldText, Label: "New Field"}}
		}
	default:
		return nil, invalid("type", "unknown editor type %q", in.Type)
	}
	if title == "" {
		return nil, invalid("title", "form title is required")
	}

	fields, err := normalizeFields(fields)
	if err != nil {
		return nil, err
	}

	now := models.Timestamp(s.now())
	form := &models.Form{
		OwnerID:    actor.UserID,
		Title:      title,
		Type:       in.Type,
		TemplateID: in.TemplateID,
		Fields:     fields,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Type == models.EditorNew {
		form.TemplateID = ""
	}
	if err := applyDetails(form, in); err != nil {
		return nil, err
	}

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// applyDetails copies the optional apartment and link settings onto form.
// Zero expiration or cap clears the limit.
func applyDetails(form *models.Form, in FormInput) error {
	if in.ApartmentName != nil {
		form.ApartmentName = strings.TrimSpace(*in.ApartmentName)
	}
	if in.ApartmentAddress != nil {
		form.ApartmentAddress = strings.TrimSpace(*in.ApartmentAddress)
	}
	if in.IsActive != nil {
		form.IsActive = *in.IsActive
	}
	if in.ExpirationDays != nil {
		if *in.ExpirationDays < 0 {
			return invalid("expirationDays", "must not be negative")
		}
		form.ExpirationDays = nil
		if *in.ExpirationDays > 0 {
			n := *in.ExpirationDays
			form.ExpirationDays = &n
		}
	}
	if in.SubmissionCap != nil {
		if *in.SubmissionCap < 0 {
			return invalid("submissionCap", "must not be negative")
		}
		form.SubmissionCap = nil
		if *in.SubmissionCap > 0 {
			n := *in.SubmissionCap
			form.SubmissionCap = &n
		}
	}
	return nil
}

func (s *FormService) Get(ctx context.Context, actor Actor, id string) (*models.FormSummary, error) {
	form, err := loadForm(ctx, s.forms, id, actor)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, form)
}

// PublicForm returns a form for the public submission page. Forms whose
// link is no longer active are reported as inactive.
func (s *FormService) PublicForm(ctx context.Context, id string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	if err != nil {
		return nil, err
	}
	sum, err := s.summarize(ctx, form)
	if err != nil {
		return nil, err
	}
	if !sum.LinkActive {
		return nil, ErrFormInactive
	}
	return form, nil
}

func (s *FormService) summarize(ctx context.Context, form *models.Form) (*models.FormSummary, error) {
	count, err := s.subs.CountByFormID(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	return &models.FormSummary{
		Form:            *form,
		SubmissionCount: count,
		LinkActive:      form.LinkActive(s.now(), count),
	}, nil
}

type FormSort string

const (
	SortFormsByCreatedAt       FormSort = "createdAt"
	SortFormsByTitle           FormSort = "title"
	SortFormsBySubmissionCount FormSort = "submissionCount"
)

type FormListQuery struct {
	Search    string
	SortBy    FormSort
	Ascending bool
}

// List returns the actor's forms (every form for admins) matching the
// search text on title, apartment name or apartment address.
func (s *FormService) List(ctx context.Context, actor Actor, q FormListQuery) ([]models.FormSummary, error) {
	var (
		forms []models.Form
		err   error
	)
	if actor.IsAdmin() {
		forms, err = s.forms.FindAll(ctx)
	} else {
		forms, err = s.forms.FindByOwner(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.FormSummary, 0, len(forms))
	for i := range forms {
		f := &forms[i]
		if needle != "" &&
			!strings.Contains(strings.ToLower(f.Title), needle) &&
			!strings.Contains(strings.ToLower(f.ApartmentName), needle) &&
			!strings.Contains(strings.ToLower(f.ApartmentAddress), needle) {
			continue
		}
		sum, err := s.summarize(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}

	sign := -1
	if q.Ascending {
		sign = 1
	}
	var cmp func(a, b *models.FormSummary) int
	switch q.SortBy {
	case SortFormsByTitle:
		col := collate.New(s.lang)
		cmp = func(a, b *models.FormSummary) int { return col.CompareString(a.Title, b.Title) }
	case SortFormsBySubmissionCount:
		cmp = func(a, b *models.FormSummary) int { return a.SubmissionCount - b.SubmissionCount }
	default:
		cmp = func(a, b *models.FormSummary) int {
			ta, _ := models.ParseTimestamp(a.CreatedAt)
			tb, _ := models.ParseTimestamp(b.CreatedAt)
			return ta.Compare(tb)
		}
	}
	slices.SortStableFunc(out, func(a, b models.FormSummary) int { return sign * cmp(&a, &b) })
	return out, nil
}

func (s *FormService) Update(ctx context.Context, actor Actor, id string, in FormInput) (*models.Form, error) {
	form, err := loadForm(ctx, s.forms, id, actor)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		form.Title = t
	}
	if len(in.Fields) > 0 {
		fields, err := normalizeFields(in.Fields)
		if err != nil {
			return nil, err
		}
		form.Fields = fields
		if form.Type == models.EditorTemplate {
			form.Type = models.EditorCustomize
		}
	}
	if err := applyDetails(form, in); err != nil {
		return nil, err
	}
	form.UpdatedAt = models.Timestamp(s.now())

	if err := s.forms.Update(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// Delete removes a form together with all of its submissions.
func (s *FormService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := loadForm(ctx, s.forms, id, actor); err != nil {
		return err
	}
	if err := s.subs.DeleteByFormID(ctx, id); err != nil {
		return err
	}
	return s.forms.Delete(ctx, id)
}

// Dashboard aggregates the numbers shown on the review dashboard.
type Dashboard struct {
	FormCount       int                   `json:"formCount"`
	ActiveLinks     int                   `json:"activeLinks"`
	SubmissionCount int                   `json:"submissionCount"`
	ByStatus        map[models.Status]int `json:"byStatus"`
	Forms           []models.FormSummary  `json:"forms"`
}

func (s *FormService) Dashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	forms, err := s.List(ctx, actor, FormListQuery{SortBy: SortFormsByCreatedAt})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(forms))
	d := &Dashboard{FormCount: len(forms), Forms: forms}
	for i, f := range forms {
		ids[i] = f.ID
		d.SubmissionCount += f.SubmissionCount
		if f.LinkActive {
			d.ActiveLinks++
		}
	}
	d.ByStatus, err = s.subs.CountByStatus(ctx, ids)
	if err != nil {
		return nil, err
	}
	return d, nil
}

type ShareMethod string

const (
	ShareByEmail  ShareMethod = "email"
	ShareBySMS    ShareMethod = "sms"
	ShareByCopy   ShareMethod = "copy"
	ShareBySocial ShareMethod = "social"
)

// LinkShare is everything a client needs to hand a form link to an email
// client, SMS app, clipboard or social network.
type LinkShare struct {
	URL     string `json:"url"`
	Message string `json:"message"`
	Target  string `json:"target"`
}

// ShareLink builds the share target for a form's public link. platform is
// only used for social sharing (twitter, facebook or linkedin).
func (s *FormService) ShareLink(ctx context.Context, actor Actor, id string, method ShareMethod, platform, message string) (*LinkShare, error) {
	form, err := loadForm(ctx, s.forms, id, actor)
	if err != nil {
		return nil, err
	}
	sum, err := s.summarize(ctx, form)
	if err != nil {
		return nil, err
	}
	if !sum.LinkActive {
		return nil, ErrFormInactive
	}

	link := s.FormURL(form.ID)
	text := strings.TrimSpace(message)
	if text == "" {
		subject := form.ApartmentName
		if subject == "" {
			subject = form.Title
		}
		text = "Please complete the KYC form for " + subject
	}
	share := &LinkShare{URL: link, Message: text}

	switch method {
	case ShareByEmail:
		share.Target = "mailto:?subject=" + encodeURIComponent("KYC Form - "+form.Title) +
			"&body=" + encodeURIComponent(text+"\n\n"+link)
	case ShareBySMS:
		share.Target = "sms:?body=" + encodeURIComponent(text+"\n"+link)
	case ShareByCopy:
		share.Target = text + "\n" + link
	case ShareBySocial:
		switch platform {
		case "twitter":
			share.Target = "https://twitter.com/intent/tweet?text=" + encodeURIComponent(text) +
				"&url=" + encodeURIComponent(link)
		case "facebook":
			share.Target = "https://www.facebook.com/sharer/sharer.php?u=" + encodeURIComponent(link)
		case "linkedin":
			share.Target = "https://www.linkedin.com/sharing/share-offsite/?url=" + encodeURIComponent(link)
		default:
			return nil, invalid("platform", "unknown social platform %q", platform)
		}
	default:
		return nil, invalid("method", "unknown share method %q", method)
	}
	return share, nil
}

// FormURL is the public submission link for a form.
func (s *FormService) FormURL(id string) string {
	return s.publicURL + "/form/" + url.PathEscape(id)
}

// encodeURIComponent escapes like the browser function of the same name,
// using %20 rather than + for spaces.
func encodeURIComponent(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
