package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/tagsearch/internal/domain"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/registry"
)

var (
	ErrNotFound      = errors.New("search not found")
	ErrEmptyInput    = errors.New("tag and query must not be empty")
	ErrUnknownAction = errors.New("unknown action")
)

const (
	DefaultShareSubject = "Twitter search that might interest you"
	DefaultShareText    = "Check out the results of this Twitter search: %s"
)

// Searches is the part of registry.Registry the handlers need.
type Searches interface {
	Ready() bool
	Get(tag string) (registry.Entry, bool)
	Upsert(ctx context.Context, tag, query string) (registry.Entry, bool, error)
	Delete(ctx context.Context, tag string) error
}

// ShareConfig holds the share message templates. Text must contain one %s
// for the search URL.
type ShareConfig struct {
	Subject string
	Text    string
}

// ShareMessage is what gets handed to a share target.
type ShareMessage struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	URL     string `json:"url"`
}

// EditFields pre-fill the tag and query inputs.
type EditFields struct {
	Tag   string `json:"tag"`
	Query string `json:"query"`
}

// Result is the outcome of Dispatch. Only the field matching Action is set.
type Result struct {
	Action  domain.Action `json:"-"`
	Tag     string        `json:"tag"`
	URL     string        `json:"url,omitempty"`
	Share   *ShareMessage `json:"share,omitempty"`
	Edit    *EditFields   `json:"edit,omitempty"`
	Deleted bool          `json:"deleted,omitempty"`
}

type Handler struct {
	searches Searches
	template string
	share    ShareConfig
	logger   logger.Logger
}

// New builds a Handler. An empty template falls back to
// domain.DefaultSearchURL and empty share fields to the defaults.
func New(searches Searches, template string, share ShareConfig, log logger.Logger) *Handler {
	if template == "" {
		template = domain.DefaultSearchURL
	}
	if share.Subject == "" {
		share.Subject = DefaultShareSubject
	}
	if share.Text == "" {
		share.Text = DefaultShareText
	}
	return &Handler{
		searches: searches,
		template: template,
		share:    share,
		logger:   log.With(logger.String("component", "actions")),
	}
}

// Template returns the search URL template in use.
func (h *Handler) Template() string {
	return h.template
}

func (h *Handler) entry(tag string) (registry.Entry, error) {
	if !h.searches.Ready() {
		return registry.Entry{}, registry.ErrNotReady
	}
	e, ok := h.searches.Get(tag)
	if !ok {
		return registry.Entry{}, fmt.Errorf("%w: %q", ErrNotFound, tag)
	}
	return e, nil
}

// Activate returns the search URL for tag, i.e. what a row tap opens.
func (h *Handler) Activate(tag string) (string, error) {
	e, err := h.entry(tag)
	if err != nil {
		return "", err
	}
	return domain.BuildSearchURL(h.template, e.Record.Query), nil
}

// Share builds the share message for tag.
func (h *Handler) Share(tag string) (ShareMessage, error) {
	e, err := h.entry(tag)
	if err != nil {
		return ShareMessage{}, err
	}
	url := domain.BuildSearchURL(h.template, e.Record.Query)
	return ShareMessage{
		Subject: h.share.Subject,
		Text:    fmt.Sprintf(h.share.Text, url),
		URL:     url,
	}, nil
}

// Edit returns the stored tag and query so a form can be pre-filled.
// Submitting the form goes through Save.
func (h *Handler) Edit(tag string) (EditFields, error) {
	e, err := h.entry(tag)
	if err != nil {
		return EditFields{}, err
	}
	return EditFields{Tag: e.Tag, Query: e.Record.Query}, nil
}

// Delete removes tag. Confirmation is up to the caller.
func (h *Handler) Delete(ctx context.Context, tag string) error {
	if err := h.searches.Delete(ctx, tag); err != nil {
		return err
	}
	h.logger.Info("search deleted", logger.String("tag", tag))
	return nil
}

// Save stores query under tag and reports whether the tag is new. Input is
// used as given, empty values are rejected before the registry sees them.
func (h *Handler) Save(ctx context.Context, tag, query string) (registry.Entry, bool, error) {
	if tag == "" || query == "" {
		return registry.Entry{}, false, ErrEmptyInput
	}
	e, created, err := h.searches.Upsert(ctx, tag, query)
	if err != nil {
		return registry.Entry{}, false, err
	}
	h.logger.Info("search saved",
		logger.String("tag", e.Tag),
		logger.Bool("created", created))
	return e, created, nil
}

// Dispatch runs action against tag.
func (h *Handler) Dispatch(ctx context.Context, action domain.Action, tag string) (Result, error) {
	res := Result{Action: action, Tag: tag}

	switch action {
	case domain.ActionOpen:
		url, err := h.Activate(tag)
		if err != nil {
			return Result{}, err
		}
		res.URL = url

	case domain.ActionShare:
		msg, err := h.Share(tag)
		if err != nil {
			return Result{}, err
		}
		res.Share = &msg
		res.URL = msg.URL

	case domain.ActionEdit:
		fields, err := h.Edit(tag)
		if err != nil {
			return Result{}, err
		}
		res.Edit = &fields
		res.Tag = fields.Tag

	case domain.ActionDelete:
		if err := h.Delete(ctx, tag); err != nil {
			return Result{}, err
		}
		res.Deleted = true

	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	return res, nil
}
