package model

import (
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// StatusFilter is a Status or StatusAll.
type StatusFilter string

const StatusAll StatusFilter = "all"

func (f StatusFilter) Valid() bool {
	return f == StatusAll || Status(f).Valid()
}

// Matches reports whether a note with status s passes the filter.
func (f StatusFilter) Matches(s Status) bool {
	return f == StatusAll || Status(f) == s
}

type SortBy string

const (
	SortByDate    SortBy = "date"
	SortBySubject SortBy = "subject"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type Output struct {
	Text   string   `json:"text" yaml:"text"`
	Links  []string `json:"links" yaml:"links"`
	Images []string `json:"images" yaml:"images"`
}

// Compact returns a copy without blank links and images.
func (o Output) Compact() Output {
	return Output{
		Text:   o.Text,
		Links:  dropBlank(o.Links),
		Images: dropBlank(o.Images),
	}
}

func (o Output) Clone() Output {
	return Output{
		Text:   o.Text,
		Links:  cloneList(o.Links),
		Images: cloneList(o.Images),
	}
}

type Note struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Output    Output    `json:"output"`
	FollowUp  string    `json:"followUp"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Clone returns a deep copy that shares no slices with n.
func (n Note) Clone() Note {
	n.Output = n.Output.Clone()
	return n
}

func (n Note) Fields() Fields {
	return Fields{
		Subject:  n.Subject,
		Content:  n.Content,
		Output:   n.Output.Clone(),
		FollowUp: n.FollowUp,
		Status:   n.Status,
	}
}

// Fields holds everything a user can edit: a Note without id and timestamp.
type Fields struct {
	Subject  string `json:"subject" yaml:"subject"`
	Content  string `json:"content" yaml:"content"`
	Output   Output `json:"output" yaml:"output"`
	FollowUp string `json:"followUp" yaml:"followUp"`
	Status   Status `json:"status" yaml:"status"`
}

// Normalize defaults an empty status to pending and compacts the output.
func (f Fields) Normalize() Fields {
	if f.Status == "" {
		f.Status = StatusPending
	}
	f.Output = f.Output.Compact()
	return f
}

func (f Fields) Validate() error {
	if f.Subject == "" {
		return ErrSubjectRequired
	}
	if f.Content == "" {
		return ErrContentRequired
	}
	if !f.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Apply builds a note from f with the given id and timestamp.
func (f Fields) Apply(id string, ts time.Time) Note {
	return Note{
		ID:        id,
		Subject:   f.Subject,
		Content:   f.Content,
		Output:    f.Output.Clone(),
		FollowUp:  f.FollowUp,
		Status:    f.Status,
		Timestamp: ts,
	}
}

// ViewParams are the filter and sort inputs of the derived note list.
type ViewParams struct {
	Search    string       `json:"search"`
	Status    StatusFilter `json:"status"`
	SortBy    SortBy       `json:"sortBy"`
	SortOrder SortOrder    `json:"sortOrder"`
}

func DefaultView() ViewParams {
	return ViewParams{
		Status:    StatusAll,
		SortBy:    SortByDate,
		SortOrder: SortDesc,
	}
}

// WithDefaults fills unset enum fields from DefaultView.
func (v ViewParams) WithDefaults() ViewParams {
	d := DefaultView()
	if v.Status == "" {
		v.Status = d.Status
	}
	if v.SortBy == "" {
		v.SortBy = d.SortBy
	}
	if v.SortOrder == "" {
		v.SortOrder = d.SortOrder
	}
	return v
}

func (v ViewParams) Validate() error {
	if !v.Status.Valid() {
		return ErrInvalidStatus
	}
	if v.SortBy != SortByDate && v.SortBy != SortBySubject {
		return ErrInvalidSortBy
	}
	if v.SortOrder != SortAsc && v.SortOrder != SortDesc {
		return ErrInvalidSortOrder
	}
	return nil
}

type ViewResponse struct {
	View  ViewParams `json:"view"`
	Notes []Note     `json:"notes"`
	Total int        `json:"total"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Notes  int    `json:"notes"`
}

func dropBlank(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func cloneList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return slices.Clone(list)
}
