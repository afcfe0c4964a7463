package handler

import (
	"time"

	"tracker/internal/domain/entity"
	"tracker/internal/usecase"

	"github.com/google/uuid"
)

// AccountResponse is the public view of an account. Secrets are never included.
type AccountResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Name          string    `json:"name"`
	FederatedID   *string   `json:"federated_id"`
	Picture       string    `json:"picture"`
	Provider      string    `json:"provider"`
	EmailVerified bool      `json:"email_verified"`
	Rate          *float64  `json:"rate"`
	Cost          *float64  `json:"cost"`
	WorkHours     *string   `json:"work_hours"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newAccountResponse(a *entity.Account) *AccountResponse {
	if a == nil {
		return nil
	}
	resp := &AccountResponse{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Name:          a.FullName(),
		Picture:       a.Picture,
		Provider:      string(a.Provider),
		EmailVerified: a.EmailVerified,
		Rate:          a.Rate,
		Cost:          a.Cost,
		WorkHours:     a.WorkHours,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.HasFederatedID() {
		fid := a.FederatedID
		resp.FederatedID = &fid
	}

	return resp
}

// ProfileResponse joins the account with its profile details.
type ProfileResponse struct {
	Account   *AccountResponse `json:"account"`
	Phone     string           `json:"phone"`
	JobTitle  string           `json:"job_title"`
	Company   string           `json:"company"`
	Bio       string           `json:"bio"`
	Location  string           `json:"location"`
	Website   string           `json:"website"`
	Timezone  string           `json:"timezone"`
	AvatarURL *string          `json:"avatar_url"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func newProfileResponse(v *usecase.ProfileView) *ProfileResponse {
	return &ProfileResponse{
		Account:   newAccountResponse(v.Account),
		Phone:     v.Profile.Phone,
		JobTitle:  v.Profile.JobTitle,
		Company:   v.Profile.Company,
		Bio:       v.Profile.Bio,
		Location:  v.Profile.Location,
		Website:   v.Profile.Website,
		Timezone:  v.Profile.Timezone,
		AvatarURL: v.AvatarURL,
		UpdatedAt: v.Profile.UpdatedAt,
	}
}

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Note      string    `json:"note"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newClientResponse(c *entity.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Address:   c.Address,
		Note:      c.Note,
		Currency:  c.Currency,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type TagResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
}

func newTagResponse(t *entity.Tag) *TagResponse {
	return &TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Description: t.Description}
}

// ProjectClient is the short client form nested in a project.
type ProjectClient struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ProjectResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Client    *ProjectClient `json:"client"`
	Status    string         `json:"status"`
	Progress  int            `json:"progress"`
	Tags      []*TagResponse `json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newProjectResponse(p *entity.Project) *ProjectResponse {
	resp := &ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Status:    p.Status,
		Progress:  p.Progress,
		Tags:      make([]*TagResponse, 0, len(p.Tags)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Client != nil {
		resp.Client = &ProjectClient{ID: p.Client.ID, Name: p.Client.Name}
	}
	for i := range p.Tags {
		resp.Tags = append(resp.Tags, newTagResponse(&p.Tags[i]))
	}

	return resp
}

type TaskResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	ProjectID  uuid.UUID `json:"project"`
	AssignedTo *string   `json:"assigned_to"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newTaskResponse(t *entity.Task) *TaskResponse {
	return &TaskResponse{
		ID:         t.ID,
		Title:      t.Title,
		Status:     string(t.Status),
		ProjectID:  t.ProjectID,
		AssignedTo: t.AssignedTo,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

type TimeEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project"`
	Description string    `json:"description"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Duration    int       `json:"duration"`
	Date        string    `json:"date"`
	Billable    bool      `json:"billable"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTimeEntryResponse(e *entity.TimeEntry) *TimeEntryResponse {
	return &TimeEntryResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Duration:    e.Duration,
		Date:        e.Date.Format(entity.DateLayout),
		Billable:    e.Billable,
		Type:        string(e.Type),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type PomodoroResponse struct {
	ID            uuid.UUID `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Duration      int       `json:"duration"`
	BreakDuration int       `json:"break_duration"`
	Cycles        int       `json:"cycles"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newPomodoroResponse(s *entity.PomodoroSession) *PomodoroResponse {
	return &PomodoroResponse{
		ID:            s.ID,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Duration:      s.Duration,
		BreakDuration: s.BreakDuration,
		Cycles:        s.Cycles,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// mapAll converts a list, always yielding a non-nil slice so JSON renders [].
func mapAll[T any, R any](items []*T, fn func(*T) *R) []*R {
	out := make([]*R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}

	return out
}
