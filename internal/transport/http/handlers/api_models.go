package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// UserSummary describes the directory view of a user returned by the API.
type UserSummary struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	ServiceID   *string    `json:"service_id,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Bio         *string    `json:"bio,omitempty"`
	IsActive    bool       `json:"is_active"`
	Permissions []string   `json:"permissions,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		ServiceID:   user.ServiceID,
		Phone:       user.Phone,
		Bio:         user.Bio,
		IsActive:    user.IsActive,
		Permissions: user.Permissions,
		LastLogin:   user.LastLogin,
		CreatedAt:   user.CreatedAt,
	}
}

// CapabilitiesResponse mirrors the derived capability booleans for the caller.
type CapabilitiesResponse struct {
	CanCreateProjects      bool `json:"can_create_projects"`
	CanEditProjects        bool `json:"can_edit_projects"`
	CanDeleteProjects      bool `json:"can_delete_projects"`
	CanCreateTasks         bool `json:"can_create_tasks"`
	CanEditTasks           bool `json:"can_edit_tasks"`
	CanDeleteTasks         bool `json:"can_delete_tasks"`
	CanManageUsers         bool `json:"can_manage_users"`
	CanManageServices      bool `json:"can_manage_services"`
	CanViewAnalytics       bool `json:"can_view_analytics"`
	CanViewAllProjects     bool `json:"can_view_all_projects"`
	CanViewAllTasks        bool `json:"can_view_all_tasks"`
	CanManageNotifications bool `json:"can_manage_notifications"`
	CanAccessSettings      bool `json:"can_access_settings"`
}

func newCapabilitiesResponse(caps usecase.Capabilities) CapabilitiesResponse {
	return CapabilitiesResponse{
		CanCreateProjects:      caps.CanCreateProjects,
		CanEditProjects:        caps.CanEditProjects,
		CanDeleteProjects:      caps.CanDeleteProjects,
		CanCreateTasks:         caps.CanCreateTasks,
		CanEditTasks:           caps.CanEditTasks,
		CanDeleteTasks:         caps.CanDeleteTasks,
		CanManageUsers:         caps.CanManageUsers,
		CanManageServices:      caps.CanManageServices,
		CanViewAnalytics:       caps.CanViewAnalytics,
		CanViewAllProjects:     caps.CanViewAllProjects,
		CanViewAllTasks:        caps.CanViewAllTasks,
		CanManageNotifications: caps.CanManageNotifications,
		CanAccessSettings:      caps.CanAccessSettings,
	}
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// CreateUserRequest defines the account provisioning payload.
type CreateUserRequest struct {
	Username  string  `json:"username" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Password  string  `json:"password" binding:"required"`
	Role      string  `json:"role" binding:"required"`
	ServiceID *string `json:"service_id"`
	Phone     *string `json:"phone"`
}

// UpdateUserRequest carries the mutable profile fields.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"`
	ServiceID *string `json:"service_id"`
	IsActive  *bool   `json:"is_active"`
}

// SetRoleRequest changes a user's role.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// MemberRefView is the detailed membership shape.
type MemberRefView struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// ProjectView describes a project returned by the API.
type ProjectView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Progress      int             `json:"progress"`
	Color         string          `json:"color,omitempty"`
	RiskLevel     string          `json:"risk_level,omitempty"`
	CreatedBy     string          `json:"created_by"`
	ChefID        *string         `json:"chef_id,omitempty"`
	ChefDetails   *MemberRefView  `json:"chef_details,omitempty"`
	TeamMemberIDs []string        `json:"team_member_ids,omitempty"`
	MemberIDs     []string        `json:"member_ids,omitempty"`
	MemberDetails []MemberRefView `json:"member_details,omitempty"`
	ServiceID     string          `json:"service_id,omitempty"`
	ServiceIDs    []string        `json:"service_ids,omitempty"`
	StartDate     *time.Time      `json:"start_date,omitempty"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newProjectView(project *domain.Project) ProjectView {
	view := ProjectView{
		ID:            project.ID,
		Name:          project.Name,
		Description:   project.Description,
		Status:        string(project.Status),
		Progress:      project.Progress,
		Color:         project.Color,
		RiskLevel:     project.RiskLevel,
		CreatedBy:     project.CreatedBy,
		ChefID:        project.ChefID,
		TeamMemberIDs: project.TeamMemberIDs,
		MemberIDs:     project.MemberIDs,
		ServiceID:     project.ServiceID,
		ServiceIDs:    project.ServiceIDs,
		StartDate:     project.StartDate,
		EndDate:       project.EndDate,
		CreatedAt:     project.CreatedAt,
		UpdatedAt:     project.UpdatedAt,
	}
	if project.ChefDetails != nil {
		view.ChefDetails = &MemberRefView{
			ID:       project.ChefDetails.ID,
			FullName: project.ChefDetails.FullName,
			Role:     project.ChefDetails.Role,
		}
	}
	for _, ref := range project.MemberDetails {
		view.MemberDetails = append(view.MemberDetails, MemberRefView{
			ID:       ref.ID,
			FullName: ref.FullName,
			Role:     ref.Role,
		})
	}
	return view
}

func newProjectViews(projects []domain.Project) []ProjectView {
	views := make([]ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, newProjectView(&projects[i]))
	}
	return views
}

// CreateProjectRequest defines the project creation payload.
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	ServiceID   string     `json:"service_id"`
	ServiceIDs  []string   `json:"service_ids"`
	ChefID      *string    `json:"chef_id"`
	MemberIDs   []string   `json:"member_ids"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Color       string     `json:"color"`
}

// UpdateProjectRequest carries the mutable project fields.
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Progress    *int       `json:"progress"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	RiskLevel   *string    `json:"risk_level"`
}

// SetMembersRequest replaces a project's member roster.
type SetMembersRequest struct {
	MemberIDs []string `json:"member_ids" binding:"required"`
}

// TaskView describes a task returned by the API.
type TaskView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	Deadline      time.Time  `json:"deadline"`
	CreatedBy     string     `json:"created_by"`
	AssignedTo    []string   `json:"assigned_to,omitempty"`
	ProjectID     *string    `json:"project_id,omitempty"`
	ServiceID     string     `json:"service_id,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	TimeTracked   int        `json:"time_tracked"`
	EstimatedTime int        `json:"estimated_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func newTaskView(task *domain.Task) TaskView {
	return TaskView{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        string(task.Status),
		Priority:      string(task.Priority),
		Deadline:      task.Deadline,
		CreatedBy:     task.CreatedBy,
		AssignedTo:    task.AssignedTo,
		ProjectID:     task.ProjectID,
		ServiceID:     task.ServiceID,
		Tags:          task.Tags,
		TimeTracked:   task.TimeTracked,
		EstimatedTime: task.EstimatedTime,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
		CompletedAt:   task.CompletedAt,
	}
}

func newTaskViews(tasks []domain.Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, newTaskView(&tasks[i]))
	}
	return views
}

// CreateTaskRequest defines the task creation payload.
type CreateTaskRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	Priority      string    `json:"priority"`
	Deadline      time.Time `json:"deadline"`
	ProjectID     *string   `json:"project_id"`
	ServiceID     string    `json:"service_id"`
	AssignedTo    []string  `json:"assigned_to"`
	Tags          []string  `json:"tags"`
	EstimatedTime int       `json:"estimated_time"`
}

// UpdateTaskRequest carries the mutable task fields.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	Tags        []string   `json:"tags"`
}

// AssignTaskRequest replaces a task's assignment list.
type AssignTaskRequest struct {
	AssignedTo []string `json:"assigned_to" binding:"required"`
}

// AddCommentRequest defines the comment creation payload.
type AddCommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id"`
}

// CommentView describes a task comment returned by the API.
type CommentView struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	Content   string     `json:"content"`
	AuthorID  string     `json:"author_id"`
	Mentions  []string   `json:"mentions,omitempty"`
	ParentID  *string    `json:"parent_id,omitempty"`
	IsEdited  bool       `json:"is_edited"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}

func newCommentView(comment *domain.Comment) CommentView {
	return CommentView{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		AuthorID:  comment.AuthorID,
		Mentions:  comment.Mentions,
		ParentID:  comment.ParentID,
		IsEdited:  comment.IsEdited,
		CreatedAt: comment.CreatedAt,
		EditedAt:  comment.EditedAt,
	}
}

// ServiceView describes an organizational unit returned by the API.
type ServiceView struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	HeadID           *string  `json:"head_id,omitempty"`
	MemberIDs        []string `json:"member_ids,omitempty"`
	Color            string   `json:"color,omitempty"`
	WorkloadCapacity int      `json:"workload_capacity"`
}

func newServiceView(service *domain.Service) ServiceView {
	return ServiceView{
		ID:               service.ID,
		Name:             service.Name,
		Description:      service.Description,
		HeadID:           service.HeadID,
		MemberIDs:        service.MemberIDs,
		Color:            service.Color,
		WorkloadCapacity: service.WorkloadCapacity,
	}
}

// ServiceRequest defines the unit create/update payload.
type ServiceRequest struct {
	Name             string  `json:"name" binding:"required"`
	Description      string  `json:"description"`
	HeadID           *string `json:"head_id"`
	Color            string  `json:"color"`
	WorkloadCapacity int     `json:"workload_capacity"`
}

// NotificationView describes a notification returned by the API.
type NotificationView struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Priority  string     `json:"priority"`
	RelatedID *string    `json:"related_id,omitempty"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func newNotificationView(notification *domain.Notification) NotificationView {
	return NotificationView{
		ID:        notification.ID,
		Type:      string(notification.Type),
		Title:     notification.Title,
		Message:   notification.Message,
		Priority:  string(notification.Priority),
		RelatedID: notification.RelatedID,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt,
		ExpiresAt: notification.ExpiresAt,
	}
}

// UnreadCountResponse reports the caller's unread notification count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
