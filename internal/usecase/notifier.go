package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/port"
)

// DeadlineHorizon is the look-ahead window for deadline notifications.
const DeadlineHorizon = 24 * time.Hour

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Dispatcher computes notification fan-out for the platform's event kinds
// and hands one draft per recipient to the injected sink. The acting user is
// excluded from fan-outs triggered by their own action; security alerts are
// the deliberate exception.
type Dispatcher struct {
	sink      port.NotificationSink
	actorID   string
	directory []domain.User
	now       func() time.Time
}

// NewDispatcher constructs a Dispatcher. The directory is only consulted for
// mention-name resolution and may be empty.
func NewDispatcher(sink port.NotificationSink, actorID string, directory []domain.User) *Dispatcher {
	return &Dispatcher{
		sink:      sink,
		actorID:   actorID,
		directory: directory,
		now:       time.Now,
	}
}

// deliverAll issues one sink call per draft without sequencing between
// recipients. A failed delivery never blocks the others; all failures are
// aggregated into the returned error.
func (d *Dispatcher) deliverAll(ctx context.Context, drafts []domain.NotificationDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	errs := make([]error, len(drafts))
	var wg sync.WaitGroup
	for i, draft := range drafts {
		wg.Add(1)
		go func(i int, draft domain.NotificationDraft) {
			defer wg.Done()
			if err := d.sink.Deliver(ctx, draft); err != nil {
				errs[i] = fmt.Errorf("deliver to %s: %w", draft.UserID, err)
			}
		}(i, draft)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// NotifyTaskAssigned fans out one notification per assignee, excluding the
// acting user. Urgent tasks escalate the priority to high.
func (d *Dispatcher) NotifyTaskAssigned(ctx context.Context, task *domain.Task, assigneeIDs []string) error {
	if task == nil {
		return nil
	}

	priority := domain.NotificationPriorityMedium
	if task.Priority == domain.TaskPriorityUrgent {
		priority = domain.NotificationPriorityHigh
	}

	drafts := make([]domain.NotificationDraft, 0, len(assigneeIDs))
	for _, userID := range assigneeIDs {
		if userID == d.actorID {
			continue
		}
		relatedID := task.ID
		drafts = append(drafts, domain.NotificationDraft{
			UserID:    userID,
			Type:      domain.NotificationTaskAssigned,
			Title:     "Nouvelle tâche assignée",
			Message:   fmt.Sprintf("La tâche %q vous a été assignée.", task.Title),
			Priority:  priority,
			RelatedID: &relatedID,
		})
	}

	return d.deliverAll(ctx, drafts)
}

// NotifyCommentMention fans out one notification per mentioned user. The
// comment's author is excluded rather than the acting user: mentions may be
// inserted by someone other than the author, and the author stays silent
// either way.
func (d *Dispatcher) NotifyCommentMention(ctx context.Context, comment *domain.Comment, task *domain.Task, mentionedIDs []string) error {
	if comment == nil || task == nil {
		return nil
	}

	drafts := make([]domain.NotificationDraft, 0, len(mentionedIDs))
	for _, userID := range mentionedIDs {
		if userID == comment.AuthorID {
			continue
		}
		relatedID := task.ID
		drafts = append(drafts, domain.NotificationDraft{
			UserID:    userID,
			Type:      domain.NotificationCommentMention,
			Title:     "Vous avez été mentionné",
			Message:   fmt.Sprintf("Vous avez été mentionné dans un commentaire sur la tâche %q.", task.Title),
			Priority:  domain.NotificationPriorityMedium,
			RelatedID: &relatedID,
		})
	}

	return d.deliverAll(ctx, drafts)
}

// NotifyDeadlineApproaching fires unconditionally for every assignee of the
// task. Window gating belongs to CheckAllDeadlines; this method trusts its
// caller.
func (d *Dispatcher) NotifyDeadlineApproaching(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return nil
	}

	hoursLeft := int(math.Round(task.Deadline.Sub(d.now()).Hours()))

	drafts := make([]domain.NotificationDraft, 0, len(task.AssignedTo))
	for _, userID := range task.AssignedTo {
		relatedID := task.ID
		drafts = append(drafts, domain.NotificationDraft{
			UserID:    userID,
			Type:      domain.NotificationDeadlineApproaching,
			Title:     "Échéance proche",
			Message:   fmt.Sprintf("La tâche %q arrive à échéance dans %dh.", task.Title, hoursLeft),
			Priority:  domain.NotificationPriorityHigh,
			RelatedID: &relatedID,
		})
	}

	return d.deliverAll(ctx, drafts)
}

// NotifyProjectUpdate fans out to the project team, excluding the acting
// user, with a message selected by the update kind.
func (d *Dispatcher) NotifyProjectUpdate(ctx context.Context, project *domain.Project, kind domain.ProjectUpdateKind) error {
	if project == nil {
		return nil
	}

	var message string
	switch kind {
	case domain.ProjectUpdateStatus:
		message = fmt.Sprintf("Le statut du projet %q a été mis à jour.", project.Name)
	case domain.ProjectUpdateTeam:
		message = fmt.Sprintf("L'équipe du projet %q a été modifiée.", project.Name)
	case domain.ProjectUpdateDeadline:
		message = fmt.Sprintf("Les dates du projet %q ont été modifiées.", project.Name)
	default:
		return fmt.Errorf("unknown project update kind %q", kind)
	}

	members := project.MemberSet()
	drafts := make([]domain.NotificationDraft, 0, len(members))
	for userID := range members {
		if userID == d.actorID {
			continue
		}
		relatedID := project.ID
		drafts = append(drafts, domain.NotificationDraft{
			UserID:    userID,
			Type:      domain.NotificationProjectUpdate,
			Title:     "Mise à jour de projet",
			Message:   message,
			Priority:  domain.NotificationPriorityMedium,
			RelatedID: &relatedID,
		})
	}

	return d.deliverAll(ctx, drafts)
}

// NotifySecurityAlert delivers a single high-priority notification. Security
// alerts are never self-suppressed.
func (d *Dispatcher) NotifySecurityAlert(ctx context.Context, userID, message string) error {
	return d.deliverAll(ctx, []domain.NotificationDraft{{
		UserID:   userID,
		Type:     domain.NotificationSecurityAlert,
		Title:    "Alerte de sécurité",
		Message:  message,
		Priority: domain.NotificationPriorityHigh,
	}})
}

// CheckAllDeadlines routes every task whose deadline falls inside the
// half-open window (now, now+24h] through NotifyDeadlineApproaching.
// Completed tasks and tasks exactly at or past their deadline are skipped.
func (d *Dispatcher) CheckAllDeadlines(ctx context.Context, tasks []domain.Task, now time.Time) error {
	var errs []error
	for i := range tasks {
		task := &tasks[i]
		if task.Status == domain.TaskStatusCompleted {
			continue
		}
		if !task.DueWithin(now, DeadlineHorizon) {
			continue
		}
		if err := d.NotifyDeadlineApproaching(ctx, task); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ExtractMentions scans the text for @-prefixed word tokens and returns them
// in order of appearance. Duplicates are preserved.
func ExtractMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	mentions := make([]string, 0, len(matches))
	for _, match := range matches {
		mentions = append(mentions, match[1])
	}
	return mentions
}

// ResolveMentionIDs maps mention tokens to user ids using the directory.
// Matching is case-insensitive, by username or by containment in the user's
// "first last" name. Unresolved tokens are silently dropped.
func (d *Dispatcher) ResolveMentionIDs(mentions []string) []string {
	ids := make([]string, 0, len(mentions))
	for _, mention := range mentions {
		lowered := strings.ToLower(mention)
		for i := range d.directory {
			user := &d.directory[i]
			fullName := strings.ToLower(user.FirstName + " " + user.LastName)
			if strings.ToLower(user.Username) == lowered || strings.Contains(fullName, lowered) {
				ids = append(ids, user.ID)
				break
			}
		}
	}
	return ids
}
