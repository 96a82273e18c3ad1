package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeddyRad/GPTC-ODDL-sub001/internal/core/domain"
)

type sinkMock struct {
	mu       sync.Mutex
	drafts   []domain.NotificationDraft
	failFor  map[string]error
	delivers int
}

func (m *sinkMock) Deliver(_ context.Context, draft domain.NotificationDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delivers++
	if err, ok := m.failFor[draft.UserID]; ok {
		return err
	}
	m.drafts = append(m.drafts, draft)
	return nil
}

func (m *sinkMock) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.drafts))
	for _, draft := range m.drafts {
		ids = append(ids, draft.UserID)
	}
	return ids
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func TestNotifyTaskAssignedExcludesActor(t *testing.T) {
	sink := &sinkMock{}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	task := &domain.Task{ID: "task-1", Title: "Déployer la v2", Priority: domain.TaskPriorityMedium}
	err := dispatcher.NotifyTaskAssigned(context.Background(), task, []string{"actor-1", "user-2", "user-3"})
	if err != nil {
		t.Fatalf("NotifyTaskAssigned returned error: %v", err)
	}

	recipients := sink.recipients()
	if len(recipients) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(recipients))
	}
	if containsID(recipients, "actor-1") {
		t.Error("acting user must not be notified of their own assignment")
	}

	for _, draft := range sink.drafts {
		if draft.Type != domain.NotificationTaskAssigned {
			t.Errorf("unexpected type: %s", draft.Type)
		}
		if draft.Priority != domain.NotificationPriorityMedium {
			t.Errorf("expected medium priority, got %s", draft.Priority)
		}
		if draft.RelatedID == nil || *draft.RelatedID != "task-1" {
			t.Error("expected related id to reference the task")
		}
		if draft.IsRead {
			t.Error("drafts must start unread")
		}
		if !strings.Contains(draft.Message, "Déployer la v2") {
			t.Errorf("expected message to carry the task title, got %q", draft.Message)
		}
	}
}

func TestNotifyTaskAssignedUrgentEscalates(t *testing.T) {
	sink := &sinkMock{}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	task := &domain.Task{ID: "task-1", Title: "Incident prod", Priority: domain.TaskPriorityUrgent}
	if err := dispatcher.NotifyTaskAssigned(context.Background(), task, []string{"user-2"}); err != nil {
		t.Fatalf("NotifyTaskAssigned returned error: %v", err)
	}

	if len(sink.drafts) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sink.drafts))
	}
	if sink.drafts[0].Priority != domain.NotificationPriorityHigh {
		t.Errorf("expected urgent task to escalate to high, got %s", sink.drafts[0].Priority)
	}
}

func TestNotifyCommentMentionExcludesAuthorNotActor(t *testing.T) {
	sink := &sinkMock{}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	comment := &domain.Comment{ID: "comment-1", AuthorID: "author-1"}
	task := &domain.Task{ID: "task-1", Title: "Rédiger le rapport"}

	err := dispatcher.NotifyCommentMention(context.Background(), comment, task, []string{"author-1", "actor-1", "user-3"})
	if err != nil {
		t.Fatalf("NotifyCommentMention returned error: %v", err)
	}

	recipients := sink.recipients()
	if containsID(recipients, "author-1") {
		t.Error("comment author must not be notified")
	}
	// The actor is not the exclusion authority for mentions.
	if !containsID(recipients, "actor-1") {
		t.Error("expected acting user to still receive a mention notification")
	}
	if !containsID(recipients, "user-3") {
		t.Error("expected third user to be notified")
	}
}

func TestNotifyProjectUpdateMessageByKind(t *testing.T) {
	project := &domain.Project{
		ID:            "proj-1",
		Name:          "Refonte intranet",
		TeamMemberIDs: []string{"actor-1", "user-2"},
	}

	cases := []struct {
		kind     domain.ProjectUpdateKind
		fragment string
	}{
		{domain.ProjectUpdateStatus, "statut"},
		{domain.ProjectUpdateTeam, "équipe"},
		{domain.ProjectUpdateDeadline, "dates"},
	}

	for _, tc := range cases {
		sink := &sinkMock{}
		dispatcher := NewDispatcher(sink, "actor-1", nil)

		if err := dispatcher.NotifyProjectUpdate(context.Background(), project, tc.kind); err != nil {
			t.Fatalf("NotifyProjectUpdate(%s) returned error: %v", tc.kind, err)
		}

		if len(sink.drafts) != 1 {
			t.Fatalf("expected fan-out to exclude actor, got %d deliveries", len(sink.drafts))
		}
		message := strings.ToLower(sink.drafts[0].Message)
		if !strings.Contains(message, tc.fragment) {
			t.Errorf("expected %s message to mention %q, got %q", tc.kind, tc.fragment, message)
		}
	}
}

func TestNotifyProjectUpdateUnknownKind(t *testing.T) {
	sink := &sinkMock{}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	project := &domain.Project{ID: "proj-1", TeamMemberIDs: []string{"user-2"}}
	if err := dispatcher.NotifyProjectUpdate(context.Background(), project, "renamed"); err == nil {
		t.Fatal("expected error for unknown update kind")
	}
	if sink.delivers != 0 {
		t.Errorf("expected no deliveries for unknown kind, got %d", sink.delivers)
	}
}

func TestNotifySecurityAlertNeverSelfSuppressed(t *testing.T) {
	sink := &sinkMock{}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	err := dispatcher.NotifySecurityAlert(context.Background(), "actor-1", "Connexion depuis un nouvel appareil détectée.")
	if err != nil {
		t.Fatalf("NotifySecurityAlert returned error: %v", err)
	}

	if len(sink.drafts) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sink.drafts))
	}
	draft := sink.drafts[0]
	if draft.UserID != "actor-1" {
		t.Errorf("expected the acting user to be notified, got %s", draft.UserID)
	}
	if draft.Priority != domain.NotificationPriorityHigh {
		t.Errorf("expected high priority, got %s", draft.Priority)
	}
	if draft.RelatedID != nil {
		t.Error("security alerts carry no related entity")
	}
}

func TestDeliverAllSettlesOnPartialFailure(t *testing.T) {
	sinkErr := errors.New("persistence unavailable")
	sink := &sinkMock{failFor: map[string]error{"user-2": sinkErr}}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	task := &domain.Task{ID: "task-1", Title: "Tâche partagée"}
	err := dispatcher.NotifyTaskAssigned(context.Background(), task, []string{"user-2", "user-3", "user-4"})
	if err == nil {
		t.Fatal("expected aggregate error when one delivery fails")
	}
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected aggregate to wrap the sink error, got %v", err)
	}

	// Siblings still receive their deliveries.
	recipients := sink.recipients()
	if !containsID(recipients, "user-3") || !containsID(recipients, "user-4") {
		t.Errorf("expected surviving deliveries to user-3 and user-4, got %v", recipients)
	}
	if sink.delivers != 3 {
		t.Errorf("expected 3 delivery attempts, got %d", sink.delivers)
	}
}

func TestCheckAllDeadlinesWindow(t *testing.T) {
	sink := &sinkMock{}
	dispatcher := NewDispatcher(sink, "actor-1", nil)

	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{ID: "due-soon", Title: "A", Deadline: now.Add(2 * time.Hour), AssignedTo: []string{"user-1"}},
		{ID: "at-boundary", Title: "B", Deadline: now.Add(DeadlineHorizon), AssignedTo: []string{"user-2"}},
		{ID: "past-boundary", Title: "C", Deadline: now.Add(DeadlineHorizon + time.Minute), AssignedTo: []string{"user-3"}},
		{ID: "exactly-now", Title: "D", Deadline: now, AssignedTo: []string{"user-4"}},
		{ID: "overdue", Title: "E", Deadline: now.Add(-time.Hour), AssignedTo: []string{"user-5"}},
		{ID: "completed", Title: "F", Deadline: now.Add(time.Hour), AssignedTo: []string{"user-6"}, Status: domain.TaskStatusCompleted},
	}

	if err := dispatcher.CheckAllDeadlines(context.Background(), tasks, now); err != nil {
		t.Fatalf("CheckAllDeadlines returned error: %v", err)
	}

	recipients := sink.recipients()
	if !containsID(recipients, "user-1") {
		t.Error("expected task due in 2h to notify")
	}
	// The window is half-open: (now, now+24h].
	if !containsID(recipients, "user-2") {
		t.Error("expected task due exactly in 24h to notify")
	}
	if containsID(recipients, "user-3") {
		t.Error("task past the 24h boundary must not notify")
	}
	if containsID(recipients, "user-4") {
		t.Error("task due exactly now must not notify")
	}
	if containsID(recipients, "user-5") {
		t.Error("overdue task must not notify")
	}
	if containsID(recipients, "user-6") {
		t.Error("completed task must not notify")
	}
}

func TestExtractMentions(t *testing.T) {
	mentions := ExtractMentions("cc @alice et @bob, merci @alice ! Contact: support@example.com")
	want := []string{"alice", "bob", "alice", "example"}
	if len(mentions) != len(want) {
		t.Fatalf("expected %d mentions, got %d (%v)", len(want), len(mentions), mentions)
	}
	for i, mention := range want {
		if mentions[i] != mention {
			t.Errorf("mention %d: expected %s, got %s", i, mention, mentions[i])
		}
	}

	if got := ExtractMentions("aucun identifiant ici"); len(got) != 0 {
		t.Errorf("expected no mentions, got %v", got)
	}
}

func TestResolveMentionIDs(t *testing.T) {
	directory := []domain.User{
		{ID: "u-1", Username: "Alice", FirstName: "Alice", LastName: "Durand"},
		{ID: "u-2", Username: "bob42", FirstName: "Bob", LastName: "Martin"},
	}
	dispatcher := NewDispatcher(&sinkMock{}, "actor-1", directory)

	ids := dispatcher.ResolveMentionIDs([]string{"alice", "BOB42", "martin", "ghost"})
	want := []string{"u-1", "u-2", "u-2"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d resolved ids, got %d (%v)", len(want), len(ids), ids)
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("id %d: expected %s, got %s", i, id, ids[i])
		}
	}
}
