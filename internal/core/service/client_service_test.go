package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

func newClientService(clients *stubClientRepo, tasks *stubTaskRepo, users *stubUserRepo, notifier *stubNotifier) *ClientService {
	return NewClientService(clients, tasks, users, notifier, &stubFileStore{}, nil, discardLogger)
}

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
func stagePtr(s domain.Stage) *domain.Stage { return &s }

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestClientService_Create_DefaultsToFirstContact(t *testing.T) {
	clients := newStubClientRepo()
	users := newStubUserRepo(fixtureBDE("bde-1"))
	notifier := &stubNotifier{}
	svc := newClientService(clients, newStubTaskRepo(), users, notifier)

	created, err := svc.Create(context.Background(), admin(), ports.CreateClientInput{
		CompanyName: "Acme",
		ContactName: "Jo",
		Email:       "jo@acme.example.com",
		AssignedBDE: "bde-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Stage != domain.StageFirstContact {
		t.Errorf("expected stage %d, got %d", domain.StageFirstContact, created.Stage)
	}
	if created.LastInteraction.IsZero() {
		t.Error("last interaction must be stamped on create")
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "New client created: Acme") {
		t.Errorf("expected creation notification, got %v", notifier.messages)
	}
}

func TestClientService_Create_RejectsUnknownBDE(t *testing.T) {
	svc := newClientService(newStubClientRepo(), newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	_, err := svc.Create(context.Background(), admin(), ports.CreateClientInput{
		CompanyName: "Acme",
		AssignedBDE: "ghost",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientService_Create_RejectsInactiveBDE(t *testing.T) {
	inactive := fixtureBDE("bde-1")
	inactive.IsActive = false
	svc := newClientService(newStubClientRepo(), newStubTaskRepo(), newStubUserRepo(inactive), &stubNotifier{})

	_, err := svc.Create(context.Background(), admin(), ports.CreateClientInput{
		CompanyName: "Acme",
		AssignedBDE: "bde-1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for inactive assignee, got %v", err)
	}
}

func TestClientService_Create_RejectsInvalidStage(t *testing.T) {
	svc := newClientService(newStubClientRepo(), newStubTaskRepo(), newStubUserRepo(fixtureBDE("bde-1")), &stubNotifier{})

	_, err := svc.Create(context.Background(), admin(), ports.CreateClientInput{
		CompanyName: "Acme",
		AssignedBDE: "bde-1",
		Stage:       9,
	})
	if !errors.Is(err, domain.ErrInvalidStage) {
		t.Fatalf("expected invalid stage error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Read visibility
// ---------------------------------------------------------------------------

func TestClientService_Get_BDEOnlySeesOwnClients(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	_ = clients.Create(context.Background(), fixtureClient("c-2", "bde-2"))
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	if _, err := svc.Get(context.Background(), bde("bde-1"), "c-1"); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), bde("bde-1"), "c-2"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for foreign client, got %v", err)
	}
}

func TestClientService_List_FiltersForBDEInsteadOfDenying(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	_ = clients.Create(context.Background(), fixtureClient("c-2", "bde-2"))
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	got, err := svc.List(context.Background(), ports.ListClientsInput{Principal: bde("bde-1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("expected only owned client, got %d results", len(got))
	}

	all, err := svc.List(context.Background(), ports.ListClientsInput{Principal: admin()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin must see all clients, got %d", len(all))
	}
}

// ---------------------------------------------------------------------------
// Update notification precedence
// ---------------------------------------------------------------------------

func TestClientService_Update_DropNotificationWinsOverStageChange(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	notifier := &stubNotifier{}
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), notifier)

	_, err := svc.Update(context.Background(), admin(), "c-1", ports.ClientPatch{
		Stage:      stagePtr(domain.StageNegotiation),
		IsDropped:  boolPtr(true),
		DropReason: strPtr("budget cut"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "marked as dropped: budget cut") {
		t.Errorf("expected drop notification, got %q", notifier.messages[0])
	}
}

func TestClientService_Update_StageChangeNotification(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	notifier := &stubNotifier{}
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), notifier)

	_, err := svc.Update(context.Background(), admin(), "c-1", ports.ClientPatch{
		Stage: stagePtr(domain.StageConverted),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "moved to stage: Converted") {
		t.Errorf("expected stage notification, got %v", notifier.messages)
	}
}

func TestClientService_Update_SameStageValueIsGenericUpdate(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	notifier := &stubNotifier{}
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), notifier)

	// Writing the stage the client already has is not a transition.
	_, err := svc.Update(context.Background(), admin(), "c-1", ports.ClientPatch{
		Stage: stagePtr(domain.StageFirstContact),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "updated") {
		t.Errorf("expected generic update notification, got %v", notifier.messages)
	}
}

func TestClientService_Update_AlreadyDroppedDoesNotRenotify(t *testing.T) {
	clients := newStubClientRepo()
	dropped := fixtureClient("c-1", "bde-1")
	dropped.IsDropped = true
	dropped.DropReason = "gone quiet"
	_ = clients.Create(context.Background(), dropped)
	notifier := &stubNotifier{}
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), notifier)

	_, err := svc.Update(context.Background(), admin(), "c-1", ports.ClientPatch{
		IsDropped: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "updated") {
		t.Errorf("re-dropping must fall through to the generic notification, got %v", notifier.messages)
	}
}

func TestClientService_Update_DropRequiresReason(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	_, err := svc.Update(context.Background(), admin(), "c-1", ports.ClientPatch{
		IsDropped: boolPtr(true),
	})
	if !errors.Is(err, domain.ErrDropReasonRequired) {
		t.Fatalf("expected drop reason error, got %v", err)
	}
}

func TestClientService_Update_BackwardStageTransitionAllowed(t *testing.T) {
	clients := newStubClientRepo()
	advanced := fixtureClient("c-1", "bde-1")
	advanced.Stage = domain.StageNegotiation
	_ = clients.Create(context.Background(), advanced)
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	updated, err := svc.Update(context.Background(), admin(), "c-1", ports.ClientPatch{
		Stage: stagePtr(domain.StageFirstContact),
	})
	if err != nil {
		t.Fatalf("backward transition must be allowed: %v", err)
	}
	if updated.Stage != domain.StageFirstContact {
		t.Errorf("expected stage %d, got %d", domain.StageFirstContact, updated.Stage)
	}
}

func TestClientService_Update_ForbiddenForForeignBDE(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	_, err := svc.Update(context.Background(), bde("bde-2"), "c-1", ports.ClientPatch{
		CompanyName: strPtr("Renamed"),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestClientService_Delete_SuperAdminOnlyAndCascadesTasks(t *testing.T) {
	clients := newStubClientRepo()
	tasks := newStubTaskRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	_ = tasks.Create(context.Background(), &domain.Task{ID: "t-1", ClientID: "c-1", Status: domain.TaskPending})
	_ = tasks.Create(context.Background(), &domain.Task{ID: "t-2", ClientID: "c-other", Status: domain.TaskPending})
	svc := newClientService(clients, tasks, newStubUserRepo(), &stubNotifier{})

	if err := svc.Delete(context.Background(), admin(), "c-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin must not delete clients, got %v", err)
	}
	if err := svc.Delete(context.Background(), bde("bde-1"), "c-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owning bde must not delete clients, got %v", err)
	}

	if err := svc.Delete(context.Background(), superAdmin(), "c-1"); err != nil {
		t.Fatalf("super admin delete failed: %v", err)
	}
	if _, ok := clients.byID["c-1"]; ok {
		t.Error("client must be removed")
	}
	if _, ok := tasks.byID["t-1"]; ok {
		t.Error("tasks of the deleted client must be cascaded")
	}
	if _, ok := tasks.byID["t-2"]; !ok {
		t.Error("tasks of other clients must survive")
	}
}

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

func TestClientService_AddNote_PrependsStampedNote(t *testing.T) {
	clients := newStubClientRepo()
	existing := fixtureClient("c-1", "bde-1")
	existing.Notes = []string{"old note"}
	_ = clients.Create(context.Background(), existing)
	author := fixtureBDE("bde-1")
	author.Name = "Dana"
	notifier := &stubNotifier{}
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(author), notifier)

	updated, err := svc.AddNote(context.Background(), bde("bde-1"), "c-1", "called them back")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(updated.Notes))
	}
	if updated.Notes[1] != "old note" {
		t.Error("new note must be prepended, not appended")
	}
	if !strings.HasSuffix(updated.Notes[0], "- Dana: called them back") {
		t.Errorf("note must carry timestamp and author, got %q", updated.Notes[0])
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "New note added") {
		t.Errorf("expected note notification, got %v", notifier.messages)
	}
}

func TestClientService_AddNote_EmptyTextRejected(t *testing.T) {
	svc := newClientService(newStubClientRepo(), newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	_, err := svc.AddNote(context.Background(), admin(), "c-1", "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Attachments
// ---------------------------------------------------------------------------

func attachmentInput(clientID string, noteIndex int) ports.AddAttachmentInput {
	return ports.AddAttachmentInput{
		ClientID:    clientID,
		NoteIndex:   noteIndex,
		Filename:    "contract.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Body:        strings.NewReader("%PDF-1.4"),
	}
}

func TestClientService_AddAttachment_Success(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	files := &stubFileStore{}
	svc := NewClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{}, files, nil, discardLogger)

	att, err := svc.AddAttachment(context.Background(), admin(), attachmentInput("c-1", -1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if att.NoteIndex != -1 {
		t.Errorf("client-level attachment must have note index -1, got %d", att.NoteIndex)
	}
	if att.OriginalFilename != "contract.pdf" {
		t.Errorf("original filename lost: %q", att.OriginalFilename)
	}
	if !strings.HasSuffix(att.StoredFilename, ".pdf") {
		t.Errorf("stored name must keep the extension, got %q", att.StoredFilename)
	}
	if att.StoredFilename == "contract.pdf" {
		t.Error("stored name must be generated, not the original")
	}
	if len(files.saved) != 1 {
		t.Fatalf("expected 1 stored file, got %d", len(files.saved))
	}
	stored, _ := clients.FindByID(context.Background(), "c-1")
	if len(stored.Attachments) != 1 {
		t.Fatalf("attachment must be recorded on the client, got %d", len(stored.Attachments))
	}
}

func TestClientService_AddAttachment_RejectsDisallowedType(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	input := attachmentInput("c-1", -1)
	input.ContentType = "application/x-msdownload"
	_, err := svc.AddAttachment(context.Background(), admin(), input)
	if !errors.Is(err, domain.ErrUnsupportedFileType) {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestClientService_AddAttachment_RejectsOversize(t *testing.T) {
	clients := newStubClientRepo()
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	input := attachmentInput("c-1", -1)
	input.Size = maxAttachmentSize + 1
	_, err := svc.AddAttachment(context.Background(), admin(), input)
	if !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestClientService_AddAttachment_NoteIndexOutOfRange(t *testing.T) {
	clients := newStubClientRepo()
	withNote := fixtureClient("c-1", "bde-1")
	withNote.Notes = []string{"only note"}
	_ = clients.Create(context.Background(), withNote)
	svc := newClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{})

	if _, err := svc.AddAttachment(context.Background(), admin(), attachmentInput("c-1", 0)); err != nil {
		t.Fatalf("index 0 must resolve to the existing note: %v", err)
	}
	if _, err := svc.AddAttachment(context.Background(), admin(), attachmentInput("c-1", 1)); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected note not found, got %v", err)
	}
}

func TestClientService_AddAttachment_CleansUpOnRecordFailure(t *testing.T) {
	clients := newStubClientRepo()
	files := &stubFileStore{}
	svc := NewClientService(clients, newStubTaskRepo(), newStubUserRepo(), &stubNotifier{}, files, nil, discardLogger)
	_ = clients.Create(context.Background(), fixtureClient("c-1", "bde-1"))

	// Make the attachment record step fail by removing the client between
	// the store write and the document update.
	input := attachmentInput("c-1", -1)
	input.Body = removingReader{repo: clients, id: "c-1", inner: strings.NewReader("%PDF-1.4")}

	_, err := svc.AddAttachment(context.Background(), admin(), input)
	if err == nil {
		t.Fatal("expected error when the record step fails")
	}
	if len(files.deleted) != 1 {
		t.Fatalf("stored file must be cleaned up, deleted=%d", len(files.deleted))
	}
}

// removingReader deletes a client from the stub repo as a side effect of the
// upload read, simulating a concurrent delete between Save and record.
type removingReader struct {
	repo  *stubClientRepo
	id    string
	inner *strings.Reader
}

func (r removingReader) Read(p []byte) (int, error) {
	delete(r.repo.byID, r.id)
	return r.inner.Read(p)
}

func TestClientService_Create_ProvisionsDriveFolderForLinkedActor(t *testing.T) {
	clients := newStubClientRepo()
	actor := fixtureBDE("admin-1")
	actor.Role = domain.RoleAdmin
	actor.GoogleCredentials = `{"access_token":"tok"}`
	users := newStubUserRepo(actor, fixtureBDE("bde-1"))
	ws := &stubWorkspace{}
	svc := NewClientService(clients, newStubTaskRepo(), users, &stubNotifier{}, &stubFileStore{}, ws, discardLogger)

	_, err := svc.Create(context.Background(), admin(), ports.CreateClientInput{
		CompanyName: "Globex",
		ContactName: "Hank",
		AssignedBDE: "bde-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ws.folders) != 1 || ws.folders[0] != "Globex" {
		t.Errorf("expected a drive folder named after the company, got %v", ws.folders)
	}
}

func TestClientService_Create_SkipsDriveFolderWithoutCredentials(t *testing.T) {
	clients := newStubClientRepo()
	users := newStubUserRepo(fixtureBDE("bde-1"))
	ws := &stubWorkspace{}
	svc := NewClientService(clients, newStubTaskRepo(), users, &stubNotifier{}, &stubFileStore{}, ws, discardLogger)

	_, err := svc.Create(context.Background(), superAdmin(), ports.CreateClientInput{
		CompanyName: "Initech",
		ContactName: "Peter",
		AssignedBDE: "bde-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ws.folders) != 0 {
		t.Errorf("no credentials, no folder; got %v", ws.folders)
	}
}
