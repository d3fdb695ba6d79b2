package comms

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ukydev/fleet-dashboard/internal/fixtures"
	"github.com/ukydev/fleet-dashboard/internal/models"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func testMailbox() *Mailbox {
	m := NewMailbox("fleet@dashboard.example", fixtures.Snapshot(testNow).Emails)
	m.now = func() time.Time { return testNow }
	return m
}

func emailIDs(entries []models.EmailHistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestFolderOf(t *testing.T) {
	base := models.EmailHistoryEntry{SentAt: testNow.Add(-time.Hour)}
	tests := []struct {
		name  string
		entry func(e models.EmailHistoryEntry) models.EmailHistoryEntry
		want  models.Folder
	}{
		{"inbound unfiled", func(e models.EmailHistoryEntry) models.EmailHistoryEntry { e.Direction = models.Inbound; return e }, models.FolderInbox},
		{"recent outbound", func(e models.EmailHistoryEntry) models.EmailHistoryEntry { e.Direction = models.Outbound; return e }, models.FolderSent},
		{"old outbound", func(e models.EmailHistoryEntry) models.EmailHistoryEntry {
			e.Direction, e.SentAt = models.Outbound, testNow.Add(-8*24*time.Hour)
			return e
		}, models.FolderHistory},
		{"explicit folder wins over inference", func(e models.EmailHistoryEntry) models.EmailHistoryEntry {
			e.Direction, e.SentAt, e.Folder = models.Outbound, testNow.Add(-30*24*time.Hour), models.FolderSent
			return e
		}, models.FolderSent},
		{"archived wins over folder", func(e models.EmailHistoryEntry) models.EmailHistoryEntry {
			e.Folder, e.Archived = models.FolderInbox, true
			return e
		}, models.FolderArchived},
		{"deleted wins over archived", func(e models.EmailHistoryEntry) models.EmailHistoryEntry {
			e.Archived, e.Deleted = true, true
			return e
		}, models.FolderTrash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FolderOf(tt.entry(base), testNow))
		})
	}
}

func TestMailbox_EveryEntryHasOneFolder(t *testing.T) {
	m := testMailbox()
	seen := map[string]int{}
	for _, f := range []models.Folder{models.FolderInbox, models.FolderSent, models.FolderHistory, models.FolderArchived, models.FolderTrash} {
		for _, e := range m.List(f, "") {
			seen[e.ID]++
		}
	}
	assert.Len(t, seen, 4)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestMailbox_List(t *testing.T) {
	m := testMailbox()
	assert.Equal(t, []string{"email-seed-1"}, emailIDs(m.List(models.FolderInbox, "")))
	assert.Equal(t, []string{"email-seed-3"}, emailIDs(m.List(models.FolderSent, "")))
	assert.Equal(t, []string{"email-seed-2"}, emailIDs(m.List(models.FolderHistory, "")))
	assert.Equal(t, []string{"email-seed-4"}, emailIDs(m.List(models.FolderArchived, "")))
	assert.Equal(t, []string{"email-seed-1", "email-seed-3", "email-seed-4", "email-seed-2"}, emailIDs(m.List(models.FolderAll, "")))
	assert.Equal(t, []string{"email-seed-3", "email-seed-4"}, emailIDs(m.List(models.FolderAll, "bd21")))
	assert.Equal(t, []string{"email-seed-1"}, emailIDs(m.List("", "")), "empty folder lists the inbox")
}

func TestMailbox_Send(t *testing.T) {
	m := testMailbox()
	first, err := m.Send(Draft{ContactID: "cust-1", To: "james.wilson@acme.example", Subject: "Collection", Body: "Tomorrow at 9"})
	require.NoError(t, err)
	assert.Equal(t, "email-1741953600000", first.ID)
	assert.Equal(t, models.FolderSent, first.Folder)
	assert.Equal(t, "sent", first.Status)
	assert.Equal(t, "fleet@dashboard.example", first.From)

	second, err := m.Send(Draft{To: "x@example.com", Subject: "Again"})
	require.NoError(t, err)
	assert.Equal(t, "email-1741953600001", second.ID, "ids stay unique within a millisecond")

	assert.Equal(t, []string{"email-1741953600000", "email-1741953600001", "email-seed-3"}, emailIDs(m.List(models.FolderSent, "")))

	_, err = m.Send(Draft{Subject: "no recipient"})
	assert.ErrorIs(t, err, ErrInvalidDraft)
	_, err = m.Send(Draft{To: "x@example.com"})
	assert.ErrorIs(t, err, ErrInvalidDraft)
}

func TestMailbox_Actions(t *testing.T) {
	m := testMailbox()

	e, err := m.Apply("email-seed-1", "read")
	require.NoError(t, err)
	assert.True(t, e.Read)
	assert.Zero(t, m.Unread()[models.FolderInbox])

	e, err = m.Apply("email-seed-1", "star")
	require.NoError(t, err)
	assert.True(t, e.Starred)
	assert.Equal(t, []string{"email-seed-1"}, emailIDs(m.List(models.FolderStarred, "")))

	_, err = m.Apply("email-seed-1", "archive")
	require.NoError(t, err)
	assert.Empty(t, m.List(models.FolderInbox, ""))

	_, err = m.Apply("email-seed-1", "delete")
	require.NoError(t, err)
	assert.Equal(t, []string{"email-seed-1"}, emailIDs(m.List(models.FolderTrash, "")))
	assert.Empty(t, m.List(models.FolderStarred, ""), "trash hides starred entries")
	assert.NotContains(t, emailIDs(m.List(models.FolderAll, "")), "email-seed-1")

	_, err = m.Apply("email-seed-1", "restore")
	require.NoError(t, err)
	assert.Equal(t, []string{"email-seed-1"}, emailIDs(m.List(models.FolderInbox, "")))

	e, err = m.Apply("email-seed-1", "star")
	require.NoError(t, err)
	assert.False(t, e.Starred)

	_, err = m.Apply("missing", "read")
	assert.ErrorIs(t, err, ErrEmailNotFound)
	_, err = m.Apply("email-seed-1", "forward")
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrEmailNotFound)
}

func fastDialer(t *testing.T) *Dialer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewDialer(DialerConfig{
		Scale:   time.Millisecond,
		MaxWait: 30 * time.Millisecond,
		Tick:    time.Millisecond,
		Rand:    rand.New(rand.NewPCG(1, 2)),
	}, logger)
}

func waitFor(t *testing.T, c *Call) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("call did not resolve")
	}
}

func TestExtract(t *testing.T) {
	reg, contract, caseID := Extract(Transcript(models.Contact{ID: "cust-1", Name: "James"}))
	assert.Equal(t, "AB12 CDE", reg)
	assert.Equal(t, "C-001", contract)
	assert.Equal(t, "CASE-001", caseID)

	reg, contract, caseID = Extract(Transcript(models.Contact{ID: "sup-1", Name: "Dave"}))
	assert.Equal(t, "BD21 XYZ", reg)
	assert.Equal(t, "C-014", contract)
	assert.Equal(t, "CASE-207", caseID)

	reg, contract, caseID = Extract("nothing to see")
	assert.Empty(t, reg + contract + caseID)
}

func TestDialer_CallResolvesWithExtractedFields(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := fastDialer(t)
	contact := models.Contact{ID: "cust-1", Name: "James Wilson", Phone: "07700 900101"}
	c, err := d.Start(contact)
	require.NoError(t, err)

	state := d.State()
	assert.True(t, state.Calling)
	assert.True(t, state.Recording)
	assert.Equal(t, "cust-1", state.ContactID)

	_, err = d.Start(contact)
	assert.ErrorIs(t, err, ErrCallInProgress)

	waitFor(t, c)
	entry, ok := d.Result(c)
	require.True(t, ok)
	assert.Equal(t, "AB12 CDE", entry.VehicleReg)
	assert.Equal(t, "C-001", entry.ContractID)
	assert.Equal(t, "CASE-001", entry.CaseID)
	assert.GreaterOrEqual(t, entry.DurationSeconds, MinCallSeconds)
	assert.LessOrEqual(t, entry.DurationSeconds, MaxCallSeconds)
	assert.Regexp(t, `^call-\d+$`, entry.ID)

	history := d.History()
	require.Len(t, history, 1)
	assert.Equal(t, entry, history[0])
	assert.False(t, d.State().Active)
	assert.ErrorIs(t, d.End(), ErrNoActiveCall)
}

func TestDialer_EndCancelsWithoutRecord(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger, _ := test.NewNullLogger()
	d := NewDialer(DialerConfig{Scale: time.Second, MaxWait: time.Hour, Tick: time.Millisecond}, logger)
	c, err := d.Start(models.Contact{ID: "cust-2"})
	require.NoError(t, err)

	require.NoError(t, d.End())
	<-c.Done()
	_, ok := d.Result(c)
	assert.False(t, ok)
	assert.Empty(t, d.History())
	assert.False(t, d.State().Active)

	// A new call can start once the previous one ended.
	c, err = d.Start(models.Contact{ID: "cust-2"})
	require.NoError(t, err)
	d.Close()
	<-c.Done()
	assert.Empty(t, d.History())

	_, err = d.Start(models.Contact{ID: "cust-2"})
	assert.Error(t, err)
}

func TestDialer_ElapsedTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger, _ := test.NewNullLogger()
	d := NewDialer(DialerConfig{Scale: time.Second, MaxWait: time.Hour, Tick: time.Millisecond}, logger)
	_, err := d.Start(models.Contact{ID: "cust-1"})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return d.State().ElapsedSeconds >= 3 }, 2*time.Second, time.Millisecond)
	d.Close()
}

func TestSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewSessions("fleet@dashboard.example", DialerConfig{Scale: time.Second, MaxWait: time.Hour, Tick: time.Second}, nil)
	seed := fixtures.Snapshot(testNow).Emails
	alice := s.Get("alice", seed)
	assert.Same(t, alice, s.Get("alice", nil))

	bob := s.Get("bob", seed)
	_, err := alice.Mailbox.Apply("email-seed-1", "delete")
	require.NoError(t, err)
	e, err := bob.Mailbox.Get("email-seed-1")
	require.NoError(t, err)
	assert.False(t, e.Deleted, "mailboxes are per user")

	_, err = alice.Dialer.Start(models.Contact{ID: "cust-1"})
	require.NoError(t, err)
	s.Close()
}

func TestSessions_DialersDoNotShareRand(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger, _ := test.NewNullLogger()
	shared := rand.New(rand.NewPCG(1, 2))
	s := NewSessions("fleet@dashboard.example", DialerConfig{
		Scale:   time.Millisecond,
		MaxWait: 30 * time.Millisecond,
		Tick:    time.Millisecond,
		Rand:    shared,
	}, logger)

	alice := s.Get("alice", nil)
	bob := s.Get("bob", nil)
	assert.NotSame(t, shared, alice.Dialer.cfg.Rand)
	assert.NotSame(t, shared, bob.Dialer.cfg.Rand)
	assert.NotSame(t, alice.Dialer.cfg.Rand, bob.Dialer.cfg.Rand)

	var wg sync.WaitGroup
	calls := make([]*Call, 2)
	for i, sess := range []*Session{alice, bob} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := sess.Dialer.Start(models.Contact{ID: "cust-1"})
			assert.NoError(t, err)
			calls[i] = c
		}()
	}
	wg.Wait()
	for _, c := range calls {
		if c != nil {
			waitFor(t, c)
		}
	}
	assert.Len(t, alice.Dialer.History(), 1)
	assert.Len(t, bob.Dialer.History(), 1)
	s.Close()
}
