package comms

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

var (
	ErrCallInProgress = errors.New("a call is already in progress")
	ErrNoActiveCall   = errors.New("no active call")
)

// Simulated call length bounds in seconds.
const (
	MinCallSeconds = 30
	MaxCallSeconds = 330
)

var (
	registrationPattern = regexp.MustCompile(`\b[A-Z]{2}\d{2}\s?[A-Z]{3}\b`)
	contractPattern     = regexp.MustCompile(`\bC-\d+\b`)
	casePattern         = regexp.MustCompile(`\bCASE-\d+\b`)
)

// Transcript returns the canned transcript for a contact.
func Transcript(contact models.Contact) string {
	if contact.ID == "cust-1" {
		return fmt.Sprintf("Agent: Good morning %s, thanks for calling the fleet desk.\n"+
			"Customer: Hi, I'm calling about vehicle AB12 CDE on contract C-001.\n"+
			"Agent: I can see it. I've opened case CASE-001 for the warning light you reported.\n"+
			"Customer: Great, thanks. Can someone collect it this week?\n"+
			"Agent: Yes, we'll arrange a collection and send confirmation by email.", contact.Name)
	}
	return fmt.Sprintf("Agent: Hello %s, fleet desk speaking.\n"+
		"Caller: I'm following up on BD21 XYZ, the repair under contract C-014.\n"+
		"Agent: That's logged under CASE-207. Parts are due tomorrow.\n"+
		"Caller: Understood, please keep me posted.\n"+
		"Agent: Will do, I'll update you once the work is complete.", contact.Name)
}

// Extract pulls the first vehicle registration, contract id and case id out of a transcript.
func Extract(transcript string) (registration, contractID, caseID string) {
	return registrationPattern.FindString(transcript),
		contractPattern.FindString(transcript),
		casePattern.FindString(transcript)
}

// DialerConfig controls how simulated time maps onto wall-clock time.
type DialerConfig struct {
	// Scale is the real time spent per simulated second.
	Scale time.Duration
	// MaxWait caps the real time a call takes to resolve.
	MaxWait time.Duration
	// Tick is the interval of the elapsed-seconds counter.
	Tick time.Duration
	// Rand picks call durations. It is used by a single dialer; Sessions
	// derives a separate source per dialer from it.
	Rand *rand.Rand
}

// DefaultDialerConfig resolves calls within five seconds.
func DefaultDialerConfig() DialerConfig {
	return DialerConfig{Scale: 100 * time.Millisecond, MaxWait: 5 * time.Second, Tick: time.Second}
}

// CallState is the dialer's view of the current call.
type CallState struct {
	Active         bool      `json:"active"`
	Calling        bool      `json:"calling"`
	Recording      bool      `json:"recording"`
	ContactID      string    `json:"contactId,omitempty"`
	ContactName    string    `json:"contactName,omitempty"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
}

// Call is a handle on a call in progress.
type Call struct {
	contact  models.Contact
	started  time.Time
	duration int
	elapsed  int
	cancel   chan struct{}
	done     chan struct{}
	entry    *models.CallHistoryEntry
}

// Done is closed when the call resolves or is cancelled.
func (c *Call) Done() <-chan struct{} { return c.done }

// Dialer runs at most one simulated call at a time.
type Dialer struct {
	mu      sync.Mutex
	cfg     DialerConfig
	logger  log.FieldLogger
	active  *Call
	history []models.CallHistoryEntry
	lastID  int64
	closed  bool
}

// NewDialer creates an idle dialer.
func NewDialer(cfg DialerConfig, logger log.FieldLogger) *Dialer {
	def := DefaultDialerConfig()
	if cfg.Scale <= 0 {
		cfg.Scale = def.Scale
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Dialer{cfg: cfg, logger: logger}
}

// Start places a call to the contact. The call resolves on its own after the
// simulated duration and is appended to the history.
func (d *Dialer) Start(contact models.Contact) (*Call, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("dialer is closed")
	}
	if d.active != nil {
		return nil, ErrCallInProgress
	}
	c := &Call{
		contact:  contact,
		started:  time.Now(),
		duration: MinCallSeconds + d.cfg.Rand.IntN(MaxCallSeconds-MinCallSeconds+1),
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	d.active = c
	wait := min(time.Duration(c.duration)*d.cfg.Scale, d.cfg.MaxWait)
	go d.run(c, wait)

	d.logger.WithFields(log.Fields{
		"contact_id": contact.ID,
		"duration":   c.duration,
		"wait":       wait.String(),
	}).Info("Call started")
	return c, nil
}

func (d *Dialer) run(c *Call, wait time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(d.cfg.Tick)
	defer ticker.Stop()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			c.elapsed++
			d.mu.Unlock()
		case <-c.cancel:
			return
		case <-timer.C:
			d.complete(c)
			return
		}
	}
}

func (d *Dialer) complete(c *Call) {
	transcript := Transcript(c.contact)
	reg, contract, caseID := Extract(transcript)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != c {
		return
	}
	entry := models.CallHistoryEntry{
		ID:              "call-" + strconv.FormatInt(nextID(&d.lastID, time.Now()), 10),
		ContactID:       c.contact.ID,
		ContactName:     c.contact.Name,
		Phone:           c.contact.Phone,
		Direction:       models.Outbound,
		StartedAt:       c.started,
		DurationSeconds: c.duration,
		Recorded:        true,
		Transcript:      transcript,
		VehicleReg:      reg,
		ContractID:      contract,
		CaseID:          caseID,
		Status:          "completed",
	}
	d.history = append(d.history, entry)
	c.entry = &entry
	d.active = nil
	d.logger.WithFields(log.Fields{
		"call_id":     entry.ID,
		"contact_id":  entry.ContactID,
		"vehicle_reg": reg,
		"contract_id": contract,
		"case_id":     caseID,
	}).Info("Call completed")
}

// End cancels the current call. Nothing is recorded for a cancelled call.
func (d *Dialer) End() error {
	d.mu.Lock()
	c := d.active
	if c == nil {
		d.mu.Unlock()
		return ErrNoActiveCall
	}
	d.active = nil
	close(c.cancel)
	d.mu.Unlock()

	<-c.done
	d.logger.WithField("contact_id", c.contact.ID).Info("Call ended early")
	return nil
}

// Result returns the history entry once the call has completed.
func (d *Dialer) Result(c *Call) (models.CallHistoryEntry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.entry == nil {
		return models.CallHistoryEntry{}, false
	}
	return *c.entry, true
}

// State reports the current call.
func (d *Dialer) State() CallState {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.active
	if c == nil {
		return CallState{}
	}
	return CallState{
		Active:         true,
		Calling:        true,
		Recording:      true,
		ContactID:      c.contact.ID,
		ContactName:    c.contact.Name,
		StartedAt:      c.started,
		ElapsedSeconds: c.elapsed,
	}
}

// History returns completed calls, oldest first.
func (d *Dialer) History() []models.CallHistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.CallHistoryEntry(nil), d.history...)
}

// Close stops any call in progress and refuses new ones.
func (d *Dialer) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	if err := d.End(); err != nil && !errors.Is(err, ErrNoActiveCall) {
		d.logger.WithError(err).Warn("Failed to end call on close")
	}
}
