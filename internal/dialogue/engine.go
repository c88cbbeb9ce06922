package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/masshrc/chatbot/internal/domain"
	"github.com/masshrc/chatbot/internal/identity"
	"github.com/masshrc/chatbot/internal/store"
)

// Locator resolves a resource category and zipcode to a ranked listing.
type Locator interface {
	Locate(category, zipcode string) string
}

// Inbound is one incoming SMS.
type Inbound struct {
	From string
	Body string
}

// Engine drives the conversation. Each inbound message runs inside a single
// store transaction, and messages from the same sender are serialized with a
// per-sender mutex so concurrent webhooks cannot interleave state updates.
type Engine struct {
	store    store.Store
	locator  Locator
	salt     string
	ttl      time.Duration
	mediaURL string

	now   func() time.Time
	locks sync.Map
}

func NewEngine(st store.Store, locator Locator, salt string, ttl time.Duration, greetingMediaURL string) *Engine {
	return &Engine{
		store:    st,
		locator:  locator,
		salt:     salt,
		ttl:      ttl,
		mediaURL: greetingMediaURL,
		now:      time.Now,
	}
}

// turn carries the per-message context passed through a state handler.
type turn struct {
	ctx   context.Context
	repo  store.Repository
	user  *domain.User
	sess  *domain.Session
	from  string
	input string
	reply *Reply
	now   time.Time
}

type handlerFunc func(*Engine, *turn) error

var handlers = map[domain.State]handlerFunc{
	domain.StatePreRegistration:    (*Engine).handlePreRegistration,
	domain.StateRegistration:       (*Engine).handleRegistration,
	domain.StateAskRaceEthnicity:   (*Engine).handleAskRaceEthnicity,
	domain.StateAskMultiracial1:    (*Engine).handleAskMultiracial1,
	domain.StateAskMultiracial2:    (*Engine).handleAskMultiracial2,
	domain.StateAskGender:          (*Engine).handleAskGender,
	domain.StateAskGenderOther:     (*Engine).handleAskGenderOther,
	domain.StateAskAgeGroup:        (*Engine).handleAskAgeGroup,
	domain.StateMainMenu:           (*Engine).handleMainMenu,
	domain.StateReturningUser:      (*Engine).handleReturningUser,
	domain.StateResourceMenu:       (*Engine).handleResourceMenu,
	domain.StateZipcodeInput:       (*Engine).handleZipcodeInput,
	domain.StateResourceView:       (*Engine).handleResourceView,
	domain.StateHelplineMenu:       (*Engine).handleHelplineMenu,
	domain.StateHelplineView:       (*Engine).handleHelplineView,
	domain.StateNewAlertsUser:      (*Engine).handleNewAlertsUser,
	domain.StateExistingAlertsUser: (*Engine).handleExistingAlertsUser,
}

// HandleMessage processes one inbound SMS and returns the outbound reply.
// All reads and writes for the message happen in one transaction.
func (e *Engine) HandleMessage(ctx context.Context, in Inbound) (*Reply, error) {
	reply := &Reply{}
	if in.From == "" {
		slog.Warn("inbound message without sender")
		reply.Text(apologyText)
		return reply, nil
	}

	hashedID := identity.HashPhoneNumber(in.From, e.salt)
	input := strings.ToLower(strings.TrimSpace(in.Body))

	mu := e.lockFor(hashedID)
	mu.Lock()
	defer mu.Unlock()

	now := e.now()
	err := e.store.InTx(ctx, func(repo store.Repository) error {
		// The store may retry fn on lock contention; start from a clean reply.
		reply.Messages = reply.Messages[:0]
		user, err := e.ensureUser(ctx, repo, hashedID, now)
		if err != nil {
			return err
		}
		sess, err := e.resolveSession(ctx, repo, hashedID, now)
		if err != nil {
			return err
		}

		t := &turn{
			ctx:   ctx,
			repo:  repo,
			user:  user,
			sess:  sess,
			from:  in.From,
			input: input,
			reply: reply,
			now:   now,
		}
		if err := t.record(domain.EventSMSReceived); err != nil {
			return err
		}

		// OPT-OUT has no handler on purpose: an opted-out session is never
		// advanced, only a brand-new session re-enters the flow.
		handler, ok := handlers[sess.State]
		if !ok {
			slog.Warn("no handler for session state", "state", sess.State)
			reply.Text(apologyText)
			return nil
		}
		if err := handler(e, t); err != nil {
			return err
		}
		if err := t.record(domain.EventSMSSent); err != nil {
			return err
		}
		sess.LastInteraction = now
		return repo.UpdateSession(ctx, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("handle message: %w", err)
	}
	return reply, nil
}

func (e *Engine) lockFor(hashedID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(hashedID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// record appends an event tied to the current user and session.
func (t *turn) record(eventType domain.EventType) error {
	return t.appendEvent(&domain.Event{Type: eventType})
}

func (t *turn) recordService(service string) error {
	return t.appendEvent(&domain.Event{Type: domain.EventChatbotService, ChatbotService: service})
}

func (t *turn) recordResourceView(category string) error {
	return t.appendEvent(&domain.Event{Type: domain.EventResourceView, ResourceCategory: category})
}

func (t *turn) recordHelplineView(program string) error {
	return t.appendEvent(&domain.Event{Type: domain.EventHelplineView, HelplineProgram: program})
}

func (t *turn) appendEvent(ev *domain.Event) error {
	ev.ID = uuid.NewString()
	ev.HashedPhoneNumber = t.sess.HashedPhoneNumber
	ev.SessionID = t.sess.ID
	ev.Timestamp = t.now
	return t.repo.AppendEvent(t.ctx, ev)
}
