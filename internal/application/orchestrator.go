package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/followcheck/internal/domain"
	"github.com/bnema/followcheck/internal/ports"
	"go.uber.org/zap"
)

type Authenticator interface {
	Login(ctx context.Context, username domain.Identifier, password string) (LoginResult, error)
	SubmitSecondFactor(ctx context.Context, handle domain.PendingHandle, code string) (*domain.CookieJar, error)
}

type Collector interface {
	Collect(ctx context.Context, account domain.Identifier, cookies *domain.CookieJar) (domain.CollectionResult, error)
}

var (
	_ Authenticator = (*LoginService)(nil)
	_ Collector     = (*CollectionService)(nil)
)

// SessionOrchestrator runs the per-conversation state machine. It is not
// re-entrant for a conversation; callers serialize events per conversation.
type SessionOrchestrator struct {
	sessions  ports.SessionStore
	transport ports.Transport
	auth      Authenticator
	collector Collector
	jars      ports.CookieJarRepository
	codec     ports.CookieCodec
	clock     ports.Clock
	logger    *zap.Logger
}

func NewSessionOrchestrator(
	sessions ports.SessionStore,
	transport ports.Transport,
	auth Authenticator,
	collector Collector,
	jars ports.CookieJarRepository,
	codec ports.CookieCodec,
	clock ports.Clock,
	logger *zap.Logger,
) *SessionOrchestrator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionOrchestrator{
		sessions:  sessions,
		transport: transport,
		auth:      auth,
		collector: collector,
		jars:      jars,
		codec:     codec,
		clock:     clock,
		logger:    logger,
	}
}

// HandleEvent applies one inbound event to its conversation's session. Only
// session store failures are returned; delivery failures are logged.
func (o *SessionOrchestrator) HandleEvent(ctx context.Context, event Event) error {
	session, err := o.sessions.Get(ctx, event.Conversation)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	from := session.Stage
	if event.Kind == EventCommand && session.Stage == domain.StageWaitLoginPassword && !cancelsLogin(event) {
		// A password may start with a slash; it is still a password.
		event.Kind = EventText
	}
	if event.Kind == EventCommand {
		o.handleCommand(ctx, &session, event)
	} else {
		o.handleInput(ctx, &session, event)
	}

	o.logger.Debug("event handled",
		zap.String("event_id", event.ID),
		zap.Int64("conversation", int64(event.Conversation)),
		zap.String("kind", string(event.Kind)),
		zap.String("command", event.Command),
		zap.String("from", string(from)),
		zap.String("to", string(session.Stage)),
	)

	if err := o.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// cancelsLogin reports whether a bare /start or /reset should abandon a login
// that is waiting for its password.
func cancelsLogin(event Event) bool {
	return event.Args == "" && (event.Command == CommandStart || event.Command == CommandReset)
}

func (o *SessionOrchestrator) handleCommand(ctx context.Context, session *domain.Session, event Event) {
	switch event.Command {
	case CommandStart, CommandReset:
		session.Reset()
		o.reply(ctx, session, msgGreeting)
	case CommandHelp:
		o.reply(ctx, session, msgHelp)
	case CommandCheck:
		o.abandonLogin(session)
		session.ClearLists()
		session.Target = ""
		session.Stage = domain.StageWaitFollowers
		o.reply(ctx, session, msgAskFollowers)
	case CommandLogin:
		session.ClearLogin()
		session.Cookies = nil
		session.Stage = domain.StageWaitLoginUsername
		o.reply(ctx, session, msgAskUsername)
	case CommandLogout:
		o.logout(ctx, session)
	case Command2FA:
		o.secondFactor(ctx, session, event)
	case CommandScrape:
		o.startScrape(ctx, session, event.Args)
	case CommandWhy:
		o.why(ctx, session, event.Args)
	case CommandFind:
		o.find(ctx, session, event.Args)
	default:
		o.reply(ctx, session, msgUnknownCommand)
	}
}

func (o *SessionOrchestrator) handleInput(ctx context.Context, session *domain.Session, event Event) {
	switch session.Stage {
	case domain.StageWaitFollowers, domain.StageWaitFollowing:
		o.receiveList(ctx, session, event)
	case domain.StageWaitCookies:
		o.receiveCookies(ctx, session, event)
	case domain.StageWaitLoginUsername:
		o.receiveUsername(ctx, session, event)
	case domain.StageWaitLoginPassword:
		o.receivePassword(ctx, session, event)
	case domain.StageAwait2FA:
		o.reply(ctx, session, msgAwait2FAText)
	default:
		if event.Kind == EventFile {
			o.reply(ctx, session, msgIdleFile)
			return
		}
		o.reply(ctx, session, msgIdleGuidance)
	}
}

func (o *SessionOrchestrator) receiveList(ctx context.Context, session *domain.Session, event Event) {
	payload, err := event.Payload(ctx)
	if errors.Is(err, errNoPayload) {
		o.reply(ctx, session, msgListInputText)
		return
	}
	if err != nil {
		o.logger.Warn("read list file", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
		o.reply(ctx, session, msgFileUnreadable)
		return
	}

	list := domain.ParseIdentifierList(payload)
	if len(list) == 0 {
		o.reply(ctx, session, msgEmptyList)
		return
	}

	if session.Stage == domain.StageWaitFollowers {
		session.Followers = list
		session.Stage = domain.StageWaitFollowing
		o.reply(ctx, session, msgAskFollowing(len(list)))
		return
	}

	session.Following = list
	session.Stage = domain.StageIdle
	o.deliver(ctx, session, NewReport(session.Followers, session.Following))
}

func (o *SessionOrchestrator) receiveCookies(ctx context.Context, session *domain.Session, event Event) {
	if event.Kind != EventFile || event.File == nil {
		o.reply(ctx, session, msgCookiesText)
		return
	}

	data, err := event.File.Read(ctx)
	if err != nil {
		o.logger.Warn("read cookie file", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
		o.reply(ctx, session, msgFileUnreadable)
		return
	}

	jar, err := o.codec.Decode(data)
	if err != nil || jar.Len() == 0 {
		o.logger.Info("cookie file rejected", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
		o.reply(ctx, session, msgCookieParse)
		return
	}

	o.collect(ctx, session, session.Target, jar)
}

func (o *SessionOrchestrator) receiveUsername(ctx context.Context, session *domain.Session, event Event) {
	if event.Kind != EventText {
		o.reply(ctx, session, msgAskUsername)
		return
	}

	username := domain.NormalizeIdentifier(event.Text)
	if username == "" {
		o.reply(ctx, session, msgInvalidUsername)
		return
	}

	session.LoginUsername = username
	session.Retract = append(session.Retract, event.MessageID)
	session.Stage = domain.StageWaitLoginPassword
	o.reply(ctx, session, msgAskPassword)
}

func (o *SessionOrchestrator) receivePassword(ctx context.Context, session *domain.Session, event Event) {
	if event.Kind != EventText {
		o.reply(ctx, session, msgAskPassword)
		return
	}
	if session.LoginUsername == "" {
		o.reply(ctx, session, msgUsernameMissing)
		return
	}

	session.Retract = append(session.Retract, event.MessageID)
	o.retract(ctx, session)

	password := strings.TrimSpace(event.Text)
	if password == "" {
		o.reply(ctx, session, msgEmptyPassword)
		return
	}

	o.reply(ctx, session, msgLoggingIn)
	result, err := o.auth.Login(ctx, session.LoginUsername, password)
	if err != nil {
		if domain.IsAuthFailure(err, domain.AuthWrongPassword) {
			session.ClearLogin()
			session.Stage = domain.StageWaitLoginUsername
			o.reply(ctx, session, msgWrongPassword)
			return
		}

		o.logger.Warn("login failed", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
		session.ClearLogin()
		session.Stage = domain.StageIdle
		o.reply(ctx, session, msgLoginFailed(err))
		return
	}

	switch result.Outcome {
	case LoginSecondFactorRequired:
		session.Pending = result.Pending
		session.Stage = domain.StageAwait2FA
		o.reply(ctx, session, msgAsk2FA)
	case LoginAuthenticatedUnconfirmed:
		o.authenticated(ctx, session, result.Cookies)
		o.reply(ctx, session, msgLoginUnconfirmed)
	default:
		o.authenticated(ctx, session, result.Cookies)
		o.reply(ctx, session, msgLoginOK)
	}
}

func (o *SessionOrchestrator) secondFactor(ctx context.Context, session *domain.Session, event Event) {
	if session.Stage != domain.StageAwait2FA || session.Pending == nil {
		o.reply(ctx, session, msgNot2FA)
		return
	}
	if event.Args == "" {
		o.reply(ctx, session, msg2FAUsage)
		return
	}

	session.Retract = append(session.Retract, event.MessageID)
	o.retract(ctx, session)

	pending := session.Pending
	session.Pending = nil

	jar, err := o.auth.SubmitSecondFactor(ctx, pending, event.Args)
	_ = pending.Close()
	if err != nil {
		session.ClearLogin()
		session.Stage = domain.StageIdle

		var tfErr *domain.TwoFactorError
		if errors.As(err, &tfErr) && tfErr.Reason == domain.TwoFactorWrongCode {
			o.reply(ctx, session, msg2FAWrong)
			return
		}
		o.logger.Warn("second factor failed", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
		o.reply(ctx, session, msg2FATimeout)
		return
	}

	o.authenticated(ctx, session, jar)
	o.reply(ctx, session, msg2FAOK)
}

// authenticated stores a fresh login jar and ends the login workflow.
func (o *SessionOrchestrator) authenticated(ctx context.Context, session *domain.Session, jar *domain.CookieJar) {
	session.ClearLogin()
	session.Cookies = jar
	session.Stage = domain.StageIdle
	o.persist(ctx, session)
}

func (o *SessionOrchestrator) startScrape(ctx context.Context, session *domain.Session, args string) {
	target := domain.NormalizeIdentifier(args)
	if target == "" {
		o.reply(ctx, session, msgScrapeUsage)
		return
	}

	o.abandonLogin(session)

	now := o.clock.Now()
	if session.Cookies.Usable(now) {
		o.collect(ctx, session, target, session.Cookies)
		return
	}

	if jar := o.loadPersisted(ctx, session.Conversation); jar.Usable(now) {
		o.collect(ctx, session, target, jar)
		return
	}

	session.Target = target
	session.Stage = domain.StageWaitCookies
	o.reply(ctx, session, msgAskCookies)
}

// collect runs the collection and reconciliation for target. The session
// always ends in IDLE; the jar is kept only when collection succeeds.
func (o *SessionOrchestrator) collect(ctx context.Context, session *domain.Session, target domain.Identifier, jar *domain.CookieJar) {
	o.reply(ctx, session, msgCollecting(target))

	session.Stage = domain.StageIdle
	session.Target = ""

	result, err := o.collector.Collect(ctx, target, jar)
	if err != nil {
		o.logger.Warn("collection failed", zap.Int64("conversation", int64(session.Conversation)), zap.String("account", string(target)), zap.Error(err))
		o.reply(ctx, session, msgCollectionFailed(err))
		return
	}

	if session.Cookies != jar {
		session.Cookies = jar
		o.persist(ctx, session)
	}

	session.Followers = result.Followers
	session.Following = result.Following
	o.deliver(ctx, session, NewCollectionReport(result))
}

func (o *SessionOrchestrator) logout(ctx context.Context, session *domain.Session) {
	o.abandonLogin(session)
	session.Cookies = nil
	if session.Stage == domain.StageWaitLoginUsername || session.Stage == domain.StageWaitLoginPassword {
		session.Stage = domain.StageIdle
	}

	if o.jars != nil {
		if err := o.jars.Delete(ctx, session.Conversation); err != nil {
			o.logger.Warn("delete persisted cookies", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
		}
	}
	o.reply(ctx, session, msgLoggedOut)
}

func (o *SessionOrchestrator) why(ctx context.Context, session *domain.Session, args string) {
	if session.Followers == nil || session.Following == nil {
		o.reply(ctx, session, msgNoLists)
		return
	}

	answer, err := Explain(args, session.Followers, session.Following)
	if err != nil {
		o.reply(ctx, session, msgWhyUsage)
		return
	}
	o.reply(ctx, session, answer.String())
}

func (o *SessionOrchestrator) find(ctx context.Context, session *domain.Session, args string) {
	if session.Followers == nil || session.Following == nil {
		o.reply(ctx, session, msgNoLists)
		return
	}

	result, err := Find(args, session.Followers, session.Following)
	if err != nil {
		o.reply(ctx, session, msgFindUsage)
		return
	}
	o.reply(ctx, session, result.String())
}

// abandonLogin drops an in-flight login, releasing any parked browser page.
func (o *SessionOrchestrator) abandonLogin(session *domain.Session) {
	session.ClearLogin()
	switch session.Stage {
	case domain.StageWaitLoginUsername, domain.StageWaitLoginPassword, domain.StageAwait2FA:
		session.Stage = domain.StageIdle
	}
}

func (o *SessionOrchestrator) deliver(ctx context.Context, session *domain.Session, report Report) {
	o.reply(ctx, session, report.Summary())

	for _, file := range report.Files() {
		if len(file.Members) == 0 {
			o.reply(ctx, session, file.Name+": empty")
			continue
		}
		if err := o.transport.SendFile(ctx, session.Conversation, file.Name, file.Body()); err != nil {
			o.logger.Warn("send report file", zap.Int64("conversation", int64(session.Conversation)), zap.String("file", file.Name), zap.Error(err))
		}
	}
}

func (o *SessionOrchestrator) reply(ctx context.Context, session *domain.Session, text string) {
	if _, err := o.transport.SendText(ctx, session.Conversation, text); err != nil {
		o.logger.Warn("send message", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
	}
}

// retract deletes credential messages. Failures are ignored.
func (o *SessionOrchestrator) retract(ctx context.Context, session *domain.Session) {
	for _, id := range session.Retract {
		if err := o.transport.Retract(ctx, session.Conversation, id); err != nil {
			o.logger.Debug("retract message", zap.Int("message_id", int(id)), zap.Error(err))
		}
	}
	session.Retract = nil
}

func (o *SessionOrchestrator) persist(ctx context.Context, session *domain.Session) {
	if o.jars == nil || session.Cookies.Len() == 0 {
		return
	}
	if err := o.jars.Save(ctx, session.Conversation, session.Cookies); err != nil {
		o.logger.Warn("persist cookies", zap.Int64("conversation", int64(session.Conversation)), zap.Error(err))
	}
}

func (o *SessionOrchestrator) loadPersisted(ctx context.Context, conversation domain.ConversationID) *domain.CookieJar {
	if o.jars == nil {
		return nil
	}

	jar, err := o.jars.Get(ctx, conversation)
	if err != nil {
		if !errors.Is(err, domain.ErrCookieJarNotFound) {
			o.logger.Warn("load persisted cookies", zap.Int64("conversation", int64(conversation)), zap.Error(err))
		}
		return nil
	}
	return jar
}
