package deviceflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/grvsharma1810/pulse/internal/apiclient"

	"go.uber.org/zap"
)

// State is a step of the CLI side of the device authorization flow.
type State int

const (
	StateInit State = iota
	StateAuthRequested
	StateWaitingForUser
	StatePolling
	StateAuthorized
	StateExpired
	StateDenied
	StateFailed
)

var stateNames = map[State]string{
	StateInit:           "INIT",
	StateAuthRequested:  "AUTH_REQUESTED",
	StateWaitingForUser: "WAITING_FOR_USER",
	StatePolling:        "POLLING",
	StateAuthorized:     "AUTHORIZED",
	StateExpired:        "EXPIRED",
	StateDenied:         "DENIED",
	StateFailed:         "FAILED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s >= StateAuthorized
}

const (
	errCodePending      = "authorization_pending"
	errCodeSlowDown     = "slow_down"
	errCodeAccessDenied = "access_denied"
	errCodeExpiredToken = "expired_token"

	defaultInterval  = 5 * time.Second
	defaultExpiresIn = 5 * time.Minute
	slowDownStep     = time.Second
)

var (
	// ErrAccessDenied means the user declined the authorization.
	ErrAccessDenied = errors.New("authorization failed: access_denied")
	// ErrExpired means the device code expired before the user finished.
	ErrExpired = errors.New("authorization failed: expired_token")
	// ErrMaxAttempts means polling gave up after the configured attempts.
	ErrMaxAttempts = errors.New("authorization failed: too many polling attempts")
)

// API is the subset of the backend client used by the flow.
type API interface {
	RequestDeviceCode(ctx context.Context) (*apiclient.DeviceAuthorization, error)
	PollToken(ctx context.Context, deviceCode string) (*apiclient.DeviceToken, error)
}

// CredentialSaver persists the issued token.
type CredentialSaver interface {
	Save(token string, expiresAt *time.Time) error
}

// Options tune prompting and polling.
type Options struct {
	// NoWait skips the Enter prompt before opening the browser.
	NoWait bool
	// NoBrowser prints the URL without trying to open it.
	NoBrowser bool
	// MaxAttempts bounds the number of polls; zero means until expiry.
	// Running out of attempts ends the flow as expired.
	MaxAttempts int

	In  io.Reader
	Out io.Writer

	OpenBrowser func(url string) error
	After       func(d time.Duration) <-chan time.Time
	Now         func() time.Time
}

// Flow drives one device authorization from code request to stored credential.
type Flow struct {
	api    API
	creds  CredentialSaver
	opts   Options
	logger *zap.Logger
	state  State
}

// New creates a flow. Unset options fall back to real stdio, time and browser.
func New(api API, creds CredentialSaver, opts Options, logger *zap.Logger) *Flow {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = OpenBrowser
	}
	if opts.After == nil {
		opts.After = time.After
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{api: api, creds: creds, opts: opts, logger: logger, state: StateInit}
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

func (f *Flow) transition(to State) {
	f.logger.Debug("device flow transition",
		zap.Stringer("from", f.state),
		zap.Stringer("to", to),
	)
	f.state = to
}

func (f *Flow) fail(to State, err error) (*apiclient.DeviceToken, error) {
	f.transition(to)
	return nil, err
}

// Run executes the flow. On success the token has been saved.
func (f *Flow) Run(ctx context.Context) (*apiclient.DeviceToken, error) {
	auth, err := f.api.RequestDeviceCode(ctx)
	if err != nil {
		return f.fail(StateFailed, fmt.Errorf("failed to initiate device authorization: %w", err))
	}
	f.transition(StateAuthRequested)

	f.present(auth)
	f.transition(StateWaitingForUser)

	if err := f.waitForUser(ctx); err != nil {
		return f.fail(StateFailed, err)
	}
	f.launchBrowser(auth)

	f.printf("\nWaiting for authentication...\n")
	f.transition(StatePolling)

	token, state, err := f.poll(ctx, auth)
	if err != nil {
		return f.fail(state, err)
	}

	expiresAt := token.ExpiresAt
	var expiresPtr *time.Time
	if !expiresAt.IsZero() {
		expiresPtr = &expiresAt
	}
	if err := f.creds.Save(token.Token, expiresPtr); err != nil {
		return f.fail(StateFailed, fmt.Errorf("failed to save credentials: %w", err))
	}

	f.transition(StateAuthorized)
	return token, nil
}

func (f *Flow) present(auth *apiclient.DeviceAuthorization) {
	f.printf("Please complete authentication in your browser:\n\n")
	f.printf("  Verification URL: %s\n", auth.VerificationURL)
	f.printf("  User Code: %s\n\n", auth.UserCode)
}

func (f *Flow) waitForUser(ctx context.Context) error {
	if f.opts.NoBrowser || f.opts.NoWait || f.opts.In == nil {
		return nil
	}

	f.printf("Press <ENTER> to open the verification URL in your browser.\n")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = bufio.NewReader(f.opts.In).ReadString('\n')
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Flow) launchBrowser(auth *apiclient.DeviceAuthorization) {
	target := auth.VerificationURLComplete
	if target == "" {
		target = auth.VerificationURL
	}

	if f.opts.NoBrowser {
		f.printf("Open %s to continue.\n", target)
		return
	}

	f.printf("Opening browser...\n")
	if err := f.opts.OpenBrowser(target); err != nil {
		f.logger.Debug("browser launch failed", zap.Error(err))
		f.printf("Could not open browser automatically.\n")
		f.printf("Please open the URL above manually.\n")
	}
}

func (f *Flow) poll(
	ctx context.Context,
	auth *apiclient.DeviceAuthorization,
) (*apiclient.DeviceToken, State, error) {
	interval := time.Duration(auth.Interval) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	expiresIn := time.Duration(auth.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	deadline := f.opts.Now().Add(expiresIn)
	pollCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	for attempt := 1; ; attempt++ {
		if !f.opts.Now().Before(deadline) {
			return nil, StateExpired, ErrExpired
		}

		token, err := f.api.PollToken(pollCtx, auth.DeviceCode)
		if err == nil {
			return token, StatePolling, nil
		}

		switch code := apiclient.ErrorCode(err); code {
		case errCodePending:
			f.logger.Debug("authorization pending", zap.Int("attempt", attempt))
		case errCodeSlowDown:
			interval += slowDownStep
			f.logger.Debug("slow down requested", zap.Duration("interval", interval))
		case errCodeAccessDenied:
			return nil, StateDenied, ErrAccessDenied
		case errCodeExpiredToken:
			return nil, StateExpired, ErrExpired
		default:
			if ctx.Err() != nil {
				return nil, StateFailed, ctx.Err()
			}
			if pollCtx.Err() != nil {
				return nil, StateExpired, ErrExpired
			}
			return nil, StateFailed, fmt.Errorf("authorization failed: %w", err)
		}

		if f.opts.MaxAttempts > 0 && attempt >= f.opts.MaxAttempts {
			return nil, StateExpired, ErrMaxAttempts
		}

		select {
		case <-f.opts.After(interval):
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return nil, StateFailed, ctx.Err()
			}
			return nil, StateExpired, ErrExpired
		}
	}
}

func (f *Flow) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(f.opts.Out, format, args...)
}
