package admin

import (
	"context"

	"github.com/coolteam/cardshop/internal/errors"
	"github.com/coolteam/cardshop/internal/logging"
	"github.com/coolteam/cardshop/internal/session"
)

// Login messages.
const (
	MsgPasswordRequired  = "please enter the admin password"
	MsgIncorrectPassword = "incorrect password"
	MsgLoginFailed       = "login request failed"
)

// Gate guards the console behind the stored admin token.
type Gate struct {
	b      Backend
	tokens session.TokenKeeper
	logger *logging.Logger

	// Err is the inline login error.
	Err error
}

// Open reports whether a token is stored.
func (g *Gate) Open() bool {
	return g.tokens.Token() != ""
}

// Login exchanges the password for a token. On any failure the store is
// left untouched.
func (g *Gate) Login(ctx context.Context, password string) error {
	g.Err = nil
	if password == "" {
		g.Err = errors.NewValidationError(MsgPasswordRequired).WithField("password")
		return g.Err
	}

	resp := g.b.Login(ctx, password)
	if resp.Success && resp.Token != "" {
		g.tokens.SetToken(resp.Token)
		g.logger.Info("admin logged in")
		return nil
	}

	switch {
	case errors.Is(resp.Err, errors.ErrRateLimited):
		g.Err = resp.Error(MsgLoginFailed)
	case errors.Is(resp.Err, errors.ErrTransport), errors.Is(resp.Err, errors.ErrTimeout):
		g.Err = errors.NewAPIError("login", MsgLoginFailed, resp.Err)
	default:
		g.Err = errors.NewAPIError("login", MsgIncorrectPassword, errors.ErrUnauthorized).
			WithStatus(resp.Status).WithSeverity(errors.SeverityInfo)
	}
	g.logger.Info("admin login failed", "status", resp.Status)
	return g.Err
}

// Logout forgets the token.
func (g *Gate) Logout() {
	g.tokens.ClearToken()
	g.Err = nil
	g.logger.Info("admin logged out")
}
