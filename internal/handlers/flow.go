package handlers

import (
	"errors"
	"fmt"

	"github.com/grvsharma1810/pulse/internal/auth"
	"github.com/grvsharma1810/pulse/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// flowKind separates concurrent browser flows sharing one flow cookie, so
// a device approval started mid web login does not consume its nonce.
type flowKind string

const (
	flowWeb    flowKind = "web"
	flowDevice flowKind = "device"

	flowNonceBytes = 16
)

func (k flowKind) nonceKey() string    { return "flow_nonce_" + string(k) }
func (k flowKind) redirectKey() string { return "flow_redirect_" + string(k) }

var errFlowSession = errors.New("login session expired or invalid")

// beginFlow binds a fresh nonce to the browser and returns the signed state
// for the provider round trip.
func beginFlow(
	c *gin.Context,
	kind flowKind,
	signer *auth.StateSigner,
	userCode, redirect string,
) (string, error) {
	nonce, err := util.CryptoRandomHex(flowNonceBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	session := sessions.Default(c)
	session.Set(kind.nonceKey(), nonce)
	if redirect != "" {
		session.Set(kind.redirectKey(), redirect)
	} else {
		session.Delete(kind.redirectKey())
	}
	if err := session.Save(); err != nil {
		return "", fmt.Errorf("failed to save flow session: %w", err)
	}

	return signer.Sign(userCode, nonce)
}

// finishFlow verifies state against the browser's nonce and consumes it.
// The returned redirect is whatever beginFlow stored.
func finishFlow(
	c *gin.Context,
	kind flowKind,
	signer *auth.StateSigner,
	state string,
) (*auth.StateClaims, string, error) {
	session := sessions.Default(c)
	nonce, _ := session.Get(kind.nonceKey()).(string)
	redirect, _ := session.Get(kind.redirectKey()).(string)
	if nonce == "" {
		return nil, "", errFlowSession
	}

	session.Delete(kind.nonceKey())
	session.Delete(kind.redirectKey())
	_ = session.Save()

	claims, err := signer.Verify(state, nonce)
	if err != nil {
		return nil, "", err
	}
	return claims, redirect, nil
}
