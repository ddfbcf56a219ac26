package forms

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const defaultNonceLife = 24 * time.Hour

// Nonces issues and verifies form nonces. A nonce is bound to an action and
// a session and stays valid for one to two half-life ticks.
type Nonces struct {
	secret []byte
	life   time.Duration
	now    func() time.Time
}

func NewNonces(secret []byte) *Nonces {
	return &Nonces{secret: secret, life: defaultNonceLife, now: time.Now}
}

// WithClock returns a copy of n reading time from now.
func (n *Nonces) WithClock(now func() time.Time) *Nonces {
	c := *n
	c.now = now
	return &c
}

func (n *Nonces) tick() int64 {
	half := int64(n.life / 2 / time.Second)
	return (n.now().Unix() + half - 1) / half
}

func (n *Nonces) sign(tick int64, action, session string) string {
	mac := hmac.New(sha256.New, n.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10) + "|" + action + "|" + session))
	return hex.EncodeToString(mac.Sum(nil))[:20]
}

func (n *Nonces) Create(action, session string) string {
	return n.sign(n.tick(), action, session)
}

func (n *Nonces) Verify(nonce, action, session string) bool {
	if nonce == "" {
		return false
	}
	t := n.tick()
	for _, tick := range []int64{t, t - 1} {
		if hmac.Equal([]byte(nonce), []byte(n.sign(tick, action, session))) {
			return true
		}
	}
	return false
}
