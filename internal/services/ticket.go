package services

import (
	"crypto/rand"
	"math/big"
	"net/url"
	"strings"
)

const (
	TicketPrefix   = "DMRC-"
	ticketBodyLen  = 8
	ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxTicketTries = 5
)

// NewTicketCode returns DMRC- followed by 8 random [A-Z0-9] characters.
func NewTicketCode() (string, error) {
	radix := big.NewInt(int64(len(ticketAlphabet)))
	var b strings.Builder
	b.Grow(len(TicketPrefix) + ticketBodyLen)
	b.WriteString(TicketPrefix)
	for i := 0; i < ticketBodyLen; i++ {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", err
		}
		b.WriteByte(ticketAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeTicketCode trims and uppercases operator input. A scanned QR
// payload that is a URL carrying ?code= is reduced to that code.
func NormalizeTicketCode(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "code=") {
		if u, err := url.Parse(s); err == nil {
			if c := u.Query().Get("code"); c != "" {
				s = strings.TrimSpace(c)
			}
		}
	}
	return strings.ToUpper(s)
}
