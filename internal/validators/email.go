package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

// swapped in tests
var (
	lookupMX = net.DefaultResolver.LookupMX
	lookupIP = net.DefaultResolver.LookupIPAddr
)

// IsEmailDomainValid reports whether the domain of email has a mail
// exchanger or, failing that, any address record.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := strings.ToLower(email[at+1:])

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	if mx, err := lookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := lookupIP(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
