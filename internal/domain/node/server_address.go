package node

import (
	"net"
	"regexp"
)

var domainRegex = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ValidServerAddress reports whether address is usable as a Node.Server: a
// literal IP (v4 or v6) or a syntactically valid domain name. Unlike the
// fleet-management ServerAddress value object this was adapted from, a
// parsed subscription link's host is not wrapped in its own type — it is
// just a plain string field on Node — so this is a
// predicate, not a constructor.
func ValidServerAddress(address string) bool {
	if address == "" {
		return false
	}
	return isValidIP(address) || isValidDomain(address)
}

func isValidIP(address string) bool {
	return net.ParseIP(address) != nil
}

func isValidDomain(address string) bool {
	if len(address) > 253 {
		return false
	}
	return domainRegex.MatchString(address)
}
