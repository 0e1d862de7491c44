package scan

import (
	"bytes"
	"net"
	"strconv"
	"strings"
)

// lessAddr orders addresses numerically per segment, so 10.0.0.5 sorts
// before 10.0.0.23 even though it is lexicographically larger.
func lessAddr(a, b string) bool {
	return compareAddr(a, b) < 0
}

// compareAddr returns -1, 0 or 1. IPv4 addresses compare bytewise; anything
// unparseable falls back to per-segment numeric comparison of the dotted
// form, then to plain string order.
func compareAddr(a, b string) int {
	ipa := net.ParseIP(a)
	ipb := net.ParseIP(b)
	if ipa != nil && ipb != nil {
		a4, b4 := ipa.To4(), ipb.To4()
		// IPv4 sorts before IPv6.
		if a4 != nil && b4 == nil {
			return -1
		}
		if a4 == nil && b4 != nil {
			return 1
		}
		if a4 != nil && b4 != nil {
			return bytes.Compare(a4, b4)
		}
		return bytes.Compare(ipa.To16(), ipb.To16())
	}

	segsA := strings.Split(a, ".")
	segsB := strings.Split(b, ".")
	for i := 0; i < len(segsA) && i < len(segsB); i++ {
		na, errA := strconv.Atoi(segsA[i])
		nb, errB := strconv.Atoi(segsB[i])
		if errA == nil && errB == nil {
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(segsA[i], segsB[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(segsA) < len(segsB):
		return -1
	case len(segsA) > len(segsB):
		return 1
	}
	return 0
}
