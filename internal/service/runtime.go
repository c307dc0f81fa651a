package service

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"connectrpc.com/connect"
	"golang.org/x/text/language"

	"github.com/kkkkikiki/dealswipe/internal/geo"
	"github.com/kkkkikiki/dealswipe/internal/telemetry"
)

// TimezoneHeader carries the client's resolved IANA timezone
const TimezoneHeader = "X-Timezone"

// clientFrom derives the telemetry client from request headers. Explicit
// body values win over headers.
func clientFrom(header http.Header, peer connect.Peer, tz, lang string) telemetry.Client {
	if tz == "" {
		tz = header.Get(TimezoneHeader)
	}
	if lang == "" {
		lang = primaryLanguage(header.Get("Accept-Language"))
	}
	return telemetry.Client{
		UserAgent: header.Get("User-Agent"),
		Runtime: geo.StaticRuntime{
			TZ:   tz,
			Lang: lang,
			IP:   publicIP(header, peer.Addr),
		},
	}
}

// primaryLanguage returns the highest weighted tag of an Accept-Language
// header
func primaryLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}

// publicIP returns the first routable client address from X-Forwarded-For
// or the peer. Private and loopback addresses are dropped.
func publicIP(header http.Header, peerAddr string) string {
	candidates := make([]string, 0, 2)
	if fwd := header.Get("X-Forwarded-For"); fwd != "" {
		candidates = append(candidates, strings.TrimSpace(strings.Split(fwd, ",")[0]))
	}
	if host, _, err := net.SplitHostPort(peerAddr); err == nil {
		candidates = append(candidates, host)
	} else if peerAddr != "" {
		candidates = append(candidates, peerAddr)
	}

	for _, c := range candidates {
		addr, err := netip.ParseAddr(c)
		if err != nil {
			continue
		}
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
			continue
		}
		return addr.String()
	}
	return ""
}
