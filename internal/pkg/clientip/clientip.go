// Package clientip достаёт IP посетителя из заголовков прокси.
package clientip

import (
	"net"
	"net/netip"
	"strings"
)

// headerOrder - заголовки в порядке доверия; X-Forwarded-For и Forwarded разбираются отдельно
var headerOrder = []string{"CF-Connecting-IP", "True-Client-IP", "X-Real-IP"}

// FromHeaders возвращает первый валидный IP из заголовков, иначе адрес соединения.
// get - геттер заголовка (fiber: c.Get, net/http: r.Header.Get).
func FromHeaders(get func(string) string, remoteAddr string) string {
	for _, h := range headerOrder {
		if ip, ok := Normalize(get(h)); ok {
			return ip
		}
	}

	if xff := get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip, ok := Normalize(part); ok {
				return ip
			}
		}
	}

	if fwd := get("Forwarded"); fwd != "" {
		if ip, ok := fromForwarded(fwd); ok {
			return ip
		}
	}

	if ip, ok := Normalize(remoteAddr); ok {
		return ip
	}
	return ""
}

// Normalize убирает порт, скобки и кавычки и проверяет адрес
func Normalize(raw string) (string, bool) {
	s := strings.Trim(strings.TrimSpace(raw), `"`)
	if s == "" {
		return "", false
	}

	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", false
	}
	return addr.Unmap().String(), true
}

// IsPublic - false для приватных, loopback, link-local и unspecified адресов
func IsPublic(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return !(addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() ||
		addr.IsMulticast())
}

func fromForwarded(value string) (string, bool) {
	for _, element := range strings.Split(value, ",") {
		for _, pair := range strings.Split(element, ";") {
			k, v, found := strings.Cut(strings.TrimSpace(pair), "=")
			if !found || !strings.EqualFold(k, "for") {
				continue
			}
			if ip, ok := Normalize(v); ok {
				return ip, true
			}
		}
	}
	return "", false
}
