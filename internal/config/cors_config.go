package config

import (
	"fmt"
	"sort"
	"strings"
)

const developmentOrigin = "http://localhost:1337"

type Cors struct{}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

// Hosts returns the host[:port] part of every origin, as used by websocket origin checks
func (a AllowedOrigins) Hosts() []string {
	hosts := make([]string, 0, len(a))
	for origin := range a {
		host := origin
		if idx := strings.Index(host, "://"); idx >= 0 {
			host = host[idx+3:]
		}
		hosts = append(hosts, strings.TrimSuffix(host, "/"))
	}
	sort.Strings(hosts)
	return hosts
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins builds the origin list from the frontend and preview URLs.
// The port is dropped from the URL when it is 80.
func (Cors) GetAllowedOrigins() AllowedOrigins {
	origins := AllowedOrigins{
		hostURL(GetEnv("FRONTEND_HOST", "http://localhost"), GetEnvInt("FRONTEND_PORT", 3000)): nullValue{},
		hostURL(GetEnv("PREVIEW_HOST", "http://localhost"), GetEnvInt("PREVIEW_PORT", 3000)):   nullValue{},
	}
	if isDevelopment() {
		origins[developmentOrigin] = nullValue{}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, PATCH, DELETE"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}

func hostURL(host string, port int) string {
	if port == 80 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, port)
}
