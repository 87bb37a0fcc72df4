package database

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/smartcampus/portal/backend/internal/config"
)

const (
	// LocalURI is the last-resort target.
	LocalURI = "mongodb://localhost:27017/smart_campus"

	srvScheme = "mongodb+srv://"
)

// Strategy is one way of reaching the database: a target URI plus the number
// of attempts it gets before the supervisor moves on.
type Strategy struct {
	Name     string
	URI      string
	Attempts int
}

// Discovery reports whether the target uses DNS seed-list (SRV) addressing.
func (s Strategy) Discovery() bool {
	return strings.HasPrefix(s.URI, srvScheme)
}

var credentialsRe = regexp.MustCompile(`:(?:[^:@]+)@`)

// MaskURI hides the password segment of a connection string.
func MaskURI(uri string) string {
	return credentialsRe.ReplaceAllString(uri, ":*****@")
}

// DirectURI builds a non-SRV URI from the configured host list. It returns ""
// when no hosts are configured.
func DirectURI(cfg config.MongoDBConfig) string {
	if len(cfg.Hosts) == 0 {
		return ""
	}
	q := "retryWrites=true&w=majority"
	if cfg.ReplicaSet != "" {
		q += "&replicaSet=" + url.QueryEscape(cfg.ReplicaSet)
	}
	if cfg.UseTLS || cfg.TLSAllowInvalidCerts {
		q += "&tls=true"
	}
	return "mongodb://" + userInfo(cfg) + strings.Join(cfg.Hosts, ",") + "/" + DatabaseName(cfg) + "?" + q
}

// SRVURI builds a seed-list URI from discrete credentials. It returns "" unless
// user, password and host are all set.
func SRVURI(cfg config.MongoDBConfig) string {
	if cfg.User == "" || cfg.Password == "" || cfg.Host == "" {
		return ""
	}
	return srvScheme + userInfo(cfg) + cfg.Host + "/" + DatabaseName(cfg) + "?retryWrites=true&w=majority"
}

func userInfo(cfg config.MongoDBConfig) string {
	if cfg.User == "" {
		return ""
	}
	return url.QueryEscape(cfg.User) + ":" + url.QueryEscape(cfg.Password) + "@"
}

// DatabaseName is the configured database, smart_campus by default.
func DatabaseName(cfg config.MongoDBConfig) string {
	if cfg.Database == "" {
		return "smart_campus"
	}
	return cfg.Database
}

// PrimaryURI resolves the main target in priority order: forced direct hosts,
// explicit URI, SRV from components, local.
func PrimaryURI(cfg config.MongoDBConfig) (uri, source string) {
	if cfg.ForceNonSRV {
		if d := DirectURI(cfg); d != "" {
			return d, "direct"
		}
	}
	if cfg.URI != "" {
		return cfg.URI, "uri"
	}
	if s := SRVURI(cfg); s != "" {
		return s, "srv"
	}
	return LocalURI, "local"
}

// Plan returns the ordered strategies for one connection cycle.
func Plan(cfg config.MongoDBConfig) []Strategy {
	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 5
	}
	fallbackAttempts := cfg.FallbackRetries
	if fallbackAttempts <= 0 {
		fallbackAttempts = 3
	}

	uri, source := PrimaryURI(cfg)
	primary := Strategy{Name: "primary:" + source, URI: uri, Attempts: attempts}
	plan := []Strategy{primary}

	if primary.Discovery() {
		if d := DirectURI(cfg); d != "" {
			plan = append(plan, Strategy{Name: "direct-fallback", URI: d, Attempts: fallbackAttempts})
		}
	}
	if cfg.FallbackLocal {
		plan = append(plan, Strategy{Name: "local-fallback", URI: LocalURI, Attempts: 3})
	}
	return plan
}

func withQueryParam(uri, key, value string) string {
	if strings.Contains(uri, "?") {
		return uri + "&" + key + "=" + value
	}
	// the driver insists on a path separator before the options
	if rest := uri[strings.Index(uri, "://")+3:]; !strings.Contains(rest, "/") {
		uri += "/"
	}
	return uri + "?" + key + "=" + value
}
