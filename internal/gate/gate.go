package gate

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

func DefaultConfig() Config {
	return Config{
		ExemptPrefixes: []string{"/health", "/metrics", "/docs"},
		StaticPrefixes: []string{"/static", "/assets", "/favicon.ico", "/manifest.webmanifest"},
		AuthAPIPrefix:  "/api/auth",
		APIPrefix:      "/api",
		PublicPages:    []string{"/", "/login", "/signup"},
		AuthPages:      []string{"/login", "/signup"},
		LoginPath:      "/login",
		HomePath:       "/dashboard",
		CookieName:     "session_token",
	}
}

// places a request path into exactly one class
func (cfg Config) Classify(p string) Class {
	p = cleanPath(p)

	switch {
	case matchesAny(p, cfg.ExemptPrefixes):
		return ClassExempt
	case matchesAny(p, cfg.StaticPrefixes) || hasExtension(p):
		return ClassStaticAsset
	case hasPrefix(p, cfg.AuthAPIPrefix):
		return ClassAuthAPI
	case hasPrefix(p, cfg.APIPrefix):
		return ClassAPI
	case containsPath(cfg.AuthPages, p):
		return ClassAuthPage
	case containsPath(cfg.PublicPages, p):
		return ClassPublicPage
	default:
		return ClassProtectedPage
	}
}

// decides what to do with a request given only whether a session cookie is
// present. The cookie is not verified here; protected handlers resolve it.
func (cfg Config) Decide(p string, hasSession bool) Decision {
	class := cfg.Classify(p)

	switch class {
	case ClassExempt, ClassStaticAsset, ClassAuthAPI:
		return Decision{Class: class, Action: ActionPass}
	case ClassAPI:
		if !hasSession {
			return Decision{Class: class, Action: ActionReject, Status: http.StatusUnauthorized}
		}
	case ClassProtectedPage:
		if !hasSession {
			return Decision{
				Class:    class,
				Action:   ActionRedirect,
				Location: cfg.LoginURL(p),
				Status:   http.StatusFound,
			}
		}
	case ClassAuthPage:
		if hasSession {
			return Decision{
				Class:    class,
				Action:   ActionRedirect,
				Location: cfg.HomePath,
				Status:   http.StatusFound,
			}
		}
	}

	return Decision{Class: class, Action: ActionPass}
}

// login page URL carrying the original destination. Root and anything that
// is not a same-origin path are never carried.
func (cfg Config) LoginURL(from string) string {
	if from == "/" || !IsLocalPath(from) {
		return cfg.LoginPath
	}

	return cfg.LoginPath + "?" + url.Values{"redirectTo": {from}}.Encode()
}

// reports whether target is a path on this origin: a single leading slash,
// not a scheme-relative "//host" or the browser-normalised "/\host"
func IsLocalPath(target string) bool {
	if !strings.HasPrefix(target, "/") || (len(target) > 1 && (target[1] == '/' || target[1] == '\\')) {
		return false
	}

	return !strings.ContainsAny(target, "\r\n\t")
}

// hasPrefix reports whether p equals prefix or continues it at a segment
// boundary: /api matches /api and /api/x but not /apiary
func hasPrefix(p, prefix string) bool {
	if prefix == "" {
		return false
	}

	if prefix == "/" {
		return true
	}

	prefix = strings.TrimSuffix(prefix, "/")

	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func matchesAny(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if hasPrefix(p, prefix) {
			return true
		}
	}

	return false
}

func containsPath(paths []string, p string) bool {
	for _, candidate := range paths {
		if cleanPath(candidate) == p {
			return true
		}
	}

	return false
}

// last segment looks like a file name (robots.txt, app.3f2a.js)
func hasExtension(p string) bool {
	last := path.Base(p)
	dot := strings.LastIndexByte(last, '.')

	return dot > 0 && dot < len(last)-1
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return path.Clean(p)
}
