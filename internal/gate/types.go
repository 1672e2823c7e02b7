package gate

// request category used to pick a gate rule
type Class int

const (
	ClassExempt Class = iota
	ClassStaticAsset
	ClassAuthAPI
	ClassAPI
	ClassPublicPage
	ClassAuthPage
	ClassProtectedPage
)

func (c Class) String() string {
	switch c {
	case ClassExempt:
		return "exempt"
	case ClassStaticAsset:
		return "static"
	case ClassAuthAPI:
		return "auth_api"
	case ClassAPI:
		return "api"
	case ClassPublicPage:
		return "public_page"
	case ClassAuthPage:
		return "auth_page"
	case ClassProtectedPage:
		return "protected_page"
	default:
		return "unknown"
	}
}

type Action int

const (
	ActionPass Action = iota
	ActionReject
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionReject:
		return "reject"
	case ActionRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// outcome for a single request. Location is set for redirects, Status for
// redirects and rejections.
type Decision struct {
	Class    Class
	Action   Action
	Location string
	Status   int
}

// path sets the gate classifies against. Prefixes match whole segments.
type Config struct {
	ExemptPrefixes []string
	StaticPrefixes []string
	AuthAPIPrefix  string
	APIPrefix      string
	PublicPages    []string
	AuthPages      []string
	LoginPath      string
	HomePath       string // where authenticated visitors to auth pages land
	CookieName     string
}
