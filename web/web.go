package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"codeberg.org/algrv/authgate/internal/auth"
	"codeberg.org/algrv/authgate/internal/config"
	"codeberg.org/algrv/authgate/internal/gate"
	"codeberg.org/algrv/authgate/internal/session"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed assets
var assets embed.FS

const identityKey = "identity"

// what the page handlers need
type Pages struct {
	Resolver session.Resolver
	Cookies  auth.CookieSettings
	Gate     gate.Config
	Mode     config.AuthMode
	Google   bool
	Firebase config.FirebaseConfig
}

// parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.ParseFS(templates, "templates/*.html")
}

// mounts static assets and the page routes
func (p Pages) RegisterRoutes(router *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}

	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(assets, "assets")
	if err != nil {
		return err
	}

	router.StaticFS("/assets", http.FS(static))

	router.GET("/", p.render("home.html", "Home"))
	router.GET("/login", p.render("login.html", "Sign in"))
	router.GET("/signup", p.render("signup.html", "Create account"))

	protected := router.Group("", p.requireIdentity())
	{
		protected.GET("/dashboard", p.render("dashboard.html", "Dashboard"))
		protected.GET("/profile", p.render("profile.html", "Profile"))
	}

	return nil
}

// The gate only checks cookie presence. Protected pages resolve the session
// fully; a stale or forged cookie is cleared so the next request is treated
// as signed out.
func (p Pages) requireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := p.Resolver.Resolve(c.Request)
		if !ok {
			p.Cookies.Clear(c.Writer)
			c.Redirect(http.StatusFound, p.Gate.LoginURL(c.Request.URL.Path))
			c.Abort()

			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

func (p Pages) render(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := gin.H{
			"Title":     title,
			"Mode":      string(p.Mode),
			"Google":    p.Google,
			"Firebase":  p.Firebase,
			"Federated": p.Mode == config.ModeFederated,
		}

		if v, ok := c.Get(identityKey); ok {
			data["Identity"] = v
		}

		c.HTML(http.StatusOK, name, data)
	}
}
