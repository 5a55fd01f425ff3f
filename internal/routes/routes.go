package routes

import (
	"net/http"

	"github.com/plumekit/plume/internal/app"
	"github.com/plumekit/plume/internal/handler"
	"github.com/plumekit/plume/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	post := handler.NewPostHandler(app.PostService)
	comment := handler.NewCommentHandler(app.CommentService)
	feather := handler.NewFeatherHandler(app.FeatherService)
	taxonomy := handler.NewTaxonomyHandler(app.TaxonomyService)
	upload := handler.NewUploadHandler(app.FileService)
	cache := handler.NewCacheHandler(app.CacheService)
	maptcha := handler.NewMAPTCHAHandler(app.MAPTCHAService)
	siteModule := handler.NewSiteModuleHandler(app.SiteModuleService)
	seo := handler.NewSEOHandler(app.SitemapService)

	mux := http.NewServeMux()

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimit(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow)
	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// Posts
	mux.HandleFunc("GET /api/posts", post.List)
	mux.HandleFunc("POST /api/posts", middleware.RequireAuth(post.Create))
	mux.HandleFunc("GET /api/posts/{id}", post.Show)
	mux.HandleFunc("GET /api/posts/slug/{slug}", post.ShowBySlug)
	mux.HandleFunc("PATCH /api/posts/{id}", middleware.RequireAuth(post.Update))
	mux.HandleFunc("DELETE /api/posts/{id}", middleware.RequireAuth(post.Delete))
	mux.HandleFunc("GET /api/posts/{id}/stats", post.Stats)
	mux.HandleFunc("POST /api/posts/{id}/like", middleware.RequireAuth(post.ToggleLike))

	// Comments
	mux.HandleFunc("GET /api/posts/{id}/comments", comment.ListByPost)
	mux.HandleFunc("POST /api/posts/{id}/comments", middleware.RequireAuth(comment.Create))
	mux.HandleFunc("DELETE /api/comments/{id}", middleware.RequireAuth(comment.Delete))

	// Feathers
	mux.HandleFunc("GET /api/feathers/types", feather.Types)
	mux.HandleFunc("POST /api/posts/{id}/feathers/{kind}", middleware.RequireAuth(feather.Create))
	mux.HandleFunc("GET /api/posts/{id}/feather", feather.ShowByPost)
	mux.HandleFunc("GET /api/feathers/{id}", feather.Show)
	mux.HandleFunc("PATCH /api/feathers/{id}", middleware.RequireAuth(feather.Update))
	mux.HandleFunc("DELETE /api/feathers/{id}", middleware.RequireAuth(feather.Delete))

	// Taxonomy
	mux.HandleFunc("GET /api/categories", taxonomy.Categories)
	mux.HandleFunc("POST /api/categories", middleware.RequireAuth(taxonomy.CreateCategory))
	mux.HandleFunc("GET /api/tags", taxonomy.Tags)

	// Uploads
	mux.HandleFunc("POST /api/uploads", middleware.RequireAuth(upload.Upload))
	mux.HandleFunc("GET /api/uploads", middleware.RequireAuth(upload.List))
	mux.HandleFunc("GET /api/uploads/{id}", upload.Show)

	// Cache (cacher module)
	mux.HandleFunc("POST /api/cache", middleware.RequireAuth(cache.Set))
	mux.HandleFunc("GET /api/cache/{key}", cache.Get)

	// MAPTCHA
	mux.HandleFunc("POST /api/maptcha", maptcha.Generate)
	mux.HandleFunc("POST /api/maptcha/verify", maptcha.Verify)

	// Site modules
	mux.HandleFunc("GET /api/modules", siteModule.Modules)
	mux.HandleFunc("GET /api/themes", siteModule.Themes)
	mux.HandleFunc("POST /api/webmentions", siteModule.ReceiveWebMention)
	mux.HandleFunc("GET /api/webmentions", siteModule.WebMentions)
	mux.HandleFunc("GET /api/posts/{id}/rights", siteModule.PostRights)
	mux.HandleFunc("POST /api/posts/{id}/rights", middleware.RequireAuth(siteModule.SetPostRights))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserRepo),
	)
}
