package service

import (
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/plumekit/plume/internal/model"
)

// publicRoutes defines the static public routes included in the sitemap.
var publicRoutes = []struct {
	Path       string
	Priority   string
	ChangeFreq string
}{
	{"/", "1.0", "daily"},
	{"/posts", "0.9", "daily"},
	{"/categories", "0.5", "weekly"},
	{"/tags", "0.5", "weekly"},
}

type SitemapService struct {
	postService     *PostService
	taxonomyService *TaxonomyService
	baseURL         string
}

func NewSitemapService(postService *PostService, taxonomyService *TaxonomyService, baseURL string) *SitemapService {
	return &SitemapService{
		postService:     postService,
		taxonomyService: taxonomyService,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
	}
}

// Generate renders the sitemap XML for all public pages.
func (s *SitemapService) Generate() ([]byte, error) {
	sitemap := model.Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  s.staticURLs(),
	}

	postURLs, err := s.postURLs()
	if err != nil {
		// The sitemap is still useful without posts.
		slog.Warn("failed to get post URLs for sitemap", "error", err)
	} else {
		sitemap.URLs = append(sitemap.URLs, postURLs...)
	}

	sitemap.URLs = append(sitemap.URLs, s.taxonomyURLs()...)

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return []byte(xml.Header + string(output)), nil
}

// RobotsTxt renders robots.txt pointing crawlers at the sitemap.
func (s *SitemapService) RobotsTxt() []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + s.baseURL + "/sitemap.xml\n")
	return []byte(b.String())
}

func (s *SitemapService) staticURLs() []model.SitemapURL {
	today := time.Now().Format("2006-01-02")
	urls := make([]model.SitemapURL, 0, len(publicRoutes))

	for _, route := range publicRoutes {
		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + route.Path,
			LastMod:    today,
			ChangeFreq: route.ChangeFreq,
			Priority:   route.Priority,
		})
	}

	return urls
}

func (s *SitemapService) postURLs() ([]model.SitemapURL, error) {
	posts, err := s.postService.Published()
	if err != nil {
		return nil, err
	}

	urls := make([]model.SitemapURL, 0, len(posts))
	for _, post := range posts {
		lastMod := post.UpdatedAt.Format("2006-01-02")

		urls = append(urls, model.SitemapURL{
			Loc:        s.baseURL + "/posts/" + post.Slug,
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	return urls, nil
}

func (s *SitemapService) taxonomyURLs() []model.SitemapURL {
	today := time.Now().Format("2006-01-02")
	var urls []model.SitemapURL

	categories, err := s.taxonomyService.Categories()
	if err != nil {
		slog.Warn("failed to get categories for sitemap", "error", err)
	} else {
		for _, category := range categories {
			urls = append(urls, model.SitemapURL{
				Loc:        s.baseURL + "/categories/" + category.Slug,
				LastMod:    today,
				ChangeFreq: "weekly",
				Priority:   "0.5",
			})
		}
	}

	tags, err := s.taxonomyService.Tags()
	if err != nil {
		slog.Warn("failed to get tags for sitemap", "error", err)
	} else {
		for _, tag := range tags {
			urls = append(urls, model.SitemapURL{
				Loc:        s.baseURL + "/tags/" + tag.Slug,
				LastMod:    today,
				ChangeFreq: "weekly",
				Priority:   "0.5",
			})
		}
	}

	return urls
}
