package searchapi

import (
	"time"

	"github.com/custodia-labs/sitesearch-cli/internal/core/domain"
)

// searchForm is the form-encoded body of POST /search.
type searchForm struct {
	URL         string   `url:"url"`
	SearchText  string   `url:"search_text"`
	Username    string   `url:"username,omitempty"`
	Password    string   `url:"password,omitempty"`
	IsResearch  bool     `url:"is_research"`
	VisitedURLs []string `url:"visited_urls,omitempty"`
}

func newSearchForm(req domain.CrawlRequest) searchForm {
	form := searchForm{
		URL:        req.BaseURL,
		SearchText: req.SearchText,
		IsResearch: req.IsResume,
	}
	if req.Credentials.IsComplete() {
		form.Username = req.Credentials.Username
		form.Password = req.Credentials.Password
	}
	if req.IsResume {
		form.VisitedURLs = req.VisitedURLs
	}
	return form
}

// searchResponse is the JSON body the service answers with.
type searchResponse struct {
	Success      bool         `json:"success"`
	Error        string       `json:"error,omitempty"`
	Results      []resultJSON `json:"results"`
	VisitedURLs  []string     `json:"visited_urls,omitempty"`
	TotalPages   int          `json:"total_pages,omitempty"`
	SkippedCount *int         `json:"skipped_count,omitempty"`
	IsResearch   bool         `json:"is_research,omitempty"`
}

type resultJSON struct {
	URL         string          `json:"url"`
	Title       string          `json:"title,omitempty"`
	Depth       int             `json:"depth"`
	BodyMatches []string        `json:"body_matches"`
	HeadMatches []string        `json:"head_matches"`
	HrefMatches []hrefMatchJSON `json:"href_matches"`
}

type hrefMatchJSON struct {
	Text        string `json:"text"`
	Href        string `json:"href"`
	OriginalURL string `json:"original_url,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
}

// toDomain converts a successful response. Results without a URL are dropped.
func (r *searchResponse) toDomain(fetchedAt time.Time) *domain.CrawlResponse {
	out := &domain.CrawlResponse{
		Results:      make([]domain.PageResult, 0, len(r.Results)),
		VisitedURLs:  r.VisitedURLs,
		TotalPages:   r.TotalPages,
		SkippedCount: r.SkippedCount,
	}

	for _, res := range r.Results {
		if res.URL == "" {
			continue
		}
		page := domain.PageResult{
			URL:   res.URL,
			Title: res.Title,
			Depth: res.Depth,
			Matches: domain.MatchRecord{
				BodyMatches: res.BodyMatches,
				HeadMatches: res.HeadMatches,
			},
			VisitedAt: fetchedAt,
		}
		if res.HrefMatches != nil {
			page.Matches.HrefMatches = make([]domain.HrefMatch, len(res.HrefMatches))
			for i, h := range res.HrefMatches {
				page.Matches.HrefMatches[i] = domain.HrefMatch{
					Text:        h.Text,
					Href:        h.Href,
					OriginalURL: h.OriginalURL,
					PageURL:     h.PageURL,
				}
			}
		}
		out.Results = append(out.Results, page)
	}

	return out
}
