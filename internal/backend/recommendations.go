package backend

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Kind selects a recommendation list.
type Kind string

const (
	KindArticles Kind = "articles"
	KindCourses  Kind = "courses"
	KindVideos   Kind = "videos"
)

// Valid reports whether k names a known recommendation list.
func (k Kind) Valid() bool {
	return k == KindArticles || k == KindCourses || k == KindVideos
}

// Recommendation is a single article, course or video suggestion.
type Recommendation struct {
	ID          int    `json:"id"`
	Skill       string `json:"skill"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	CreatedAt   string `json:"created_at"`
}

// AgentRecommendation is a suggested custom coach.
type AgentRecommendation struct {
	ID           int    `json:"id"`
	Skill        string `json:"skill"`
	Name         string `json:"name"`
	SystemPrompt string `json:"system_prompt"`
	CreatedAt    string `json:"created_at"`
}

// GenerateResponse reports how many recommendations were produced.
type GenerateResponse struct {
	Status                 string `json:"status"`
	VideoRecommendations   int    `json:"video_recommendations"`
	ArticleRecommendations int    `json:"article_recommendations"`
	CourseRecommendations  int    `json:"course_recommendations"`
}

// Dashboard groups the three recommendation lists.
type Dashboard struct {
	Articles []Recommendation `json:"articles"`
	Courses  []Recommendation `json:"courses"`
	Videos   []Recommendation `json:"videos"`
}

// ListRecommendations returns the recommendations of one kind.
func (c *Client) ListRecommendations(ctx context.Context, kind Kind) ([]Recommendation, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown recommendation kind %q", kind)
	}
	var out []Recommendation
	if err := c.do(ctx, http.MethodGet, "/api/recommendations_01/"+string(kind)+"/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAgentRecommendations returns suggested custom coaches.
func (c *Client) ListAgentRecommendations(ctx context.Context) ([]AgentRecommendation, error) {
	var out []AgentRecommendation
	if err := c.do(ctx, http.MethodGet, "/api/recommendations_01/agents/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateRecommendations asks the backend to build fresh recommendations
// from the user's chat history.
func (c *Client) GenerateRecommendations(ctx context.Context, profession string) (*GenerateResponse, error) {
	body := map[string]string{}
	if profession != "" {
		body["profession"] = profession
	}
	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/recommendations_01/generate/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadDashboard fetches articles, courses and videos concurrently.
// The first failure cancels the remaining requests.
func (c *Client) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	targets := map[Kind]*[]Recommendation{
		KindArticles: &d.Articles,
		KindCourses:  &d.Courses,
		KindVideos:   &d.Videos,
	}
	for kind, dst := range targets {
		g.Go(func() error {
			recs, err := c.ListRecommendations(gctx, kind)
			if err != nil {
				return err
			}
			*dst = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
