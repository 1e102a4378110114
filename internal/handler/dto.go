package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/validity/backend/internal/domain"
)

// ---- requests --------------------------------------------------------------

type toolRequest struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=5000"`
	ImageURL    string   `json:"image_url,omitempty" validate:"omitempty,url"`
	WebsiteURL  string   `json:"website_url,omitempty" validate:"omitempty,url"`
	Pricing     string   `json:"pricing" validate:"required,oneof=free freemium paid contact"`
	Category    string   `json:"category,omitempty" validate:"max=60"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=50"`
}

func (req toolRequest) toInput() domain.ToolInput {
	return domain.ToolInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		WebsiteURL:  req.WebsiteURL,
		Pricing:     domain.Pricing(req.Pricing),
		Category:    req.Category,
		Tags:        req.Tags,
	}
}

type postRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt,omitempty" validate:"max=500"`
	FeaturedImage string   `json:"featured_image,omitempty" validate:"omitempty,url"`
	Published     bool     `json:"published"`
	Tags          []string `json:"tags" validate:"max=20,dive,max=50"`
	Categories    []string `json:"categories" validate:"max=10,dive,max=50"`
}

func (req postRequest) toInput() domain.PostInput {
	return domain.PostInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Published:     req.Published,
		Tags:          req.Tags,
		Categories:    req.Categories,
	}
}

type profileRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	DisplayName string `json:"display_name,omitempty" validate:"max=80"`
	Bio         string `json:"bio,omitempty" validate:"max=1000"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	WebsiteURL  string `json:"website_url,omitempty" validate:"omitempty,url"`
}

func (req profileRequest) toInput() domain.ProfileInput {
	return domain.ProfileInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		WebsiteURL:  req.WebsiteURL,
	}
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=user developer admin"`
}

// ---- responses -------------------------------------------------------------

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// listResponse wraps every collection. Pagination is omitted for lists
// that are returned whole.
type listResponse[T any] struct {
	Data       []T         `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

func pageResponse[S, T any](p domain.Page[S], convert func(S) T) listResponse[T] {
	return listResponse[T]{
		Data:       mapSlice(p.Items, convert),
		Pagination: &pagination{Page: p.Page, Limit: p.Limit, Total: p.Total},
	}
}

func mapSlice[S, T any](in []S, convert func(S) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = convert(v)
	}
	return out
}

type toolResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image_url,omitempty"`
	WebsiteURL  string        `json:"website_url,omitempty"`
	AuthorID    uuid.UUID     `json:"author_id"`
	Category    *domain.Term  `json:"category,omitempty"`
	Tags        []domain.Term `json:"tags"`
	Pricing     string        `json:"pricing"`
	ViewCount   int64         `json:"view_count"`
	LikeCount   int64         `json:"like_count"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func toolToResponse(t domain.Tool) toolResponse {
	tags := t.Tags
	if tags == nil {
		tags = []domain.Term{}
	}
	return toolResponse{
		ID:          t.ID,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		ImageURL:    t.ImageURL,
		WebsiteURL:  t.WebsiteURL,
		AuthorID:    t.AuthorID,
		Category:    t.Category,
		Tags:        tags,
		Pricing:     string(t.Pricing),
		ViewCount:   t.ViewCount,
		LikeCount:   t.LikeCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type postResponse struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Content       string        `json:"content"`
	Excerpt       string        `json:"excerpt"`
	FeaturedImage string        `json:"featured_image,omitempty"`
	AuthorID      uuid.UUID     `json:"author_id"`
	Published     bool          `json:"published"`
	PublishedAt   *time.Time    `json:"published_at,omitempty"`
	Tags          []domain.Term `json:"tags"`
	Categories    []domain.Term `json:"categories"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func postToResponse(p domain.BlogPost) postResponse {
	resp := postResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		AuthorID:      p.AuthorID,
		Published:     p.Published,
		PublishedAt:   p.PublishedAt,
		Tags:          p.Tags,
		Categories:    p.Categories,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []domain.Term{}
	}
	if resp.Categories == nil {
		resp.Categories = []domain.Term{}
	}
	return resp
}

type profileResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func profileToResponse(p domain.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		WebsiteURL:  p.WebsiteURL,
		Role:        string(p.Role),
		CreatedAt:   p.CreatedAt,
	}
}
