package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/models"
	"github.com/JJublanc/tidimondo-sub001/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const excerptLength = 240

type BlogService struct {
	db        *gorm.DB
	images    ImageStore
	moderator ImageModerator
	notifier  Notifier
}

// NewBlogService builds the service. images and moderator may be nil; a
// cover image is then refused or stored unmoderated respectively.
func NewBlogService(db *gorm.DB, images ImageStore, moderator ImageModerator, n Notifier) *BlogService {
	if n == nil {
		n = NopNotifier{}
	}
	return &BlogService{db: db, images: images, moderator: moderator, notifier: n}
}

type PostInput struct {
	Title      string `json:"title" binding:"required,max=200"`
	Content    string `json:"content" binding:"required,max=50000"`
	CoverImage string `json:"cover_image"` // data URI
}

type ModerationInput struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" binding:"max=2000"`
}

type Page struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (p Page) limit() int {
	if p.Limit == 0 {
		return 20
	}
	return p.Limit
}

// Published lists approved posts, newest first.
func (s *BlogService) Published(ctx context.Context, p Page) ([]models.BlogPost, error) {
	var out []models.BlogPost
	err := s.db.WithContext(ctx).
		Where("status = ?", models.PostApproved).
		Order("published_at DESC").Order("id DESC").
		Limit(p.limit()).Offset(p.Offset).
		Find(&out).Error
	return out, err
}

func (s *BlogService) BySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).Where("slug = ? AND status = ?", slug, models.PostApproved).First(&post).Error
	if err != nil {
		return nil, notFound(err, "post")
	}
	return &post, nil
}

func (s *BlogService) Mine(ctx context.Context, userID uint) ([]models.BlogPost, error) {
	var out []models.BlogPost
	err := s.db.WithContext(ctx).Where("author_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *BlogService) Create(ctx context.Context, userID uint, in PostInput) (*models.BlogPost, error) {
	post := &models.BlogPost{AuthorID: userID}
	if err := s.fill(ctx, post, in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	slug, err := s.uniqueSlug(db, post.Title)
	if err != nil {
		return nil, err
	}
	post.Slug = slug
	if err := db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Update edits an author's post and sends it back to moderation.
func (s *BlogService) Update(ctx context.Context, userID, postID uint, in PostInput) (*models.BlogPost, error) {
	db := s.db.WithContext(ctx)
	post, err := s.authored(db, userID, postID)
	if err != nil {
		return nil, err
	}
	if err := s.fill(ctx, post, in); err != nil {
		return nil, err
	}
	post.Status = models.PostPending
	post.ModerationNote = ""
	post.PublishedAt = nil
	if err := db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete lets the author or an admin remove a post.
func (s *BlogService) Delete(ctx context.Context, userID, postID uint, isAdmin bool) error {
	db := s.db.WithContext(ctx)
	var post models.BlogPost
	if err := db.First(&post, postID).Error; err != nil {
		return notFound(err, "post")
	}
	if post.AuthorID != userID && !isAdmin {
		return fmt.Errorf("%w: not the author", ErrForbidden)
	}
	return db.Delete(&post).Error
}

// ByStatus lists posts for moderation, oldest first.
func (s *BlogService) ByStatus(ctx context.Context, status string, p Page) ([]models.BlogPost, error) {
	q := s.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.BlogPost
	err := q.Order("created_at").Order("id").Limit(p.limit()).Offset(p.Offset).Find(&out).Error
	return out, err
}

func (s *BlogService) Moderate(ctx context.Context, postID uint, in ModerationInput) (*models.BlogPost, error) {
	db := s.db.WithContext(ctx)
	var post models.BlogPost
	if err := db.First(&post, postID).Error; err != nil {
		return nil, notFound(err, "post")
	}
	post.ModerationNote = strings.TrimSpace(in.Note)
	if in.Approve {
		now := time.Now().UTC()
		post.Status = models.PostApproved
		post.PublishedAt = &now
	} else {
		post.Status = models.PostRejected
		post.PublishedAt = nil
	}
	if err := db.Save(&post).Error; err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your post %q was published.", post.Title)
	typ := "info"
	if !in.Approve {
		typ = "warning"
		msg = fmt.Sprintf("Your post %q was not accepted.", post.Title)
		if post.ModerationNote != "" {
			msg += " Note: " + post.ModerationNote
		}
	}
	s.notifier.EmitAlert(ctx, post.AuthorID, typ, msg)
	return &post, nil
}

func (s *BlogService) authored(db *gorm.DB, userID, postID uint) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := db.First(&post, postID).Error; err != nil {
		return nil, notFound(err, "post")
	}
	if post.AuthorID != userID {
		return nil, fmt.Errorf("%w: not the author", ErrForbidden)
	}
	return &post, nil
}

func (s *BlogService) fill(ctx context.Context, post *models.BlogPost, in PostInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return invalidf("title and content are required")
	}
	html, err := utils.RenderMarkdown(in.Content)
	if err != nil {
		return invalidf("markdown: %v", err)
	}
	post.Title = title
	post.Content = in.Content
	post.ContentHTML = html
	post.Excerpt = utils.Excerpt(html, excerptLength)

	if in.CoverImage != "" {
		url, err := s.storeCover(ctx, in.CoverImage)
		if err != nil {
			return err
		}
		post.CoverImageURL = url
	}
	return nil
}

// storeCover rejects images carrying moderation labels before uploading.
func (s *BlogService) storeCover(ctx context.Context, raw string) (string, error) {
	img, err := parseImage(s.images, raw)
	if err != nil {
		return "", err
	}
	if s.moderator != nil {
		labels, err := s.moderator.ModerationLabels(ctx, img)
		if err != nil {
			return "", fmt.Errorf("moderate cover image: %w", err)
		}
		if len(labels) > 0 {
			return "", invalidf("cover image rejected by moderation: %s", strings.Join(labels, ", "))
		}
	} else {
		logger.Warn("cover image stored without moderation")
	}
	return s.images.UploadImage(ctx, "blog", img)
}

// uniqueSlug appends a short random suffix when the title's slug is taken,
// including by a deleted post.
func (s *BlogService) uniqueSlug(db *gorm.DB, title string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		base = "post"
	}
	var n int64
	if err := db.Unscoped().Model(&models.BlogPost{}).Where("slug = ?", base).Count(&n).Error; err != nil {
		return "", err
	}
	if n == 0 {
		return base, nil
	}
	slug := base + "-" + uuid.NewString()[:8]
	logger.Debug("slug taken", zap.String("slug", base), zap.String("using", slug))
	return slug, nil
}
